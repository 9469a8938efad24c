package dataset

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a 64-bit xxhash of the column names and values, hex
// encoded. Equal datasets produce equal fingerprints; all NaNs hash alike.
func Fingerprint(ds *Dataset) string {
	h := xxhash.New()
	var buf [8]byte
	for j, name := range ds.names {
		_, _ = h.WriteString(name)
		_, _ = h.Write([]byte{0})
		for _, v := range ds.cols[j] {
			bits := math.Float64bits(v)
			if IsMissing(v) {
				bits = math.Float64bits(math.NaN())
			}
			binary.LittleEndian.PutUint64(buf[:], bits)
			_, _ = h.Write(buf[:])
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
