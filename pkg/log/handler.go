package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	scerrors "github.com/YuminosukeSato/scorecast/pkg/errors"
)

// ErrFmtHandler decorates records that carry an ErrAttrKey attribute. It adds
// the stack recorded by cockroachdb/errors, an error.code classifying the
// failure and, for codes a user can act on, an error.suggestion.
type ErrFmtHandler struct {
	next slog.Handler
}

// WrapByErrFmtHandler wraps handler with an ErrFmtHandler.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{next: handler}
}

func (h *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	err := recordError(r)
	if err == nil {
		return h.next.Handle(ctx, r)
	}
	// the record may be shared with other handlers
	r = r.Clone()
	r.AddAttrs(errorAttrs(err)...)
	return h.next.Handle(ctx, r)
}

func (h *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{next: h.next.WithGroup(g)}
}

func recordError(r slog.Record) error {
	var err error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		err, _ = attr.Value.Any().(error)
		return false
	})
	return err
}

func errorAttrs(err error) []slog.Attr {
	attrs := make([]slog.Attr, 0, 3)
	if code := ErrorCode(err); code != "" {
		attrs = append(attrs, slog.String(ErrorCodeKey, code))
		if s, ok := suggestions[code]; ok {
			attrs = append(attrs, slog.String(SuggestionKey, s))
		}
	}
	if stack := extractStacktrace(err); stack != "" {
		attrs = append(attrs, slog.String(StacktraceAttrKey, stack))
	}
	return attrs
}

var suggestions = map[string]string{
	ErrorMissingColumns: "check --features and --target against the CSV header",
	ErrorNotFitted:      "train the model before predicting",
	ErrorEmptyData:      "the dataset has no usable rows after cleaning",
}

// ErrorCode maps err to one of the Error* codes, or "" when it is not a
// pipeline error.
func ErrorCode(err error) string {
	var (
		schemaErr *scerrors.SchemaError
		dimErr    *scerrors.DimensionError
		fitErr    *scerrors.NotFittedError
		valErr    *scerrors.ValueError
	)
	switch {
	case errors.Is(err, scerrors.ErrEmptyData):
		return ErrorEmptyData
	case errors.Is(err, scerrors.ErrSingularMatrix):
		return ErrorSingularMatrix
	case errors.As(err, &schemaErr):
		return ErrorMissingColumns
	case errors.As(err, &dimErr):
		return ErrorDimensionMismatch
	case errors.As(err, &fitErr):
		return ErrorNotFitted
	case errors.As(err, &valErr):
		return ErrorInvalidInput
	}
	return ""
}

// extractStacktrace returns the first stack recorded along err's chain.
func extractStacktrace(err error) string {
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		if details := errors.GetSafeDetails(e).SafeDetails; len(details) > 0 {
			return details[0]
		}
	}
	return ""
}
