package variables

import (
	"context"
)

// DetailProvider computes a descriptive string for a value, typically by
// running the value's own textual representation inside the debuggee.
type DetailProvider interface {
	// ValueDetail returns the computed description for v on the given thread.
	ValueDetail(ctx context.Context, v Value, threadID int64) (string, error)
}

// FormatDetails renders the optional descriptive string for a reference-type
// value. The computation is best-effort: any failure yields "" and the
// caller proceeds without a detail.
func FormatDetails(ctx context.Context, v Value, threadID int64, f Formatter, opts Options, p DetailProvider) string {
	if p == nil || v == nil {
		return ""
	}

	detail, err := p.ValueDetail(ctx, v, threadID)
	if err != nil {
		return ""
	}
	if opts.MaxStringLength > 0 && len(detail) > opts.MaxStringLength {
		detail = detail[:opts.MaxStringLength] + "..."
	}
	return detail
}
