package ports

import "github.com/jwolf02/Monitor/internal/domain"

// LineFilter classifies one line at a time. Filters are offered lines in
// registration order; the first to claim a line renders it and stops the
// dispatch. Filters are trusted code, not sandboxed: a non-nil error
// terminates the session.
type LineFilter interface {
	// Name identifies the filter in configuration and error messages.
	Name() string

	// TryClaim offers line to the filter together with the session's
	// extra arguments. It returns true when the filter consumed the line.
	TryClaim(line string, extra domain.ExtraArgs) (bool, error)
}
