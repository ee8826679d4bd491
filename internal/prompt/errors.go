package prompt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means the named prompt (or requested version) does not
	// exist for the tenant, or has been deleted.
	ErrNotFound = errors.New("prompt not found")

	// ErrConflict means a concurrent write won the race for the active slot
	// and the internal retry lost again. The caller may simply re-issue.
	ErrConflict = errors.New("concurrent prompt update")
)

// RenderError reports placeholders referenced by a template that were absent
// from the substitution map.
type RenderError struct {
	Name    string
	Missing []string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %q: missing variables: %s", e.Name, strings.Join(e.Missing, ", "))
}
