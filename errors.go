package formfill

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Sentinel errors for missing resources.
var (
	ErrTemplateNotFound = errors.New("formfill: template PDF not found")
	ErrFontNotFound     = errors.New("formfill: font file not found")
)

// ConfigurationError reports a required resource that is missing or
// unreadable. The request cannot be served until the deployment is fixed.
type ConfigurationError struct {
	Resource string // "template" or "mapping"
	Path     string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("formfill: %s %q: %v", e.Resource, e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// MappingParseError reports a mapping file that is not a JSON object.
// Without strict mapping the engine recovers by using an empty mapping.
type MappingParseError struct {
	Path string
	Err  error
}

func (e *MappingParseError) Error() string {
	return fmt.Sprintf("formfill: mapping %q: %v", e.Path, e.Err)
}

func (e *MappingParseError) Unwrap() error { return e.Err }

// FontLoadError reports a TrueType font that could not be found or parsed.
// It never fails a request; text falls back to the core font.
type FontLoadError struct {
	Path string
	Err  error
}

func (e *FontLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("formfill: font: %v", e.Err)
	}
	return fmt.Sprintf("formfill: font %q: %v", e.Path, e.Err)
}

func (e *FontLoadError) Unwrap() error { return e.Err }

// RenderError reports a failure while laying out or writing the document.
// Err carries the stack of the point where the error was raised; format
// with %+v to print it.
type RenderError struct {
	Op  string // "plan", "overlay"
	Err error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("formfill.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("formfill.%s: unknown error", e.Op)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Format implements fmt.Formatter so %+v includes the stack trace.
func (e *RenderError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "formfill.%s: %+v", e.Op, e.Err)
		return
	}
	fmt.Fprint(s, e.Error())
}

func newRenderError(op string, err error) *RenderError {
	return &RenderError{Op: op, Err: pkgerrors.WithStack(err)}
}
