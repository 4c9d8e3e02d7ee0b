package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed render. Every kind is fatal to the invocation.
type Kind int

const (
	UsageError Kind = iota + 1
	FileReadError
	JSONParseError
	EngineUnavailable
	RenderError
	FileWriteError
)

func (k Kind) String() string {
	switch k {
	case UsageError:
		return "usage error"
	case FileReadError:
		return "file read error"
	case JSONParseError:
		return "JSON parse error"
	case EngineUnavailable:
		return "engine unavailable"
	case RenderError:
		return "render error"
	case FileWriteError:
		return "file write error"
	default:
		return "unknown error"
	}
}

// Error is the normalised form of every failure a render can produce.
type Error struct {
	Kind   Kind
	Path   string
	Engine string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case FileReadError:
		return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
	case JSONParseError:
		return fmt.Sprintf("failed to parse variables JSON %s: %v", e.Path, e.Err)
	case EngineUnavailable:
		return fmt.Sprintf("engine %q is not available: %v", e.Engine, e.Err)
	case RenderError:
		if e.Path != "" {
			return fmt.Sprintf("rendering %s failed: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("rendering failed: %v", e.Err)
	case FileWriteError:
		return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func errUnknownEngine(known []string) error {
	return fmt.Errorf("no such engine, known engines: %s", strings.Join(known, ", "))
}

func errNotCompiled(def Definition) error {
	if def.Hint == "" {
		return errors.New("not compiled into this binary")
	}
	return fmt.Errorf("not compiled into this binary. %s", def.Hint)
}

// MultiError collects per-template failures of a directory render.
type MultiError struct {
	Errors []*Error
}

func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}

	var msgs []string
	for _, err := range m.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d templates failed:\n%s", len(m.Errors), strings.Join(msgs, "\n"))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	errs := make([]error, len(m.Errors))
	for i, e := range m.Errors {
		errs[i] = e
	}
	return errs
}

func (m *MultiError) Add(err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: RenderError, Err: err}
	}
	m.Errors = append(m.Errors, e)
}

func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}
