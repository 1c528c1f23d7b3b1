package diag

import "fmt"

type Note struct {
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	// Path identifies the offending file, locale, or package ID, when the
	// failure concerns one.
	Path  string
	Notes []Note
	// Err is the underlying cause, if any.
	Err error
}

// Error renders the diagnostic as "<code>: <message>: <path>".
func (d *Diagnostic) Error() string {
	msg := fmt.Sprintf("%s: %s", d.Code, d.Message)
	if d.Path != "" {
		msg += ": " + d.Path
	}
	return msg
}

func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// Errorf builds a fatal diagnostic with a formatted message.
func Errorf(code Code, path, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
	}
}

// Wrap builds a fatal diagnostic around an underlying error.
func Wrap(code Code, path string, err error) *Diagnostic {
	return &Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  err.Error(),
		Path:     path,
		Err:      err,
	}
}

// Warningf builds a warning diagnostic with a formatted message.
func Warningf(code Code, path, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SevWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
	}
}

// WithNote appends a context note and returns the diagnostic.
func (d *Diagnostic) WithNote(msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Msg: msg})
	return d
}
