package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which pipeline stage produced the error
type Phase string

const (
	PhaseConfig   Phase = "config"   // configuration loading
	PhaseResolve  Phase = "resolve"  // WIT resolution and world selection
	PhaseBuild    Phase = "build"    // Go compilation to a core module
	PhaseEmbed    Phase = "embed"    // metadata embedding
	PhaseEncode   Phase = "encode"   // core module to component
	PhaseBindings Phase = "bindings" // Go bindings emission
	PhaseTool     Phase = "tool"     // external tool invocation
	PhaseInspect  Phase = "inspect"  // binary inspection
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindPrecondition Kind = "precondition"
	KindParse        Kind = "parse"
	KindProcess      Kind = "process"
	KindResolution   Kind = "resolution"
	KindBinaryFormat Kind = "binary_format"
	KindIO           Kind = "io"
	KindUnsupported  Kind = "unsupported"
)

// Error is the structured error type used throughout componentize-go
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Path   string // filesystem path the error refers to
	Detail string
	Stderr string // verbatim diagnostics of a failed child process
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	if s := strings.TrimRight(e.Stderr, "\r\n"); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Empty Phase or Kind on the target match anything.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	return true
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the filesystem path
func (b *Builder) Path(path string) *Builder {
	b.err.Path = path
	return b
}

// Stderr attaches the diagnostics of a child process
func (b *Builder) Stderr(stderr []byte) *Builder {
	b.err.Stderr = string(stderr)
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an error for a mode that is not implemented
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Precondition creates an environment precondition error
func Precondition(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindPrecondition,
		Detail: detail,
	}
}

// IO creates a filesystem error that always names the offending path
func IO(phase Phase, op, path string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Path:   path,
		Detail: op,
		Cause:  cause,
	}
}

// Process creates an error for a child process that exited unsuccessfully
func Process(phase Phase, command string, exitCode int, stderr []byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindProcess,
		Detail: fmt.Sprintf("'%s' command failed (exit status %d)", command, exitCode),
		Stderr: string(stderr),
	}
}

// Resolution creates an interface resolution error
func Resolution(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindResolution,
		Detail: detail,
		Cause:  cause,
	}
}

// BinaryFormat creates a malformed binary error
func BinaryFormat(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBinaryFormat,
		Detail: detail,
		Cause:  cause,
	}
}
