package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // bytes to class tree
	PhaseEncode   Phase = "encode"   // class tree to bytes
	PhaseResolve  Phase = "resolve"  // constant pool / label resolution
	PhaseValidate Phase = "validate" // structural validation
)

// Kind categorizes the error
type Kind string

const (
	KindTruncated         Kind = "truncated"          // stream ended before the field being read
	KindMalformedEncoding Kind = "malformed_encoding" // modified UTF-8 violations
	KindInvalidReference  Kind = "invalid_reference"  // pool/label index out of range or wrong entry kind
	KindUnknownTag        Kind = "unknown_tag"        // unrecognized pool tag or wide sub-opcode
	KindOverflow          Kind = "overflow"           // value too large for its fixed-width field
	KindInvalidData       Kind = "invalid_data"       // structurally malformed input
	KindInvalidName       Kind = "invalid_name"       // name/descriptor fails its grammar
	KindUnsupported       Kind = "unsupported"        // recognized but unsupported construct
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
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

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
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

// Path sets the context path ("while doing X" frames, outermost first)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
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

// Truncated creates a truncated-input error naming the field being read
func Truncated(phase Phase, field string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncated,
		Detail: fmt.Sprintf("unexpected end of stream reading %s", field),
		Cause:  cause,
	}
}

// MalformedEncoding creates a text codec error; the cause names the
// offending byte pattern
func MalformedEncoding(phase Phase, path []string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindMalformedEncoding,
		Path:  path,
		Cause: cause,
	}
}

// InvalidReference creates an out-of-range or wrong-kind reference error
func InvalidReference(phase Phase, path []string, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidReference,
		Path:   path,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// PoolIndexOutOfBounds creates an invalid-reference error for a pool index
func PoolIndexOutOfBounds(phase Phase, index int, size int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidReference,
		Detail: fmt.Sprintf("index %d out of bounds for pool size %d", index, size),
		Value:  index,
	}
}

// UnknownTag creates an unknown-tag error
func UnknownTag(phase Phase, what string, tag byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownTag,
		Detail: fmt.Sprintf("unknown %s 0x%02x", what, tag),
		Value:  tag,
	}
}

// Overflow creates an overflow error naming the value and the field
func Overflow(phase Phase, field string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("value %v overflows %s", value, field),
		Value:  value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// InvalidName creates an invalid name/descriptor error
func InvalidName(kind string, value string, detail string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInvalidName,
		Detail: fmt.Sprintf("invalid %s %q: %s", kind, value, detail),
		Value:  value,
	}
}

// Unsupported creates an unsupported construct error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// In returns a copy of err with frames prepended to its context path.
// Non-*Error values are wrapped as decode-phase invalid data first.
func In(err error, frames ...string) error {
	if err == nil {
		return nil
	}
	e, ok := err.(*Error)
	if !ok {
		e = &Error{Phase: PhaseDecode, Kind: KindInvalidData, Cause: err}
	}
	out := *e
	out.Path = append(append([]string{}, frames...), e.Path...)
	return &out
}
