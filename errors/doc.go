// Package errors provides structured error types for the classfile-kit library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes a context path of "while doing X" frames
// and a cause chain; nothing here is ever downgraded to a warning, every error
// aborts the read or write of the current class and is returned to the caller.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidReference).
//		Path("method 3", "Code").
//		Detail("label offset %d out of bounds", off).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(errors.PhaseDecode, "constant pool entry 7", cause)
//	err := errors.PoolIndexOutOfBounds(errors.PhaseResolve, 12, 10)
//	err := errors.Overflow(errors.PhaseEncode, "code_length", n)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
