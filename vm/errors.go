package vm

import (
	"errors"
	"fmt"
)

var (
	// decode time
	ErrInvalidOpcode    = errors.New("invalid opcode")
	ErrTruncatedOperand = errors.New("truncated operand")

	// execution time
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrStackOverflow      = errors.New("stack overflow")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrNoReturnValue      = errors.New("no return value")
)

// DecodeError reports where in the bytecode decoding failed
type DecodeError struct {
	// byte offset of the failing opcode
	Offset int
	Byte   byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %s 0x%02x at offset %d", e.Err, e.Byte, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ExecError reports which instruction failed during a run
type ExecError struct {
	// index into the instruction sequence
	Index int
	Op    Opcode
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("exec: %s at instruction %d (%s)", e.Err, e.Index, e.Op)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Kind names the failure class of err, or "" if err did not come from
// this package. Useful for presenting errors to callers.
func Kind(err error) string {
	for _, k := range []error{
		ErrInvalidOpcode,
		ErrTruncatedOperand,
		ErrStackUnderflow,
		ErrStackOverflow,
		ErrDivisionByZero,
		ErrArithmeticOverflow,
		ErrNoReturnValue,
	} {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return ""
}
