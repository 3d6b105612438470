package vm

import (
	"math/bits"
)

// All arithmetic is on uint32. Any result that does not fit fails with
// ErrArithmeticOverflow rather than wrapping.

type binaryFunc func(a, b uint32) (uint32, error)

func add(a, b uint32) (uint32, error) {
	sum, carry := bits.Add32(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func sub(a, b uint32) (uint32, error) {
	diff, borrow := bits.Sub32(a, b, 0)
	if borrow != 0 {
		return 0, ErrArithmeticOverflow
	}
	return diff, nil
}

func mul(a, b uint32) (uint32, error) {
	hi, lo := bits.Mul32(a, b)
	if hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return lo, nil
}

func div(a, b uint32) (uint32, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

func mod(a, b uint32) (uint32, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a % b, nil
}

// exp computes a**b by squaring. 0**0 is 1.
func exp(a, b uint32) (uint32, error) {
	var (
		result uint32 = 1
		base          = a
		err    error
	)
	for b > 0 {
		if b&1 == 1 {
			if result, err = mul(result, base); err != nil {
				return 0, err
			}
		}
		b >>= 1
		if b == 0 {
			break
		}
		// only square when another bit needs it, so a**1 near the
		// limit does not overflow spuriously
		if base, err = mul(base, base); err != nil {
			return 0, err
		}
	}
	return result, nil
}
