package vm

import (
	"fmt"
)

const defaultStackDepth = 1024

// Stack is the operand stack of a single run. It is owned by one VM and
// is not safe for concurrent use.
type Stack struct {
	data []uint32
	ptr  int

	depth int
}

type StackOpt func(*Stack) *Stack

func MaxStack(max int) StackOpt {
	return func(s *Stack) *Stack {
		if max > 0 {
			s.depth = max
		}
		return s
	}
}

func NewStack(opts ...StackOpt) *Stack {
	s := &Stack{
		ptr:   0,
		depth: defaultStackDepth,
	}
	for _, opt := range opts {
		s = opt(s)
	}
	// grow on demand, the depth is only a ceiling
	s.data = make([]uint32, 0, min(s.depth, 16))
	return s
}

func (s *Stack) Push(v uint32) error {
	if s.ptr == s.depth {
		return fmt.Errorf("push to full stack (depth %d): %w", s.depth, ErrStackOverflow)
	}

	s.data = append(s.data[:s.ptr], v)
	s.ptr += 1

	return nil
}

func (s *Stack) Pop() (uint32, error) {
	if s.Empty() {
		return 0, fmt.Errorf("pop from empty stack: %w", ErrStackUnderflow)
	}

	// ptr is at the next write slot, one ahead of the read slot
	v := s.data[s.ptr-1]
	s.ptr -= 1

	return v, nil
}

// Pop2 pops the top two values. a is the former top of the stack. The
// stack is left untouched if it holds fewer than two values.
func (s *Stack) Pop2() (a, b uint32, err error) {
	if s.ptr < 2 {
		return 0, 0, fmt.Errorf("need 2 values, have %d: %w", s.ptr, ErrStackUnderflow)
	}
	a = s.data[s.ptr-1]
	b = s.data[s.ptr-2]
	s.ptr -= 2
	return a, b, nil
}

func (s *Stack) Empty() bool {
	return s.ptr == 0
}

func (s *Stack) Len() int {
	return s.ptr
}
