package vm

import (
	"fmt"

	"go.uber.org/zap"
)

type VM struct {
	// decoded program, never modified by the vm
	program []Instruction
	// instruction pointer
	ip int

	stack    *Stack
	maxStack int
	logger   *zap.Logger
}

type VMOpt func(*VM) *VM

func LoggerOpt(l *zap.Logger) VMOpt {
	return func(vm *VM) *VM {
		if l != nil {
			vm.logger = l
		}
		return vm
	}
}

// MaxStackOpt bounds the operand stack depth of every run
func MaxStackOpt(depth int) VMOpt {
	return func(vm *VM) *VM {
		vm.maxStack = depth
		return vm
	}
}

func NewVM(program []Instruction, opts ...VMOpt) *VM {
	vm := &VM{
		program:  program,
		ip:       0,
		maxStack: defaultStackDepth,
		logger:   zap.L(),
	}

	for _, opt := range opts {
		vm = opt(vm)
	}

	vm.logger = vm.logger.Named("vm")

	return vm
}

// Execute decodes code and runs it. Nothing is executed if decoding fails.
func Execute(code []byte, opts ...VMOpt) (uint32, error) {
	program, err := Decode(code)
	if err != nil {
		return 0, err
	}
	return NewVM(program, opts...).Run()
}

// Run executes the program from the start on an empty stack and returns
// the value handed to RETURN.
func (vm *VM) Run() (uint32, error) {
	vm.ip = 0
	vm.stack = NewStack(MaxStack(vm.maxStack))
	// the stack does not outlive the run
	defer func() { vm.stack = nil }()

	for vm.ip < len(vm.program) {
		inst := vm.program[vm.ip]

		vm.logger.Debug("instruction pointer",
			zap.Int("ip", vm.ip),
			zap.Stringer("inst", inst),
			zap.Int("stack", vm.stack.Len()),
		)

		val, done, err := vm.exec(inst)
		if err != nil {
			return 0, &ExecError{
				Index: vm.ip,
				Op:    inst.Opcode(),
				Err:   err,
			}
		}
		if done {
			vm.logger.Debug("return", zap.Uint32("val", val))
			return val, nil
		}
		vm.ip++
	}

	// running off the end is an implicit STOP
	return 0, &ExecError{
		Index: vm.ip,
		Op:    OpStop,
		Err:   fmt.Errorf("program ended without RETURN: %w", ErrNoReturnValue),
	}
}

// exec applies one instruction to the stack. done is true when the
// instruction ended the run with val as its output.
func (vm *VM) exec(inst Instruction) (val uint32, done bool, err error) {
	switch inst := inst.(type) {
	case Push32:
		return 0, false, vm.stack.Push(inst.Value)
	case Pop:
		_, err := vm.stack.Pop()
		return 0, false, err
	case Add:
		return 0, false, vm.binary(add)
	case Sub:
		return 0, false, vm.binary(sub)
	case Mul:
		return 0, false, vm.binary(mul)
	case Div:
		return 0, false, vm.binary(div)
	case Mod:
		return 0, false, vm.binary(mod)
	case Exp:
		return 0, false, vm.binary(exp)
	case Stop:
		return 0, false, fmt.Errorf("halted by STOP: %w", ErrNoReturnValue)
	case Return:
		v, err := vm.stack.Pop()
		if err != nil {
			return 0, false, err
		}
		return v, true, nil
	default:
		return 0, false, fmt.Errorf("unhandled instruction %T: %w", inst, ErrInvalidOpcode)
	}
}

// binary pops a (the top) then b, and pushes f(a, b)
func (vm *VM) binary(f binaryFunc) error {
	a, b, err := vm.stack.Pop2()
	if err != nil {
		return err
	}

	val, err := f(a, b)
	if err != nil {
		return fmt.Errorf("a=%d b=%d: %w", a, b, err)
	}
	vm.logger.Debug("binary op",
		zap.Uint32("a", a),
		zap.Uint32("b", b),
		zap.Uint32("result", val),
	)

	return vm.stack.Push(val)
}
