package vm

import (
	"encoding/binary"
)

const push32OperandLen = 4

// Decode turns bytecode into its instruction sequence. The whole input must
// be consumed: an instruction whose operand runs past the end is an error,
// never a partial instruction.
func Decode(code []byte) ([]Instruction, error) {
	// every instruction is at most 5 bytes wide, so this never over
	// allocates; shorter instructions grow the slice on demand
	out := make([]Instruction, 0, len(code)/OpPush32.Width())

	pc := 0
	for pc < len(code) {
		op := Opcode(code[pc])

		if op == OpPush32 {
			end := pc + op.Width()
			if end > len(code) {
				return nil, &DecodeError{
					Offset: pc,
					Byte:   code[pc],
					Err:    ErrTruncatedOperand,
				}
			}
			out = append(out, Push32{
				Value: binary.BigEndian.Uint32(code[pc+1 : end]),
			})
			pc = end
			continue
		}

		inst, ok := fixed[op]
		if !ok {
			return nil, &DecodeError{
				Offset: pc,
				Byte:   code[pc],
				Err:    ErrInvalidOpcode,
			}
		}
		out = append(out, inst)
		pc++
	}

	return out, nil
}

// Encode is the inverse of Decode
func Encode(insts []Instruction) []byte {
	out := make([]byte, 0, len(insts))
	for _, inst := range insts {
		out = append(out, byte(inst.Opcode()))
		if push, ok := inst.(Push32); ok {
			out = binary.BigEndian.AppendUint32(out, push.Value)
		}
	}
	return out
}
