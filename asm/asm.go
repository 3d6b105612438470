// Package asm converts between bytecode and a line oriented text form.
//
//	; 3 + 4
//	PUSH32 3
//	PUSH32 0x4
//	ADD
//	RETURN
package asm

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/krehermann/stackvm/types"
	"github.com/krehermann/stackvm/vm"
)

const commentChar = ";"

// Assemble translates source text to bytecode. Mnemonics are case
// insensitive; PUSH32 takes one decimal or 0x-prefixed hex operand.
func Assemble(src string) ([]byte, error) {
	var insts []vm.Instruction

	scanner := bufio.NewScanner(strings.NewReader(src))
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.Index(text, commentChar); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		inst, err := parseInstruction(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		insts = append(insts, inst)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	return vm.Encode(insts), nil
}

func parseInstruction(fields []string) (vm.Instruction, error) {
	name := strings.ToUpper(fields[0])
	op, ok := vm.OpcodeFromName(name)
	if !ok {
		return nil, fmt.Errorf("unknown mnemonic %q", fields[0])
	}

	if op != vm.OpPush32 {
		if len(fields) != 1 {
			return nil, fmt.Errorf("%s takes no operand", name)
		}
		// a single byte decodes to the matching instruction
		program, err := vm.Decode([]byte{byte(op)})
		if err != nil {
			return nil, err
		}
		return program[0], nil
	}

	if len(fields) != 2 {
		return nil, fmt.Errorf("%s takes exactly one operand", name)
	}
	v, err := parseOperand(fields[1])
	if err != nil {
		return nil, fmt.Errorf("%s operand %q: %w", name, fields[1], err)
	}
	return vm.Push32{Value: v}, nil
}

// parseOperand accepts decimal, or hex with a 0x prefix. Leading zeros are
// decimal, not octal.
func parseOperand(s string) (uint32, error) {
	base := 10
	if digits, ok := types.TrimHexPrefix(s); ok {
		s, base = digits, 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// Disassemble lists each instruction of code on its own line, prefixed by
// its byte offset.
func Disassemble(code []byte) (string, error) {
	program, err := vm.Decode(code)
	if err != nil {
		return "", err
	}

	var (
		b  strings.Builder
		pc int
	)
	for _, inst := range program {
		fmt.Fprintf(&b, "0x%04x: %v\n", pc, inst)
		pc += inst.Opcode().Width()
	}
	return b.String(), nil
}
