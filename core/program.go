package core

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/krehermann/stackvm/types"
)

// Program is raw bytecode as handed to the vm
type Program struct {
	Code []byte
}

func NewProgram(code []byte) *Program {
	return &Program{
		Code: code,
	}
}

// ParseProgram decodes the hex text form of a program, e.g.
// "7F000000037F0000000401F3". Surrounding whitespace and a 0x or 0X
// prefix are ignored.
func ParseProgram(s string) (*Program, error) {
	digits, _ := types.TrimHexPrefix(strings.TrimSpace(s))
	code, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("parse program: invalid hex string: %w", err)
	}
	return NewProgram(code), nil
}

// Hash is not cached, so different hashers never see each other's result
func (p *Program) Hash(hasher Hasher[*Program]) types.Hash {
	return hasher.Hash(p)
}

func (p *Program) String() string {
	return strings.ToUpper(hex.EncodeToString(p.Code))
}
