package core

import (
	"crypto/sha256"

	"github.com/krehermann/stackvm/types"
)

type Hasher[T any] interface {
	Hash(T) types.Hash
}

// DefaultProgramHasher hashes the raw bytecode
type DefaultProgramHasher struct{}

func (dh DefaultProgramHasher) Hash(p *Program) types.Hash {
	return types.Hash(sha256.Sum256(p.Code))
}
