package types

import (
	"encoding/hex"
	"fmt"
)

const HASH_BYTE_LEN = 32

type Hash [HASH_BYTE_LEN]uint8

func HashFromBytes(b []byte) Hash {
	if len(b) != HASH_BYTE_LEN {
		panic(fmt.Sprintf("given byte slice len %d but must be HASH_BYTE_LEN", len(b)))
	}

	var val Hash
	copy(val[:], b)
	return val
}

// HashFromHex parses the String form of a hash. A 0x or 0X prefix is
// allowed.
func HashFromHex(s string) (Hash, error) {
	digits, _ := TrimHexPrefix(s)
	b, err := hex.DecodeString(digits)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash hex %q: %w", s, err)
	}
	if len(b) != HASH_BYTE_LEN {
		return Hash{}, fmt.Errorf("invalid hash len %d, want %d", len(b), HASH_BYTE_LEN)
	}
	return HashFromBytes(b), nil
}

func (h Hash) ToSlice() []byte {
	out := make([]byte, HASH_BYTE_LEN)
	copy(out, h[:])
	return out
}

func (h Hash) String() string {
	return hex.EncodeToString(h.ToSlice())
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(b []byte) error {
	v, err := HashFromHex(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Prefix is a short form for logging
func (h Hash) Prefix() string {
	return h.String()[:8]
}
