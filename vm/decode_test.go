package vm

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		code       []byte
		want       []Instruction
		wantErr    error
		wantOffset int
	}{
		{
			name: "empty",
			code: []byte{},
			want: []Instruction{},
		},
		{
			name: "3 + 4",
			code: []byte{
				0x7f, 0, 0, 0, 3,
				0x7f, 0, 0, 0, 4,
				0x01,
				0xf3,
			},
			want: []Instruction{Push32{3}, Push32{4}, Add{}, Return{}},
		},
		{
			name: "every fixed width opcode",
			code: []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x06, 0x0a, 0x50, 0xf3},
			want: []Instruction{Stop{}, Add{}, Mul{}, Sub{}, Div{}, Mod{}, Exp{}, Pop{}, Return{}},
		},
		{
			name: "push operand is big endian",
			code: []byte{0x7f, 0x01, 0x02, 0x03, 0x04},
			want: []Instruction{Push32{0x01020304}},
		},
		{
			name: "push operand bytes look like opcodes",
			code: []byte{0x7f, 0x7f, 0xf3, 0x00, 0x05, 0xf3},
			want: []Instruction{Push32{0x7ff30005}, Return{}},
		},
		{
			name:       "invalid opcode",
			code:       []byte{0x05},
			wantErr:    ErrInvalidOpcode,
			wantOffset: 0,
		},
		{
			name:       "invalid opcode after push",
			code:       []byte{0x7f, 0, 0, 0, 1, 0xff},
			wantErr:    ErrInvalidOpcode,
			wantOffset: 5,
		},
		{
			name:       "truncated push",
			code:       []byte{0x7f, 0x00, 0x00},
			wantErr:    ErrTruncatedOperand,
			wantOffset: 0,
		},
		{
			name:       "push with no operand at end",
			code:       []byte{0x01, 0x7f},
			wantErr:    ErrTruncatedOperand,
			wantOffset: 1,
		},
		{
			name:       "one byte short",
			code:       []byte{0x7f, 0, 0, 0},
			wantErr:    ErrTruncatedOperand,
			wantOffset: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.code)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				var derr *DecodeError
				require.True(t, errors.As(err, &derr))
				assert.Equal(t, tt.wantOffset, derr.Offset)
				assert.Equal(t, tt.code[tt.wantOffset], derr.Byte)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_EveryUndefinedByte(t *testing.T) {
	for i := 0; i < 256; i++ {
		op := Opcode(i)
		if op.Valid() {
			continue
		}
		_, err := Decode([]byte{byte(i)})
		assert.ErrorIs(t, err, ErrInvalidOpcode, "byte 0x%02x", i)
	}
}

func TestDecode_InstructionCount(t *testing.T) {
	// 5*(137+44) - 37
	code := mustHex(t, "7F000000257F000000897F0000002C017F000000050203F3")
	got, err := Decode(code)
	require.NoError(t, err)
	assert.Len(t, got, 8)
}

func TestDecode_Capacity(t *testing.T) {
	n := 209715
	program := make([]Instruction, n)
	for i := range program {
		program[i] = Push32{uint32(i)}
	}
	code := Encode(program)
	require.Len(t, code, 5*n)

	got, err := Decode(code)
	require.NoError(t, err)
	assert.Len(t, got, n)
	// one slot per instruction, not one per byte
	assert.Equal(t, n, cap(got))

	got, err = Decode([]byte{0x01, 0x02, 0x03, 0xf3})
	require.NoError(t, err)
	assert.Equal(t, []Instruction{Add{}, Mul{}, Sub{}, Return{}}, got)
}

func TestEncodeDecode(t *testing.T) {
	programs := [][]Instruction{
		{},
		{Push32{0}, Push32{0xffffffff}, Add{}, Return{}},
		{Stop{}, Add{}, Mul{}, Sub{}, Div{}, Mod{}, Exp{}, Pop{}, Push32{42}, Return{}},
	}
	for _, p := range programs {
		code := Encode(p)
		got, err := Decode(code)
		require.NoError(t, err)
		assert.Equal(t, p, got)
		// and back again
		assert.Equal(t, code, Encode(got))
	}
}

func TestOpcode(t *testing.T) {
	for _, op := range Opcodes {
		assert.True(t, op.Valid())
		got, ok := OpcodeFromName(op.String())
		assert.True(t, ok)
		assert.Equal(t, op, got)
	}
	assert.Equal(t, 5, OpPush32.Width())
	assert.Equal(t, 1, OpAdd.Width())
	assert.Equal(t, 0, Opcode(0x05).Width())
	assert.Equal(t, "opcode 0x05 not defined", Opcode(0x05).String())

	_, ok := OpcodeFromName("JUMP")
	assert.False(t, ok)
}

func TestInstruction_String(t *testing.T) {
	assert.Equal(t, "PUSH32 0x0000002a", Push32{42}.String())
	assert.Equal(t, "RETURN", Return{}.String())
}
