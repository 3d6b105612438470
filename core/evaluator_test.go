package core

import (
	"sync"
	"testing"

	"github.com/krehermann/stackvm/types"
	"github.com/krehermann/stackvm/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEvaluator(t *testing.T, opts ...EvaluatorOpt) *Evaluator {
	opts = append([]EvaluatorOpt{WithLogger(zap.Must(zap.NewDevelopment()))}, opts...)
	e, err := NewEvaluator(opts...)
	require.NoError(t, err)
	require.NotNil(t, e)
	return e
}

func mustParse(t *testing.T, s string) *Program {
	p, err := ParseProgram(s)
	require.NoError(t, err)
	return p
}

func TestParseProgram(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []byte
		wantErr bool
	}{
		{name: "plain", in: "7F000000037F0000000401F3", want: []byte{0x7f, 0, 0, 0, 3, 0x7f, 0, 0, 0, 4, 0x01, 0xf3}},
		{name: "line from stdin", in: "01f3\n", want: []byte{0x01, 0xf3}},
		{name: "prefix", in: "0x01F3", want: []byte{0x01, 0xf3}},
		{name: "upper case prefix", in: "0X01F3", want: []byte{0x01, 0xf3}},
		{name: "empty", in: "", want: []byte{}},
		{name: "odd length", in: "7F0", wantErr: true},
		{name: "not hex", in: "hello", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProgram(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestProgram_String(t *testing.T) {
	p := mustParse(t, "7f000000037f0000000401f3")
	assert.Equal(t, "7F000000037F0000000401F3", p.String())
}

// reverseHasher hashes the code back to front
type reverseHasher struct{}

func (reverseHasher) Hash(p *Program) types.Hash {
	rev := make([]byte, len(p.Code))
	for i, b := range p.Code {
		rev[len(rev)-1-i] = b
	}
	return DefaultProgramHasher{}.Hash(NewProgram(rev))
}

func TestProgram_Hash(t *testing.T) {
	p := mustParse(t, "7F00000009F3")
	def := p.Hash(DefaultProgramHasher{})
	rev := p.Hash(reverseHasher{})

	// each hasher gets its own result, whatever the call order
	assert.NotEqual(t, def, rev)
	assert.Equal(t, def, p.Hash(DefaultProgramHasher{}))
	assert.Equal(t, rev, p.Hash(reverseHasher{}))
}

func TestEvaluate_WithHasher(t *testing.T) {
	e := newTestEvaluator(t, WithHasher(reverseHasher{}))
	p := mustParse(t, "7F00000009F3")

	r, err := e.Evaluate(p)
	require.NoError(t, err)
	assert.Equal(t, p.Hash(reverseHasher{}), r.Hash)

	got, err := e.Receipt(p.Hash(reverseHasher{}))
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestEvaluate(t *testing.T) {
	e := newTestEvaluator(t)

	p := mustParse(t, "7F000000257F000000897F0000002C017F000000050203F3")
	r, err := e.Evaluate(p)
	require.NoError(t, err)
	assert.Equal(t, uint32(868), r.Result)
	assert.Equal(t, 8, r.Instructions)
	assert.False(t, r.Failed())
	assert.Equal(t, p.Hash(DefaultProgramHasher{}), r.Hash)

	got, err := e.Receipt(r.Hash)
	require.NoError(t, err)
	assert.Equal(t, r, got)
	assert.Equal(t, uint64(1), e.Runs())
}

func TestEvaluate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantErr  error
		wantKind string
		wantN    int
	}{
		{name: "invalid opcode", code: "05", wantErr: vm.ErrInvalidOpcode, wantKind: "invalid opcode"},
		{name: "truncated", code: "7F0000", wantErr: vm.ErrTruncatedOperand, wantKind: "truncated operand"},
		{name: "underflow", code: "01F3", wantErr: vm.ErrStackUnderflow, wantKind: "stack underflow", wantN: 2},
		{name: "stop", code: "7F0000000100", wantErr: vm.ErrNoReturnValue, wantKind: "no return value", wantN: 2},
		{name: "div by zero", code: "7F000000007F0000000504F3", wantErr: vm.ErrDivisionByZero, wantKind: "division by zero", wantN: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEvaluator(t)
			r, err := e.Evaluate(mustParse(t, tt.code))
			assert.ErrorIs(t, err, tt.wantErr)
			require.NotNil(t, r)
			assert.True(t, r.Failed())
			assert.Equal(t, tt.wantKind, r.Kind)
			assert.Equal(t, tt.wantN, r.Instructions)

			// failures are recorded too
			got, err := e.Receipt(r.Hash)
			require.NoError(t, err)
			assert.Equal(t, r, got)
		})
	}
}

func TestEvaluate_MaxStack(t *testing.T) {
	e := newTestEvaluator(t, WithMaxStack(1))
	_, err := e.Evaluate(mustParse(t, "7F000000017F0000000201F3"))
	assert.ErrorIs(t, err, vm.ErrStackOverflow)
}

func TestEvaluate_MemStore(t *testing.T) {
	ms := NewMemStore[types.Hash, *Receipt]()
	defer ms.Close()
	e := newTestEvaluator(t, WithStore(ms))

	r, err := e.Evaluate(mustParse(t, "7F00000009F3"))
	require.NoError(t, err)
	got, err := ms.Get(r.Hash)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), got.Result)
}

func TestEvaluator_Receipt_Missing(t *testing.T) {
	e := newTestEvaluator(t)
	_, err := e.Receipt(types.Hash{})
	assert.Error(t, err)
}

func TestEvaluate_Concurrent(t *testing.T) {
	e := newTestEvaluator(t)

	n := 32
	wg := sync.WaitGroup{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := ParseProgram("7F000000037F0000000401F3")
			assert.NoError(t, err)
			r, err := e.Evaluate(p)
			assert.NoError(t, err)
			assert.Equal(t, uint32(7), r.Result)
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(n), e.Runs())
}
