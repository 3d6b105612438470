package core

import (
	"fmt"
	"sync/atomic"

	"github.com/krehermann/stackvm/types"
	"github.com/krehermann/stackvm/vm"
	"go.uber.org/zap"
)

const defaultStoreSize = 256

// Receipt is the outcome of one evaluation. Exactly one of Result and
// Error is meaningful.
type Receipt struct {
	Hash   types.Hash `json:"hash"`
	Result uint32     `json:"result"`
	// decode or execution failure, empty on success
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
	// number of decoded instructions, 0 if decoding failed
	Instructions int `json:"instructions"`
}

func (r *Receipt) Failed() bool {
	return r.Error != ""
}

// Evaluator runs programs and remembers their receipts. Every Evaluate
// call builds its own vm, so it is safe for concurrent use.
type Evaluator struct {
	store    Storager[types.Hash, *Receipt]
	hasher   Hasher[*Program]
	maxStack int
	logger   *zap.Logger

	runs atomic.Uint64
}

type EvaluatorOpt func(e *Evaluator) *Evaluator

func WithLogger(l *zap.Logger) EvaluatorOpt {
	return func(e *Evaluator) *Evaluator {
		if l != nil {
			e.logger = l.Named("evaluator")
		}
		return e
	}
}

func WithMaxStack(depth int) EvaluatorOpt {
	return func(e *Evaluator) *Evaluator {
		e.maxStack = depth
		return e
	}
}

func WithStore(s Storager[types.Hash, *Receipt]) EvaluatorOpt {
	return func(e *Evaluator) *Evaluator {
		if s != nil {
			e.store = s
		}
		return e
	}
}

func WithHasher(h Hasher[*Program]) EvaluatorOpt {
	return func(e *Evaluator) *Evaluator {
		if h != nil {
			e.hasher = h
		}
		return e
	}
}

func NewEvaluator(opts ...EvaluatorOpt) (*Evaluator, error) {
	e := &Evaluator{
		hasher: DefaultProgramHasher{},
		logger: zap.L().Named("evaluator"),
	}
	for _, opt := range opts {
		e = opt(e)
	}

	if e.store == nil {
		s, err := NewLRUStore[types.Hash, *Receipt](defaultStoreSize)
		if err != nil {
			return nil, err
		}
		e.store = s
	}
	return e, nil
}

// Evaluate decodes and runs p. The receipt is recorded and returned even
// when the run fails; the error is then the vm failure.
func (e *Evaluator) Evaluate(p *Program) (*Receipt, error) {
	h := p.Hash(e.hasher)
	r := &Receipt{Hash: h}

	result, n, err := e.run(p)
	r.Instructions = n
	if err != nil {
		r.Error = err.Error()
		r.Kind = vm.Kind(err)
	} else {
		r.Result = result
	}

	e.runs.Add(1)
	e.logger.Info("evaluated program",
		zap.String("hash", h.Prefix()),
		zap.Int("instructions", n),
		zap.Uint32("result", result),
		zap.Error(err),
	)

	if perr := e.store.Put(h, r); perr != nil {
		return r, fmt.Errorf("evaluate %s: store receipt: %w", h.Prefix(), perr)
	}
	if err != nil {
		return r, fmt.Errorf("evaluate %s: %w", h.Prefix(), err)
	}
	return r, nil
}

func (e *Evaluator) run(p *Program) (uint32, int, error) {
	program, err := vm.Decode(p.Code)
	if err != nil {
		return 0, 0, err
	}
	machine := vm.NewVM(program,
		vm.LoggerOpt(e.logger),
		vm.MaxStackOpt(e.maxStack),
	)
	result, err := machine.Run()
	return result, len(program), err
}

// Receipt returns the receipt of an earlier evaluation
func (e *Evaluator) Receipt(h types.Hash) (*Receipt, error) {
	r, err := e.store.Get(h)
	if err != nil {
		return nil, fmt.Errorf("receipt %s: %w", h.Prefix(), err)
	}
	return r, nil
}

// Runs is the number of programs evaluated so far
func (e *Evaluator) Runs() uint64 {
	return e.runs.Load()
}
