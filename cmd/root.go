// Package cmd implements the stackvm command line. Commands and flags are
// implemented using Cobra, configuration is resolved with Viper.
package cmd

import (
	"fmt"
	"os"

	"github.com/krehermann/stackvm/config"
	"github.com/krehermann/stackvm/core"
	"github.com/krehermann/stackvm/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app holds what the subcommands share once configuration is resolved
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd builds the command tree with its own viper instance
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "stackvm",
		Short: "decode and run stackvm bytecode",
		Long: `stackvm decodes hex encoded bytecode and runs it on a small stack
machine, printing the single value handed to RETURN.`,
		Example: `
1. run a program
  stackvm run 7F000000037F0000000401F3
2. read the program from stdin
  echo 7F000000037F0000000401F3 | stackvm run
3. list the instructions of a program
  stackvm disasm 7F000000037F0000000401F3
4. assemble a source file
  stackvm asm add.s
5. serve the http api
  stackvm serve --addr :8080
	`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is none)")

	flags.String("log-level", "info", "log level [debug|info|warn|error]")
	a.v.BindPFlag("log.level", flags.Lookup("log-level"))

	flags.Int("max-stack", 1024, "maximum operand stack depth")
	a.v.BindPFlag("vm.max_stack", flags.Lookup("max-stack"))

	root.AddCommand(
		newRunCmd(a),
		newDisasmCmd(a),
		newAsmCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	l, err := cfg.Log.NewLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	zap.ReplaceGlobals(l)
	a.logger = l

	if f := a.v.ConfigFileUsed(); f != "" {
		l.Info("using config file", zap.String("file", f))
	}
	l.Debug("config", zap.Stringer("config", cfg))
	return nil
}

func (a *app) newEvaluator() (*core.Evaluator, error) {
	opts := []core.EvaluatorOpt{
		core.WithLogger(a.logger),
		core.WithMaxStack(a.cfg.VM.MaxStack),
	}
	if a.cfg.Store.Size == 0 {
		opts = append(opts, core.WithStore(core.NewMemStore[types.Hash, *core.Receipt]()))
	} else {
		s, err := core.NewLRUStore[types.Hash, *core.Receipt](a.cfg.Store.Size)
		if err != nil {
			return nil, err
		}
		opts = append(opts, core.WithStore(s))
	}
	return core.NewEvaluator(opts...)
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
