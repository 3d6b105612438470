package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/krehermann/stackvm/asm"
	"github.com/krehermann/stackvm/core"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run [hex]",
		Short: "run a program and print its output",
		Long: `run decodes the hex encoded program given as argument, or the first
line of stdin when no argument is given, and prints the returned value.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProgram(cmd, args)
			if err != nil {
				return err
			}
			e, err := a.newEvaluator()
			if err != nil {
				return err
			}
			r, err := e.Evaluate(p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Program output: %d\n", r.Result)
			return nil
		},
	}
}

func newDisasmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disasm [hex]",
		Short: "list the instructions of a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProgram(cmd, args)
			if err != nil {
				return err
			}
			listing, err := asm.Disassemble(p.Code)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), listing)
			return nil
		},
	}
}

func newAsmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "asm <file|->",
		Short: "assemble source text to hex bytecode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			code, err := asm.Assemble(src)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), core.NewProgram(code))
			return nil
		},
	}
}

// readProgram takes the program from the first argument, or else from the
// first line of stdin
func readProgram(cmd *cobra.Command, args []string) (*core.Program, error) {
	if len(args) == 1 {
		return core.ParseProgram(args[0])
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read program: %w", err)
	}
	return core.ParseProgram(line)
}

func readSource(cmd *cobra.Command, name string) (string, error) {
	var (
		b   []byte
		err error
	)
	if name == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(b), nil
}
