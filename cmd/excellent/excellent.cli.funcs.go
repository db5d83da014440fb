package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// functionOutput is the JSON form of a registered function
type functionOutput struct {
	Name    string `json:"name"`
	Library string `json:"library"`
}

func (c *cli) newFuncsCmd() *cobra.Command {
	var (
		library string
		format  string
	)

	cmd := &cobra.Command{
		Use:   CmdNameFuncs,
		Short: "List the functions available to expressions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			evaluator, _, err := c.setup()
			if err != nil {
				return err
			}

			var funcs []functionOutput
			for _, name := range evaluator.Functions() {
				lib, _ := evaluator.FunctionLibrary(name)
				if library != "" && !strings.EqualFold(lib, library) {
					continue
				}
				funcs = append(funcs, functionOutput{Name: name, Library: lib})
			}
			if library != "" && len(funcs) == 0 {
				return newExitError(ExitCodeUsageError, ErrMsgUnknownLibrary, nil)
			}

			if format == OutputFormatJSON {
				return c.writeJSON(funcs)
			}
			for _, f := range funcs {
				fmt.Fprintf(c.stdout, FmtFunctionLine, f.Name, f.Library)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&library, FlagLibrary, "", "Only list functions from this library")
	cmd.Flags().StringVarP(&format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "Output format: text, json")
	return cmd
}
