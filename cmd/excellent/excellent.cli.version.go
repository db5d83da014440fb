package main

import (
	"fmt"
	"runtime"

	excellent "github.com/itsatony/go-excellent"
	"github.com/spf13/cobra"
)

// versionOutput represents JSON output for version
type versionOutput struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
}

func (c *cli) newVersionCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   CmdNameVersion,
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			if format == OutputFormatJSON {
				return c.writeJSON(versionOutput{Version: excellent.Version, GoVersion: runtime.Version()})
			}
			fmt.Fprintf(c.stdout, VersionTextTemplate, excellent.Version, runtime.Version())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "Output format: text, json")
	return cmd
}
