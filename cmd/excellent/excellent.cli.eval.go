package main

import (
	"encoding/json"
	"fmt"
	"strings"

	excellent "github.com/itsatony/go-excellent"
	"github.com/spf13/cobra"
)

// evalOutput is the JSON form of an evaluated expression
type evalOutput struct {
	Expression string `json:"expression"`
	Kind       string `json:"kind"`
	Value      string `json:"value"`
}

// segmentOutput is the JSON form of a scanned segment
type segmentOutput struct {
	Kind         string `json:"kind"`
	Text         string `json:"text"`
	Start        int    `json:"start"`
	End          int    `json:"end"`
	Unterminated bool   `json:"unterminated,omitempty"`
}

func (c *cli) newEvalCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   CmdNameEval + " <expression>",
		Short: "Evaluate a single expression",
		Example: `  excellent eval '1 + 2'
  excellent eval 'UPPER(contact.name)' -x contact.yaml -F json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			evaluator, ctx, err := c.setup()
			if err != nil {
				return err
			}

			expression := strings.Join(args, " ")
			value, err := evaluator.EvaluateExpression(expression, ctx)
			if err != nil {
				return newExitError(ExitCodeError, ErrMsgEvaluationFailed, err)
			}
			text, err := excellent.ToText(value, ctx)
			if err != nil {
				return newExitError(ExitCodeError, ErrMsgEvaluationFailed, err)
			}

			if format == OutputFormatJSON {
				return c.writeJSON(evalOutput{Expression: expression, Kind: value.Kind().String(), Value: text})
			}
			fmt.Fprintln(c.stdout, text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "Output format: text, json")
	return cmd
}

func (c *cli) newScanCmd() *cobra.Command {
	var (
		templatePath string
		format       string
	)

	cmd := &cobra.Command{
		Use:   CmdNameScan + " [template]",
		Short: "Show how a template splits into literal text and expressions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			evaluator, _, err := c.setup()
			if err != nil {
				return err
			}
			source, err := templateSource(args, templatePath, c.stdin)
			if err != nil {
				return err
			}

			segments := evaluator.Scan(source)
			if format == OutputFormatJSON {
				out := make([]segmentOutput, 0, len(segments))
				for _, seg := range segments {
					out = append(out, segmentOutput{
						Kind:         seg.Kind.String(),
						Text:         seg.Text,
						Start:        seg.Start,
						End:          seg.End,
						Unterminated: seg.Unterminated,
					})
				}
				return c.writeJSON(out)
			}

			for _, seg := range segments {
				fmt.Fprintf(c.stdout, FmtSegmentLine, seg.Start, seg.End, seg.Kind, seg.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&templatePath, FlagTemplate, FlagTemplateShort, "", `Template file (use "-" for stdin)`)
	cmd.Flags().StringVarP(&format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "Output format: text, json")
	return cmd
}

func (c *cli) writeJSON(v any) error {
	encoder := json.NewEncoder(c.stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return newExitError(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	return nil
}
