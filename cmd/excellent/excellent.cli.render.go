package main

import (
	"context"
	"fmt"

	excellent "github.com/itsatony/go-excellent"
	"github.com/spf13/cobra"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	templatePath string
	urlEncode    bool
	format       string
	storage      storageFlags
	name         string
	fallback     string
}

func (c *cli) newRenderCmd() *cobra.Command {
	cfg := &renderConfig{}

	cmd := &cobra.Command{
		Use:   CmdNameRender + " [template]",
		Short: "Render a template with context variables",
		Long: `Render a template given as arguments, with --template (a file, or "-" for
stdin), or loaded by --name from template storage. Evaluation errors are
printed on stderr and the command exits with status 3.`,
		Example: `  excellent render 'Hi @contact.name' --context contact.yaml
  excellent render -t message.txt -x contact.yaml --timezone Africa/Kigali
  excellent render --name welcome --language fra --fallback-language eng --dsn templates.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cfg, args)
		},
	}

	cmd.Flags().StringVarP(&cfg.templatePath, FlagTemplate, FlagTemplateShort, "", `Template file (use "-" for stdin)`)
	cmd.Flags().BoolVar(&cfg.urlEncode, FlagURLEncode, false, "URL-encode expression results")
	cmd.Flags().StringVarP(&cfg.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "Output format: text, json")
	cmd.Flags().StringVar(&cfg.name, FlagName, "", "Render the stored template with this name")
	cmd.Flags().StringVar(&cfg.fallback, FlagFallbackLanguage, "", "Language to use when the stored template has no translation")
	cfg.storage.register(cmd)
	return cmd
}

func (c *cli) runRender(ctx context.Context, cfg *renderConfig, args []string) error {
	if err := validateFormat(cfg.format); err != nil {
		return err
	}

	evaluator, evalCtx, err := c.setup()
	if err != nil {
		return err
	}

	opts := []excellent.TemplateOption{excellent.WithURLEncode(cfg.urlEncode)}

	var result excellent.EvaluatedTemplate
	if cfg.name != "" {
		result, err = c.renderStored(ctx, evaluator, evalCtx, cfg, opts)
		if err != nil {
			return err
		}
	} else {
		source, err := templateSource(args, cfg.templatePath, c.stdin)
		if err != nil {
			return err
		}
		result = evaluator.EvaluateTemplate(source, evalCtx, opts...)
	}

	if err := c.writeRenderResult(cfg.format, result); err != nil {
		return err
	}
	if result.HasErrors() {
		return newExitError(ExitCodeEvaluationErrors, "", nil)
	}
	return nil
}

func (c *cli) renderStored(
	ctx context.Context,
	evaluator *excellent.Evaluator,
	evalCtx *excellent.EvaluationContext,
	cfg *renderConfig,
	opts []excellent.TemplateOption,
) (excellent.EvaluatedTemplate, error) {
	storage, err := cfg.storage.open()
	if err != nil {
		return excellent.EvaluatedTemplate{}, err
	}
	defer storage.Close()

	result, err := evaluator.EvaluateStored(ctx, storage, cfg.name, cfg.storage.language, cfg.fallback, evalCtx, opts...)
	if err != nil {
		return excellent.EvaluatedTemplate{}, newExitError(ExitCodeInputError, ErrMsgStorageFailed, err)
	}
	return result, nil
}

func (c *cli) writeRenderResult(format string, result excellent.EvaluatedTemplate) error {
	if format == OutputFormatJSON {
		return c.writeJSON(result)
	}

	if _, err := fmt.Fprintln(c.stdout, result.Output); err != nil {
		return newExitError(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(c.stderr, FmtErrorLine, msg)
	}
	return nil
}
