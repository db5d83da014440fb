package main

import (
	"io"

	excellent "github.com/itsatony/go-excellent"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cli holds the streams and global flags of one invocation
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath  string
	contextPath string
	timezone    string
	monthFirst  bool
	verbose     bool

	logger *zap.Logger
}

func (c *cli) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           CLIName,
		Short:         CLIDescription,
		Long:          CLILong,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.logger = c.newLogger()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, FlagConfig, FlagConfigShort, "", "YAML config file")
	flags.StringVarP(&c.contextPath, FlagContext, FlagContextShort, "", "YAML or JSON file with context variables")
	flags.StringVar(&c.timezone, FlagTimezone, "", "IANA timezone for dates, e.g. Africa/Kigali")
	flags.BoolVar(&c.monthFirst, FlagMonthFirst, false, "Parse and render dates month first")
	flags.BoolVarP(&c.verbose, FlagVerbose, FlagVerboseShort, false, "Enable debug logging on stderr")

	root.AddCommand(c.newRenderCmd())
	root.AddCommand(c.newEvalCmd())
	root.AddCommand(c.newScanCmd())
	root.AddCommand(c.newFuncsCmd())
	root.AddCommand(c.newSaveCmd())
	root.AddCommand(c.newListCmd())
	root.AddCommand(c.newVersionCmd())
	return root
}

// newLogger returns a development console logger on stderr when verbose
func (c *cli) newLogger() *zap.Logger {
	if !c.verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(c.stderr),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

// loadConfig reads the config file and applies flag overrides
func (c *cli) loadConfig() (*excellent.Config, error) {
	config := &excellent.Config{}
	if c.configPath != "" {
		loaded, err := excellent.LoadConfig(c.configPath)
		if err != nil {
			return nil, newExitError(ExitCodeInputError, ErrMsgInvalidConfig, err)
		}
		config = loaded
	}

	if c.timezone != "" {
		config.Timezone = c.timezone
	}
	if c.monthFirst {
		config.DateStyle = excellent.DateStyleNameMonthFirst
	}
	if err := config.Validate(); err != nil {
		return nil, newExitError(ExitCodeUsageError, ErrMsgInvalidConfig, err)
	}
	return config, nil
}

// setup builds the evaluator and evaluation context for a command
func (c *cli) setup() (*excellent.Evaluator, *excellent.EvaluationContext, error) {
	config, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	opts, err := config.Options()
	if err != nil {
		return nil, nil, newExitError(ExitCodeUsageError, ErrMsgInvalidConfig, err)
	}
	opts = append(opts, excellent.WithLogger(c.logger))

	evaluator, err := excellent.New(opts...)
	if err != nil {
		return nil, nil, newExitError(ExitCodeUsageError, ErrMsgInvalidConfig, err)
	}

	vars, err := loadContextFile(c.contextPath, c.stdin)
	if err != nil {
		return nil, nil, newExitError(ExitCodeInputError, ErrMsgInvalidContext, err)
	}

	ctxOpts, err := config.ContextOptions()
	if err != nil {
		return nil, nil, newExitError(ExitCodeUsageError, ErrMsgInvalidConfig, err)
	}
	ctx, err := excellent.NewEvaluationContext(vars, ctxOpts...)
	if err != nil {
		return nil, nil, newExitError(ExitCodeInputError, ErrMsgInvalidContext, err)
	}
	return evaluator, ctx, nil
}

// validateFormat checks an output format flag
func validateFormat(format string) error {
	if format != OutputFormatText && format != OutputFormatJSON {
		return newExitError(ExitCodeUsageError, ErrMsgInvalidFormat, nil)
	}
	return nil
}
