package main

import (
	"fmt"

	excellent "github.com/itsatony/go-excellent"
	"github.com/spf13/cobra"
)

// storageFlags selects a template storage backend
type storageFlags struct {
	driver   string
	dsn      string
	language string
}

func (f *storageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, FlagStorage, FlagDefaultStorage, "Storage driver: sqlite, postgres, filesystem")
	cmd.Flags().StringVar(&f.dsn, FlagDSN, "", "Storage connection string (SQLite path, PostgreSQL DSN or directory)")
	cmd.Flags().StringVarP(&f.language, FlagLanguage, FlagLanguageShort, FlagDefaultLanguage, "Template language")
}

func (f *storageFlags) open() (excellent.TemplateStorage, error) {
	storage, err := excellent.OpenStorage(f.driver, f.dsn)
	if err != nil {
		return nil, newExitError(ExitCodeInputError, ErrMsgStorageFailed, err)
	}
	return storage, nil
}

func (c *cli) newSaveCmd() *cobra.Command {
	var (
		flags        storageFlags
		templatePath string
	)

	cmd := &cobra.Command{
		Use:   CmdNameSave + " <name> [template]",
		Short: "Save a new version of a template translation",
		Example: `  excellent save welcome 'Hi @contact.first_name' --dsn templates.db
  excellent save welcome -t welcome.fra.txt --language fra --dsn templates.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := templateSource(args[1:], templatePath, c.stdin)
			if err != nil {
				return err
			}

			storage, err := flags.open()
			if err != nil {
				return err
			}
			defer storage.Close()

			tmpl := &excellent.StoredTemplate{Name: args[0], Language: flags.language, Source: source}
			if err := storage.Save(cmd.Context(), tmpl); err != nil {
				return newExitError(ExitCodeError, ErrMsgStorageFailed, err)
			}
			fmt.Fprintf(c.stdout, FmtSavedLine, tmpl.Name, tmpl.Language, tmpl.Version)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&templatePath, FlagTemplate, FlagTemplateShort, "", `Template file (use "-" for stdin)`)
	return cmd
}

func (c *cli) newListCmd() *cobra.Command {
	var (
		flags  storageFlags
		prefix string
		format string
	)

	cmd := &cobra.Command{
		Use:   CmdNameList,
		Short: "List stored templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			storage, err := flags.open()
			if err != nil {
				return err
			}
			defer storage.Close()

			language := flags.language
			if !cmd.Flags().Changed(FlagLanguage) {
				language = ""
			}
			templates, err := storage.List(cmd.Context(), &excellent.TemplateQuery{NamePrefix: prefix, Language: language})
			if err != nil {
				return newExitError(ExitCodeError, ErrMsgStorageFailed, err)
			}

			if format == OutputFormatJSON {
				if templates == nil {
					templates = []*excellent.StoredTemplate{}
				}
				return c.writeJSON(templates)
			}
			for _, tmpl := range templates {
				fmt.Fprintf(c.stdout, FmtTemplateLine, tmpl.Name, tmpl.Language, tmpl.Version)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&prefix, FlagPrefix, "", "Only list names starting with this prefix")
	cmd.Flags().StringVarP(&format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "Output format: text, json")
	return cmd
}
