package main

import (
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// templateSource returns the template from the positional arguments or the
// --template flag
func templateSource(args []string, templatePath string, stdin io.Reader) (string, error) {
	if len(args) > 0 && templatePath != "" {
		return "", newExitError(ExitCodeUsageError, ErrMsgTemplateConflict, nil)
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if templatePath == "" {
		return "", newExitError(ExitCodeUsageError, ErrMsgMissingTemplate, nil)
	}

	data, err := readInput(templatePath, stdin)
	if err != nil {
		return "", newExitError(ExitCodeInputError, ErrMsgReadFileFailed, err)
	}
	return string(data), nil
}

// loadContextFile decodes context variables from YAML or JSON. An empty path
// yields no variables.
func loadContextFile(path string, stdin io.Reader) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}

	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}

	vars := map[string]any{}
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, err
	}
	return vars, nil
}
