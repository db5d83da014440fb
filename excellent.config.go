package excellent

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Config is the file form of evaluator and context settings.
//
//	trigger: "@"
//	max_depth: 64
//	max_expression_length: 4096
//	libraries: [text, math, logical, date, custom]
//	timezone: Africa/Kigali
//	date_style: day_first
type Config struct {
	// Trigger is the expression trigger character. Default: "@"
	Trigger string `yaml:"trigger,omitempty" json:"trigger,omitempty"`

	// MaxDepth bounds expression nesting; 0 disables the limit.
	MaxDepth *int `yaml:"max_depth,omitempty" json:"max_depth,omitempty"`

	// MaxExpressionLength bounds the length of one expression; 0 disables the limit.
	MaxExpressionLength *int `yaml:"max_expression_length,omitempty" json:"max_expression_length,omitempty"`

	// Libraries names the built-in libraries to register, in order.
	// Empty means all of them.
	Libraries []string `yaml:"libraries,omitempty" json:"libraries,omitempty"`

	// Timezone is an IANA location name used for evaluation contexts.
	Timezone string `yaml:"timezone,omitempty" json:"timezone,omitempty"`

	// DateStyle is day_first or month_first.
	DateStyle string `yaml:"date_style,omitempty" json:"date_style,omitempty"`
}

// LoadConfig reads a YAML configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigRead, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration. Unknown keys are rejected. JSON is
// accepted as YAML.
func ParseConfig(data []byte) (*Config, error) {
	config := &Config{}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, NewConfigError(ErrMsgConfigParse, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks every field without building anything
func (c *Config) Validate() error {
	if c.Trigger != "" {
		if utf8.RuneCountInString(c.Trigger) != 1 {
			return NewConfigError(ErrMsgTriggerNotSingleRune, nil)
		}
		r, _ := utf8.DecodeRuneInString(c.Trigger)
		if err := validateTrigger(r); err != nil {
			return err
		}
	}
	if c.MaxDepth != nil && *c.MaxDepth < 0 {
		return NewConfigError(ErrMsgInvalidMaxDepth, nil)
	}
	if c.MaxExpressionLength != nil && *c.MaxExpressionLength < 0 {
		return NewConfigError(ErrMsgInvalidMaxLength, nil)
	}
	if _, err := LibrariesByName(c.Libraries...); err != nil {
		return err
	}
	if _, err := c.location(); err != nil {
		return err
	}
	_, err := ParseDateStyle(c.DateStyle)
	return err
}

// Options converts the evaluator settings into Options
func (c *Config) Options() ([]Option, error) {
	var opts []Option

	if c.Trigger != "" {
		r, _ := utf8.DecodeRuneInString(c.Trigger)
		opts = append(opts, WithTrigger(r))
	}
	if c.MaxDepth != nil {
		opts = append(opts, WithMaxDepth(*c.MaxDepth))
	}
	if c.MaxExpressionLength != nil {
		opts = append(opts, WithMaxExpressionLength(*c.MaxExpressionLength))
	}
	if len(c.Libraries) > 0 {
		libs, err := LibrariesByName(c.Libraries...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLibraries(libs...))
	}
	return opts, nil
}

// ContextOptions converts the locale settings into ContextOptions
func (c *Config) ContextOptions() ([]ContextOption, error) {
	location, err := c.location()
	if err != nil {
		return nil, err
	}
	style, err := ParseDateStyle(c.DateStyle)
	if err != nil {
		return nil, err
	}
	return []ContextOption{WithTimezone(location), WithDateStyle(style)}, nil
}

func (c *Config) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, NewConfigError(ErrMsgInvalidTimezone, err)
	}
	return location, nil
}
