// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/makeprojects/makeprojects/internal/platform"
)

const (
	// RuntimeVirtual runs entry points in the embedded mvdan/sh interpreter.
	// Defined locally to avoid coupling config to internal/runtime.
	RuntimeVirtual RuntimeMode = "virtual"
	// RuntimeNative runs entry points in the host shell.
	RuntimeNative RuntimeMode = "native"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultRulesFile is the default per-directory rule file name.
	DefaultRulesFile RulesFileName = "build_rules.cue"
)

var (
	// ErrInvalidConfigRuntimeMode is returned when a config RuntimeMode value is not recognized.
	ErrInvalidConfigRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidRulesFileName is the sentinel error wrapped by InvalidRulesFileNameError.
	ErrInvalidRulesFileName = errors.New("invalid rules file name")
	// ErrInvalidConfigurationName is the sentinel error wrapped by InvalidConfigurationNameError.
	ErrInvalidConfigurationName = errors.New("invalid configuration name")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// RuntimeMode selects the default entry-point runtime.
	// The CLI converts it to runtime.Mode at the boundary.
	RuntimeMode string

	// InvalidConfigRuntimeModeError is returned when a config RuntimeMode value is not recognized.
	// It wraps ErrInvalidConfigRuntimeMode for errors.Is() compatibility.
	InvalidConfigRuntimeModeError struct {
		Value RuntimeMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// RulesFileName is the base name of the per-directory rule file.
	// A valid name is non-empty and contains no path separator.
	RulesFileName string

	// InvalidRulesFileNameError is returned when a RulesFileName is empty,
	// contains a path separator or cannot be created on Windows.
	InvalidRulesFileNameError struct {
		Value RulesFileName
	}

	// ConfigurationName is one build configuration (e.g. "Debug").
	ConfigurationName string

	// InvalidConfigurationNameError is returned when a ConfigurationName is
	// empty or whitespace-only.
	InvalidConfigurationNameError struct {
		Value ConfigurationName
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// RulesFile is the per-directory rule file name.
		RulesFile RulesFileName `json:"rules_file" mapstructure:"rules_file"`
		// DefaultRules is the path of the default rule file; empty searches
		// the standard locations and falls back to the builtin rules.
		DefaultRules string `json:"default_rules" mapstructure:"default_rules"`
		// Configurations are used when the command line names none.
		Configurations []ConfigurationName `json:"configurations" mapstructure:"configurations"`
		// Documentation registers the doxygen handler.
		Documentation bool `json:"documentation" mapstructure:"documentation"`
		// EntryPointRuntime is the runtime for entry points that do not pick one.
		EntryPointRuntime RuntimeMode `json:"entry_point_runtime" mapstructure:"entry_point_runtime"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Run holds defaults for build/clean/rebuild flags.
		Run RunConfig `json:"run" mapstructure:"run"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// RunConfig holds defaults for the run flags.
	RunConfig struct {
		// Recursive walks subdirectories.
		Recursive bool `json:"recursive" mapstructure:"recursive"`
		// Fatal stops at the first failure.
		Fatal bool `json:"fatal" mapstructure:"fatal"`
	}
)

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to RulesFile.IsValid(), each Configurations entry's IsValid(),
// EntryPointRuntime.IsValid() and UI.IsValid(). DefaultRules is checked
// when the file is loaded.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.RulesFile.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, name := range c.Configurations {
		if valid, fieldErrs := name.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.EntryPointRuntime.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// ConfigurationStrings returns Configurations as plain strings.
func (c Config) ConfigurationStrings() []string {
	out := make([]string, 0, len(c.Configurations))
	for _, name := range c.Configurations {
		out = append(out, string(name))
	}
	return out
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the RulesFileName.
func (n RulesFileName) String() string { return string(n) }

// IsValid returns whether the RulesFileName is a bare, portable file name.
func (n RulesFileName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(n)) == "" || strings.ContainsAny(string(n), `/\`) ||
		!platform.IsPortableFileName(string(n)) {
		return false, []error{&InvalidRulesFileNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRulesFileNameError.
func (e *InvalidRulesFileNameError) Error() string {
	return fmt.Sprintf("invalid rules file name %q: must be a non-empty, portable base name", e.Value)
}

// Unwrap returns ErrInvalidRulesFileName for errors.Is() compatibility.
func (e *InvalidRulesFileNameError) Unwrap() error { return ErrInvalidRulesFileName }

// String returns the string representation of the ConfigurationName.
func (n ConfigurationName) String() string { return string(n) }

// IsValid returns whether the ConfigurationName is non-empty.
func (n ConfigurationName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(n)) == "" {
		return false, []error{&InvalidConfigurationNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigurationNameError.
func (e *InvalidConfigurationNameError) Error() string {
	return fmt.Sprintf("invalid configuration name %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidConfigurationName for errors.Is() compatibility.
func (e *InvalidConfigurationNameError) Unwrap() error { return ErrInvalidConfigurationName }

// Error implements the error interface for InvalidConfigRuntimeModeError.
func (e *InvalidConfigRuntimeModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: virtual, native)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidConfigRuntimeModeError) Unwrap() error {
	return ErrInvalidConfigRuntimeMode
}

// String returns the string representation of the config RuntimeMode.
func (m RuntimeMode) String() string { return string(m) }

// IsValid returns whether the config RuntimeMode is one of the defined runtime modes,
// and a list of validation errors if it is not.
func (m RuntimeMode) IsValid() (bool, []error) {
	switch m {
	case RuntimeVirtual, RuntimeNative:
		return true, nil
	default:
		return false, []error{&InvalidConfigRuntimeModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RulesFile:         DefaultRulesFile,
		DefaultRules:      "",
		Configurations:    []ConfigurationName{},
		Documentation:     false,
		EntryPointRuntime: RuntimeVirtual,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Run: RunConfig{
			Recursive: false,
			Fatal:     false,
		},
	}
}
