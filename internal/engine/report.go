// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Supported report formats.
const (
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"
	ReportTOML ReportFormat = "toml"
)

// ErrInvalidReportFormat is the sentinel error wrapped by
// InvalidReportFormatError.
var ErrInvalidReportFormat = errors.New("invalid report format")

type (
	// ReportFormat selects the serialization of a report.
	ReportFormat string

	// InvalidReportFormatError is returned for an unknown report format.
	InvalidReportFormatError struct {
		Value string
	}

	// Report is the serialized form of Results.
	Report struct {
		RunID    string    `json:"run_id" yaml:"run_id" toml:"run_id"`
		ExitCode int       `json:"exit_code" yaml:"exit_code" toml:"exit_code"`
		Outcomes []Outcome `json:"outcomes" yaml:"outcomes" toml:"outcomes"`
	}
)

func (e *InvalidReportFormatError) Error() string {
	return fmt.Sprintf("invalid report format %q (valid: json, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidReportFormat for errors.Is.
func (e *InvalidReportFormatError) Unwrap() error { return ErrInvalidReportFormat }

// ReportFormatFromPath picks the format from the file extension.
func ReportFormatFromPath(path string) (ReportFormat, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "json":
		return ReportJSON, nil
	case "yaml", "yml":
		return ReportYAML, nil
	case "toml":
		return ReportTOML, nil
	default:
		return "", &InvalidReportFormatError{Value: ext}
	}
}

// Report returns the serializable form of the log.
func (r *Results) Report() Report {
	outcomes := r.Outcomes()
	if outcomes == nil {
		outcomes = []Outcome{}
	}
	return Report{RunID: r.runID, ExitCode: r.ExitCode(), Outcomes: outcomes}
}

// WriteReport serializes the log to w in format.
func (r *Results) WriteReport(w io.Writer, format ReportFormat) error {
	report := r.Report()
	switch format {
	case ReportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case ReportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case ReportTOML:
		return toml.NewEncoder(w).Encode(report)
	default:
		return &InvalidReportFormatError{Value: string(format)}
	}
}
