package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/clumpscn/domain"
)

// EncodeJSON returns an indented JSON string for the given value.
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", domain.NewOutputError("failed to marshal JSON", err)
	}
	return string(data), nil
}

// WriteJSON writes indented JSON for the given value to the writer.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// EncodeYAML returns a YAML string for the given value.
func EncodeYAML(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", domain.NewOutputError("failed to marshal YAML", err)
	}
	return string(data), nil
}

// WriteYAML writes YAML for the given value to the writer.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode YAML", err)
	}
	return nil
}

// Standard formatting constants
const (
	HeaderWidth    = 40
	LabelWidth     = 25
	SectionPadding = 2
)

// ProbabilityLevel buckets clump probabilities for display
type ProbabilityLevel string

const (
	ProbabilityHigh   ProbabilityLevel = "High"
	ProbabilityMedium ProbabilityLevel = "Medium"
	ProbabilityLow    ProbabilityLevel = "Low"
)

// FormatUtils provides shared formatting utilities
type FormatUtils struct {
	colored bool
}

// NewFormatUtils creates a format utilities instance. Colors follow
// fatih/color's terminal detection.
func NewFormatUtils() *FormatUtils {
	return &FormatUtils{colored: !color.NoColor}
}

// NewPlainFormatUtils never emits ANSI sequences
func NewPlainFormatUtils() *FormatUtils {
	return &FormatUtils{}
}

func (f *FormatUtils) paint(s string, attrs ...color.Attribute) string {
	if !f.colored {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// FormatMainHeader creates a standardized main header
func (f *FormatUtils) FormatMainHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(f.paint(title, color.Bold) + "\n")
	builder.WriteString(strings.Repeat("=", HeaderWidth) + "\n\n")
	return builder.String()
}

// FormatSectionHeader creates a standardized section header
func (f *FormatUtils) FormatSectionHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(f.paint(strings.ToUpper(title), color.Bold, color.FgCyan) + "\n")
	builder.WriteString(strings.Repeat("-", len(title)) + "\n")
	return builder.String()
}

// FormatSectionSeparator creates a section separator
func (f *FormatUtils) FormatSectionSeparator() string {
	return "\n"
}

// FormatLabel creates a consistently formatted label with right alignment
func (f *FormatUtils) FormatLabel(label string, value interface{}) string {
	padding := LabelWidth - len(label)
	if padding < 0 {
		padding = 0
	}
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", padding), label, value)
}

// FormatLabelWithIndent creates a formatted label with specific indentation
func (f *FormatUtils) FormatLabelWithIndent(indent int, label string, value interface{}) string {
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", indent), label, value)
}

// FormatProbability renders a probability as a percentage
func (f *FormatUtils) FormatProbability(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// FormatDuration formats duration in milliseconds consistently
func (f *FormatUtils) FormatDuration(durationMs int64) string {
	return fmt.Sprintf("%dms", durationMs)
}

// ClassifyProbability buckets a clump probability
func (f *FormatUtils) ClassifyProbability(p float64) ProbabilityLevel {
	switch {
	case p >= 0.9:
		return ProbabilityHigh
	case p >= 0.6:
		return ProbabilityMedium
	default:
		return ProbabilityLow
	}
}

// FormatProbabilityLevel renders the bucket in its color
func (f *FormatUtils) FormatProbabilityLevel(level ProbabilityLevel) string {
	switch level {
	case ProbabilityHigh:
		return f.paint(string(level), color.FgRed)
	case ProbabilityMedium:
		return f.paint(string(level), color.FgYellow)
	default:
		return f.paint(string(level), color.FgGreen)
	}
}

// FormatWarningsSection creates a standardized warnings section
func (f *FormatUtils) FormatWarningsSection(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(f.FormatSectionHeader("Warnings"))
	for _, warning := range warnings {
		builder.WriteString(strings.Repeat(" ", SectionPadding) + f.paint("!", color.FgYellow) + " " + warning + "\n")
	}
	builder.WriteString(f.FormatSectionSeparator())
	return builder.String()
}
