package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ludo-technologies/clumpscn/domain"
)

// DataClumpFormatterImpl implements the DataClumpOutputFormatter interface
type DataClumpFormatterImpl struct {
	utils *FormatUtils
}

// NewDataClumpFormatter creates a formatter whose text output is colored on terminals
func NewDataClumpFormatter() *DataClumpFormatterImpl {
	return &DataClumpFormatterImpl{utils: NewFormatUtils()}
}

// NewPlainDataClumpFormatter creates a formatter that never emits colors
func NewPlainDataClumpFormatter() *DataClumpFormatterImpl {
	return &DataClumpFormatterImpl{utils: NewPlainFormatUtils()}
}

// Format formats the response according to the specified format
func (f *DataClumpFormatterImpl) Format(response *domain.DataClumpResponse, format domain.OutputFormat) (string, error) {
	if response == nil || response.Report == nil {
		return "", domain.NewOutputError("empty detection response", nil)
	}

	switch format {
	case domain.OutputFormatText, "":
		return f.formatText(response)
	case domain.OutputFormatJSON:
		return EncodeJSON(response.Report)
	case domain.OutputFormatYAML:
		return EncodeYAML(response.Report)
	case domain.OutputFormatCSV:
		return f.formatCSV(response)
	default:
		return "", domain.NewUnsupportedFormatError(string(format))
	}
}

// Write writes the formatted output to the writer
func (f *DataClumpFormatterImpl) Write(response *domain.DataClumpResponse, format domain.OutputFormat, writer io.Writer) error {
	output, err := f.Format(response, format)
	if err != nil {
		return err
	}
	if format == domain.OutputFormatJSON && !strings.HasSuffix(output, "\n") {
		output += "\n"
	}

	if _, err := io.WriteString(writer, output); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

// orderedClumps returns the report clumps in response key order
func orderedClumps(response *domain.DataClumpResponse) []*domain.DataClump {
	keys := response.SortedKeys
	if len(keys) != len(response.Report.DataClumps) {
		keys = make([]string, 0, len(response.Report.DataClumps))
		for key := range response.Report.DataClumps {
			keys = append(keys, key)
		}
		sort.Strings(keys)
	}

	clumps := make([]*domain.DataClump, 0, len(keys))
	for _, key := range keys {
		if clump, ok := response.Report.DataClumps[key]; ok {
			clumps = append(clumps, clump)
		}
	}
	return clumps
}

// variableNames lists the shared source variables of a clump in key order
func variableNames(clump *domain.DataClump) []string {
	keys := make([]string, 0, len(clump.DataClumpData))
	for key := range clump.DataClumpData {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = clump.DataClumpData[key].Name
	}
	return names
}

// endpoint renders one side of a clump as Class or Class.method
func endpoint(className string, methodName *string) string {
	if methodName == nil {
		return className
	}
	return className + "." + *methodName
}

func shortType(kind domain.DataClumpType) string {
	switch kind {
	case domain.FieldsToFieldsDataClump:
		return "fields-fields"
	case domain.ParametersToParametersDataClump:
		return "params-params"
	case domain.ParametersToFieldsDataClump:
		return "params-fields"
	default:
		return string(kind)
	}
}

func (f *DataClumpFormatterImpl) formatText(response *domain.DataClumpResponse) (string, error) {
	var builder strings.Builder
	report := response.Report
	summary := report.ReportSummary

	builder.WriteString(f.utils.FormatMainHeader("Data Clump Detection Report"))

	builder.WriteString(f.utils.FormatSectionHeader("Summary"))
	builder.WriteString(f.utils.FormatLabel("Data Clumps", summary.AmountDataClumps))
	builder.WriteString(f.utils.FormatLabel("Fields to Fields", summary.FieldsToFieldsDataClump))
	builder.WriteString(f.utils.FormatLabel("Parameters to Parameters", summary.ParametersToParametersDataClump))
	builder.WriteString(f.utils.FormatLabel("Parameters to Fields", summary.ParametersToFieldsDataClump))
	builder.WriteString(f.utils.FormatLabel("Files Affected", summary.AmountFilesWithDataClumps))
	builder.WriteString(f.utils.FormatLabel("Classes Affected", summary.AmountClassesOrInterfacesWithDataClumps))
	builder.WriteString(f.utils.FormatLabel("Methods Affected", summary.AmountMethodsWithDataClumps))
	if mean, ok := summary.Additional["probability_mean"].(float64); ok {
		builder.WriteString(f.utils.FormatLabel("Mean Probability", f.utils.FormatProbability(mean)))
	}
	builder.WriteString(f.utils.FormatSectionSeparator())

	info := report.ProjectInfo
	builder.WriteString(f.utils.FormatSectionHeader("Project"))
	builder.WriteString(f.utils.FormatLabel("Files", info.NumberOfFiles))
	builder.WriteString(f.utils.FormatLabel("Classes and Interfaces", info.NumberOfClassesOrInterfaces))
	builder.WriteString(f.utils.FormatLabel("Methods", info.NumberOfMethods))
	builder.WriteString(f.utils.FormatLabel("Data Fields", info.NumberOfDataFields))
	builder.WriteString(f.utils.FormatLabel("Method Parameters", info.NumberOfMethodParameters))
	if info.ProjectCommitHash != nil {
		builder.WriteString(f.utils.FormatLabel("Commit", *info.ProjectCommitHash))
	}
	builder.WriteString(f.utils.FormatSectionSeparator())

	clumps := orderedClumps(response)
	if len(clumps) > 0 {
		builder.WriteString(f.utils.FormatSectionHeader("Data Clumps"))
		if err := f.writeClumpTable(&builder, clumps); err != nil {
			return "", err
		}
		builder.WriteString(f.utils.FormatSectionSeparator())
	}

	builder.WriteString(f.utils.FormatWarningsSection(response.Warnings))
	builder.WriteString(f.utils.FormatLabel("Duration", f.utils.FormatDuration(response.DurationMs)))

	return builder.String(), nil
}

func (f *DataClumpFormatterImpl) writeClumpTable(w io.Writer, clumps []*domain.DataClump) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header([]string{"Type", "From", "To", "Shared", "Probability", "Level"})
	for _, clump := range clumps {
		row := []string{
			shortType(clump.DataClumpType),
			endpoint(clump.FromClassOrInterfaceName, clump.FromMethodName),
			endpoint(clump.ToClassOrInterfaceName, clump.ToMethodName),
			strings.Join(variableNames(clump), ", "),
			f.utils.FormatProbability(clump.Probability),
			f.utils.FormatProbabilityLevel(f.utils.ClassifyProbability(clump.Probability)),
		}
		if err := table.Append(row); err != nil {
			return domain.NewOutputError("failed to build table", err)
		}
	}
	if err := table.Render(); err != nil {
		return domain.NewOutputError("failed to render table", err)
	}
	return nil
}

func (f *DataClumpFormatterImpl) formatCSV(response *domain.DataClumpResponse) (string, error) {
	var builder strings.Builder
	writer := csv.NewWriter(&builder)

	header := []string{
		"key", "data_clump_type", "probability",
		"from_file_path", "from_class_or_interface_key", "from_method_key",
		"to_file_path", "to_class_or_interface_key", "to_method_key",
		"variables",
	}
	if err := writer.Write(header); err != nil {
		return "", domain.NewOutputError("failed to write CSV header", err)
	}

	for _, clump := range orderedClumps(response) {
		record := []string{
			clump.Key,
			string(clump.DataClumpType),
			strconv.FormatFloat(clump.Probability, 'f', 4, 64),
			clump.FromFilePath,
			clump.FromClassOrInterfaceKey,
			optional(clump.FromMethodKey),
			clump.ToFilePath,
			clump.ToClassOrInterfaceKey,
			optional(clump.ToMethodKey),
			strings.Join(variableNames(clump), ";"),
		}
		if err := writer.Write(record); err != nil {
			return "", domain.NewOutputError(fmt.Sprintf("failed to write CSV record %s", clump.Key), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", domain.NewOutputError("failed to flush CSV", err)
	}
	return builder.String(), nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
