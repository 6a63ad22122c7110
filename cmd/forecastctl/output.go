package main

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

var metricsHeader = []string{"Model", "Horizon", "Steps", "MAE", "RMSE", "MAPE %", "R²", "Train ms"}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func fmtOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func metricsRow(r *models.ModelResult) []string {
	return []string{
		string(r.Metadata.Type),
		strconv.Itoa(r.Metadata.Horizon),
		strconv.Itoa(len(r.Forecast)),
		fmtFloat(r.Metrics.MAE),
		fmtFloat(r.Metrics.RMSE),
		fmtFloat(r.Metrics.MAPE),
		fmtOptional(r.Metrics.R2),
		strconv.FormatInt(r.Metadata.TrainingDuration, 10),
	}
}

// bestByRMSE returns the index of the lowest-RMSE result, or -1.
func bestByRMSE(results []*models.ModelResult) int {
	best := -1
	for i, r := range results {
		if best < 0 || r.Metrics.RMSE < results[best].Metrics.RMSE {
			best = i
		}
	}
	return best
}

// writeMetricsTable highlights the best model when more than one is shown.
func writeMetricsTable(w io.Writer, results []*models.ModelResult) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header(metricsHeader)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	best := -1
	if len(results) > 1 {
		best = bestByRMSE(results)
	}

	data := make([][]string, 0, len(results))
	for i, r := range results {
		row := metricsRow(r)
		if i == best {
			for j := range row {
				row[j] = green(row[j])
			}
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeMetricsCSV(w io.Writer, results []*models.ModelResult) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(metricsHeader))
	for i, h := range metricsHeader {
		header[i] = strings.ToLower(strings.NewReplacer(" %", "", "²", "2", " ", "_").Replace(h))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(metricsRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeInfoTable(w io.Writer, info models.DatasetInfo) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	yes := func(b bool) string {
		if b {
			return color.GreenString("yes")
		}
		return color.YellowString("no")
	}

	table.Header([]string{"Field", "Value"})
	data := [][]string{
		{"File", info.Filename},
		{"Rows", strconv.Itoa(info.RowCount)},
		{"Start", info.StartDate},
		{"End", info.EndDate},
		{"Frequency", info.Frequency},
		{"Columns", strings.Join(info.Columns, ", ")},
		{"Missing values", strconv.Itoa(info.MissingValues)},
		{"Load", yes(info.HasLoad)},
		{"Temperature", yes(info.HasTemperature)},
		{"Humidity", yes(info.HasHumidity)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
