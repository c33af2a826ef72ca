package report

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/collab"
	"github.com/KaramelBytes/tabula-cli/internal/dataset"
	"github.com/KaramelBytes/tabula-cli/internal/utils"
)

// DefaultFilename is the export target when none is configured.
const DefaultFilename = "data_report.json"

// ErrNoData is returned when there is nothing to export.
var ErrNoData = errors.New("no data to export")

// ChartSettings records the chart selection at export time.
type ChartSettings struct {
	Type        string `json:"type"`
	Column      string `json:"column"`
	Aggregation string `json:"aggregation"`
}

// Report is the exported session document.
type Report struct {
	Data          *dataset.Dataset `json:"data"`
	Chart         ChartSettings    `json:"chart"`
	Filters       []string         `json:"filters"`
	Insights      string           `json:"insights"`
	Timestamp     string           `json:"timestamp"`
	Collaborators []string         `json:"collaborators"`
	Comments      []collab.Comment `json:"comments"`
	Fingerprint   string           `json:"fingerprint"`
}

// Input gathers what a report is built from.
type Input struct {
	Data     *dataset.Dataset
	Chart    ChartSettings
	Filters  []string
	Insights []analysis.InsightReport
	Board    *collab.Board
	Now      time.Time
}

// Build assembles a report. The timestamp is UTC with millisecond precision.
func Build(in Input) (*Report, error) {
	if in.Data == nil {
		return nil, ErrNoData
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	r := &Report{
		Data:          in.Data,
		Chart:         in.Chart,
		Filters:       append([]string{}, in.Filters...),
		Insights:      analysis.InsightText(in.Insights),
		Timestamp:     now.UTC().Format("2006-01-02T15:04:05.000Z"),
		Collaborators: []string{},
		Comments:      []collab.Comment{},
		Fingerprint:   strconv.FormatUint(dataset.Fingerprint(in.Data), 16),
	}
	if in.Board != nil {
		r.Collaborators = append(r.Collaborators, in.Board.Collaborators()...)
		r.Comments = append(r.Comments, in.Board.Comments()...)
	}
	return r, nil
}

// Write saves the report as indented JSON. An empty path means DefaultFilename.
func Write(path string, r *Report) (string, error) {
	if path == "" {
		path = DefaultFilename
	}
	if err := utils.WriteJSON(path, r); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
