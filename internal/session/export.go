package session

import (
	"context"
	"time"

	"github.com/KaramelBytes/tabula-cli/internal/report"
	"github.com/KaramelBytes/tabula-cli/internal/sample"
)

// Report assembles the export document from the current state.
func (s *Session) Report(now time.Time) (*report.Report, error) {
	ds, err := s.Snapshot()
	if err != nil {
		return nil, ErrNoData
	}
	st := s.Settings()
	column := ""
	if st.Column >= 0 && st.Column < ds.Width() {
		column = ds.Headers[st.Column]
	}
	insights, _ := s.Insights()
	return report.Build(report.Input{
		Data: ds,
		Chart: report.ChartSettings{
			Type:        string(st.ChartType),
			Column:      column,
			Aggregation: string(st.Mode),
		},
		Filters:  s.FilterDescriptions(),
		Insights: insights,
		Board:    s.board,
		Now:      now,
	})
}

// Export writes the report. An empty path uses the configured export path.
func (s *Session) Export(path string) (string, error) {
	r, err := s.Report(time.Now())
	if err != nil {
		return "", err
	}
	if path == "" {
		path = s.Settings().ExportPath
	}
	out, err := report.Write(path, r)
	if err != nil {
		return "", err
	}
	s.log.Info("report exported", "path", out)
	return out, nil
}

// LoadSample imports generated example data.
func (s *Session) LoadSample(ctx context.Context, opt sample.Options) error {
	ds, err := sample.Dataset(opt)
	if err != nil {
		return err
	}
	s.Import(ctx, "sample", ds)
	return nil
}
