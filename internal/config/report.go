package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/spf13/viper"
)

// Date layouts accepted for explicit report bounds.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

// ReportSettings selects what the payee report covers and how it is shown.
type ReportSettings struct {
	Period       string
	From         string
	To           string
	Sort         string
	Title        string
	ChartOutput  string
	IgnoreFuture bool
	WithTime     bool
}

// SetDefaults registers default values for every key the application reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("report.period", model.PeriodAllTime)
	v.SetDefault("report.sort", model.SortByDifference.String())
	v.SetDefault("report.title", "Payees")
	v.SetDefault("report.ignore_future", true)
	v.SetDefault("report.with_time", false)
	v.SetDefault("server.addr", "127.0.0.1:8484")
	v.SetDefault("sheets.token_file", DefaultConfigDir()+"/sheets-token.json")
	v.SetDefault("simplefin.state_file", DefaultDataDir()+"/simplefin_auth.json")
}

// LoadReportSettings reads report.* keys.
func LoadReportSettings(v *viper.Viper) ReportSettings {
	return ReportSettings{
		Period:       v.GetString("report.period"),
		From:         v.GetString("report.from"),
		To:           v.GetString("report.to"),
		Sort:         v.GetString("report.sort"),
		Title:        v.GetString("report.title"),
		ChartOutput:  v.GetString("report.chart_output"),
		IgnoreFuture: v.GetBool("report.ignore_future"),
		WithTime:     v.GetBool("report.with_time"),
	}
}

// SortKey returns the configured sort key, falling back to difference.
func (s ReportSettings) SortKey() model.SortKey {
	return model.ParseSortKey(s.Sort)
}

// Window resolves the reporting window. Explicit From/To bounds take
// precedence over the named period; a missing bound is taken from the period.
func (s ReportSettings) Window(now time.Time) (model.DateRange, error) {
	window, err := model.PeriodRange(s.Period, now)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("%w: %w", common.ErrInvalidDateRange, err)
	}
	window.WithTime = s.WithTime

	if s.From == "" && s.To == "" {
		return window, nil
	}

	if s.From != "" {
		if window.Start, err = ParseDate(s.From, now.Location()); err != nil {
			return model.DateRange{}, err
		}
	}
	if s.To != "" {
		if window.End, err = ParseDate(s.To, now.Location()); err != nil {
			return model.DateRange{}, err
		}
	}
	window.Title = "Custom"
	return window, nil
}

// ParseDate parses a report bound in one of the accepted layouts.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse date %q (use YYYY-MM-DD or YYYY-MM-DD HH:MM)", common.ErrInvalidDateRange, s)
}
