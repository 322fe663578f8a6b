package tui

import (
	"context"

	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/report"
	"github.com/Veraticus/payee-flow/internal/tui/themes"
)

// Source is the report the viewer displays. *report.PayeeReport satisfies it.
type Source interface {
	Refresh(ctx context.Context, window model.DateRange, ignoreFuture bool) error
	Document(key model.SortKey, title, chartRef string) report.Document
}

// Config holds TUI configuration.
type Config struct {
	Theme        themes.Theme
	Source       Source
	Window       model.DateRange
	Title        string
	ChartRef     string
	SortKey      model.SortKey
	Width        int
	Height       int
	IgnoreFuture bool
	AltScreen    bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Title:     "Payees",
		SortKey:   model.SortByDifference,
		Width:     80,
		Height:    24,
		AltScreen: true,
	}
}

// WithSource sets the report to display.
func WithSource(source Source) Option {
	return func(c *Config) {
		c.Source = source
	}
}

// WithWindow sets the window used when the user refreshes.
func WithWindow(window model.DateRange, ignoreFuture bool) Option {
	return func(c *Config) {
		c.Window = window
		c.IgnoreFuture = ignoreFuture
	}
}

// WithTitle sets the report title and chart reference.
func WithTitle(title, chartRef string) Option {
	return func(c *Config) {
		if title != "" {
			c.Title = title
		}
		c.ChartRef = chartRef
	}
}

// WithSortKey sets the initial sort order.
func WithSortKey(key model.SortKey) Option {
	return func(c *Config) {
		if key.Valid() {
			c.SortKey = key
		}
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithTheme sets the TUI theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithoutAltScreen keeps output in the main terminal buffer.
func WithoutAltScreen() Option {
	return func(c *Config) {
		c.AltScreen = false
	}
}
