package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/config"
	"github.com/Veraticus/payee-flow/internal/report"
	"github.com/Veraticus/payee-flow/internal/service"
)

// ReportHandler serves report endpoints.
type ReportHandler struct {
	ledger   service.LedgerReader
	clock    func() time.Time
	defaults config.ReportSettings
}

// NewReportHandler creates a handler over the given ledger.
func NewReportHandler(deps Dependencies) *ReportHandler {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ReportHandler{
		ledger:   deps.Ledger,
		clock:    clock,
		defaults: deps.Defaults,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// PayeeReport builds a fresh payee report for the query and returns it as JSON.
//
// Query parameters: period, from, to, sort, ignore_future, with_time, title, chart.
func (h *ReportHandler) PayeeReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := loggerFrom(ctx)

	settings, err := settingsFromQuery(h.defaults, r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	now := h.clock()
	window, err := settings.Window(now)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	// PayeeReport is not safe for concurrent use, so every request gets its own.
	rep := report.New(h.ledger, report.WithClock(h.clock), report.WithLogger(logger))
	if err := rep.Refresh(ctx, window, settings.IgnoreFuture); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, common.ErrCorruptDataset) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, r, status, err)
		return
	}

	doc := rep.Document(settings.SortKey(), settings.Title, settings.ChartOutput)
	writeJSON(w, r, http.StatusOK, doc)
}

func settingsFromQuery(defaults config.ReportSettings, q url.Values) (config.ReportSettings, error) {
	s := defaults

	if v := q.Get("period"); v != "" {
		s.Period = v
	}
	if v := q.Get("from"); v != "" {
		s.From = v
	}
	if v := q.Get("to"); v != "" {
		s.To = v
	}
	if v := q.Get("sort"); v != "" {
		s.Sort = v
	}
	if v := q.Get("title"); v != "" {
		s.Title = v
	}
	if v := q.Get("chart"); v != "" {
		s.ChartOutput = v
	}

	var err error
	if s.IgnoreFuture, err = boolParam(q, "ignore_future", s.IgnoreFuture); err != nil {
		return s, err
	}
	if s.WithTime, err = boolParam(q, "with_time", s.WithTime); err != nil {
		return s, err
	}
	return s, nil
}

func boolParam(q url.Values, name string, fallback bool) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s must be true or false", common.ErrInvalidConfig, name)
	}
	return b, nil
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	loggerFrom(r.Context()).Warn("request failed", "status", status, "error", err)
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		loggerFrom(r.Context()).Error("failed to encode response", "error", err)
	}
}
