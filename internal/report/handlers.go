// Package report serves the loaded table as a small read-only JSON API.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/EmpoweredVote/county-health-etl/internal/logging"
	"github.com/EmpoweredVote/county-health-etl/internal/merge"
	"github.com/EmpoweredVote/county-health-etl/internal/records"
	"github.com/EmpoweredVote/county-health-etl/internal/sink"
	"github.com/go-chi/chi/v5"
)

// MaxLimit caps /counties page size.
const MaxLimit = 1000

// Reader is the query surface of the loaded table. *sink.Store satisfies it.
type Reader interface {
	Verify(ctx context.Context) ([]records.QuartileSummary, error)
	Counties(ctx context.Context, f sink.CountyFilter) ([]records.EnrichedRecord, error)
	County(ctx context.Context, fips string) (records.EnrichedRecord, error)
}

// Handlers binds HTTP endpoints to a Reader.
type Handlers struct {
	reader Reader
	log    *logging.Logger
}

func NewHandlers(reader Reader, log *logging.Logger) *Handlers {
	return &Handlers{reader: reader, log: log.With("report")}
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok\n"))
}

// Summary returns the per-quartile verification aggregate.
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reader.Verify(r.Context())
	if err != nil {
		h.log.Errorf("summary: %v", err)
		http.Error(w, "Failed to fetch summary", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []records.QuartileSummary{}
	}
	writeJSON(w, rows)
}

// ListCounties returns loaded rows, optionally filtered by quartile, group
// and state.
func (h *Handlers) ListCounties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := sink.CountyFilter{
		Quartile: q.Get("quartile"),
		Group:    q.Get("group"),
		State:    q.Get("state"),
	}

	if f.Quartile != "" {
		label, ok := quartileLabel(f.Quartile)
		if !ok {
			http.Error(w, "Invalid quartile", http.StatusBadRequest)
			return
		}
		f.Quartile = label
	}
	if f.Group != "" {
		label, ok := groupLabel(f.Group)
		if !ok {
			http.Error(w, "Invalid income group", http.StatusBadRequest)
			return
		}
		f.Group = label
	}

	var err error
	if f.Limit, err = intParam(q.Get("limit"), 100); err != nil || f.Limit < 1 {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset, err = intParam(q.Get("offset"), 0); err != nil || f.Offset < 0 {
		http.Error(w, "Invalid offset", http.StatusBadRequest)
		return
	}

	rows, err := h.reader.Counties(r.Context(), f)
	if err != nil {
		h.log.Errorf("list counties: %v", err)
		http.Error(w, "Failed to fetch counties", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []records.EnrichedRecord{}
	}
	writeJSON(w, rows)
}

// GetCounty returns a single county by FIPS code. Short codes are padded.
func (h *Handlers) GetCounty(w http.ResponseWriter, r *http.Request) {
	fips, ok := records.NormalizeGeoKey(chi.URLParam(r, "fips"))
	if !ok {
		http.Error(w, "Invalid fips", http.StatusBadRequest)
		return
	}

	row, err := h.reader.County(r.Context(), fips)
	if errors.Is(err, sink.ErrCountyNotFound) {
		http.Error(w, "County not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Errorf("get county %s: %v", fips, err)
		http.Error(w, "Failed to fetch county", http.StatusInternalServerError)
		return
	}
	writeJSON(w, row)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// quartileLabel accepts a full label or its "Q1".."Q4" prefix.
func quartileLabel(s string) (string, bool) {
	for _, label := range merge.QuartileLabels {
		if strings.EqualFold(s, label) || strings.EqualFold(s, label[:2]) {
			return label, true
		}
	}
	return "", false
}

// groupLabel accepts a full label or its leading word ("low", "upper-mid").
func groupLabel(s string) (string, bool) {
	for _, label := range merge.Groups {
		short, _, _ := strings.Cut(label, " ")
		if strings.EqualFold(s, label) || strings.EqualFold(s, short) {
			return label, true
		}
	}
	return "", false
}
