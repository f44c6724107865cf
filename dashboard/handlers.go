package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"airquality-dashboard/models"
	"airquality-dashboard/services"
)

const (
	defaultRecordLimit = 100
	maxRecordLimit     = 1000
)

var templateFuncs = template.FuncMap{
	"num": func(n models.Number) string {
		if !n.Valid() {
			return "–"
		}
		return strconv.FormatFloat(float64(n), 'f', 2, 64)
	},
	"pct": func(v, peak int) string {
		if peak <= 0 {
			return "0"
		}
		return strconv.FormatFloat(float64(v)*100/float64(peak), 'f', 1, 64)
	},
	"peak": func(counts []int) int {
		p := 0
		for _, c := range counts {
			if c > p {
				p = c
			}
		}
		return p
	},
	"heat": func(n models.Number) template.CSS {
		if !n.Valid() {
			return template.CSS("background:#eee")
		}
		v := math.Max(-1, math.Min(1, float64(n)))
		if v >= 0 {
			return template.CSS(fmt.Sprintf("background:rgba(180,4,38,%.2f)", v))
		}
		return template.CSS(fmt.Sprintf("background:rgba(59,76,192,%.2f)", -v))
	},
	// at looks up a mean by column; an absent column renders as missing, not zero.
	"at": func(means map[string]models.Number, column string) models.Number {
		if v, ok := means[column]; ok {
			return v
		}
		return models.Number(math.NaN())
	},
	"month": func(m time.Month) string { return m.String()[:3] },
	"ts":    func(t time.Time) string { return t.Format("2006-01-02 15:04") },
}

// statusFor maps load and derivation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrFileNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("[dashboard] Rendering halted: %v", err)
	http.Error(w, err.Error(), statusFor(err))
}

func (s *Server) serveIndex(w http.ResponseWriter, req *http.Request) {
	_, report, err := s.currentReport()
	if err != nil {
		s.fail(w, err)
		return
	}

	// Render into a buffer so a template error never leaves a partial page.
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, report); err != nil {
		s.fail(w, fmt.Errorf("dashboard: render: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) serveReport(w http.ResponseWriter, req *http.Request) {
	_, report, err := s.currentReport()
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, report)
}

type recordView struct {
	Timestamp    time.Time                `json:"timestamp"`
	Values       map[string]models.Number `json:"values"`
	Labels       map[string]string        `json:"labels,omitempty"`
	TimeCategory models.TimeCategory      `json:"time_category"`
	Season       models.Season            `json:"season"`
}

type recordsPage struct {
	Total   int          `json:"total"`
	Offset  int          `json:"offset"`
	Limit   int          `json:"limit"`
	Records []recordView `json:"records"`
}

func (s *Server) serveRecords(w http.ResponseWriter, req *http.Request) {
	limit, err := queryInt(req, "limit", defaultRecordLimit)
	if err != nil || limit < 1 {
		http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
		return
	}
	if limit > maxRecordLimit {
		limit = maxRecordLimit
	}
	offset, err := queryInt(req, "offset", 0)
	if err != nil || offset < 0 {
		http.Error(w, "offset must be a non-negative integer", http.StatusBadRequest)
		return
	}

	table, err := s.tables.Get(s.datasetPath)
	if err != nil {
		s.metrics.loadFailures.Inc()
		s.fail(w, err)
		return
	}

	page := recordsPage{Total: table.Len(), Offset: offset, Limit: limit, Records: []recordView{}}
	for i := offset; i < table.Len() && i < offset+limit; i++ {
		r := table.Records[i]
		values := make(map[string]models.Number, len(r.Values))
		for k, v := range r.Values {
			values[k] = models.Number(v)
		}
		page.Records = append(page.Records, recordView{
			Timestamp:    r.Timestamp,
			Values:       values,
			Labels:       r.Labels,
			TimeCategory: r.TimeCategory,
			Season:       r.Season,
		})
	}
	s.writeJSON(w, page)
}

func (s *Server) serveHealth(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.fail(w, fmt.Errorf("dashboard: encode: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func queryInt(req *http.Request, key string, fallback int) (int, error) {
	raw := req.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
