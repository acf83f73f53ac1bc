package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"conto/internal/core"
	"conto/internal/export"
	"conto/internal/log"
	"conto/internal/report"
)

// Uploads above this size are rejected outright.
const maxUploadBytes = 20 << 20

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	filename, content, err := readUpload(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := s.importer.ImportFile(r.Context(), filename, content)
	if err != nil {
		fields := log.NewFields().WithRequestID(requestIDFrom(r.Context()))
		fields[log.FieldFilename] = filename
		s.structured.LogError(r.Context(), "Import failed", err, log.ComponentImport, log.OpImport, fields)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// readUpload accepts either a multipart "file" field or a raw body with
// a ?filename= hint.
func readUpload(r *http.Request) (string, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", "", fmt.Errorf("missing file field: %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", "", fmt.Errorf("read upload: %w", err)
		}
		return header.Filename, string(data), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", "", fmt.Errorf("read body: %w", err)
	}
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "upload"
	}
	return filename, string(data), nil
}

func (s *Server) handleLastImport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	meta, err := s.importer.LastUpload(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if meta == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no imports yet"})
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	txs := s.store.Transactions()
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"count":        len(txs),
	})
}

type updateTagRequest struct {
	ID  string `json:"id"`
	Tag string `json:"tag"`
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req updateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if req.ID == "" {
		writeBadRequest(w, "id is required")
		return
	}
	if err := s.settings.UpdateTag(r.Context(), req.ID, req.Tag); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	tx, _ := s.store.Find(req.ID)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rules, err := s.settings.Rules(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if rules == nil {
			rules = []core.CategoryRule{}
		}
		writeJSON(w, http.StatusOK, rules)
	case http.MethodPost:
		var rules []core.CategoryRule
		if err := json.NewDecoder(r.Body).Decode(&rules); err != nil {
			writeBadRequest(w, "invalid JSON body: "+err.Error())
			return
		}
		if err := s.settings.SaveRules(r.Context(), rules); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rules)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		prefs, err := s.settings.Preferences(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	case http.MethodPost:
		var prefs map[string]bool
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			writeBadRequest(w, "invalid JSON body: "+err.Error())
			return
		}
		if err := s.settings.SavePreferences(r.Context(), prefs); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleMonthlyReports(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.monthlyStats())
}

func (s *Server) monthlyStats() []report.PeriodStats {
	const key = "monthly"
	if stats, ok := s.monthlyCache.Get(key); ok {
		return stats
	}
	stats := report.MonthlyStats(s.store.Transactions())
	s.monthlyCache.Set(key, stats)
	return stats
}

type periodReportResponse struct {
	report.PeriodStats
	Comparison *report.Comparison `json:"comparison,omitempty"`
}

// handlePeriodReport serves one period: either ?year=&month= (with an
// optional ?compare=true against the previous month) or an inclusive
// ?from=&to= range of ISO dates.
func (s *Server) handlePeriodReport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()

	if q.Get("year") != "" || q.Get("month") != "" {
		year, err := strconv.Atoi(q.Get("year"))
		if err != nil {
			writeBadRequest(w, "invalid year: "+q.Get("year"))
			return
		}
		month, err := strconv.Atoi(q.Get("month"))
		if err != nil || month < 1 || month > 12 {
			writeBadRequest(w, "invalid month: "+q.Get("month"))
			return
		}

		resp := periodReportResponse{PeriodStats: s.periodStats(report.Month(year, month))}
		if q.Get("compare") == "true" {
			prevYear, prevMonth := year, month-1
			if prevMonth == 0 {
				prevYear, prevMonth = year-1, 12
			}
			prev := s.periodStats(report.Month(prevYear, prevMonth))
			cmp := report.Compare(resp.Summary, prev.Summary)
			resp.Comparison = &cmp
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	fromStr, toStr := q.Get("from"), q.Get("to")
	if fromStr == "" || toStr == "" {
		writeBadRequest(w, "either year and month or from and to are required")
		return
	}
	from, err := core.ParseDate(fromStr)
	if err != nil {
		writeBadRequest(w, "invalid from date: "+fromStr)
		return
	}
	to, err := core.ParseDate(toStr)
	if err != nil {
		writeBadRequest(w, "invalid to date: "+toStr)
		return
	}
	if to.Before(from) {
		writeBadRequest(w, "to must not be before from")
		return
	}
	writeJSON(w, http.StatusOK, periodReportResponse{PeriodStats: s.periodStats(report.Range(from, to))})
}

func (s *Server) periodStats(period report.Period) report.PeriodStats {
	if stats, ok := s.periodCache.Get(period.Label); ok {
		return stats
	}
	stats := report.ComputeStats(s.store.Transactions(), period)
	s.periodCache.Set(period.Label, stats)
	return stats
}

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	now := time.Now()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.TransactionsFilename(now)+`"`)
	if err := export.WriteTransactions(w, s.store.Transactions(), now); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Export failed",
			log.FieldOperation, log.OpExport, log.FieldError, err.Error())
	}
}

func (s *Server) handleExportReports(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	now := time.Now()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.ReportsFilename(now)+`"`)
	if err := export.WriteReports(w, s.monthlyStats(), now); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Export failed",
			log.FieldOperation, log.OpExport, log.FieldError, err.Error())
	}
}

// handleClear wipes the whole collection. Immediate and unrecoverable,
// matching the import-again workflow.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	n := s.store.Len()
	if err := s.store.ClearAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
}
