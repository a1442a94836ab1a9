/*
handlers.go - HTTP handlers for holiday lookups

ENDPOINTS:
  GET /v1/countries                 Supported jurisdictions
  GET /v1/{country}/{year}          Holidays of a year
  GET /v1/{country}/dates/{date}    One date: holiday name and business-day flag
  GET /v1/{country}/range?from=&to= Holidays in [from, to], inclusive

QUERY PARAMETERS:
  lang=en|local   Label language (default en)
  observed=false  Leave out substitute holidays (default true)

ERROR HANDLING:
  Errors are returned as JSON with an HTTP status:
  - 400: malformed year, date, range or query parameter
  - 404: unknown country
  - 503: the year is being populated by a request that failed; retry
  - 500: anything else
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	krholiday "github.com/rabitt1ove/kr-holidays"
)

// maxRangeYears bounds the span of a range query.
const maxRangeYears = 50

// Handler serves holiday lookups. HolidaySets are created on first use and
// shared between requests.
type Handler struct {
	logger *slog.Logger

	mu   sync.Mutex
	sets map[setKey]*krholiday.HolidaySet
}

type setKey struct {
	code     string
	lang     krholiday.Language
	observed bool
}

// NewHandler creates a handler. A nil logger discards.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		logger: logger,
		sets:   make(map[setKey]*krholiday.HolidaySet),
	}
}

// set returns the shared HolidaySet for the request's country and query
// parameters, writing an error response when it cannot.
func (h *Handler) set(w http.ResponseWriter, r *http.Request) (*krholiday.HolidaySet, bool) {
	q := r.URL.Query()
	lang, err := krholiday.ParseLanguage(q.Get("lang"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lang", err)
		return nil, false
	}
	observed := true
	if v := q.Get("observed"); v != "" {
		observed, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid observed", err)
			return nil, false
		}
	}

	j, ok := krholiday.Lookup(chi.URLParam(r, "country"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown country", krholiday.ErrUnknownJurisdiction)
		return nil, false
	}
	key := setKey{code: j.Code, lang: lang, observed: observed}

	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sets[key]; ok {
		return s, true
	}
	s, err := krholiday.New(j.Code,
		krholiday.WithLanguage(lang),
		krholiday.WithObserved(observed),
		krholiday.WithLogger(h.logger.With("country", j.Code)),
	)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	h.sets[key] = s
	return s, true
}

// ListCountries returns every supported jurisdiction.
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	js := krholiday.Jurisdictions()
	out := make([]CountryDTO, 0, len(js))
	for _, j := range js {
		subs := append([]string{}, j.Subdivisions...)
		sort.Strings(subs)
		out = append(out, CountryDTO{
			Code:         j.Code,
			Name:         j.Name,
			Aliases:      j.Aliases,
			Subdivisions: subs,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetYear returns the holidays of one year.
func (h *Handler) GetYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}
	s, ok := h.set(w, r)
	if !ok {
		return
	}
	hs, err := s.HolidaysInYear(year)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	writeJSON(w, http.StatusOK, listResponse(s, from, to, hs))
}

// GetDate reports whether one date is a holiday and a business day.
func (h *Handler) GetDate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.set(w, r)
	if !ok {
		return
	}
	day, err := s.Date(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err)
		return
	}
	name, holiday, err := s.Get(day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DateResponse{
		Country:     s.Code(),
		Date:        formatDate(day),
		Weekday:     day.Weekday().String(),
		Holiday:     holiday,
		Name:        name,
		BusinessDay: s.IsBusinessDay(day),
	})
}

// GetRange returns the holidays between the from and to query parameters,
// both inclusive.
func (h *Handler) GetRange(w http.ResponseWriter, r *http.Request) {
	s, ok := h.set(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	from, err := s.Date(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from", err)
		return
	}
	to, err := s.Date(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to", err)
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "invalid range", fmt.Errorf("to %s is before from %s", formatDate(to), formatDate(from)))
		return
	}
	if to.Year()-from.Year() >= maxRangeYears {
		writeError(w, http.StatusBadRequest, "invalid range", fmt.Errorf("range spans more than %d years", maxRangeYears))
		return
	}
	hs, err := s.HolidaysBetween(from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(s, from, to, hs))
}

// fail maps a library error to a response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, krholiday.ErrInvalidDateFormat):
		writeError(w, http.StatusBadRequest, "invalid date", err)
	case errors.Is(err, krholiday.ErrUnknownJurisdiction), errors.Is(err, krholiday.ErrUnknownSubdivision):
		writeError(w, http.StatusNotFound, "unknown country", err)
	case errors.Is(err, krholiday.ErrPopulationInProgress):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "try again", err)
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}

func listResponse(s *krholiday.HolidaySet, from, to time.Time, hs []krholiday.Holiday) HolidayListResponse {
	out := make([]HolidayDTO, len(hs))
	for i, hol := range hs {
		out[i] = HolidayDTO{
			Date:    formatDate(hol.Date),
			Name:    hol.Name,
			Weekday: hol.Date.Weekday().String(),
		}
	}
	return HolidayListResponse{
		Country:  s.Code(),
		Language: s.Language().String(),
		Observed: s.Observed(),
		From:     formatDate(from),
		To:       formatDate(to),
		Count:    len(out),
		Holidays: out,
	}
}

func formatDate(t time.Time) string { return t.Format("2006-01-02") }

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = strings.TrimPrefix(err.Error(), "krholiday: ")
	}
	writeJSON(w, status, resp)
}
