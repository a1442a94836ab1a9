package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(NewHandler(nil), nil)
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestListCountries(t *testing.T) {
	rec := serve(t, http.MethodGet, "/v1/countries")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	countries := decode[[]CountryDTO](t, rec)
	var kr *CountryDTO
	for i := range countries {
		if countries[i].Code == "KR" {
			kr = &countries[i]
		}
	}
	require.NotNil(t, kr)
	assert.Equal(t, "South Korea", kr.Name)
	assert.Contains(t, kr.Aliases, "Korea")
	assert.Empty(t, kr.Subdivisions)
}

func TestGetYear(t *testing.T) {
	rec := serve(t, http.MethodGet, "/v1/KR/2020")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[HolidayListResponse](t, rec)
	assert.Equal(t, "KR", resp.Country)
	assert.Equal(t, "en", resp.Language)
	assert.True(t, resp.Observed)
	assert.Equal(t, "2020-01-01", resp.From)
	assert.Equal(t, "2020-12-31", resp.To)
	assert.Equal(t, 18, resp.Count)
	assert.Contains(t, resp.Holidays, HolidayDTO{
		Date:    "2020-08-17",
		Name:    "Liberation Day Alternative Statutory Holiday",
		Weekday: "Monday",
	})
}

func TestGetYear_LocalUnobserved(t *testing.T) {
	rec := serve(t, http.MethodGet, "/v1/korea/2024?lang=ko&observed=false")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[HolidayListResponse](t, rec)
	assert.Equal(t, "local", resp.Language)
	assert.False(t, resp.Observed)
	assert.Equal(t, "신정", resp.Holidays[0].Name)
	for _, h := range resp.Holidays {
		assert.NotEqual(t, "2024-02-12", h.Date, "substitute must be absent")
	}
}

func TestGetDate(t *testing.T) {
	rec := serve(t, http.MethodGet, "/v1/KR/dates/2024-09-17")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DateResponse{
		Country:     "KR",
		Date:        "2024-09-17",
		Weekday:     "Tuesday",
		Holiday:     true,
		Name:        "Chuseok",
		BusinessDay: false,
	}, decode[DateResponse](t, rec))

	rec = serve(t, http.MethodGet, "/v1/KR/dates/20240610")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[DateResponse](t, rec)
	assert.Equal(t, "2024-06-10", resp.Date)
	assert.False(t, resp.Holiday)
	assert.True(t, resp.BusinessDay)
}

func TestGetRange(t *testing.T) {
	rec := serve(t, http.MethodGet, "/v1/KR/range?from=2024-12-25&to=2025-01-01")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[HolidayListResponse](t, rec)
	assert.Equal(t, []HolidayDTO{
		{Date: "2024-12-25", Name: "Christmas Day", Weekday: "Wednesday"},
		{Date: "2025-01-01", Name: "New Year's", Weekday: "Wednesday"},
	}, resp.Holidays)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		msg    string
	}{
		{"unknown country", "/v1/XX/2024", http.StatusNotFound, "unknown country"},
		{"bad year", "/v1/KR/abcd", http.StatusBadRequest, "invalid year"},
		{"year out of range", "/v1/KR/0", http.StatusBadRequest, "invalid year"},
		{"bad date", "/v1/KR/dates/2024-02-30", http.StatusBadRequest, "invalid date"},
		{"bad lang", "/v1/KR/2024?lang=fr", http.StatusBadRequest, "invalid lang"},
		{"bad observed", "/v1/KR/2024?observed=maybe", http.StatusBadRequest, "invalid observed"},
		{"missing from", "/v1/KR/range?to=2024-01-01", http.StatusBadRequest, "invalid from"},
		{"reversed range", "/v1/KR/range?from=2024-02-01&to=2024-01-01", http.StatusBadRequest, "invalid range"},
		{"huge range", "/v1/KR/range?from=1900-01-01&to=2100-01-01", http.StatusBadRequest, "invalid range"},
		{"no route", "/v2/KR/2024", http.StatusNotFound, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, http.MethodGet, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestCORS(t *testing.T) {
	rec := serve(t, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_SharesSets(t *testing.T) {
	h := NewHandler(nil)
	router := NewRouter(h, []string{"https://example.com"})
	for _, target := range []string{"/v1/KR/2024", "/v1/kr/2025", "/v1/KR/2024?lang=local"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Len(t, h.sets, 2)
}
