package api

// CountryDTO describes a supported jurisdiction.
type CountryDTO struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases,omitempty"`
	Subdivisions []string `json:"subdivisions"`
}

// HolidayDTO is one holiday.
type HolidayDTO struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Name    string `json:"name"`
	Weekday string `json:"weekday"`
}

// HolidayListResponse is returned by the year and range endpoints.
type HolidayListResponse struct {
	Country  string       `json:"country"`
	Language string       `json:"language"`
	Observed bool         `json:"observed"`
	From     string       `json:"from"`
	To       string       `json:"to"`
	Count    int          `json:"count"`
	Holidays []HolidayDTO `json:"holidays"`
}

// DateResponse is returned by the single-date endpoint.
type DateResponse struct {
	Country     string `json:"country"`
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	Holiday     bool   `json:"holiday"`
	Name        string `json:"name,omitempty"`
	BusinessDay bool   `json:"business_day"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
