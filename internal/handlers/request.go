package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"ecodrops-dashboard/internal/errors"
)

const cacheMaxAge = "public, max-age=300"

type selection struct {
	Country string
	Year    int
}

// selectionSignals mirrors the page's datastar signals. Year arrives as a
// number from the initial signals and as a string once bound to a <select>.
type selectionSignals struct {
	Country string          `json:"country"`
	Year    json.RawMessage `json:"year"`
}

func parseCountry(raw string) (string, error) {
	if raw == "" {
		return "", errors.BadRequest("country is required")
	}
	return raw, nil
}

func parseYear(raw string) (int, error) {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	if raw == "" {
		return 0, errors.BadRequest("year is required")
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.BadRequestWrap(err, "year must be an integer").WithDetails("year=%q", raw)
	}
	return year, nil
}

func countryFromQuery(r *http.Request) (string, error) {
	return parseCountry(r.URL.Query().Get("country"))
}

func selectionFromQuery(r *http.Request) (selection, error) {
	country, err := countryFromQuery(r)
	if err != nil {
		return selection{}, err
	}
	year, err := parseYear(r.URL.Query().Get("year"))
	if err != nil {
		return selection{}, err
	}
	return selection{Country: country, Year: year}, nil
}

// readSignals reads the datastar signals of an SSE request. Fields the client
// did not send fall back to the query parameters of the same name.
func readSignals(r *http.Request) (selectionSignals, error) {
	var s selectionSignals
	if err := datastar.ReadSignals(r, &s); err != nil {
		return s, errors.BadRequestWrap(err, "invalid datastar signals")
	}
	q := r.URL.Query()
	if s.Country == "" {
		s.Country = q.Get("country")
	}
	if len(s.Year) == 0 || string(s.Year) == "null" {
		s.Year = json.RawMessage(q.Get("year"))
	}
	return s, nil
}

func countryFromSignals(r *http.Request) (string, error) {
	s, err := readSignals(r)
	if err != nil {
		return "", err
	}
	return parseCountry(s.Country)
}

func selectionFromSignals(r *http.Request) (selection, error) {
	s, err := readSignals(r)
	if err != nil {
		return selection{}, err
	}
	country, err := parseCountry(s.Country)
	if err != nil {
		return selection{}, err
	}
	year, err := parseYear(string(s.Year))
	if err != nil {
		return selection{}, err
	}
	return selection{Country: country, Year: year}, nil
}
