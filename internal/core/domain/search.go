package domain

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// SearchResult is one record returned by the place-search service. Only the display
// name and the lat/lon strings are interpreted; the raw record is kept verbatim.
type SearchResult struct {
	DisplayName string
	Lat         string
	Lon         string

	raw json.RawMessage
}

type searchResultFields struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// UnmarshalJSON decodes the interpreted fields and keeps the full record.
func (r *SearchResult) UnmarshalJSON(b []byte) error {
	var f searchResultFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	r.DisplayName, r.Lat, r.Lon = f.DisplayName, f.Lat, f.Lon
	r.raw = append(json.RawMessage(nil), b...)
	return nil
}

// MarshalJSON re-emits the record as received from the service.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(searchResultFields{DisplayName: r.DisplayName, Lat: r.Lat, Lon: r.Lon})
}

// Coordinate parses the lat/lon strings the way a browser's parseFloat does,
// reading the longest numeric prefix. ok is false when either has no numeric
// prefix or is not finite.
func (r SearchResult) Coordinate() (c Coordinate, ok bool) {
	lat, ok := parseFloatPrefix(r.Lat)
	if !ok || math.IsInf(lat, 0) {
		return Coordinate{}, false
	}
	lng, ok := parseFloatPrefix(r.Lon)
	if !ok || math.IsInf(lng, 0) {
		return Coordinate{}, false
	}
	return Coordinate{Lat: lat, Lng: lng}, true
}

// parseFloatPrefix skips leading whitespace and parses the longest prefix of s
// matching [+-]?(Infinity|digits[.digits][e[+-]digits]|.digits[e[+-]digits]).
// Trailing text is ignored.
func parseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	digits := func(j int) int {
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		return j
	}

	end := digits(i)
	mantissa := end > i
	if end < len(s) && s[end] == '.' {
		frac := digits(end + 1)
		if frac > end+1 || mantissa {
			mantissa = true
			end = frac
		}
	}
	if !mantissa {
		return 0, false
	}

	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		j := end + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if exp := digits(j); exp > j {
			end = exp
		}
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		// Only range errors reach here; ParseFloat still returns ±Inf or 0.
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || numErr.Err != strconv.ErrRange {
			return 0, false
		}
	}
	return v, true
}
