package pantry

import (
	"strconv"
	"strings"
	"time"
)

// ExpirationUnknown is stored when an ingredient has no known expiration date.
const ExpirationUnknown = "N/A"

// DateLayout is the only accepted stored date format.
const DateLayout = "2006-01-02"

// NormalizeExpiration converts user or model input into DateLayout or
// ExpirationUnknown. Compact forms YYMMDD and YYYYMMDD are accepted, as are
// dates separated by '-', '.' or '/'.
func NormalizeExpiration(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "n/a", "na", "unknown", "알 수 없음":
		return ExpirationUnknown, nil
	}

	var year, month, day int
	var err error

	parts := strings.FieldsFunc(strings.TrimRight(raw, "."), func(r rune) bool {
		return r == '-' || r == '.' || r == '/' || r == ' '
	})
	switch {
	case len(parts) == 3:
		year, month, day, err = atoi3(parts[0], parts[1], parts[2])
	case len(parts) == 1 && len(raw) == 8:
		year, month, day, err = atoi3(raw[0:4], raw[4:6], raw[6:8])
	case len(parts) == 1 && len(raw) == 6:
		year, month, day, err = atoi3(raw[0:2], raw[2:4], raw[4:6])
	default:
		return "", ErrInvalidExpiration
	}
	if err != nil {
		return "", ErrInvalidExpiration
	}
	if year < 100 {
		year += 2000
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", ErrInvalidExpiration
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		// rolled over, e.g. 02-30
		return "", ErrInvalidExpiration
	}
	return t.Format(DateLayout), nil
}

func atoi3(a, b, c string) (int, int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, 0, err
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, 0, err
	}
	z, err := strconv.Atoi(c)
	if err != nil {
		return 0, 0, 0, err
	}
	return x, y, z, nil
}

// DaysUntil returns the number of calendar days from today to the expiration
// date. Negative values mean overdue. ok is false for unknown or unparseable
// dates.
func DaysUntil(expiration string, today time.Time) (days int, ok bool) {
	if expiration == "" || expiration == ExpirationUnknown {
		return 0, false
	}
	target, err := time.Parse(DateLayout, expiration)
	if err != nil {
		return 0, false
	}
	y, m, d := today.Date()
	base := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(target.Sub(base).Hours() / 24), true
}
