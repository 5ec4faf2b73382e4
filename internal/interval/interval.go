// Package interval parses and compares compact bar interval tokens such as "1m", "15min", "4h" or "1d".
package interval

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidFormat is returned when a token does not match <positive integer><unit>.
	ErrInvalidFormat = errors.New("invalid interval format")

	// ErrNonDivisible is returned when the target interval is not a positive multiple of the source.
	ErrNonDivisible = errors.New("target interval must be divisible by source interval")
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

// Longer alternatives first so "min" and "mo" win over "m".
var tokenPattern = regexp.MustCompile(`^(\d+)(min|hour|day|week|month|year|mo|wk|m|h|d|y)$`)

var unitDurations = map[string]time.Duration{
	"min":   time.Minute,
	"m":     time.Minute,
	"hour":  time.Hour,
	"h":     time.Hour,
	"day":   day,
	"d":     day,
	"week":  week,
	"wk":    week,
	"month": month,
	"mo":    month,
	"year":  year,
	"y":     year,
}

// Parse converts a token like "5m" into a duration. Whitespace around the token is ignored.
func Parse(token string) (time.Duration, error) {
	n, unit, err := split(token)
	if err != nil {
		return 0, err
	}
	base := unitDurations[unit]
	if n > math.MaxInt64/int64(base) {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidFormat, token)
	}
	return time.Duration(n) * base, nil
}

// IsValid reports whether token parses.
func IsValid(token string) bool {
	_, err := Parse(token)
	return err == nil
}

func split(token string) (int64, string, error) {
	s := strings.TrimSpace(token)
	m := tokenPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidFormat, token)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q: %v", ErrInvalidFormat, token, err)
	}
	if n <= 0 {
		return 0, "", fmt.Errorf("%w: %q must be greater than zero", ErrInvalidFormat, token)
	}
	return n, m[2], nil
}

// Factor checks that target is a positive integer multiple of source and returns target/source.
// A factor of 1 means no resampling is needed.
func Factor(source, target time.Duration) (int64, error) {
	if source <= 0 || target <= 0 || target < source || target%source != 0 {
		return 0, fmt.Errorf("%w: to interval (%s) must be divisible by from interval (%s)",
			ErrNonDivisible, Format(target), Format(source))
	}
	return int64(target / source), nil
}

// Simplification order, largest unit first, with the short and long suffix of each unit.
var simplifyOrder = []struct {
	size        time.Duration
	short, long string
}{
	{year, "y", "year"},
	{month, "mo", "month"},
	{week, "wk", "week"},
	{day, "d", "day"},
	{time.Hour, "h", "hour"},
	{time.Minute, "m", "min"},
}

// Simplify returns the shortest token equal to token, keeping its suffix style:
// "60m" -> "1h", "120min" -> "2hour", "1440m" -> "1d".
func Simplify(token string) (string, error) {
	d, err := Parse(token)
	if err != nil {
		return "", err
	}
	_, unit, _ := split(token)
	return format(d, len(unit) > 2), nil
}

// Format renders d with the largest short suffix that divides it exactly.
func Format(d time.Duration) string {
	return format(d, false)
}

func format(d time.Duration, long bool) string {
	if d <= 0 || d%time.Minute != 0 {
		return d.String()
	}
	for _, u := range simplifyOrder {
		if d%u.size == 0 {
			suffix := u.short
			if long {
				suffix = u.long
			}
			return strconv.FormatInt(int64(d/u.size), 10) + suffix
		}
	}
	return d.String()
}

// RatioInfo is the gcd-reduced ratio between two intervals.
type RatioInfo struct {
	Label      string  // "1:5"
	Antecedent int64   // a / gcd
	Consequent int64   // b / gcd
	Value      float64 // a / b
}

// Ratio returns the reduced ratio a:b of two interval tokens.
func Ratio(a, b string) (RatioInfo, error) {
	da, err := Parse(a)
	if err != nil {
		return RatioInfo{}, err
	}
	db, err := Parse(b)
	if err != nil {
		return RatioInfo{}, err
	}
	g := gcd(int64(da), int64(db))
	ra, rb := int64(da)/g, int64(db)/g
	return RatioInfo{
		Label:      fmt.Sprintf("%d:%d", ra, rb),
		Antecedent: ra,
		Consequent: rb,
		Value:      float64(da) / float64(db),
	}, nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
