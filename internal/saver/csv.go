package saver

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"us-resample/internal/model"
)

// CSVSaver stores a packet as CSV (header: t,o,h,l,c,v,vw,n,ac).
type CSVSaver struct{}

var csvHeader = []string{"t", "o", "h", "l", "c", "v", "vw", "n", "ac"}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(bars []model.Bar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bars {
		if err := w.Write([]string{
			strconv.FormatInt(b.Timestamp, 10),
			floatStr(b.Open),
			floatStr(b.High),
			floatStr(b.Low),
			floatStr(b.Close),
			strconv.FormatInt(b.Volume, 10),
			floatStr(b.VWAP),
			strconv.FormatInt(b.Transactions, 10),
			floatStr(b.AdjClose),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Column aliases accepted on load. Files without a header use the csvHeader order.
var csvColumns = map[string]string{
	"t": "t", "timestamp": "t", "timestamp_ms": "t", "datetime": "t", "time": "t",
	"o": "o", "open": "o",
	"h": "h", "high": "h",
	"l": "l", "low": "l",
	"c": "c", "close": "c",
	"v": "v", "volume": "v",
	"vw": "vw", "vwap": "vw",
	"n": "n", "transactions": "n", "trades": "n",
	"ac": "ac", "adj_close": "ac", "adjclose": "ac",
}

// Load reads a CSV packet. UTF-16 files (with BOM) are decoded to UTF-8 first.
func (CSVSaver) Load(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(utf8Reader(f))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		bars []model.Bar
		cols map[string]int
		line int
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", path, err)
		}
		line++
		if len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
		}
		if cols == nil {
			if c, ok := headerColumns(rec); ok {
				cols = c
				continue
			}
			cols = defaultColumns()
		}
		b, err := parseRecord(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// utf8Reader peeks for a UTF-16 BOM and wraps r with a decoder when one is found.
func utf8Reader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, _ := br.Peek(2); len(b) == 2 && ((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF)) {
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	}
	return br
}

func headerColumns(rec []string) (map[string]int, bool) {
	cols := make(map[string]int, len(rec))
	for i, name := range rec {
		if key, ok := csvColumns[strings.ToLower(strings.TrimSpace(name))]; ok {
			cols[key] = i
		}
	}
	if _, ok := cols["t"]; !ok {
		return nil, false
	}
	return cols, true
}

func defaultColumns() map[string]int {
	cols := make(map[string]int, len(csvHeader))
	for i, name := range csvHeader {
		cols[name] = i
	}
	return cols
}

func parseRecord(rec []string, cols map[string]int) (model.Bar, error) {
	field := func(key string) string {
		i, ok := cols[key]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(strings.Trim(rec[i], `"`))
	}

	var b model.Bar
	ts, err := parseTimestamp(field("t"))
	if err != nil {
		return b, err
	}
	b.Timestamp = ts

	for _, p := range []struct {
		key      string
		dst      *float64
		required bool
	}{
		{"o", &b.Open, true},
		{"h", &b.High, true},
		{"l", &b.Low, true},
		{"c", &b.Close, true},
		{"vw", &b.VWAP, false},
		{"ac", &b.AdjClose, false},
	} {
		s := field(p.key)
		if s == "" {
			if p.required {
				return b, fmt.Errorf("missing column %q", p.key)
			}
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return b, fmt.Errorf("column %q: %w", p.key, err)
		}
		*p.dst = v
	}

	if b.Volume, err = parseCount(field("v")); err != nil {
		return b, fmt.Errorf("column \"v\": %w", err)
	}
	if b.Transactions, err = parseCount(field("n")); err != nil {
		return b, fmt.Errorf("column \"n\": %w", err)
	}
	return b, nil
}

// parseTimestamp accepts Unix milliseconds or an RFC 3339 instant.
func parseTimestamp(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("missing timestamp")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: want unix milliseconds or RFC 3339", s)
	}
	return t.UnixMilli(), nil
}

// parseCount parses int or float (scientific notation) counts; empty is zero.
func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
