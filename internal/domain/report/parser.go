package report

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Row is one usable line of a casino session report export.
type Row struct {
	SourceDateTime string
	CreatedAt      time.Time
	DetailsBase64  string
	Collected      *int64
	PaidOut        *int64
	Profit         *int64
}

var dateTimeRegex = regexp.MustCompile(
	`^(\d{2})/(\d{2})/(\d{4})\s+(\d{1,2})[.:](\d{2})[.:](\d{2})(?:\s+([+-]\d{2}:\d{2}|Z))?$`,
)

// Parse reads the report CSV export. The first line may be a "sep=<char>"
// directive (the default delimiter is ";"). Header columns are matched by
// case-insensitive substring: "date and time" and "details" are mandatory,
// the collected / paid out / profit totals are optional. Rows with a
// missing or unparseable date are counted as invalid and skipped.
func Parse(text string) ([]Row, int) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := make([]string, 0, 64)
	for _, line := range strings.Split(normalized, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	if len(lines) == 0 {
		return nil, 0
	}

	cursor := 0
	delimiter := ";"
	if sep, ok := parseSepDirective(lines[0]); ok {
		delimiter = sep
		cursor = 1
	}
	if cursor >= len(lines) {
		return nil, 0
	}

	headers := splitLine(lines[cursor], delimiter)
	for i, h := range headers {
		headers[i] = strings.ToLower(h)
	}

	idxDate := findHeader(headers, "date and time", func(h string) bool {
		return strings.Contains(h, "date") && strings.Contains(h, "time")
	})
	idxDetails := findHeader(headers, "details", func(h string) bool {
		return strings.Contains(h, "detail")
	})
	idxCollected := findHeader(headers, "collected", func(h string) bool {
		return strings.Contains(h, "collect")
	})
	idxPaidOut := findHeader(headers, "paid out", func(h string) bool {
		return strings.Contains(h, "paid") && strings.Contains(h, "out")
	})
	idxProfit := findHeader(headers, "profit", func(h string) bool {
		return strings.Contains(h, "profit")
	})

	if idxDate == -1 || idxDetails == -1 {
		return nil, len(lines) - cursor - 1
	}

	rows := make([]Row, 0, len(lines)-cursor-1)
	invalid := 0
	for i := cursor + 1; i < len(lines); i++ {
		parts := splitLine(lines[i], delimiter)

		sourceDateTime := field(parts, idxDate)
		detailsBase64 := field(parts, idxDetails)
		if sourceDateTime == "" || detailsBase64 == "" {
			invalid++
			continue
		}

		createdAt, ok := parseDateTime(sourceDateTime)
		if !ok {
			invalid++
			continue
		}

		rows = append(rows, Row{
			SourceDateTime: sourceDateTime,
			CreatedAt:      createdAt,
			DetailsBase64:  detailsBase64,
			Collected:      parseAmount(field(parts, idxCollected)),
			PaidOut:        parseAmount(field(parts, idxPaidOut)),
			Profit:         parseAmount(field(parts, idxProfit)),
		})
	}

	return rows, invalid
}

// parseDateTime accepts "DD/MM/YYYY H.MM.SS" with "." or ":" time
// separators and an optional trailing "+HH:MM" / "Z" zone. Times without a
// zone are read as UTC.
func parseDateTime(input string) (time.Time, bool) {
	m := dateTimeRegex.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return time.Time{}, false
	}

	hour := m[4]
	if len(hour) == 1 {
		hour = "0" + hour
	}

	stamp := m[1] + "/" + m[2] + "/" + m[3] + " " + hour + ":" + m[5] + ":" + m[6]
	layout := "02/01/2006 15:04:05"
	if m[7] != "" {
		stamp += " " + m[7]
		layout += " Z07:00"
	}

	parsed, err := time.Parse(layout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// parseAmount strips thousand separators (space, NBSP, narrow NBSP, comma,
// apostrophe) and truncates toward zero. Returns nil for blank or
// unparseable values.
func parseAmount(input string) *int64 {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return nil
	}

	var cleaned strings.Builder
	for _, r := range raw {
		switch r {
		case ' ', '\t', ' ', ' ', ',', '\'':
			continue
		}
		cleaned.WriteRune(r)
	}

	n, err := strconv.ParseFloat(cleaned.String(), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}

	out := int64(math.Trunc(n))
	return &out
}

func parseSepDirective(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 4 || !strings.EqualFold(trimmed[:4], "sep=") {
		return "", false
	}
	sep := strings.TrimSpace(trimmed[4:])
	if sep == "" {
		return ";", true
	}
	return sep, true
}

// splitLine performs a plain delimiter split. The report format has no
// quoted fields, so a minimal split is reliable here.
func splitLine(line, delimiter string) []string {
	parts := strings.Split(line, delimiter)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func findHeader(headers []string, exact string, fuzzy func(string) bool) int {
	for i, h := range headers {
		if h == exact || fuzzy(h) {
			return i
		}
	}
	return -1
}

func field(parts []string, idx int) string {
	if idx < 0 || idx >= len(parts) {
		return ""
	}
	return parts[idx]
}
