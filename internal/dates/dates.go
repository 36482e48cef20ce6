// Package dates resolves the date and time strings found on department sites
// into a canonical form. Department pages disagree wildly on format: some
// print "Monday, November 10, 2025", some "Wed, Sep 24, 2025", some "Sep 8"
// with no year at all, and a few use numeric 9/24/2025 forms. The resolver
// tries the formats in order of specificity and degrades to an empty string
// rather than guessing: a blank date is recoverable downstream, a wrong date
// is not.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
	"january": 1, "february": 2, "march": 3, "april": 4, "june": 6,
	"july": 7, "august": 8, "september": 9, "october": 10,
	"november": 11, "december": 12,
}

var (
	// "Monday, November 10, 2025" / "Wed, Sep 24, 2025"
	reWeekdayFull = regexp.MustCompile(`(?i)[a-z]+,\s*([a-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})`)
	// "November 10, 2025" / "Sep 8 2025"
	reMonthDayYear = regexp.MustCompile(`(?i)\b([a-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})`)
	// "November 10" / "Sep 8" with no year
	reMonthDay = regexp.MustCompile(`(?i)\b([a-z]+)\.?\s+(\d{1,2})\b`)
	// "9/24/2025", "09-24-25", "9/24"
	reNumeric = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?\b`)
	// Already-canonical "2025-09-24"
	reISO = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

	// "3:00 pm" or bare-hour "3 pm"
	reTimeToken = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
)

// HasDateToken reports whether text contains something that looks like a
// date, without committing to a parse. Used by the free-text extraction
// strategy to decide whether a text block is worth keeping.
func HasDateToken(text string) bool {
	return reISO.MatchString(text) ||
		reNumeric.MatchString(text) ||
		hasMonthDay(text)
}

func hasMonthDay(text string) bool {
	for _, m := range reMonthDay.FindAllStringSubmatch(text, -1) {
		if _, ok := months[strings.ToLower(m[1])]; ok {
			return true
		}
	}
	return false
}

// Resolve extracts a calendar date and a time-of-day string from free text.
// The reference time supplies the year for sources that omit it; callers
// decide what "now" means rather than the resolver reading the wall clock.
// Unparseable input yields empty strings, never an error.
func Resolve(text string, ref time.Time) (date string, timeOfDay string) {
	return ResolveDate(text, ref), ResolveTime(text)
}

// ResolveDate extracts the first resolvable calendar date as YYYY-MM-DD.
func ResolveDate(text string, ref time.Time) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}

	// ISO dates pass through untouched so the resolver is idempotent on
	// its own output.
	if m := reISO.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return formatValid(year, month, day)
	}

	if m := reWeekdayFull.FindStringSubmatch(text); m != nil {
		if d := fromMonthName(m[1], m[2], m[3], ref); d != "" {
			return d
		}
	}

	if m := reMonthDayYear.FindStringSubmatch(text); m != nil {
		if d := fromMonthName(m[1], m[2], m[3], ref); d != "" {
			return d
		}
	}

	if m := reMonthDay.FindStringSubmatch(text); m != nil {
		if d := fromMonthName(m[1], m[2], "", ref); d != "" {
			return d
		}
	}

	if m := reNumeric.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year := ref.Year()
		if m[3] != "" {
			y, _ := strconv.Atoi(m[3])
			if y < 100 {
				y += 2000
			}
			year = y
		}
		return formatValid(year, month, day)
	}

	return ""
}

func fromMonthName(monthName, dayStr, yearStr string, ref time.Time) string {
	month, ok := months[strings.ToLower(monthName)]
	if !ok {
		return ""
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return ""
	}
	year := ref.Year()
	if yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			return ""
		}
		year = y
	}
	return formatValid(year, month, day)
}

// formatValid renders YYYY-MM-DD only when the components form a real
// calendar date. time.Date normalizes out-of-range values (Feb 30 becomes
// Mar 2), so a round-trip mismatch means the input was bogus.
func formatValid(year, month, day int) string {
	if year < 1900 || year > 2200 || month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// ResolveTime extracts a time of day or a time range from free text. Two
// tokens joined by a dash-like separator or "to" normalize to
// "start - end"; a single token is returned as-is; otherwise empty.
func ResolveTime(text string) string {
	matches := reTimeToken.FindAllStringSubmatch(text, 2)
	if len(matches) == 0 {
		return ""
	}

	first := formatTimeToken(matches[0])
	if len(matches) == 1 {
		return first
	}

	// A second token only forms a range when joined by -, – , — or "to";
	// anything else (say, a doors-open time buried later in the text) is
	// ignored.
	locs := reTimeToken.FindAllStringIndex(text, 2)
	between := text[locs[0][1]:locs[1][0]]
	if !isRangeSeparator(between) {
		return first
	}

	return first + " - " + formatTimeToken(matches[1])
}

func formatTimeToken(m []string) string {
	hour := strings.TrimLeft(m[1], "0")
	if hour == "" {
		hour = "0"
	}
	meridiem := strings.ToLower(m[3])
	if m[2] == "" {
		return hour + " " + meridiem
	}
	return hour + ":" + m[2] + " " + meridiem
}

func isRangeSeparator(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "-", "–", "—", "to", "until":
		return true
	}
	return false
}
