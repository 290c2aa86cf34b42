package localeformat

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical day/month/year layout of every emitted date.
const DateLayout = "02/01/2006"

var dateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})$`)

// NormalizeDate rewrites dd/mm/yyyy, dd.mm.yyyy or dd-mm-yyyy (two or four
// digit years) into DateLayout. Two-digit years are taken as 20yy. Dates that
// do not exist in the calendar yield "".
func NormalizeDate(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate is NormalizeDate returning the calendar date itself.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer(".", "/", "-", "/").Replace(s)
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow, so 31/02 comes back as a March date.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
