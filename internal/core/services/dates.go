package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
	"github.com/abdullah-sah/brain-assistant/internal/logger"
)

// Ensure DateResolver implements the interface.
var _ driving.DateResolver = (*DateResolver)(nil)

// Layouts tried before natural-language parsing. They carry a year.
var datedLayouts = []string{
	domain.CanonicalDateLayout,
	"2006/1/2",
	"1/2/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 January, 2006",
	"2 Jan 2006",
	"Monday, January 2, 2006",
	"Monday January 2 2006",
	"Mon, Jan 2, 2006",
	"Mon Jan 2 2006",
}

// Layouts without a year resolve to the earliest year that is not more
// than yearlessLookback months before the reference instant.
var yearlessLayouts = []string{
	"January 2",
	"Jan 2",
	"2 January",
	"2 Jan",
}

const yearlessLookback = 3

var (
	nextPeriod    = regexp.MustCompile(`^next (week|month|year)$`)
	endOfPeriod   = regexp.MustCompile(`^(?:end of (?:the )?(day|week|month|year)|eo(d|w|m|y))$`)
	inPeriod      = regexp.MustCompile(`^in (\d+|a|an|one|two|three|four|five|six) (day|week|month|year)s?$`)
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	leadingWords  = regexp.MustCompile(`(?i)^(?:(?:by|on|due|before|until|till|no later than|the)\s+)+`)
	ofMonth       = regexp.MustCompile(`(?i)^(\d{1,2})\s+of\s+`)
	spaces        = regexp.MustCompile(`\s+`)
)

// DateResolver turns due-date phrases into calendar dates.
type DateResolver struct {
	parser   *when.Parser
	settings domain.DateSettings
	warn     logger.Func
	now      func() time.Time
}

// NewDateResolver creates a resolver. Zero window values use defaults.
func NewDateResolver(settings domain.DateSettings) *DateResolver {
	if settings.PastYears <= 0 && settings.PastDays <= 0 {
		settings.PastYears = domain.DefaultPastYears
	}
	if settings.FutureYears <= 0 {
		settings.FutureYears = domain.DefaultFutureYears
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &DateResolver{
		parser:   w,
		settings: settings,
		warn:     logger.Warn,
		now:      time.Now,
	}
}

// SetWarnFunc replaces the function warnings are reported to.
func (r *DateResolver) SetWarnFunc(f logger.Func) {
	if f != nil {
		r.warn = f
	}
}

// Resolve returns the calendar date for phrase relative to ref, or nil
// when the phrase is absent or unparseable. A zero ref means now.
func (r *DateResolver) Resolve(phrase *string, ref time.Time) *domain.CalendarDate {
	return r.ResolveDetailed(phrase, ref).Date
}

// ResolveDetailed is Resolve with the outcome and any warning.
func (r *DateResolver) ResolveDetailed(phrase *string, ref time.Time) domain.DateResolution {
	if phrase == nil || strings.TrimSpace(*phrase) == "" {
		return domain.DateResolution{Status: domain.DateAbsent}
	}
	if ref.IsZero() {
		ref = r.now()
	}

	date, ok := r.parse(*phrase, ref)
	if !ok {
		msg := fmt.Sprintf("Could not parse date %q", *phrase)
		r.warn("dates: %s", msg)
		return domain.DateResolution{Status: domain.DateUnparseable, Warning: msg}
	}

	if lo, hi := r.window(ref); date.Before(lo) || hi.Before(date) {
		msg := fmt.Sprintf("Date %s from %q is outside the expected range %s to %s", date, *phrase, lo, hi)
		r.warn("dates: %s", msg)
		if r.settings.StrictWindow {
			return domain.DateResolution{Status: domain.DateOutOfRange, Warning: msg}
		}
		return domain.DateResolution{Date: &date, Status: domain.DateOutOfRange, Warning: msg}
	}

	return domain.DateResolution{Date: &date, Status: domain.DateResolved}
}

// window returns the plausible date range around ref.
func (r *DateResolver) window(ref time.Time) (domain.CalendarDate, domain.CalendarDate) {
	lo := domain.DateOf(ref.AddDate(-r.settings.PastYears, 0, -r.settings.PastDays))
	hi := domain.DateOf(ref.AddDate(r.settings.FutureYears, 0, 0))
	return lo, hi
}

func (r *DateResolver) parse(phrase string, ref time.Time) (domain.CalendarDate, bool) {
	cleaned := clean(phrase)

	// RFC 3339 timestamps keep the date as written, whatever the offset.
	if t, err := time.Parse(time.RFC3339, cleaned); err == nil {
		return domain.DateOf(t), true
	}
	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return domain.DateOf(t), true
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return yearFor(t.Month(), t.Day(), ref)
		}
	}
	if t, ok := relativePeriod(strings.ToLower(cleaned), ref); ok {
		return domain.DateOf(t), true
	}

	res, err := r.parser.Parse(phrase, ref)
	if err != nil || res == nil {
		return domain.CalendarDate{}, false
	}
	return domain.DateOf(res.Time.In(ref.Location())), true
}

// yearFor places a month and day in the first year from the previous one
// onward that falls on or after ref minus yearlessLookback months.
func yearFor(month time.Month, day int, ref time.Time) (domain.CalendarDate, bool) {
	loc := ref.Location()
	floor := domain.DateOf(ref.AddDate(0, -yearlessLookback, 0))
	for y := ref.Year() - 1; y <= ref.Year()+4; y++ {
		t := time.Date(y, month, day, 0, 0, 0, 0, loc)
		if t.Day() != day {
			// Feb 29 outside a leap year.
			continue
		}
		if d := domain.DateOf(t); !d.Before(floor) {
			return d, true
		}
	}
	return domain.CalendarDate{}, false
}

// relativePeriod handles period phrases the natural-language rules miss:
// "next week", "end of the month", "EOW", "in 2 weeks" and the like.
// Weeks end on Friday.
func relativePeriod(phrase string, ref time.Time) (time.Time, bool) {
	if m := nextPeriod.FindStringSubmatch(phrase); m != nil {
		return shift(ref, m[1], 1), true
	}
	if m := inPeriod.FindStringSubmatch(phrase); m != nil {
		n, ok := count(m[1])
		if !ok {
			return time.Time{}, false
		}
		return shift(ref, m[2], n), true
	}
	m := endOfPeriod.FindStringSubmatch(phrase)
	if m == nil {
		return time.Time{}, false
	}
	unit := m[1] + m[2]
	y, mon, _ := ref.Date()
	switch unit {
	case "day", "d":
		return ref, true
	case "week", "w":
		days := (int(time.Friday) - int(ref.Weekday()) + 7) % 7
		return ref.AddDate(0, 0, days), true
	case "month", "m":
		return time.Date(y, mon+1, 0, 0, 0, 0, 0, ref.Location()), true
	default:
		return time.Date(y, time.December, 31, 0, 0, 0, 0, ref.Location()), true
	}
}

func shift(ref time.Time, unit string, n int) time.Time {
	switch unit {
	case "day":
		return ref.AddDate(0, 0, n)
	case "week":
		return ref.AddDate(0, 0, 7*n)
	case "month":
		return addMonths(ref, n)
	default:
		return addMonths(ref, 12*n)
	}
}

// addMonths moves ref by n months, clamping to the target month's last day.
func addMonths(ref time.Time, n int) time.Time {
	y, m, d := ref.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, ref.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, ref.Location())
}

var countWords = map[string]int{"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6}

func count(s string) (int, bool) {
	if n, ok := countWords[s]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// clean strips filler words, ordinal suffixes and trailing punctuation
// so written dates match a layout.
func clean(phrase string) string {
	s := strings.TrimSpace(phrase)
	s = strings.TrimRight(s, ".!,;")
	s = spaces.ReplaceAllString(s, " ")
	s = leadingWords.ReplaceAllString(s, "")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = ofMonth.ReplaceAllString(s, "$1 ")
	return strings.TrimSpace(s)
}

// FormatDate renders a date in canonical form, keeping nil as nil.
func FormatDate(d *domain.CalendarDate) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
