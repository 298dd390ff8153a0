package domain

import (
	"fmt"
	"strings"
	"time"
)

// CanonicalDateLayout is the storage form of a calendar date.
const CanonicalDateLayout = "2006-01-02"

// DefaultOwnerName is used when no identity is configured.
const DefaultOwnerName = "the user"

// Identity names the owner whose commitments are extracted.
// It is built once from configuration and shared read-only.
type Identity struct {
	// Name is the owner's display name.
	Name string

	// Aliases are other names the owner goes by in transcripts.
	Aliases []string
}

// NewIdentity creates an identity, trimming blanks and duplicate aliases.
func NewIdentity(name string, aliases ...string) Identity {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultOwnerName
	}
	seen := make(map[string]bool, len(aliases))
	clean := make([]string, 0, len(aliases))
	for _, a := range aliases {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		clean = append(clean, a)
	}
	return Identity{Name: name, Aliases: clean}
}

// HasAliases returns true if any alias is configured.
func (i Identity) HasAliases() bool {
	return len(i.Aliases) > 0
}

// CandidateCommitment is a commitment as produced by inference,
// before its due-date phrase is resolved.
type CandidateCommitment struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDateRaw  *string `json:"due_date_raw"`
}

// CalendarDate is a date with no time-of-day or zone.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// ParseCalendarDate parses the canonical YYYY-MM-DD form.
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(CanonicalDateLayout, strings.TrimSpace(s))
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%w: calendar date %q", ErrInvalidInput, s)
	}
	return DateOf(t), nil
}

// String renders the canonical YYYY-MM-DD form.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight of the date in loc.
func (d CalendarDate) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d is strictly earlier than other.
func (d CalendarDate) Before(other CalendarDate) bool {
	return d.Time(time.UTC).Before(other.Time(time.UTC))
}

// DateStatus is the outcome of resolving a due-date phrase.
type DateStatus string

// Date resolution outcomes.
const (
	DateAbsent      DateStatus = "absent"
	DateResolved    DateStatus = "resolved"
	DateUnparseable DateStatus = "unparseable"
	DateOutOfRange  DateStatus = "out_of_range"
)

// DateResolution is a due-date phrase resolved with its outcome.
type DateResolution struct {
	// Date is nil when absent, unparseable, or out of range in strict mode.
	Date   *CalendarDate
	Status DateStatus

	// Warning describes unparseable and out-of-range phrases.
	Warning string
}

// ResolvedCommitment is the unit handed to persistence.
type ResolvedCommitment struct {
	Title       string
	Description *string

	// DueDate is nil when no date was given or it could not be parsed.
	DueDate *CalendarDate

	// DueDateRaw is the phrase the date was resolved from.
	DueDateRaw *string

	// DateWarning is set when the phrase was unparseable or out of range.
	DateWarning string

	Status TaskStatus
}

// DueDateString returns the canonical due date, or nil when absent.
func (c ResolvedCommitment) DueDateString() *string {
	if c.DueDate == nil {
		return nil
	}
	s := c.DueDate.String()
	return &s
}
