package extract

import (
	"context"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"
)

// Pattern fragments for Korean date/time phrases. Spans are matched
// leniently; validation happens during resolution.
const (
	relDayPat  = `(그저께|그제|어제|오늘|내일|모레|글피)`
	weekdayPat = `(?:(이번|다음)\s*주?\s*)?([월화수목금토일])요일`
	monthPat   = `(?:(\d{4})년\s*)?(\d{1,2})월(?:\s*(\d{1,2})일)?`
	dayPat     = `(\d{1,2})일`
	timePat    = `(?:(오전|오후|아침|저녁|밤|새벽|낮)\s*)?(\d{1,2})시(?:\s*(반|\d{1,2}분))?`
	datePat    = `(?:` + relDayPat + `|` + weekdayPat + `|` + monthPat + `|` + dayPat + `)`
)

// Span patterns, most specific first. All three are searched over the
// whole text; nested shorter matches lose to the longest candidate.
var (
	reDateTime = regexp.MustCompile(datePat + `\s*` + timePat)
	reDateOnly = regexp.MustCompile(datePat)
	reTimeOnly = regexp.MustCompile(timePat)
)

// Sub-expressions used to resolve an already-matched span.
var (
	reRelDay  = regexp.MustCompile(relDayPat)
	reWeekday = regexp.MustCompile(weekdayPat)
	reMonth   = regexp.MustCompile(monthPat)
	reDay     = regexp.MustCompile(dayPat)
	reTime    = regexp.MustCompile(timePat)
)

var relDayOffsets = map[string]int{
	"그저께": -2,
	"그제":  -2,
	"어제":  -1,
	"오늘":  0,
	"내일":  1,
	"모레":  2,
	"글피":  3,
}

var weekdayIndex = map[string]time.Weekday{
	"일": time.Sunday,
	"월": time.Monday,
	"화": time.Tuesday,
	"수": time.Wednesday,
	"목": time.Thursday,
	"금": time.Friday,
	"토": time.Saturday,
}

// candidate is one date/time-bearing span and its resolved meaning.
type candidate struct {
	text  string
	start int
	end   int
	when  time.Time
}

// Lexical resolves date expressions locally with the pattern table above.
// It is pure: no network, no hidden state, identical output for identical
// (text, anchor) inputs.
type Lexical struct{}

// NewLexical creates the lexical extraction strategy.
func NewLexical() *Lexical {
	return &Lexical{}
}

var _ Strategy = (*Lexical)(nil)

// ExtractTask finds all date/time spans in text, resolves each against
// the anchor and keeps the one with the longest matched substring. The
// title is the text with that span stripped. A text with no span yields
// a nil due date; this is an expected outcome, not an error.
func (l *Lexical) ExtractTask(_ context.Context, text string, anchor time.Time) (*Result, error) {
	best, ok := selectCandidate(findCandidates(text, anchor))
	if !ok {
		return &Result{Title: CleanTitle(text)}, nil
	}
	when := best.when
	return &Result{
		Title:   StripSpan(text, best.start, best.end),
		DueDate: &when,
		Matched: best.text,
	}, nil
}

func findCandidates(text string, anchor time.Time) []candidate {
	var out []candidate
	for _, re := range []*regexp.Regexp{reDateTime, reDateOnly, reTimeOnly} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			span := text[loc[0]:loc[1]]
			when, ok := resolveSpan(span, anchor)
			if !ok {
				continue
			}
			out = append(out, candidate{text: span, start: loc[0], end: loc[1], when: when})
		}
	}
	return out
}

// selectCandidate picks the longest matched substring, the specificity
// proxy: "내일 아침 7시" must win over its nested "내일". Ties break to
// the earliest occurrence.
func selectCandidate(cands []candidate) (candidate, bool) {
	if len(cands) == 0 {
		return candidate{}, false
	}
	best := cands[0]
	bestLen := utf8.RuneCountInString(best.text)
	for _, c := range cands[1:] {
		n := utf8.RuneCountInString(c.text)
		if n > bestLen || (n == bestLen && c.start < best.start) {
			best = c
			bestLen = n
		}
	}
	return best, true
}

// resolveSpan turns one matched span into an absolute timestamp in the
// anchor's timezone. Disambiguation policy:
//
//   - Explicit past words (어제, 그제, ...) stay in the past. Everything
//     else prefers the future occurrence relative to the anchor.
//   - A month without a day means the first day of that month; a date
//     without a time means midnight.
//   - A bare hour reads as 24-hour clock first; when that is already
//     past it retries the 12-hour-later reading on the same day, then
//     rolls to the next day.
//   - A named day (date part present) is authoritative: the bare-hour
//     retry may shift within that day but never off it, except for a
//     bare weekday whose occurrence today has fully passed (+7 days).
func resolveSpan(span string, anchor time.Time) (time.Time, bool) {
	loc := anchor.Location()
	year, month, day := anchor.Date()
	anchorDay := time.Date(year, month, day, 0, 0, 0, 0, loc)

	hasDate := false
	datePast := false    // explicit past word, bias suppressed
	monthDate := false   // month/day form, year-granularity bias
	explicitYear := false
	dayOnly := false // bare day of month, month-granularity bias
	weekdayBare := false

	switch {
	case reRelDay.MatchString(span):
		off := relDayOffsets[reRelDay.FindString(span)]
		t := anchorDay.AddDate(0, 0, off)
		year, month, day = t.Date()
		hasDate = true
		datePast = off < 0
	case reWeekday.MatchString(span):
		m := reWeekday.FindStringSubmatch(span)
		target := weekdayIndex[m[2]]
		var t time.Time
		switch m[1] {
		case "다음":
			// X of the following calendar week (weeks start Monday)
			sinceMonday := (int(anchor.Weekday()) - int(time.Monday) + 7) % 7
			fromMonday := (int(target) - int(time.Monday) + 7) % 7
			t = anchorDay.AddDate(0, 0, -sinceMonday+7+fromMonday)
		case "이번":
			sinceMonday := (int(anchor.Weekday()) - int(time.Monday) + 7) % 7
			fromMonday := (int(target) - int(time.Monday) + 7) % 7
			t = anchorDay.AddDate(0, 0, -sinceMonday+fromMonday)
			datePast = t.Before(anchorDay)
		default:
			// next occurrence within 7 days, today included
			delta := (int(target) - int(anchor.Weekday()) + 7) % 7
			t = anchorDay.AddDate(0, 0, delta)
			weekdayBare = delta == 0
		}
		year, month, day = t.Date()
		hasDate = true
	case reMonth.MatchString(span):
		m := reMonth.FindStringSubmatch(span)
		mo, err := strconv.Atoi(m[2])
		if err != nil || mo < 1 || mo > 12 {
			return time.Time{}, false
		}
		month = time.Month(mo)
		day = 1 // first day of the period when none is given
		if m[3] != "" {
			d, err := strconv.Atoi(m[3])
			if err != nil || d < 1 || d > 31 {
				return time.Time{}, false
			}
			day = d
		}
		if m[1] != "" {
			y, err := strconv.Atoi(m[1])
			if err != nil {
				return time.Time{}, false
			}
			year = y
			explicitYear = true
		}
		hasDate = true
		monthDate = true
	case reDay.MatchString(span):
		m := reDay.FindStringSubmatch(span)
		d, err := strconv.Atoi(m[1])
		if err != nil || d < 1 || d > 31 {
			return time.Time{}, false
		}
		day = d
		hasDate = true
		dayOnly = true
	}

	hour, minute := 0, 0
	hasTime := false
	meridiem := ""
	if m := reTime.FindStringSubmatch(span); m != nil {
		h, err := strconv.Atoi(m[2])
		if err != nil || h > 24 {
			return time.Time{}, false
		}
		meridiem = m[1]
		switch meridiem {
		case "오후", "저녁", "밤":
			if h < 12 {
				h += 12
			}
		case "낮":
			// 낮 2시 is afternoon, 낮 12시 is noon
			if h >= 1 && h <= 6 {
				h += 12
			}
		case "오전", "아침", "새벽":
			if h == 12 {
				h = 0
			}
		}
		if h > 23 {
			return time.Time{}, false
		}
		hour = h
		hasTime = true
		switch {
		case m[3] == "반":
			minute = 30
		case m[3] != "":
			mn, err := strconv.Atoi(m[3][:len(m[3])-len("분")])
			if err != nil || mn > 59 {
				return time.Time{}, false
			}
			minute = mn
		}
	}

	if !hasDate && !hasTime {
		return time.Time{}, false
	}

	// Resolve the day first; day-granularity bias is independent of the
	// clock time.
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if hasDate && !datePast {
		if monthDate && !explicitYear && dayStart.Before(anchorDay) {
			dayStart = dayStart.AddDate(1, 0, 0)
		}
		if dayOnly && dayStart.Before(anchorDay) {
			dayStart = dayStart.AddDate(0, 1, 0)
		}
	}

	t := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), hour, minute, 0, 0, loc)

	if hasTime && !hasDate {
		// Time of day only: prefer the next future occurrence.
		if !t.After(anchor) {
			if meridiem == "" && hour < 12 {
				if retry := t.Add(12 * time.Hour); retry.After(anchor) {
					return retry, true
				}
			}
			t = t.AddDate(0, 0, 1)
		}
		return t, true
	}

	if hasTime && hasDate && !datePast && !t.After(anchor) {
		if meridiem == "" && hour < 12 {
			if retry := t.Add(12 * time.Hour); retry.After(anchor) {
				return retry, true
			}
		}
		if weekdayBare {
			t = t.AddDate(0, 0, 7)
		}
	}

	return t, true
}
