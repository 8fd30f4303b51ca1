// Package ical renders RFC 5545 calendars. It knows nothing about the
// domain: callers hand it pre-resolved events and a timezone name.
package ical

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/smartstudy/companion/internal/timekit"
)

const (
	prodID       = "-//Smart Study Companion//Schedule Feed//EN"
	publishedTTL = "PT1H"

	utcLayout   = "20060102T150405Z"
	localLayout = "20060102T150405"
)

// Event is a single timed entry with UTC bounds.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Status      string // TENTATIVE, CONFIRMED, CANCELLED
}

// WeeklyEvent recurs on fixed weekdays at fixed local times, rendered as an
// RRULE against the feed's timezone.
type WeeklyEvent struct {
	UID         string
	Summary     string
	Description string
	Days        []int // 0 = Monday
	Start       timekit.LocalTime
	End         timekit.LocalTime
	// Anchor is the local date the first occurrence is placed on (or after,
	// at the first matching weekday).
	Anchor timekit.LocalDate
}

// Feed is a complete calendar document.
type Feed struct {
	Name     string
	Timezone string
	Now      time.Time
	Events   []Event
	Weekly   []WeeklyEvent
}

var byDayCodes = [7]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// Encode renders the feed as an RFC 5545 document with CRLF line endings and
// 75-octet line folding.
func (f *Feed) Encode() []byte {
	var buf bytes.Buffer
	line := func(s string) { writeFolded(&buf, s) }

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:" + prodID)
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	if f.Name != "" {
		line("X-WR-CALNAME:" + escapeText(f.Name))
	}
	if f.Timezone != "" {
		line("X-WR-TIMEZONE:" + f.Timezone)
	}
	line("X-PUBLISHED-TTL:" + publishedTTL)

	stamp := f.Now.UTC().Format(utcLayout)
	for _, e := range f.Events {
		line("BEGIN:VEVENT")
		line("UID:" + e.UID)
		line("DTSTAMP:" + stamp)
		line("DTSTART:" + e.Start.UTC().Format(utcLayout))
		line("DTEND:" + e.End.UTC().Format(utcLayout))
		line("SUMMARY:" + escapeText(e.Summary))
		if e.Description != "" {
			line("DESCRIPTION:" + escapeText(e.Description))
		}
		if e.Status != "" {
			line("STATUS:" + e.Status)
		}
		line("END:VEVENT")
	}

	for _, w := range f.Weekly {
		if len(w.Days) == 0 {
			continue
		}
		first := firstOnOrAfter(w.Anchor, w.Days)
		line("BEGIN:VEVENT")
		line("UID:" + w.UID)
		line("DTSTAMP:" + stamp)
		line(fmt.Sprintf("DTSTART;TZID=%s:%s", f.Timezone, localDateTime(first, w.Start)))
		line(fmt.Sprintf("DTEND;TZID=%s:%s", f.Timezone, localDateTime(first, w.End)))
		line("RRULE:FREQ=WEEKLY;BYDAY=" + byDayList(w.Days))
		line("SUMMARY:" + escapeText(w.Summary))
		if w.Description != "" {
			line("DESCRIPTION:" + escapeText(w.Description))
		}
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return buf.Bytes()
}

// firstOnOrAfter finds the first date on or after the anchor whose weekday is
// in the set.
func firstOnOrAfter(anchor timekit.LocalDate, days []int) timekit.LocalDate {
	set := make(map[int]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	day := anchor
	for i := 0; i < 7; i++ {
		if set[day.Weekday()] {
			return day
		}
		day = day.AddDays(1)
	}
	return anchor
}

func localDateTime(day timekit.LocalDate, t timekit.LocalTime) string {
	return fmt.Sprintf("%04d%02d%02dT%02d%02d00", day.Year, day.Month, day.Day, t.Hour, t.Minute)
}

func byDayList(days []int) string {
	codes := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d < 7 {
			codes = append(codes, byDayCodes[d])
		}
	}
	return strings.Join(codes, ",")
}

// escapeText applies RFC 5545 text escaping.
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\r\n", `\n`,
		"\n", `\n`,
	)
	return r.Replace(s)
}

// writeFolded emits one content line, folding at 75 octets with a
// space-indented continuation, terminated by CRLF.
func writeFolded(buf *bytes.Buffer, s string) {
	const limit = 75
	max := limit
	for len(s) > max {
		cut := max
		// Never split a UTF-8 sequence.
		for cut > 0 && s[cut]&0xC0 == 0x80 {
			cut--
		}
		buf.WriteString(s[:cut])
		buf.WriteString("\r\n ")
		s = s[cut:]
		// Continuation lines carry a leading space inside the same limit.
		max = limit - 1
	}
	buf.WriteString(s)
	buf.WriteString("\r\n")
}
