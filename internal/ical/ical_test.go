package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstudy/companion/internal/timekit"
)

func TestFeedEncodeStructure(t *testing.T) {
	feed := &Feed{
		Name:     "Study Plan",
		Timezone: "Europe/Berlin",
		Now:      time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		Events: []Event{
			{
				UID:     "evt-1@example.com",
				Summary: "Essay draft",
				Start:   time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC),
				End:     time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC),
				Status:  "TENTATIVE",
			},
		},
	}

	out := string(feed.Encode())

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Contains(t, out, "VERSION:2.0\r\n")
	assert.Contains(t, out, "PRODID:-//Smart Study Companion//Schedule Feed//EN\r\n")
	assert.Contains(t, out, "X-WR-CALNAME:Study Plan\r\n")
	assert.Contains(t, out, "X-WR-TIMEZONE:Europe/Berlin\r\n")
	assert.Contains(t, out, "X-PUBLISHED-TTL:PT1H\r\n")

	assert.Contains(t, out, "UID:evt-1@example.com\r\n")
	assert.Contains(t, out, "DTSTAMP:20250602T080000Z\r\n")
	assert.Contains(t, out, "DTSTART:20250602T170000Z\r\n")
	assert.Contains(t, out, "DTEND:20250602T180000Z\r\n")
	assert.Contains(t, out, "SUMMARY:Essay draft\r\n")
	assert.Contains(t, out, "STATUS:TENTATIVE\r\n")
	assert.NotContains(t, out, "DESCRIPTION:", "empty descriptions are omitted")

	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 75, "line %q exceeds the octet limit", line)
	}
}

func TestFeedEncodeWeeklyRecurrence(t *testing.T) {
	feed := &Feed{
		Timezone: "UTC",
		Now:      time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		Weekly: []WeeklyEvent{
			{
				UID:     "busy-1@example.com",
				Summary: "Physics lecture",
				Days:    []int{0, 2}, // Monday, Wednesday
				Start:   timekit.LocalTime{Hour: 10},
				End:     timekit.LocalTime{Hour: 11, Minute: 30},
				// Wednesday: the first matching weekday on or after it is itself.
				Anchor: timekit.LocalDate{Year: 2025, Month: 6, Day: 4},
			},
		},
	}

	out := string(feed.Encode())

	assert.Contains(t, out, "DTSTART;TZID=UTC:20250604T100000\r\n")
	assert.Contains(t, out, "DTEND;TZID=UTC:20250604T113000\r\n")
	assert.Contains(t, out, "RRULE:FREQ=WEEKLY;BYDAY=MO,WE\r\n")
}

func TestFeedEncodeSkipsWeeklyWithoutDays(t *testing.T) {
	feed := &Feed{
		Timezone: "UTC",
		Now:      time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		Weekly:   []WeeklyEvent{{UID: "empty@example.com", Summary: "Nothing"}},
	}

	out := string(feed.Encode())
	assert.NotContains(t, out, "empty@example.com")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}

func TestFirstOnOrAfter(t *testing.T) {
	monday := timekit.LocalDate{Year: 2025, Month: 6, Day: 2}

	got := firstOnOrAfter(monday, []int{0})
	assert.Equal(t, monday, got, "the anchor itself matches")

	got = firstOnOrAfter(monday, []int{3, 5}) // Thursday, Saturday
	assert.Equal(t, timekit.LocalDate{Year: 2025, Month: 6, Day: 5}, got)

	got = firstOnOrAfter(monday, []int{6}) // Sunday
	assert.Equal(t, timekit.LocalDate{Year: 2025, Month: 6, Day: 8}, got)
}

func TestByDayList(t *testing.T) {
	assert.Equal(t, "MO,WE,FR", byDayList([]int{0, 2, 4}))
	assert.Equal(t, "SU", byDayList([]int{6}))
	assert.Equal(t, "MO", byDayList([]int{-1, 0, 9}), "out-of-range days are dropped")
	assert.Equal(t, "", byDayList(nil))
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, `Lunch\, then lab\; maybe`, escapeText("Lunch, then lab; maybe"))
	assert.Equal(t, `C:\\Users`, escapeText(`C:\Users`))
	assert.Equal(t, `line one\nline two`, escapeText("line one\nline two"))
	assert.Equal(t, `line one\nline two`, escapeText("line one\r\nline two"))
}

func TestWriteFoldedLongLines(t *testing.T) {
	feed := &Feed{
		Timezone: "UTC",
		Now:      time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		Events: []Event{
			{
				UID:         "long@example.com",
				Summary:     "Review",
				Description: strings.Repeat("study notes ", 20),
				Start:       time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC),
				End:         time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC),
			},
		},
	}

	out := string(feed.Encode())
	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")

	folded := false
	for _, line := range lines {
		require.LessOrEqual(t, len(line), 75)
		if strings.HasPrefix(line, " ") {
			folded = true
		}
	}
	assert.True(t, folded, "the long description produces continuation lines")

	// Unfolding restores the original content line.
	unfolded := strings.ReplaceAll(out, "\r\n ", "")
	assert.Contains(t, unfolded, "DESCRIPTION:"+strings.Repeat("study notes ", 20))
}

func TestWriteFoldedKeepsUTF8Intact(t *testing.T) {
	padding := strings.Repeat("a", 73)
	feed := &Feed{
		Timezone: "UTC",
		Now:      time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		Events: []Event{
			{
				UID:     "utf8@example.com",
				Summary: padding + "日本語",
				Start:   time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC),
				End:     time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC),
			},
		},
	}

	out := string(feed.Encode())
	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.True(t, strings.HasPrefix(line, " ") || len(line) <= 75)
		for _, r := range line {
			assert.NotEqual(t, '\uFFFD', r, "no rune is split across a fold")
		}
	}
}
