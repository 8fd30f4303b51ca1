package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/smartstudy/companion/internal/timekit"
)

const dateLayout = "2006-01-02"

// parseNullableTime parses a sql.NullString into a *time.Time using the given
// layout. NULL, empty and unparseable values all map to nil.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString converts a *time.Time to a SQLite-storable value:
// NULL for nil, the formatted string otherwise.
func nullableTimeToString(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.Format(layout)
}

// parseNullableDate parses a stored YYYY-MM-DD into a *timekit.LocalDate.
func parseNullableDate(s sql.NullString) *timekit.LocalDate {
	if !s.Valid || s.String == "" {
		return nil
	}
	d, err := timekit.ParseLocalDate(s.String)
	if err != nil {
		return nil
	}
	return &d
}

func nullableDateToString(d *timekit.LocalDate) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// parseNullableClock parses a stored HH:MM into a *timekit.LocalTime.
func parseNullableClock(s sql.NullString) *timekit.LocalTime {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := timekit.ParseLocalTime(s.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullableClockToString(t *timekit.LocalTime) any {
	if t == nil {
		return nil
	}
	return t.String()
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// jsonOrNull marshals v for storage, mapping nil to SQL NULL.
func jsonOrNull(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}
