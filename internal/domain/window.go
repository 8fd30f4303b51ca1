package domain

import (
	"encoding/json"
	"fmt"

	"github.com/smartstudy/companion/internal/timekit"
)

type WindowKind string

const (
	WindowPreset WindowKind = "preset"
	WindowCustom WindowKind = "custom"
)

type PresetName string

const (
	PresetMorning   PresetName = "morning"
	PresetAfternoon PresetName = "afternoon"
	PresetEvening   PresetName = "evening"
	PresetNight     PresetName = "night"
)

// presetRanges maps each named preset to its wall-clock interval.
var presetRanges = map[PresetName][2]timekit.LocalTime{
	PresetMorning:   {{Hour: 7}, {Hour: 11}},
	PresetAfternoon: {{Hour: 12}, {Hour: 16, Minute: 30}},
	PresetEvening:   {{Hour: 17}, {Hour: 21}},
	PresetNight:     {{Hour: 21}, {Hour: 23}},
}

// StudyWindow is a recurring local-time interval in which the user is
// willing to study: either a named preset or a custom HH:MM range.
type StudyWindow struct {
	Kind   WindowKind
	Preset PresetName
	Start  timekit.LocalTime
	End    timekit.LocalTime
}

// NewPresetWindow builds a window from a preset name.
func NewPresetWindow(name PresetName) (StudyWindow, error) {
	if _, ok := presetRanges[name]; !ok {
		return StudyWindow{}, fmt.Errorf("unknown window preset %q", name)
	}
	return StudyWindow{Kind: WindowPreset, Preset: name}, nil
}

// NewCustomWindow builds a window from explicit wall-clock bounds.
func NewCustomWindow(start, end timekit.LocalTime) StudyWindow {
	return StudyWindow{Kind: WindowCustom, Start: start, End: end}
}

// Range resolves the window to its wall-clock interval.
func (w StudyWindow) Range() (timekit.LocalTime, timekit.LocalTime) {
	if w.Kind == WindowPreset {
		r := presetRanges[w.Preset]
		return r[0], r[1]
	}
	return w.Start, w.End
}

// SpanMinutes is the window's daily length, accounting for overnight wrap.
func (w StudyWindow) SpanMinutes() int {
	start, end := w.Range()
	span := end.Minutes() - start.Minutes()
	if span < 0 {
		span += 24 * 60
	}
	return span
}

type customRangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type windowJSON struct {
	Type  WindowKind      `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (w StudyWindow) MarshalJSON() ([]byte, error) {
	switch w.Kind {
	case WindowPreset:
		value, err := json.Marshal(string(w.Preset))
		if err != nil {
			return nil, err
		}
		return json.Marshal(windowJSON{Type: WindowPreset, Value: value})
	case WindowCustom:
		value, err := json.Marshal(customRangeJSON{Start: w.Start.String(), End: w.End.String()})
		if err != nil {
			return nil, err
		}
		return json.Marshal(windowJSON{Type: WindowCustom, Value: value})
	}
	return nil, fmt.Errorf("unknown window kind %q", w.Kind)
}

// UnmarshalJSON accepts both the tagged form and the legacy bare preset
// string still present in stored user rows.
func (w *StudyWindow) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		parsed, err := NewPresetWindow(PresetName(legacy))
		if err != nil {
			return err
		}
		*w = parsed
		return nil
	}

	var raw windowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing study window: %w", err)
	}
	switch raw.Type {
	case WindowPreset:
		var name string
		if err := json.Unmarshal(raw.Value, &name); err != nil {
			return fmt.Errorf("parsing preset window value: %w", err)
		}
		parsed, err := NewPresetWindow(PresetName(name))
		if err != nil {
			return err
		}
		*w = parsed
		return nil
	case WindowCustom:
		var r customRangeJSON
		if err := json.Unmarshal(raw.Value, &r); err != nil {
			return fmt.Errorf("parsing custom window value: %w", err)
		}
		start, err := timekit.ParseLocalTime(r.Start)
		if err != nil {
			return err
		}
		end, err := timekit.ParseLocalTime(r.End)
		if err != nil {
			return err
		}
		*w = NewCustomWindow(start, end)
		return nil
	}
	return fmt.Errorf("unknown window type %q", raw.Type)
}

// DefaultWindows is the fallback when a user has no usable windows
// configured: the evening preset.
func DefaultWindows() []StudyWindow {
	w, _ := NewPresetWindow(PresetEvening)
	return []StudyWindow{w}
}

// ParseWindows decodes a stored window list, dropping entries that fail to
// parse and falling back to DefaultWindows when nothing usable remains.
func ParseWindows(raw json.RawMessage) []StudyWindow {
	if len(raw) == 0 {
		return DefaultWindows()
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return DefaultWindows()
	}
	var windows []StudyWindow
	for _, entry := range entries {
		var w StudyWindow
		if err := json.Unmarshal(entry, &w); err != nil {
			continue
		}
		windows = append(windows, w)
	}
	if len(windows) == 0 {
		return DefaultWindows()
	}
	return windows
}
