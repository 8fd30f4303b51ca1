package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstudy/companion/internal/timekit"
)

func TestStudyWindowUnmarshalTaggedForms(t *testing.T) {
	var w StudyWindow
	require.NoError(t, json.Unmarshal([]byte(`{"type":"preset","value":"morning"}`), &w))
	assert.Equal(t, WindowPreset, w.Kind)
	start, end := w.Range()
	assert.Equal(t, timekit.LocalTime{Hour: 7}, start)
	assert.Equal(t, timekit.LocalTime{Hour: 11}, end)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"custom","value":{"start":"06:15","end":"08:00"}}`), &w))
	assert.Equal(t, WindowCustom, w.Kind)
	start, end = w.Range()
	assert.Equal(t, timekit.LocalTime{Hour: 6, Minute: 15}, start)
	assert.Equal(t, timekit.LocalTime{Hour: 8}, end)
}

func TestStudyWindowUnmarshalLegacyBareString(t *testing.T) {
	var w StudyWindow
	require.NoError(t, json.Unmarshal([]byte(`"evening"`), &w))
	assert.Equal(t, WindowPreset, w.Kind)
	assert.Equal(t, PresetEvening, w.Preset)

	assert.Error(t, json.Unmarshal([]byte(`"midnight"`), &w))
}

func TestStudyWindowMarshalRoundTrip(t *testing.T) {
	custom := NewCustomWindow(timekit.LocalTime{Hour: 13}, timekit.LocalTime{Hour: 15, Minute: 45})
	raw, err := json.Marshal(custom)
	require.NoError(t, err)

	var back StudyWindow
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, custom, back)
}

func TestStudyWindowSpanMinutes(t *testing.T) {
	w, err := NewPresetWindow(PresetAfternoon)
	require.NoError(t, err)
	assert.Equal(t, 270, w.SpanMinutes())

	overnight := NewCustomWindow(timekit.LocalTime{Hour: 22}, timekit.LocalTime{Hour: 2})
	assert.Equal(t, 240, overnight.SpanMinutes(), "wraps past midnight")
}

func TestParseWindows(t *testing.T) {
	windows := ParseWindows([]byte(`["morning",{"type":"custom","value":{"start":"19:00","end":"20:00"}}]`))
	require.Len(t, windows, 2)
	assert.Equal(t, PresetMorning, windows[0].Preset)
	assert.Equal(t, WindowCustom, windows[1].Kind)

	// Broken entries are dropped; a fully broken list falls back to evening.
	windows = ParseWindows([]byte(`["morning","bogus"]`))
	require.Len(t, windows, 1)
	assert.Equal(t, PresetMorning, windows[0].Preset)

	for _, raw := range []string{"", "not-json", `["bogus"]`, `[]`} {
		windows = ParseWindows([]byte(raw))
		require.Len(t, windows, 1, "input %q", raw)
		assert.Equal(t, PresetEvening, windows[0].Preset)
	}
}
