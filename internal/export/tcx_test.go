package export

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/hperssn/microdesk/internal/domain"
	"github.com/hperssn/microdesk/internal/storage"
)

func session(id, name string, start time.Time, d time.Duration, exercises int) storage.SessionRecord {
	rec := storage.SessionRecord{
		ID:          id,
		Date:        start.Format(storage.DateLayout),
		StartedAt:   start,
		EndedAt:     start.Add(d),
		Status:      storage.StatusCompleted,
		WorkoutID:   "w",
		WorkoutName: name,
	}
	for i := 0; i < exercises; i++ {
		rec.Exercises = append(rec.Exercises, domain.ExerciseEntry{Name: "ex", PlannedSeconds: 30, ActualSeconds: 30})
	}
	return rec
}

func parse(t require.TestingT, data []byte) trainingCenterDatabase {
	var doc trainingCenterDatabase
	require.NoError(t, xml.Unmarshal(data, &doc))
	return doc
}

func TestTCXTwoSessionsSameDay(t *testing.T) {
	day := time.Date(2025, 12, 5, 10, 0, 0, 0, time.UTC)
	late := session("b", "Shoulders", day.Add(10*time.Minute), 300*time.Second, 4)
	early := session("a", "Neck", day, 300*time.Second, 5)

	data, err := TCX("2025-12-05", time.UTC, []storage.SessionRecord{late, early})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte(xml.Header)))

	doc := parse(t, data)
	assert.Equal(t, Namespace, doc.XMLName.Space)
	act := doc.Activities.Activity
	assert.Equal(t, "Other", act.Sport)
	assert.Equal(t, "2025-12-05T00:00:00Z", act.ID)

	require.Len(t, act.Laps, 2)
	assert.Equal(t, "2025-12-05T10:00:00Z", act.Laps[0].StartTime)
	assert.Equal(t, "2025-12-05T10:10:00Z", act.Laps[1].StartTime)
	for _, l := range act.Laps {
		assert.Equal(t, 300, l.TotalTimeSeconds)
		assert.Equal(t, "Active", l.Intensity)
		assert.Equal(t, "Manual", l.TriggerMethod)
		require.Len(t, l.Track.Trackpoints, 301)
	}
	assert.Equal(t, "2025-12-05T10:00:00Z", act.Laps[0].Track.Trackpoints[0].Time)
	assert.Equal(t, "2025-12-05T10:05:00Z", act.Laps[0].Track.Trackpoints[300].Time)
	assert.Equal(t, "Neck (5 exercises)", act.Laps[0].Notes)
	assert.Equal(t, "Shoulders (4 exercises)", act.Laps[1].Notes)
}

func TestTCXDayIDIsLocalMidnight(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	start := time.Date(2025, 12, 5, 8, 0, 0, 0, oslo)
	data, err := TCX("2025-12-05", oslo, []storage.SessionRecord{session("a", "Neck", start, time.Minute, 1)})
	require.NoError(t, err)

	doc := parse(t, data)
	assert.Equal(t, "2025-12-04T23:00:00Z", doc.Activities.Activity.ID)
	assert.Equal(t, "2025-12-05T07:00:00Z", doc.Activities.Activity.Laps[0].StartTime)
}

func TestTCXDropsSubSecondPrecision(t *testing.T) {
	start := time.Date(2025, 12, 5, 10, 0, 0, 400_000_000, time.UTC)
	data, err := TCX("2025-12-05", time.UTC, []storage.SessionRecord{session("a", "Neck", start, 2*time.Second, 1)})
	require.NoError(t, err)

	assert.NotContains(t, string(data), ".4")
	doc := parse(t, data)
	l := doc.Activities.Activity.Laps[0]
	assert.Equal(t, "2025-12-05T10:00:00Z", l.StartTime)
	assert.Len(t, l.Track.Trackpoints, 3)
}

func TestTCXEscapesNotes(t *testing.T) {
	name := `Neck & "shoulders" <5'>`
	data, err := TCX("2025-12-05", time.UTC, []storage.SessionRecord{
		session("a", name, time.Date(2025, 12, 5, 10, 0, 0, 0, time.UTC), time.Second, 2),
	})
	require.NoError(t, err)

	raw := string(data)
	assert.NotContains(t, raw, name)
	assert.Contains(t, raw, "&amp;")
	assert.Contains(t, raw, "&lt;")

	doc := parse(t, data)
	assert.Equal(t, name+" (2 exercises)", doc.Activities.Activity.Laps[0].Notes)
}

func TestTCXClampsDegenerateDurations(t *testing.T) {
	start := time.Date(2025, 12, 5, 10, 0, 0, 0, time.UTC)
	data, err := TCX("2025-12-05", time.UTC, []storage.SessionRecord{session("a", "Neck", start, 0, 0)})
	require.NoError(t, err)

	l := parse(t, data).Activities.Activity.Laps[0]
	assert.Equal(t, 1, l.TotalTimeSeconds)
	assert.Len(t, l.Track.Trackpoints, 1)
}

func TestTCXEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTCX(&buf, "2025-12-05", time.UTC, nil)
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.Zero(t, buf.Len())
}

func TestTCXBadDate(t *testing.T) {
	start := time.Date(2025, 12, 5, 10, 0, 0, 0, time.UTC)
	_, err := TCX("05.12.2025", time.UTC, []storage.SessionRecord{session("a", "Neck", start, time.Second, 0)})
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "microdesk_2025-12-05.tcx", Filename("microdesk", "2025-12-05"))
}

func TestTCXRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := time.Date(2025, 12, 5, 6, 0, 0, 0, time.UTC)
		n := rapid.IntRange(1, 6).Draw(t, "sessions")

		var sessions []storage.SessionRecord
		for i := 0; i < n; i++ {
			offset := time.Duration(rapid.Int64Range(0, int64(12*time.Hour)).Draw(t, "offset"))
			length := time.Duration(rapid.Int64Range(0, int64(3*time.Minute)).Draw(t, "length"))
			sessions = append(sessions, session(string(rune('a'+i)), "W", base.Add(offset), length, i))
		}

		first, err := TCX("2025-12-05", time.UTC, sessions)
		if err != nil {
			t.Fatalf("TCX: %v", err)
		}
		second, err := TCX("2025-12-05", time.UTC, sessions)
		if err != nil {
			t.Fatalf("TCX: %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Fatalf("output not deterministic")
		}

		doc := parse(t, first)
		laps := doc.Activities.Activity.Laps
		if len(laps) != n {
			t.Fatalf("laps = %d, want %d", len(laps), n)
		}

		want := map[string]int{}
		for _, s := range sessions {
			want[formatTime(s.StartedAt)+"|"+notes(s)] = domain.ElapsedSeconds(s.StartedAt, s.EndedAt)
		}
		prev := ""
		for _, l := range laps {
			if strings.Compare(l.StartTime, prev) < 0 {
				t.Fatalf("laps out of order: %s after %s", l.StartTime, prev)
			}
			prev = l.StartTime
			if got, ok := want[l.StartTime+"|"+l.Notes]; !ok || got != l.TotalTimeSeconds {
				t.Fatalf("lap %s total = %d, want %d", l.StartTime, l.TotalTimeSeconds, got)
			}
		}
	})
}
