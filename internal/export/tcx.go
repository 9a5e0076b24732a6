// Package export writes a day's sessions as a Training Center (TCX) document
// so they can be imported into fitness tracking tools.
package export

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/hperssn/microdesk/internal/domain"
	"github.com/hperssn/microdesk/internal/storage"
)

const (
	Namespace   = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"
	ContentType = "application/vnd.garmin.tcx+xml"

	// TimeLayout is UTC with second precision.
	TimeLayout = "2006-01-02T15:04:05Z"
)

var ErrNothingToExport = errors.New("nothing to export")

type trainingCenterDatabase struct {
	XMLName    xml.Name   `xml:"TrainingCenterDatabase"`
	Xmlns      string     `xml:"xmlns,attr"`
	Activities activities `xml:"Activities"`
}

type activities struct {
	Activity activity `xml:"Activity"`
}

type activity struct {
	Sport string `xml:"Sport,attr"`
	ID    string `xml:"Id"`
	Laps  []lap  `xml:"Lap"`
}

type lap struct {
	StartTime        string `xml:"StartTime,attr"`
	TotalTimeSeconds int    `xml:"TotalTimeSeconds"`
	Intensity        string `xml:"Intensity"`
	TriggerMethod    string `xml:"TriggerMethod"`
	Track            track  `xml:"Track"`
	Notes            string `xml:"Notes"`
}

type track struct {
	Trackpoints []trackpoint `xml:"Trackpoint"`
}

type trackpoint struct {
	Time string `xml:"Time"`
}

// Filename is the download name for a day's export, e.g.
// microdesk_2025-12-05.tcx.
func Filename(app, date string) string {
	return fmt.Sprintf("%s_%s.tcx", app, date)
}

// DayID is the UTC instant of local midnight on date.
func DayID(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(storage.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse export date %q: %w", date, err)
	}
	return day.UTC(), nil
}

// WriteTCX writes one activity for date with a lap per session. Sessions are
// emitted in start order. Nothing is written when sessions is empty.
func WriteTCX(w io.Writer, date string, loc *time.Location, sessions []storage.SessionRecord) error {
	if len(sessions) == 0 {
		return ErrNothingToExport
	}

	dayID, err := DayID(date, loc)
	if err != nil {
		return err
	}

	sorted := make([]storage.SessionRecord, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartedAt.Before(sorted[j].StartedAt)
	})

	doc := trainingCenterDatabase{
		Xmlns: Namespace,
		Activities: activities{
			Activity: activity{
				Sport: "Other",
				ID:    formatTime(dayID),
				Laps:  make([]lap, 0, len(sorted)),
			},
		},
	}
	for _, s := range sorted {
		doc.Activities.Activity.Laps = append(doc.Activities.Activity.Laps, sessionLap(s))
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode tcx: %w", err)
	}
	buf.WriteByte('\n')

	_, err = w.Write(buf.Bytes())
	return err
}

// TCX returns the document written by WriteTCX.
func TCX(date string, loc *time.Location, sessions []storage.SessionRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTCX(&buf, date, loc, sessions); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sessionLap(s storage.SessionRecord) lap {
	start := s.StartedAt.UTC()
	end := s.EndedAt.UTC()

	var points []trackpoint
	for t := start; !t.After(end); t = t.Add(time.Second) {
		points = append(points, trackpoint{Time: formatTime(t)})
	}

	return lap{
		StartTime:        formatTime(start),
		TotalTimeSeconds: domain.ElapsedSeconds(start, end),
		Intensity:        "Active",
		TriggerMethod:    "Manual",
		Track:            track{Trackpoints: points},
		Notes:            notes(s),
	}
}

func notes(s storage.SessionRecord) string {
	return fmt.Sprintf("%s (%d exercises)", s.WorkoutName, len(s.Exercises))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
