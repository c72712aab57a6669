package perf

import (
	"testing"
	"time"
)

func TestTrackerStats(t *testing.T) {
	tr := NewTracker()
	tr.RecordFrame(200*time.Microsecond, 1*time.Millisecond, 12, 40)
	tr.RecordFrame(400*time.Microsecond, 3*time.Millisecond, 0, 8)
	tr.RecordDroppedFrame()
	tr.RecordSubmission("accepted", 120*time.Millisecond)
	tr.RecordSubmission("accepted", 80*time.Millisecond)
	tr.RecordSubmission("failed", 40*time.Millisecond)

	s := tr.Stats()
	if s.FramesDecoded != 2 || s.FramesDropped != 1 {
		t.Errorf("frames = %d/%d, want 2/1", s.FramesDecoded, s.FramesDropped)
	}
	if s.SnapshotEvents != 12 || s.QuotesResolved != 48 {
		t.Errorf("events/quotes = %d/%d, want 12/48", s.SnapshotEvents, s.QuotesResolved)
	}
	if s.AvgDecodeUs != 300 {
		t.Errorf("avg decode = %dus, want 300", s.AvgDecodeUs)
	}
	if s.Submissions["accepted"] != 2 || s.Submissions["failed"] != 1 {
		t.Errorf("submissions = %v", s.Submissions)
	}
	if s.AvgSubmitMs != 80 {
		t.Errorf("avg submit = %dms, want 80", s.AvgSubmitMs)
	}
}

func TestTrackerEmptyStats(t *testing.T) {
	s := NewTracker().Stats()
	if s.AvgDecodeUs != 0 || s.AvgSubmitMs != 0 {
		t.Errorf("empty tracker averages must be zero: %+v", s)
	}
}
