package monitor

import (
	"testing"
	"time"
)

func TestParseEventLine_CreationWithTimestamp(t *testing.T) {
	line := `{"level":"info","ts":1700000000.25,"msg":"creating data shard ring proof","frame_number":123,"frame_age":10.5}`
	ev, ok := ParseEventLine(line)
	if !ok {
		t.Fatalf("expected line accepted")
	}
	if ev.Kind != EventCreation {
		t.Fatalf("expected creation, got %q", ev.Kind)
	}
	if ev.FrameNumber != 123 || ev.AgeSeconds != 10.5 {
		t.Fatalf("unexpected fields: frame=%d age=%v", ev.FrameNumber, ev.AgeSeconds)
	}
	want := time.Unix(1700000000, 250000000).UTC()
	if !ev.Timestamp.Equal(want) {
		t.Fatalf("expected ts %s, got %s", want, ev.Timestamp)
	}
}

func TestParseEventLine_SubmissionWithJournalPrefix(t *testing.T) {
	line := `Aug 25 10:00:01 node[4242]: {"ts":1700000100,"msg":"submitting data proof","frame_number":7,"frame_age":15}`
	ev, ok := ParseEventLine(line)
	if !ok {
		t.Fatalf("expected line accepted")
	}
	if ev.Kind != EventSubmission || ev.FrameNumber != 7 || ev.AgeSeconds != 15 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestParseEventLine_JournaldEnvelope(t *testing.T) {
	line := `{"MESSAGE":"{\"ts\":1700000200,\"msg\":\"creating data shard ring proof\",\"frame_number\":9,\"frame_age\":3.25}","_SYSTEMD_UNIT":"ceremonyclient.service"}`
	ev, ok := ParseEventLine(line)
	if !ok {
		t.Fatalf("expected envelope line accepted")
	}
	if ev.Kind != EventCreation || ev.FrameNumber != 9 || ev.AgeSeconds != 3.25 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestParseEventLine_RejectsQuietly(t *testing.T) {
	lines := []string{
		"",
		"completely unrelated log line",
		`{"msg":"some other message","frame_number":1,"frame_age":2}`,
		"creating data shard ring proof without any payload",
		`creating data shard ring proof {"frame_number":1}`,
		`creating data shard ring proof {"frame_age":2.5}`,
		`creating data shard ring proof {"frame_number":1,"frame_age":-3}`,
		`creating data shard ring proof {broken json`,
	}
	for _, line := range lines {
		if _, ok := ParseEventLine(line); ok {
			t.Fatalf("expected line rejected: %q", line)
		}
	}
}
