package monitor

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Fixed markers identifying the two frame lifecycle stages in the worker's
// journal. Lines without either marker are noise.
const (
	creationMarker   = "creating data shard ring proof"
	submissionMarker = "submitting data proof"
)

// eventPayload is the JSON document the worker logs. Fields are pointers so
// a missing field is distinguishable from a zero value.
type eventPayload struct {
	TS          *float64 `json:"ts"`
	FrameNumber *uint64  `json:"frame_number"`
	FrameAge    *float64 `json:"frame_age"`
}

// ParseEventLine turns one raw journal line into a RawEvent. A line is
// accepted only if it carries one of the stage markers and its embedded JSON
// yields a frame number and a non-negative age. Anything else is dropped;
// a corrupt line never aborts the batch. No side effects.
func ParseEventLine(line string) (RawEvent, bool) {
	var kind EventKind
	switch {
	case strings.Contains(line, creationMarker):
		kind = EventCreation
	case strings.Contains(line, submissionMarker):
		kind = EventSubmission
	default:
		return RawEvent{}, false
	}

	start := strings.Index(line, "{")
	if start < 0 {
		return RawEvent{}, false
	}
	payload, ok := decodePayload(line[start:])
	if !ok {
		return RawEvent{}, false
	}
	if *payload.FrameAge < 0 {
		return RawEvent{}, false
	}

	ev := RawEvent{
		Kind:        kind,
		FrameNumber: *payload.FrameNumber,
		AgeSeconds:  *payload.FrameAge,
	}
	if payload.TS != nil && *payload.TS > 0 {
		sec, frac := math.Modf(*payload.TS)
		ev.Timestamp = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	return ev, true
}

// decodePayload handles both shapes the journal produces: the worker's JSON
// line directly, and journald's JSON envelope with the worker's line nested
// inside the MESSAGE string.
func decodePayload(doc string) (eventPayload, bool) {
	var p eventPayload
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return eventPayload{}, false
	}
	if p.FrameNumber != nil && p.FrameAge != nil {
		return p, true
	}

	var envelope struct {
		Message string `json:"MESSAGE"`
	}
	if err := json.Unmarshal([]byte(doc), &envelope); err != nil || envelope.Message == "" {
		return eventPayload{}, false
	}
	var inner eventPayload
	if err := json.Unmarshal([]byte(envelope.Message), &inner); err != nil {
		return eventPayload{}, false
	}
	if inner.FrameNumber == nil || inner.FrameAge == nil {
		return eventPayload{}, false
	}
	return inner, true
}
