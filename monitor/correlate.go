package monitor

import (
	"sort"
	"time"
)

// frameEntry accumulates observations for one frame number within a day:
// at most one creation sample and every submission age seen.
type frameEntry struct {
	HasCreation    bool      `json:"has_creation,omitempty"`
	CreationAge    float64   `json:"creation_age,omitempty"`
	CreationAt     time.Time `json:"creation_at,omitempty"`
	SubmissionAges []float64 `json:"submission_ages,omitempty"`
}

// DayState is the working correlation state for one calendar day. Applying
// events is a commutative fold: the earliest creation wins (ties keep the
// smaller age) and submission ages are kept as a sorted multiset, so any
// permutation of the same event set produces the same state. The state
// serializes to JSON so the in-progress day's samples survive between runs
// and merge with new batches.
type DayState struct {
	Frames map[uint64]*frameEntry `json:"frames"`
}

func NewDayState() *DayState {
	return &DayState{Frames: make(map[uint64]*frameEntry)}
}

func (s *DayState) entry(frame uint64) *frameEntry {
	if s.Frames == nil {
		s.Frames = make(map[uint64]*frameEntry)
	}
	e, ok := s.Frames[frame]
	if !ok {
		e = &frameEntry{}
		s.Frames[frame] = e
	}
	return e
}

func creationBeats(at time.Time, age float64, e *frameEntry) bool {
	if !e.HasCreation {
		return true
	}
	if at.Before(e.CreationAt) {
		return true
	}
	return at.Equal(e.CreationAt) && age < e.CreationAge
}

func insertSorted(ages []float64, age float64) []float64 {
	i := sort.SearchFloat64s(ages, age)
	ages = append(ages, 0)
	copy(ages[i+1:], ages[i:])
	ages[i] = age
	return ages
}

// Apply folds one event into the state. Duplicate creations for a frame are
// ignored; submissions always append, with or without a matching creation.
func (s *DayState) Apply(ev RawEvent) {
	e := s.entry(ev.FrameNumber)
	switch ev.Kind {
	case EventCreation:
		if creationBeats(ev.Timestamp, ev.AgeSeconds, e) {
			e.HasCreation = true
			e.CreationAge = ev.AgeSeconds
			e.CreationAt = ev.Timestamp
		}
	case EventSubmission:
		e.SubmissionAges = insertSorted(e.SubmissionAges, ev.AgeSeconds)
	}
}

// Merge folds another state into this one. Merging states built from a split
// of an event set equals the state built from the whole set.
func (s *DayState) Merge(other *DayState) {
	if other == nil {
		return
	}
	for frame, oe := range other.Frames {
		e := s.entry(frame)
		if oe.HasCreation && creationBeats(oe.CreationAt, oe.CreationAge, e) {
			e.HasCreation = true
			e.CreationAge = oe.CreationAge
			e.CreationAt = oe.CreationAt
		}
		for _, age := range oe.SubmissionAges {
			e.SubmissionAges = insertSorted(e.SubmissionAges, age)
		}
	}
}

// Samples extracts the three sample collections: one creation age per frame
// that has a creation, every submission age, and one cpu time per submission
// whose frame has a creation and whose difference is strictly positive.
// Negative differences indicate clock or ordering anomalies and are excluded,
// not zero-clamped. Frame iteration is in frame-number order so repeated
// extraction is deterministic.
func (s *DayState) Samples() (creation, submission, cpu []float64) {
	frames := make([]uint64, 0, len(s.Frames))
	for f := range s.Frames {
		frames = append(frames, f)
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i] < frames[j] })

	for _, f := range frames {
		e := s.Frames[f]
		if e.HasCreation {
			creation = append(creation, e.CreationAge)
		}
		for _, age := range e.SubmissionAges {
			submission = append(submission, age)
			if e.HasCreation {
				if d := age - e.CreationAge; d > 0 {
					cpu = append(cpu, d)
				}
			}
		}
	}
	return creation, submission, cpu
}

// Records collapses the state into per-frame records. A frame with multiple
// submissions reports its earliest (smallest) submission age.
func (s *DayState) Records() map[uint64]FrameRecord {
	out := make(map[uint64]FrameRecord, len(s.Frames))
	for frame, e := range s.Frames {
		rec := FrameRecord{FrameNumber: frame}
		if e.HasCreation {
			v := e.CreationAge
			rec.CreationAge = &v
		}
		if len(e.SubmissionAges) > 0 {
			v := e.SubmissionAges[0]
			rec.SubmissionAge = &v
		}
		if rec.CreationAge != nil && rec.SubmissionAge != nil {
			if d := *rec.SubmissionAge - *rec.CreationAge; d > 0 {
				rec.CPUTime = &d
			}
		}
		out[frame] = rec
	}
	return out
}
