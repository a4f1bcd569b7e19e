package organize

import "github.com/gvrocha/rocksolid-fits/internal/frame"

// KeyKind discriminates the two grouping schemes.
type KeyKind int

const (
	// KindCalibration groups library-bound darks and bias across sessions.
	KindCalibration KeyKind = iota
	// KindSession groups everything else by observing night and target.
	KindSession
)

// GroupKey is the sole clustering criterion for temperature binning. It is a
// tagged value: calibration keys carry frame type, gain, and (for darks)
// exposure; session keys carry the full acquisition context. Unused fields
// stay zero so equal contexts compare equal.
type GroupKey struct {
	Kind KeyKind

	FrameType       string
	Gain            string
	ExposureSeconds float64

	SessionDate string
	Target      string
	Filter      string
}

// KeyFor derives a record's group key. calibrationLibrary mirrors the
// routing decision: only library-bound darks and bias use calibration keys.
func KeyFor(rec *frame.Record, calibrationLibrary bool) GroupKey {
	if calibrationLibrary && rec.IsCalibration() {
		key := GroupKey{
			Kind:      KindCalibration,
			FrameType: rec.FrameType,
			Gain:      rec.Gain,
		}
		if rec.Class == frame.ClassDark {
			key.ExposureSeconds = rec.ExposureSeconds
		}
		return key
	}
	return GroupKey{
		Kind:            KindSession,
		FrameType:       rec.FrameType,
		Gain:            rec.Gain,
		ExposureSeconds: rec.ExposureSeconds,
		SessionDate:     rec.SessionDate,
		Target:          rec.Target,
		Filter:          rec.Filter,
	}
}

// Group partitions records into disjoint groups, preserving input order
// within each group.
func Group(records []*frame.Record, calibrationLibrary bool) map[GroupKey][]*frame.Record {
	groups := make(map[GroupKey][]*frame.Record)
	for _, rec := range records {
		key := KeyFor(rec, calibrationLibrary)
		groups[key] = append(groups[key], rec)
	}
	return groups
}
