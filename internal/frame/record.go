package frame

import "strings"

// Sentinels keep grouping keys total: a record never carries an empty filter,
// gain, or session component.
const (
	// FilterNone marks frames without a FILTER header (OSC cameras). A header
	// whose filter genuinely sanitizes to "nofilter" is indistinguishable from
	// a missing one; the ambiguity is accepted rather than resolved.
	FilterNone = "nofilter"
	// UnknownDate is the session label for frames whose capture time could not
	// be resolved.
	UnknownDate = "unknown_date"
	// UnknownTarget is the target label for frames without an OBJECT header.
	UnknownTarget = "unknown"
)

// Class is the categorical role of a frame.
type Class int

const (
	// ClassLight is a science exposure; the routing default for frame types
	// that match none of the calibration keywords.
	ClassLight Class = iota
	ClassDark
	ClassBias
	ClassFlat
)

func (c Class) String() string {
	switch c {
	case ClassDark:
		return "dark"
	case ClassBias:
		return "bias"
	case ClassFlat:
		return "flat"
	default:
		return "light"
	}
}

// ClassifyFrameType derives the frame class from a sanitized frame-type token
// by keyword matching, mirroring how capture software writes values like
// "Dark Frame" or "dark".
func ClassifyFrameType(frameType string) Class {
	switch {
	case strings.Contains(frameType, "dark"):
		return ClassDark
	case strings.Contains(frameType, "bias"):
		return ClassBias
	case strings.Contains(frameType, "flat"):
		return ClassFlat
	default:
		return ClassLight
	}
}

// Record is the flat attribute set extracted from one exposure file. It is
// constructed once per run by the extractor and immutable afterwards.
type Record struct {
	OriginPath string

	// FrameType is the sanitized raw frame-type token (used in filenames);
	// Class is the derived category (used for routing).
	FrameType string
	Class     Class

	ExposureSeconds float64
	Gain            string
	Filter          string

	// Temperature is nil when the header carried no usable sensor temperature;
	// such records bypass windowing and land in the unknown-temperature folder.
	Temperature *float64

	// Target is meaningful for light frames only.
	Target string

	// Timestamp is the millisecond-precision acquisition stamp
	// (YYYYMMDD_HHMMSS_mmm), lexicographically sortable.
	Timestamp string

	// SessionDate is the observing-night label (YYYYMMDD or UnknownDate).
	SessionDate string
}

// IsCalibration reports whether the record is eligible for the reusable
// calibration library (darks and bias).
func (r *Record) IsCalibration() bool {
	return r.Class == ClassDark || r.Class == ClassBias
}
