package organize

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gvrocha/rocksolid-fits/internal/frame"
	"github.com/gvrocha/rocksolid-fits/internal/textutil"
)

// FormatExposure renders an exposure length as a folder token: "0s",
// sub-second values in milliseconds, whole seconds otherwise.
func FormatExposure(seconds float64) string {
	switch {
	case seconds == 0:
		return "0s"
	case seconds < 1:
		return fmt.Sprintf("%dms", int(seconds*1000))
	default:
		return fmt.Sprintf("%ds", int(seconds))
	}
}

// DestinationDir maps a record and its temperature folder to the output
// directory.
//
// Library-bound darks and bias go under calibration/, keyed by gain,
// exposure (darks only), and exact temperature; bias carries no temperature
// segment at all. Everything else goes under sessions/<date>/ with gain
// ordered ahead of exposure so lights can be matched against flats by gain
// alone. Bias and flats omit the temperature segment in session layout too.
func DestinationDir(rec *frame.Record, outputRoot string, calibrationLibrary bool, tempFolder string) string {
	if calibrationLibrary && rec.IsCalibration() {
		if rec.Class == frame.ClassDark {
			return filepath.Join(outputRoot, "calibration", "darks",
				rec.Gain, FormatExposure(rec.ExposureSeconds), tempFolder)
		}
		return filepath.Join(outputRoot, "calibration", "bias", rec.Gain)
	}

	sessionBase := filepath.Join(outputRoot, "sessions", rec.SessionDate)
	switch rec.Class {
	case frame.ClassDark:
		return filepath.Join(sessionBase, "darks", rec.Gain,
			FormatExposure(rec.ExposureSeconds), rec.Filter, tempFolder)
	case frame.ClassBias:
		return filepath.Join(sessionBase, "bias", rec.Gain, rec.Filter)
	case frame.ClassFlat:
		return filepath.Join(sessionBase, "flats", rec.Gain, rec.Filter)
	default:
		return filepath.Join(sessionBase, rec.Target, rec.Gain,
			FormatExposure(rec.ExposureSeconds), rec.Filter, tempFolder)
	}
}

// recordTempToken renders the record's own rounded temperature for filenames,
// independent of the group window label.
func recordTempToken(rec *frame.Record) string {
	if rec.Temperature == nil {
		return UnknownTempFolder
	}
	return FormatTempFolder(RoundTemp(*rec.Temperature))
}

// DestinationFilename builds the output filename. The millisecond stamp plus
// timezone tag is the collision-avoidance mechanism in both modes.
//
// With rename active the name is rebuilt from a class-specific attribute
// subset; otherwise the original basename is sanitized and suffixed.
func DestinationFilename(rec *frame.Record, rename bool, tzOffsetHours *float64) string {
	ext := strings.ToLower(filepath.Ext(rec.OriginPath))
	stamp := rec.Timestamp
	if tzOffsetHours != nil {
		stamp = frame.AdjustStamp(stamp, *tzOffsetHours)
	}
	tz := frame.TimezoneLabel(tzOffsetHours)

	if !rename {
		base := filepath.Base(rec.OriginPath)
		base = textutil.SanitizeToken(strings.TrimSuffix(base, filepath.Ext(base)))
		return fmt.Sprintf("%s_%s_%s%s", base, stamp, tz, ext)
	}

	var name string
	switch rec.Class {
	case frame.ClassBias:
		name = fmt.Sprintf("%s_%s_%s_%s", rec.FrameType, stamp, tz, rec.Gain)
	case frame.ClassFlat:
		name = fmt.Sprintf("%s_%s_%s_%s_%s", rec.FrameType, stamp, tz, rec.Filter, rec.Gain)
	case frame.ClassDark:
		name = fmt.Sprintf("%s_%s_%s_%s_%s_%s", rec.FrameType, stamp, tz,
			rec.Gain, FormatExposure(rec.ExposureSeconds), recordTempToken(rec))
	default:
		name = fmt.Sprintf("%s_%s_%s_%s_%s_%s_%s_%s", rec.FrameType, stamp, tz,
			rec.Target, rec.Filter, rec.Gain,
			FormatExposure(rec.ExposureSeconds), recordTempToken(rec))
	}
	return textutil.SanitizeToken(name) + ext
}
