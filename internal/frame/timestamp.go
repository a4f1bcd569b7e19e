package frame

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// timestampLayout is the filename-safe millisecond stamp format.
const timestampLayout = "20060102_150405"

// captureLayouts are the ISO-8601 shapes capture software writes into
// DATE-OBS, tried in order. Values are assumed UTC; a trailing Z is accepted.
var captureLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseCaptureTime parses a DATE-OBS style timestamp.
func ParseCaptureTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range captureLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable capture time %q", value)
}

// FormatStamp renders a time as YYYYMMDD_HHMMSS_mmm.
func FormatStamp(ts time.Time) string {
	return fmt.Sprintf("%s_%03d", ts.Format(timestampLayout), ts.Nanosecond()/1e6)
}

// ParseStamp parses the date and time portion of a YYYYMMDD_HHMMSS_mmm stamp.
// Milliseconds are returned separately as their original three characters so
// an adjusted stamp can carry them through unchanged.
func ParseStamp(stamp string) (time.Time, string, error) {
	if len(stamp) < 15 {
		return time.Time{}, "", fmt.Errorf("stamp %q too short", stamp)
	}
	ts, err := time.Parse(timestampLayout, stamp[:15])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("parse stamp %q: %w", stamp, err)
	}
	ms := "000"
	if len(stamp) >= 19 {
		ms = stamp[16:19]
	}
	return ts, ms, nil
}

// AdjustStamp shifts a stamp by a timezone offset in hours, preserving the
// millisecond suffix. Unparseable stamps are returned unchanged.
func AdjustStamp(stamp string, offsetHours float64) string {
	ts, ms, err := ParseStamp(stamp)
	if err != nil {
		return stamp
	}
	shifted := ts.Add(time.Duration(offsetHours * float64(time.Hour)))
	return fmt.Sprintf("%s_%s", shifted.Format(timestampLayout), ms)
}

// TimezoneLabel renders an offset for filenames: "utcminus6", "utcplus0", or
// bare "utc" when no offset was supplied.
func TimezoneLabel(offsetHours *float64) string {
	if offsetHours == nil {
		return "utc"
	}
	label := fmt.Sprintf("utc%+.0f", *offsetHours)
	label = strings.ReplaceAll(label, "+", "plus")
	return strings.ReplaceAll(label, "-", "minus")
}

// StampForFile derives the acquisition stamp for a file: the capture-time
// header when parseable, else file modification time, else now.
func StampForFile(path, captureTime string, now func() time.Time) string {
	if captureTime != "" {
		if ts, err := ParseCaptureTime(captureTime); err == nil {
			return FormatStamp(ts)
		}
	}
	if info, err := os.Stat(path); err == nil {
		return FormatStamp(info.ModTime())
	}
	if now == nil {
		now = time.Now
	}
	return FormatStamp(now())
}
