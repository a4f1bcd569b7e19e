package frame

import (
	"math"
	"regexp"
	"time"
)

// sessionDateLayout is the observing-night label format.
const sessionDateLayout = "20060102"

var embeddedDate = regexp.MustCompile(`\d{8}`)

// ResolveSession converts an absolute capture time to an observing-night
// label. An observing night runs local noon to local noon, so captures before
// noon local time belong to the previous evening's session.
//
// The offset is chosen in priority order: the caller-supplied offset, then an
// astronomical offset derived from the site longitude (floor(longitude/15)),
// then none (the capture time is treated as already local).
func ResolveSession(capture time.Time, offsetHours *float64, siteLongitude *float64) string {
	local := capture
	switch {
	case offsetHours != nil:
		local = local.Add(time.Duration(*offsetHours * float64(time.Hour)))
	case siteLongitude != nil:
		shift := math.Floor(*siteLongitude / 15.0)
		local = local.Add(time.Duration(shift * float64(time.Hour)))
	}
	if local.Hour() < 12 {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format(sessionDateLayout)
}

// SessionFromStamp resolves an observing-night label from an already-formatted
// acquisition stamp plus the caller's offset. Used for the audit-log session
// column so frames that fell back to modification-time stamps still report a
// session consistent with their filename. Returns "" when the stamp cannot be
// parsed.
func SessionFromStamp(stamp string, offsetHours *float64) string {
	ts, _, err := ParseStamp(stamp)
	if err != nil {
		return ""
	}
	if offsetHours != nil {
		ts = ts.Add(time.Duration(*offsetHours * float64(time.Hour)))
	}
	if ts.Hour() < 12 {
		ts = ts.AddDate(0, 0, -1)
	}
	return ts.Format(sessionDateLayout)
}

// SessionFromFilename pulls an 8-digit date out of a filename, the last-ditch
// fallback when no capture-time header exists.
func SessionFromFilename(name string) (string, bool) {
	match := embeddedDate.FindString(name)
	if match == "" {
		return "", false
	}
	return match, true
}
