package frame

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gvrocha/rocksolid-fits/internal/fits"
	"github.com/gvrocha/rocksolid-fits/internal/textutil"
)

// Candidate key chains per attribute, in fallback order.
var (
	frameTypeKeys   = []string{"FRAME", "IMAGETYP"}
	exposureKeys    = []string{"EXPTIME", "EXPOSURE"}
	filterKeys      = []string{"FILTER"}
	temperatureKeys = []string{"CCD-TEMP", "SET-TEMP"}
	targetKeys      = []string{"OBJECT", "OBJNAME"}
	captureKeys     = []string{"DATE-OBS", "DATE"}
	longitudeKeys   = []string{"SITELON", "SITELONG", "LONG-OBS"}
	gainKeys        = []string{"GAIN"}
)

// HeaderSource is the collaborator capability that turns a file path into a
// decoded header, or fails.
type HeaderSource interface {
	ReadHeader(path string) (*fits.Header, error)
}

// HeaderSourceFunc adapts a function to the HeaderSource interface.
type HeaderSourceFunc func(path string) (*fits.Header, error)

func (f HeaderSourceFunc) ReadHeader(path string) (*fits.Header, error) {
	return f(path)
}

// DefaultHeaderSource reads headers from disk via the fits package.
func DefaultHeaderSource() HeaderSource {
	return HeaderSourceFunc(fits.ReadHeader)
}

// Extractor builds FrameRecords from exposure files.
type Extractor struct {
	headers HeaderSource
	// tzOffsetHours is the caller-supplied UTC offset used for session
	// grouping; nil means derive from headers or treat timestamps as local.
	tzOffsetHours *float64
	now           func() time.Time
}

// NewExtractor constructs an extractor. A nil source uses the on-disk FITS
// reader; a nil clock uses time.Now.
func NewExtractor(source HeaderSource, tzOffsetHours *float64, now func() time.Time) *Extractor {
	if source == nil {
		source = DefaultHeaderSource()
	}
	if now == nil {
		now = time.Now
	}
	return &Extractor{headers: source, tzOffsetHours: tzOffsetHours, now: now}
}

// Extract reads one file's header and produces its immutable Record. Missing
// or malformed attributes degrade to documented sentinels; only a failed
// header read is an error.
func (e *Extractor) Extract(path string) (*Record, error) {
	header, err := e.headers.ReadHeader(path)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	rec := &Record{OriginPath: path}

	frameType, ok := header.String(frameTypeKeys...)
	if !ok {
		frameType = "Unknown"
	}
	rec.FrameType = textutil.SanitizeToken(frameType)
	rec.Class = ClassifyFrameType(rec.FrameType)

	if exposure, ok := header.Float(exposureKeys...); ok {
		rec.ExposureSeconds = exposure
	}

	gain, ok := header.String(gainKeys...)
	if !ok {
		gain = "unknown"
	}
	rec.Gain = gainLabel(gain)

	if filter, ok := header.String(filterKeys...); ok {
		rec.Filter = textutil.SanitizeToken(filter)
	} else {
		rec.Filter = FilterNone
	}

	if temp, ok := header.Float(temperatureKeys...); ok {
		rec.Temperature = &temp
	}

	target, ok := header.String(targetKeys...)
	if !ok {
		target = UnknownTarget
	}
	rec.Target = textutil.SanitizeToken(textutil.CollapseCatalogSpacing(target))

	captureRaw, _ := header.String(captureKeys...)
	rec.Timestamp = StampForFile(path, captureRaw, e.now)
	rec.SessionDate = e.resolveSessionDate(path, header, captureRaw)

	return rec, nil
}

func (e *Extractor) resolveSessionDate(path string, header *fits.Header, captureRaw string) string {
	if captureRaw == "" {
		if date, ok := SessionFromFilename(filepath.Base(path)); ok {
			return date
		}
		return UnknownDate
	}
	capture, err := ParseCaptureTime(captureRaw)
	if err != nil {
		return UnknownDate
	}
	var longitude *float64
	if lon, ok := header.Float(longitudeKeys...); ok {
		longitude = &lon
	}
	return ResolveSession(capture, e.tzOffsetHours, longitude)
}

// gainLabel normalizes a gain header value into a "gain"-prefixed token.
func gainLabel(raw string) string {
	token := textutil.SanitizeToken(raw)
	if len(token) >= 4 && token[:4] == "gain" {
		return token
	}
	return "gain" + token
}
