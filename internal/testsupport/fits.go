package testsupport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// HeaderCard is a raw FITS header card for fixture files. Value must already
// be in FITS notation: quoted strings ('Light'), numbers (300.0), or T/F.
type HeaderCard struct {
	Key   string
	Value string
}

// StringCard formats a string-valued header card.
func StringCard(key, value string) HeaderCard {
	return HeaderCard{Key: key, Value: fmt.Sprintf("'%s'", value)}
}

// FloatCard formats a numeric header card.
func FloatCard(key string, value float64) HeaderCard {
	return HeaderCard{Key: key, Value: fmt.Sprintf("%g", value)}
}

// WriteFrame writes a synthetic 16-bit unsigned FITS frame (BZERO 32768) with
// the given extra header cards and pixel values in row-major order.
func WriteFrame(t testing.TB, path string, cards []HeaderCard, width, height int, pixels []uint16) {
	t.Helper()
	if len(pixels) != width*height {
		t.Fatalf("pixel count %d does not match %dx%d", len(pixels), width, height)
	}

	var buf bytes.Buffer
	writeCard(&buf, HeaderCard{Key: "SIMPLE", Value: "T"})
	writeCard(&buf, HeaderCard{Key: "BITPIX", Value: "16"})
	writeCard(&buf, HeaderCard{Key: "NAXIS", Value: "2"})
	writeCard(&buf, HeaderCard{Key: "NAXIS1", Value: fmt.Sprintf("%d", width)})
	writeCard(&buf, HeaderCard{Key: "NAXIS2", Value: fmt.Sprintf("%d", height)})
	writeCard(&buf, HeaderCard{Key: "BZERO", Value: "32768"})
	writeCard(&buf, HeaderCard{Key: "BSCALE", Value: "1"})
	for _, card := range cards {
		writeCard(&buf, card)
	}
	buf.WriteString(fmt.Sprintf("%-80s", "END"))
	padBlock(&buf, ' ')

	for _, v := range pixels {
		raw := int16(int32(v) - 32768)
		if err := binary.Write(&buf, binary.BigEndian, raw); err != nil {
			t.Fatalf("encode pixel: %v", err)
		}
	}
	padBlock(&buf, 0)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir fixture dir: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}

// WriteCorruptFrame writes a file that fails FITS header decoding.
func WriteCorruptFrame(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("this is not a fits file"), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}

func writeCard(buf *bytes.Buffer, card HeaderCard) {
	buf.WriteString(fmt.Sprintf("%-80s", fmt.Sprintf("%-8s= %s", card.Key, card.Value)))
}

func padBlock(buf *bytes.Buffer, fill byte) {
	const blockSize = 2880
	if rem := buf.Len() % blockSize; rem != 0 {
		buf.Write(bytes.Repeat([]byte{fill}, blockSize-rem))
	}
}
