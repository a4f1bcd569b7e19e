package fits

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	blockSize = 2880
	cardSize  = 80
)

// ErrNotFITS indicates the file does not begin with a valid primary header.
var ErrNotFITS = errors.New("not a FITS file")

// Image is a decoded primary HDU: header cards plus the pixel array scaled to
// physical values (BZERO + BSCALE * raw).
type Image struct {
	Header *Header
	Pixels []float64
	BitPix int
	BZero  float64
	BScale float64
}

// SaturationCeiling returns the highest representable physical pixel value for
// the image's storage type. Sixteen-bit data offset by BZERO 32768 is the
// unsigned-camera convention, ceiling 65535.
func (img *Image) SaturationCeiling() float64 {
	switch img.BitPix {
	case 8:
		return img.BZero + img.BScale*255
	case 16:
		return img.BZero + img.BScale*32767
	case 32:
		return img.BZero + img.BScale*math.MaxInt32
	case 64:
		return img.BZero + img.BScale*math.MaxInt64
	default:
		return math.MaxFloat64
	}
}

// ReadHeader opens path and decodes only the primary header.
func ReadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeHeader(f)
}

// ReadImage opens path and decodes the primary header and pixel data.
func ReadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeImage(f)
}

// DecodeImage decodes a primary HDU from r.
func DecodeImage(r io.Reader) (*Image, error) {
	header, err := decodeHeader(r)
	if err != nil {
		return nil, err
	}

	bitpix, ok := header.Int("BITPIX")
	if !ok {
		return nil, fmt.Errorf("%w: missing BITPIX", ErrNotFITS)
	}
	naxis, ok := header.Int("NAXIS")
	if !ok {
		return nil, fmt.Errorf("%w: missing NAXIS", ErrNotFITS)
	}

	pixelCount := int64(1)
	for i := int64(1); i <= naxis; i++ {
		dim, ok := header.Int("NAXIS" + strconv.FormatInt(i, 10))
		if !ok {
			return nil, fmt.Errorf("%w: missing NAXIS%d", ErrNotFITS, i)
		}
		pixelCount *= dim
	}
	if naxis == 0 {
		pixelCount = 0
	}

	bzero := 0.0
	if v, ok := header.Float("BZERO"); ok {
		bzero = v
	}
	bscale := 1.0
	if v, ok := header.Float("BSCALE"); ok {
		bscale = v
	}

	img := &Image{
		Header: header,
		BitPix: int(bitpix),
		BZero:  bzero,
		BScale: bscale,
	}
	if pixelCount == 0 {
		return img, nil
	}

	bytesPerPixel := int(bitpix)
	if bytesPerPixel < 0 {
		bytesPerPixel = -bytesPerPixel
	}
	bytesPerPixel /= 8
	if bytesPerPixel == 0 {
		return nil, fmt.Errorf("invalid BITPIX %d", bitpix)
	}

	dataLen := pixelCount * int64(bytesPerPixel)
	raw := make([]byte, dataLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("read pixel data: %w", err)
	}

	pixels := make([]float64, pixelCount)
	switch bitpix {
	case 8:
		for i := range pixels {
			pixels[i] = bzero + bscale*float64(raw[i])
		}
	case 16:
		for i := range pixels {
			v := int16(binary.BigEndian.Uint16(raw[i*2:]))
			pixels[i] = bzero + bscale*float64(v)
		}
	case 32:
		for i := range pixels {
			v := int32(binary.BigEndian.Uint32(raw[i*4:]))
			pixels[i] = bzero + bscale*float64(v)
		}
	case 64:
		for i := range pixels {
			v := int64(binary.BigEndian.Uint64(raw[i*8:]))
			pixels[i] = bzero + bscale*float64(v)
		}
	case -32:
		for i := range pixels {
			v := math.Float32frombits(binary.BigEndian.Uint32(raw[i*4:]))
			pixels[i] = bzero + bscale*float64(v)
		}
	case -64:
		for i := range pixels {
			v := math.Float64frombits(binary.BigEndian.Uint64(raw[i*8:]))
			pixels[i] = bzero + bscale*v
		}
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}

	img.Pixels = pixels
	return img, nil
}

// decodeHeader reads 2880-byte blocks until the END card.
func decodeHeader(r io.Reader) (*Header, error) {
	header := newHeader()
	block := make([]byte, blockSize)
	sawFirst := false

	for {
		if _, err := io.ReadFull(r, block); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: truncated header", ErrNotFITS)
			}
			return nil, err
		}

		for offset := 0; offset < blockSize; offset += cardSize {
			card := block[offset : offset+cardSize]
			key := strings.TrimRight(string(card[:8]), " ")

			if !sawFirst {
				sawFirst = true
				if key != "SIMPLE" {
					return nil, fmt.Errorf("%w: first card is %q", ErrNotFITS, key)
				}
			}

			if key == "END" {
				return header, nil
			}
			if key == "" || key == "COMMENT" || key == "HISTORY" {
				continue
			}
			if len(card) < 10 || card[8] != '=' || card[9] != ' ' {
				// Commentary-style card without a value indicator.
				continue
			}

			value, comment := parseCardValue(string(card[10:]))
			header.append(Card{Key: key, Value: value, Comment: comment})
		}
	}
}

// parseCardValue decodes the value field of a card, splitting off the inline
// comment after the first slash outside a quoted string.
func parseCardValue(field string) (Value, string) {
	raw := field
	comment := ""

	if strings.HasPrefix(strings.TrimLeft(field, " "), "'") {
		trimmed := strings.TrimLeft(field, " ")
		body, rest, ok := scanFITSString(trimmed)
		if ok {
			if idx := strings.IndexByte(rest, '/'); idx >= 0 {
				comment = strings.TrimSpace(rest[idx+1:])
			}
			return Value{Kind: KindString, Str: body}, comment
		}
		// Unterminated string: fall through and treat as free text.
	}

	if idx := strings.IndexByte(raw, '/'); idx >= 0 {
		comment = strings.TrimSpace(raw[idx+1:])
		raw = raw[:idx]
	}
	raw = strings.TrimSpace(raw)

	switch raw {
	case "T":
		return Value{Kind: KindBool, Bool: true}, comment
	case "F":
		return Value{Kind: KindBool, Bool: false}, comment
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Value{Kind: KindInt, Int: i}, comment
	}

	// FITS floats may carry a Fortran-style D exponent.
	normalized := strings.Map(func(r rune) rune {
		if r == 'D' || r == 'd' {
			return 'E'
		}
		return r
	}, raw)
	if f, err := strconv.ParseFloat(normalized, 64); err == nil {
		return Value{Kind: KindFloat, Float: f}, comment
	}

	return Value{Kind: KindString, Str: raw}, comment
}

// scanFITSString decodes a single-quoted FITS string where '' escapes a quote.
// Returns the body, the remainder of the field, and whether a closing quote
// was found. Trailing blanks inside the string are not significant.
func scanFITSString(field string) (string, string, bool) {
	var b strings.Builder
	i := 1
	for i < len(field) {
		c := field[i]
		if c == '\'' {
			if i+1 < len(field) && field[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2
				continue
			}
			return strings.TrimRight(b.String(), " "), field[i+1:], true
		}
		b.WriteByte(c)
		i++
	}
	return "", "", false
}
