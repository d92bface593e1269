package blankscan

import (
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/bep/imagemeta"
)

// orientation is the EXIF Orientation tag value (1..8).
type orientation int

const orientationNormal orientation = 1

// metaFormats maps image.DecodeConfig format names to imagemeta formats.
// Formats missing here carry no orientation we can read.
var metaFormats = map[string]imagemeta.ImageFormat{
	"jpeg": imagemeta.JPEG,
	"png":  imagemeta.PNG,
	"tiff": imagemeta.TIFF,
	"webp": imagemeta.WebP,
}

// metaReader is what imagemeta needs to walk a file: seeking plus random access.
type metaReader interface {
	io.ReadSeeker
	io.ReaderAt
}

// readOrientation returns the EXIF orientation of the image in r, or
// orientationNormal if there is none or it cannot be read.
// The read position of r is left undefined.
func readOrientation(r metaReader) orientation {
	_, format, err := image.DecodeConfig(r)
	if err != nil {
		return orientationNormal
	}
	imf, ok := metaFormats[format]
	if !ok {
		return orientationNormal
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return orientationNormal
	}

	o := orientationNormal
	_, err = imagemeta.Decode(imagemeta.Options{
		R:           r,
		ImageFormat: imf,
		Sources:     imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Tag == "Orientation"
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			if v, ok := tagValueInt(ti.Value); ok && v >= 1 && v <= 8 {
				o = orientation(v)
			}
			return nil
		},
	})
	if err != nil {
		return orientationNormal
	}
	return o
}

// tagValueInt extracts an integer from a numeric EXIF tag value.
func tagValueInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case uint16:
		return int(val), true
	case uint32:
		return int(val), true
	case uint8:
		return int(val), true
	case uint64:
		return int(val), true
	case float64:
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		return n, err == nil
	case []uint16:
		if len(val) > 0 {
			return int(val[0]), true
		}
	case []any:
		if len(val) > 0 {
			return tagValueInt(val[0])
		}
	}
	return 0, false
}

// transposed reports whether width and height swap on display.
func (o orientation) transposed() bool {
	return o >= 5 && o <= 8
}

// displaySize returns the displayed dimensions of a stored w x h image.
func (o orientation) displaySize(w, h int) (int, int) {
	if o.transposed() {
		return h, w
	}
	return w, h
}

// storedPoint maps displayed coordinates (x, y) to stored pixel coordinates
// for a stored image of size w x h.
func (o orientation) storedPoint(x, y, w, h int) (int, int) {
	switch o {
	case 2: // mirror horizontal
		return w - 1 - x, y
	case 3: // rotate 180
		return w - 1 - x, h - 1 - y
	case 4: // mirror vertical
		return x, h - 1 - y
	case 5: // transpose
		return y, x
	case 6: // rotate 90 CW
		return y, h - 1 - x
	case 7: // transverse
		return w - 1 - y, h - 1 - x
	case 8: // rotate 270 CW
		return w - 1 - y, x
	default:
		return x, y
	}
}
