package blankscan

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// IsWhite reports whether the first min(SampleCount, width) pixels of the top
// row have every R, G and B channel at or above Threshold.
// An image with zero width or zero height has nothing to sample and is never white.
// IsWhite does not modify cfg.
func (cfg *Config) IsWhite(img image.Image) bool {
	return cfg.isWhiteOriented(img, orientationNormal)
}

func (cfg *Config) isWhiteOriented(img image.Image, o orientation) bool {
	b := img.Bounds()
	w, h := o.displaySize(b.Dx(), b.Dy())
	if w <= 0 || h <= 0 {
		return false
	}

	k := min(cfg.sampleCount(), w)
	for x := range k {
		sx, sy := o.storedPoint(x, 0, b.Dx(), b.Dy())
		if !cfg.whitePixel(img.At(b.Min.X+sx, b.Min.Y+sy)) {
			return false
		}
	}
	return true
}

// whitePixel converts c to non-premultiplied 8-bit RGBA and checks each color channel.
// Alpha is ignored, matching a plain RGB conversion.
func (cfg *Config) whitePixel(c color.Color) bool {
	px := color.NRGBAModel.Convert(c).(color.NRGBA)
	t := cfg.threshold()
	return px.R >= t && px.G >= t && px.B >= t
}

// ClassifyFile opens and decodes the image at path and applies IsWhite.
// Open failures return *FilesystemError; undecodable content returns *DecodeError.
// It only reads cfg and is safe for concurrent use.
func (cfg *Config) ClassifyFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, &FilesystemError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	o := orientationNormal
	if cfg.RespectOrientation {
		o = readOrientation(f)
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return false, &FilesystemError{Op: "seek", Path: path, Err: err}
		}
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return false, &DecodeError{Path: path, Err: err}
	}

	white := cfg.isWhiteOriented(img, o)
	slog.Debug("blankscan: classified", "path", path, "format", format,
		"orientation", int(o), "white", white)
	return white, nil
}
