package blankscan

import (
	"fmt"
	"runtime"
	"strings"
)

const (
	// DefaultThreshold is the minimum value every R, G and B channel of a sampled
	// pixel must reach for the pixel to count as white.
	DefaultThreshold = 240

	// DefaultSampleCount is the number of top-row pixels sampled from the left edge.
	DefaultSampleCount = 10
)

// DefaultExtensions are the file extensions scanned when Config.Extensions is empty.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg"}

// Mode selects what happens to an image classified as white.
type Mode string

const (
	ModeMove   Mode = "move"   // move matches under the destination root (default)
	ModeReport Mode = "report" // log matches only
	ModeVerify Mode = "verify" // log matches and non-matches
)

// Config holds all scan settings. Zero values mean "use defaults".
type Config struct {
	Threshold   uint8    // default: DefaultThreshold (240) unless ThresholdSet
	SampleCount int      // default: DefaultSampleCount (10); negative is invalid
	Extensions  []string // default: DefaultExtensions
	Workers     int      // default: runtime.GOMAXPROCS(0); 1 = sequential
	Mode        Mode     // default: ModeMove

	// ThresholdSet makes Threshold authoritative, so an explicit 0 is kept.
	ThresholdSet bool

	// Partition dispatches one task per top-level subdirectory of the source
	// root instead of walking the whole tree as one unit.
	Partition bool

	// Overwrite allows a move to replace an existing file at the destination.
	Overwrite bool

	// RespectOrientation samples the displayed top row of images carrying an
	// EXIF Orientation tag rather than the stored one.
	RespectOrientation bool

	// OnResult is called once per processed file, possibly from several goroutines.
	OnResult func(FileResult)
}

// defaults fills zero-value fields with sensible defaults.
func (c *Config) defaults() {
	c.Threshold = c.threshold()
	c.ThresholdSet = true
	if c.SampleCount == 0 {
		c.SampleCount = DefaultSampleCount
	}
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Mode == "" {
		c.Mode = ModeMove
	}
}

// threshold and sampleCount read the effective values without writing to c,
// so a shared Config can classify from several goroutines.
func (c *Config) threshold() uint8 {
	if c.Threshold == 0 && !c.ThresholdSet {
		return DefaultThreshold
	}
	return c.Threshold
}

func (c *Config) sampleCount() int {
	if c.SampleCount <= 0 {
		return DefaultSampleCount
	}
	return c.SampleCount
}

// Validate checks numeric and enum fields and normalizes the extension list
// to lowercase with a leading dot. It applies defaults first.
func (c *Config) Validate() error {
	if c.SampleCount < 0 {
		return &ConfigurationError{Field: "samples", Reason: fmt.Sprintf("%d is negative", c.SampleCount)}
	}
	c.defaults()

	switch c.Mode {
	case ModeMove, ModeReport, ModeVerify:
	default:
		return &ConfigurationError{Field: "mode", Reason: "use 'move', 'report' or 'verify'"}
	}

	exts := make([]string, 0, len(c.Extensions))
	for _, e := range c.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	if len(exts) == 0 {
		return &ConfigurationError{Field: "extensions", Reason: "no usable extension"}
	}
	c.Extensions = exts
	return nil
}

// extensionSet returns the allow-list as a lookup map.
func (c *Config) extensionSet() map[string]bool {
	set := make(map[string]bool, len(c.Extensions))
	for _, e := range c.Extensions {
		set[strings.ToLower(e)] = true
	}
	return set
}
