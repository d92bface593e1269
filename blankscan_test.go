package blankscan

import (
	"errors"
	"image/color"
	"runtime"
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.defaults()

	if cfg.Threshold != DefaultThreshold {
		t.Errorf("Threshold = %d, want %d", cfg.Threshold, DefaultThreshold)
	}
	if cfg.SampleCount != DefaultSampleCount {
		t.Errorf("SampleCount = %d, want %d", cfg.SampleCount, DefaultSampleCount)
	}
	if !sliceEqual(cfg.Extensions, DefaultExtensions) {
		t.Errorf("Extensions = %v, want %v", cfg.Extensions, DefaultExtensions)
	}
	if cfg.Workers != runtime.GOMAXPROCS(0) {
		t.Errorf("Workers = %d, want GOMAXPROCS", cfg.Workers)
	}
	if cfg.Mode != ModeMove {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeMove)
	}
}

func TestConfigValidate_NormalizesExtensions(t *testing.T) {
	t.Parallel()

	cfg := &Config{Extensions: []string{"PNG", " .Jpg ", "", "webp"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := []string{".png", ".jpg", ".webp"}
	if !sliceEqual(cfg.Extensions, want) {
		t.Errorf("Extensions = %v, want %v", cfg.Extensions, want)
	}
}

func TestConfigValidate_Samples(t *testing.T) {
	t.Parallel()

	cfg := &Config{SampleCount: -3}
	var ce *ConfigurationError
	if err := cfg.Validate(); !errors.As(err, &ce) || ce.Field != "samples" {
		t.Errorf("Validate() = %v, want samples ConfigurationError", err)
	}

	cfg = &Config{SampleCount: 3}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3", cfg.SampleCount)
	}
}

func TestConfigDefaults_ExplicitZeroThreshold(t *testing.T) {
	t.Parallel()

	cfg := &Config{ThresholdSet: true}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Threshold != 0 {
		t.Errorf("Threshold = %d, want explicit 0 kept", cfg.Threshold)
	}

	img := makeImage(12, 2, color.Black)
	if !cfg.IsWhite(img) {
		t.Error("threshold 0 accepts every pixel")
	}
	if (&Config{}).IsWhite(img) {
		t.Error("unset threshold falls back to the default")
	}
}

func TestConfigValidate_RejectsUnknownMode(t *testing.T) {
	t.Parallel()

	cfg := &Config{Mode: "shred"}
	var ce *ConfigurationError
	if err := cfg.Validate(); !errors.As(err, &ce) || ce.Field != "mode" {
		t.Errorf("Validate() = %v, want mode ConfigurationError", err)
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	tests := []struct {
		err  error
		want string
	}{
		{&DecodeError{Path: "a.png", Err: cause}, "decode a.png: boom"},
		{&FilesystemError{Op: "rename", Path: "b.png", Err: cause}, "rename b.png: boom"},
		{&ConfigurationError{Field: "source", Reason: "missing"}, "invalid source: missing"},
	}
	for _, tc := range tests {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
	if !errors.Is(&DecodeError{Err: cause}, cause) || !errors.Is(&FilesystemError{Err: cause}, cause) {
		t.Error("typed errors must unwrap to their cause")
	}
}
