package blankscan

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Scan classifies every candidate image under source and, in ModeMove, moves
// the white ones to the mirrored path under destination. destination is
// ignored in ModeReport and ModeVerify.
//
// Per-file failures never abort the run; they are recorded in the returned
// Summary. Only a *ConfigurationError (or a failure to list source itself)
// is returned as an error, before any file is touched. Cancelling ctx stops
// new files from being started.
func (cfg *Config) Scan(ctx context.Context, source, destination string) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.checkPaths(source, destination); err != nil {
		return nil, err
	}

	units := []unit{{dir: source, recursive: true}}
	if cfg.Partition {
		var err error
		if units, err = partition(source); err != nil {
			return nil, &FilesystemError{Op: "readdir", Path: source, Err: err}
		}
	}

	allow := cfg.extensionSet()
	summary := &Summary{}
	start := time.Now()

	slog.Info("blankscan: scan started", "source", source, "destination", destination,
		"mode", string(cfg.Mode), "units", len(units), "workers", cfg.Workers)

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for _, u := range units {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			cfg.scanUnit(ctx, u, source, destination, allow, summary)
			return nil
		})
	}
	_ = g.Wait() // tasks contain their own errors

	summary.Elapsed = time.Since(start)
	if ctx.Err() != nil {
		slog.Warn("blankscan: interrupted", "error", ctx.Err().Error())
	}
	return summary, nil
}

// checkPaths validates source and, in ModeMove, destination.
func (cfg *Config) checkPaths(source, destination string) error {
	info, err := os.Stat(source)
	if errors.Is(err, fs.ErrNotExist) {
		return &ConfigurationError{Field: "source", Reason: source + " does not exist"}
	}
	if err != nil {
		return &ConfigurationError{Field: "source", Reason: err.Error()}
	}
	if !info.IsDir() {
		return &ConfigurationError{Field: "source", Reason: source + " is not a directory"}
	}

	if cfg.Mode != ModeMove {
		return nil
	}
	if destination == "" {
		return &ConfigurationError{Field: "destination", Reason: "required in move mode"}
	}

	srcAbs, err := resolvePath(source)
	if err != nil {
		return &ConfigurationError{Field: "source", Reason: err.Error()}
	}
	dstAbs, err := resolvePath(destination)
	if err != nil {
		return &ConfigurationError{Field: "destination", Reason: err.Error()}
	}
	sep := string(filepath.Separator)
	if dstAbs == srcAbs || strings.HasPrefix(dstAbs+sep, srcAbs+sep) {
		return &ConfigurationError{Field: "destination", Reason: "must not be inside source"}
	}
	return nil
}

// resolvePath returns the absolute path with symlinks resolved as far as the
// path exists, so a destination that is yet to be created still compares.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	parent, base := filepath.Split(abs)
	parent = filepath.Clean(parent)
	if parent == abs {
		return abs, nil
	}
	rp, err := resolvePath(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(rp, base), nil
}

// scanUnit processes every candidate file in u sequentially.
func (cfg *Config) scanUnit(ctx context.Context, u unit, source, destination string,
	allow map[string]bool, summary *Summary,
) {
	dirLevel := slog.LevelDebug
	if cfg.Mode == ModeVerify {
		dirLevel = slog.LevelInfo
	}
	files, err := u.files(allow, dirLevel)
	if err != nil {
		slog.Warn("blankscan: skip unreadable directory", "path", u.dir, "error", err.Error())
		return
	}
	slog.Info("blankscan: entering directory", "path", u.dir, "files", len(files))

	for _, path := range files {
		if ctx.Err() != nil {
			return
		}
		r := cfg.processFile(path, source, destination)
		summary.add(r)
		if cfg.OnResult != nil {
			cfg.OnResult(r)
		}
	}
}

// processFile classifies one file and acts on the verdict. It never panics on
// I/O errors and never returns them; failures are reported in the result.
func (cfg *Config) processFile(path, source, destination string) FileResult {
	white, err := cfg.ClassifyFile(path)
	if err != nil {
		slog.Error("blankscan: cannot classify", "path", path, "error", err.Error())
		return FileResult{Path: path, Outcome: OutcomeFailed, Err: err}
	}

	if !white {
		if cfg.Mode == ModeVerify {
			slog.Info("blankscan: image is colored", "path", path)
		}
		return FileResult{Path: path, Outcome: OutcomeKept}
	}

	if cfg.Mode != ModeMove {
		slog.Info("blankscan: image is white", "path", path)
		return FileResult{Path: path, Outcome: OutcomeMatched}
	}

	dst, err := destinationPath(source, destination, path)
	if err != nil {
		err = &FilesystemError{Op: "rel", Path: path, Err: err}
		slog.Error("blankscan: cannot move", "path", path, "error", err.Error())
		return FileResult{Path: path, Outcome: OutcomeFailed, Err: err}
	}

	n, err := moveFile(path, dst, cfg.Overwrite)
	if err != nil {
		slog.Error("blankscan: cannot move", "path", path, "dest", dst, "error", err.Error())
		return FileResult{Path: path, Dest: dst, Outcome: OutcomeFailed, Err: err}
	}

	slog.Info("blankscan: moved", "from", path, "to", dst)
	return FileResult{Path: path, Dest: dst, Outcome: OutcomeMoved, Bytes: n}
}
