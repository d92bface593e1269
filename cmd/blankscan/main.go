// Command blankscan finds spectrogram images whose top-left pixels are
// (near-)white and moves them into a mirrored destination tree, or reports them.
//
//	blankscan [flags] SOURCE [DESTINATION]
//
// Exit status is 0 when every file was processed, 1 when at least one file
// failed, and 2 on usage or configuration errors.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/anatolykoptev/go-blankscan"
	"github.com/anatolykoptev/go-blankscan/internal/logging"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

type options struct {
	Mode        string   `short:"m" long:"mode" default:"move" choice:"move" choice:"report" choice:"verify" description:"move white images, report them, or report every verdict"`
	Threshold   uint8    `short:"t" long:"threshold" default:"240" description:"minimum R, G and B value of a white pixel"`
	Samples     int      `short:"n" long:"samples" default:"10" description:"number of top-row pixels sampled from the left edge"`
	Extensions  []string `short:"e" long:"ext" description:"file extension to scan (repeatable; default .png .jpg .jpeg)"`
	Workers     int      `short:"w" long:"workers" description:"parallel workers (default: number of CPUs)"`
	Sequential  bool     `long:"sequential" description:"walk the whole tree as one unit instead of one task per top-level directory"`
	Overwrite   bool     `long:"overwrite" description:"replace files already present at the destination"`
	Orientation bool     `long:"orientation" description:"honor EXIF orientation when locating the top row"`
	LogLevel    string   `long:"log-level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"log level"`
	LogFormat   string   `long:"log-format" default:"text" choice:"text" choice:"json" description:"log format"`
	MetricsFile string   `long:"metrics-file" description:"write Prometheus textfile metrics here after the run"`

	Args struct {
		Source      string `positional-arg-name:"SOURCE" required:"yes"`
		Destination string `positional-arg-name:"DESTINATION"`
	} `positional-args:"yes"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, performs one scan and returns the process exit status.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "blankscan"
	if _, err := parser.ParseArgs(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(stderr, err)
			return exitOK
		}
		fmt.Fprintf(stderr, "blankscan: %v\n", err)
		return exitUsage
	}

	if opts.Samples < 1 {
		fmt.Fprintf(stderr, "blankscan: invalid --samples %d: at least one pixel must be sampled\n", opts.Samples)
		return exitUsage
	}

	logging.Init(stderr, opts.LogFormat, logging.ParseLevel(opts.LogLevel))

	var metrics *blankscan.Metrics
	cfg := &blankscan.Config{
		Threshold:          opts.Threshold,
		ThresholdSet:       true,
		SampleCount:        opts.Samples,
		Extensions:         opts.Extensions,
		Workers:            opts.Workers,
		Mode:               blankscan.Mode(opts.Mode),
		Partition:          !opts.Sequential,
		Overwrite:          opts.Overwrite,
		RespectOrientation: opts.Orientation,
	}
	if opts.Sequential {
		cfg.Workers = 1
	}
	if opts.MetricsFile != "" {
		metrics = blankscan.NewMetrics()
		cfg.OnResult = metrics.Observe
	}

	summary, err := cfg.Scan(ctx, opts.Args.Source, opts.Args.Destination)
	if err != nil {
		slog.Error("blankscan: run aborted", "error", err.Error())
		return exitUsage
	}

	slog.Info("blankscan: done", "summary", summary.String())
	for _, f := range summary.Failures {
		slog.Warn("blankscan: failed", "path", f.Path, "error", f.Err.Error())
	}

	if metrics != nil {
		metrics.Finish(summary)
		if err := metrics.WriteTextfile(opts.MetricsFile); err != nil {
			slog.Error("blankscan: cannot write metrics", "path", opts.MetricsFile, "error", err.Error())
		}
	}

	if summary.Err() != nil {
		return exitFailed
	}
	return exitOK
}
