package blankscan

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
)

// Outcome classifies what happened to a single file.
type Outcome int

const (
	OutcomeKept    Outcome = iota // not white, left in place
	OutcomeMatched                // white, reported only (report/verify mode)
	OutcomeMoved                  // white, moved under the destination root
	OutcomeFailed                 // decode or filesystem error, left in place
)

func (o Outcome) String() string {
	switch o {
	case OutcomeKept:
		return "kept"
	case OutcomeMatched:
		return "matched"
	case OutcomeMoved:
		return "moved"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileResult is the outcome of processing one candidate file.
type FileResult struct {
	Path    string
	Dest    string // set for OutcomeMoved
	Outcome Outcome
	Bytes   int64 // size moved, set for OutcomeMoved
	Err     error // set for OutcomeFailed
}

// Summary aggregates the results of a run. It is safe for concurrent use.
type Summary struct {
	mu       sync.Mutex
	Total    int
	Kept     int
	Matched  int
	Moved    int
	Failed   int
	Bytes    int64
	Failures []FileResult
	Elapsed  time.Duration
}

func (s *Summary) add(r FileResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Total++
	switch r.Outcome {
	case OutcomeKept:
		s.Kept++
	case OutcomeMatched:
		s.Matched++
	case OutcomeMoved:
		s.Moved++
		s.Bytes += r.Bytes
	case OutcomeFailed:
		s.Failed++
		s.Failures = append(s.Failures, r)
	}
}

// Err returns every per-file failure combined, or nil if none failed.
func (s *Summary) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *multierror.Error
	for _, f := range s.Failures {
		result = multierror.Append(result, f.Err)
	}
	return result.ErrorOrNil()
}

func (s *Summary) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fmt.Sprintf("%d files: %d moved (%s), %d matched, %d kept, %d failed in %s",
		s.Total, s.Moved, humanize.Bytes(uint64(s.Bytes)), s.Matched, s.Kept, s.Failed,
		s.Elapsed.Round(time.Millisecond))
}
