package conformance

import (
	"cmp"
	"context"
	"runtime"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/lexconv/converter"
	"github.com/wippyai/lexconv/errors"
)

// DefaultWidths are the lexatom widths a suite covers when none are given.
var DefaultWidths = []int{8, 16, 32}

// Job is one fixture, width and pattern combination.
type Job struct {
	Case    Case
	Bits    int
	Pattern Pattern
}

// Suite runs every applicable combination of the built-in cases, widths
// and patterns.
type Suite struct {
	// Dir holds the fixture files.
	Dir string
	// Widths restricts the lexatom widths. Empty means DefaultWidths.
	Widths []int
	// Patterns to run. Empty means DefaultPatterns(Seeds).
	Patterns []Pattern
	// Seeds is the number of random patterns added when Patterns is empty.
	Seeds int
	// Limit bounds concurrently running jobs. 0 means GOMAXPROCS.
	Limit int
	// Logger overrides the package logger.
	Logger *zap.Logger
	// OnReport, if set, is called after each finished job. It may be called
	// from several goroutines at once.
	OnReport func(Report, error)
}

// Jobs lists the combinations Run will execute.
func (s *Suite) Jobs() []Job {
	widths := s.Widths
	if len(widths) == 0 {
		widths = DefaultWidths
	}
	patterns := s.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns(s.Seeds)
	}

	var jobs []Job
	for _, c := range Cases {
		for _, bits := range widths {
			if !c.Supports(bits) {
				continue
			}
			for _, p := range patterns {
				jobs = append(jobs, Job{Case: c, Bits: bits, Pattern: p})
			}
		}
	}
	return jobs
}

// Run executes all jobs and returns their reports ordered by codec, width
// and pattern. The first failing job cancels the rest.
func (s *Suite) Run(ctx context.Context) ([]Report, error) {
	log := s.Logger
	if log == nil {
		log = Logger()
	}
	jobs := s.Jobs()

	fixtures, err := s.load(jobs)
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	limit := s.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	var mu sync.Mutex
	reports := make([]Report, 0, len(jobs))

	for _, job := range jobs {
		fx := fixtures[fixtureKey{job.Case.Input, job.Bits}]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rep, err := runJob(fx, job.Pattern)
			if s.OnReport != nil {
				s.OnReport(rep, err)
			}
			if err != nil {
				return err
			}
			log.Debug("conformance job passed",
				zap.String("key", rep.Key()),
				zap.Int("calls", rep.Calls),
				zap.Uint32("checksum", rep.Checksum))

			mu.Lock()
			reports = append(reports, rep)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(reports, func(a, b Report) int {
		return cmp.Or(
			cmp.Compare(a.Codec, b.Codec),
			cmp.Compare(a.Width, b.Width),
			cmp.Compare(a.Pattern, b.Pattern),
		)
	})
	log.Info("conformance suite passed", zap.Int("jobs", len(reports)))
	return reports, nil
}

type fixtureKey struct {
	input string
	bits  int
}

func (s *Suite) load(jobs []Job) (map[fixtureKey]*Fixture, error) {
	fixtures := make(map[fixtureKey]*Fixture)
	for _, job := range jobs {
		key := fixtureKey{job.Case.Input, job.Bits}
		if _, ok := fixtures[key]; ok {
			continue
		}
		fx, err := LoadFixture(s.Dir, job.Case, job.Bits)
		if err != nil {
			return nil, err
		}
		fixtures[key] = fx
	}
	return fixtures, nil
}

// runJob gives every job its own converter.
func runJob(fx *Fixture, p Pattern) (Report, error) {
	switch fx.Bits {
	case 8:
		return Run(converter.New[uint8](fx.Codec), fx, p)
	case 16:
		return Run(converter.New[uint16](fx.Codec), fx, p)
	case 32:
		return Run(converter.New[uint32](fx.Codec), fx, p)
	}
	return Report{}, errors.Unsupported(errors.PhaseVerify, "lexatom width")
}
