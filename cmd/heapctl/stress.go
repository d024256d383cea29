package main

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
	"github.com/spf13/cobra"
)

var (
	stressArena   arenaFlags
	stressWorkers int
	stressOps     int
	stressSeed    int64
	stressMaxSize int
)

func init() {
	cmd := newStressCmd()
	stressArena.register(cmd, "1MiB")
	cmd.Flags().IntVar(&stressWorkers, "workers", 4, "Number of concurrent goroutines")
	cmd.Flags().IntVar(&stressOps, "ops", 10000, "Operations per worker")
	cmd.Flags().Int64Var(&stressSeed, "seed", 1, "Random seed (worker i uses seed+i)")
	cmd.Flags().IntVar(&stressMaxSize, "max-size", 512, "Largest request size in bytes")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Hammer one arena from many goroutines",
		Long: `The stress command runs random alloc, free and realloc calls against
one shared arena. Every payload is filled with a per-worker pattern that is
verified before the block is released, and the arena invariants are checked
once all workers finish.

Example:
  heapctl stress --workers 8 --ops 50000
  heapctl stress --coalesce immediate --capacity 4MiB --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
	return cmd
}

type stressReport struct {
	Workers   int           `json:"workers"`
	Ops       int           `json:"ops"`
	Seed      int64         `json:"seed"`
	Duration  time.Duration `json:"duration_ns"`
	OpsPerSec float64       `json:"ops_per_sec"`
	NoSpace   int           `json:"no_space"`
	Stats     arena.Stats   `json:"stats"`
}

var errPattern = errors.New("payload pattern mismatch")

func runStress() error {
	if stressWorkers < 1 || stressOps < 0 || stressMaxSize < 0 {
		return fmt.Errorf("--workers must be positive, --ops and --max-size non-negative")
	}

	a, err := stressArena.newArena()
	if err != nil {
		return err
	}
	defer a.Close()

	printVerbose("Running %d workers x %s ops\n", stressWorkers, formatNumber(int64(stressOps)))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		noSpace int
		errs    []error
	)
	start := time.Now()
	for w := 0; w < stressWorkers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			n, err := stressWorker(a, w, stressSeed+int64(w), stressOps, stressMaxSize)
			mu.Lock()
			defer mu.Unlock()
			noSpace += n
			if err != nil {
				logger.Error("stress worker failed", "worker", w, "err", err)
				errs = append(errs, fmt.Errorf("worker %d: %w", w, err))
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	if err := errors.Join(errs...); err != nil {
		return err
	}
	if err := a.Check(); err != nil {
		return err
	}

	total := stressWorkers * stressOps
	report := stressReport{
		Workers:  stressWorkers,
		Ops:      total,
		Seed:     stressSeed,
		Duration: elapsed,
		NoSpace:  noSpace,
		Stats:    a.Stats(),
	}
	if elapsed > 0 {
		report.OpsPerSec = float64(total) / elapsed.Seconds()
	}
	logger.Info("stress finished", "ops", total, "elapsed", elapsed, "no_space", noSpace)

	if jsonOut {
		return printJSON(report)
	}
	printInfo("Stress: %s ops on %d workers in %s (%s ops/s)\n",
		formatNumber(int64(total)), stressWorkers, elapsed.Round(time.Millisecond),
		formatNumber(int64(report.OpsPerSec)))
	printInfo("  Out-of-space results: %s\n", formatNumber(int64(noSpace)))
	printInfo("  Invariants: OK\n\n")
	printStats(report.Stats)
	return nil
}

// stressWorker runs ops random calls and releases everything it still holds.
// It returns the number of requests that found no space.
func stressWorker(a *arena.Arena, w int, seed int64, ops, maxSize int) (int, error) {
	rng := rand.New(rand.NewSource(seed))
	tag := byte(w%255) + 1
	var live []arena.Ref
	noSpace := 0

	verify := func(ref arena.Ref) error {
		p, err := a.Bytes(ref)
		if err != nil {
			return err
		}
		for i, b := range p {
			if b != tag {
				return fmt.Errorf("%w: ref 0x%X byte %d", errPattern, ref, i)
			}
		}
		return nil
	}
	fill := func(p []byte) {
		for i := range p {
			p[i] = tag
		}
	}

	for i := 0; i < ops; i++ {
		switch op := rng.Intn(10); {
		case op < 5 || len(live) == 0:
			ref, p, err := a.Alloc(rng.Intn(maxSize + 1))
			if errors.Is(err, arena.ErrNoSpace) {
				noSpace++
				continue
			}
			if err != nil {
				return noSpace, err
			}
			fill(p)
			live = append(live, ref)

		case op < 8:
			j := rng.Intn(len(live))
			if err := verify(live[j]); err != nil {
				return noSpace, err
			}
			if err := a.Free(live[j]); err != nil {
				return noSpace, err
			}
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]

		default:
			j := rng.Intn(len(live))
			if err := verify(live[j]); err != nil {
				return noSpace, err
			}
			ref, p, err := a.Realloc(live[j], 1+rng.Intn(2*maxSize+1))
			if errors.Is(err, arena.ErrNoSpace) {
				noSpace++
				continue
			}
			if err != nil {
				return noSpace, err
			}
			fill(p)
			live[j] = ref
		}
	}

	for _, ref := range live {
		if err := verify(ref); err != nil {
			return noSpace, err
		}
		if err := a.Free(ref); err != nil {
			return noSpace, err
		}
	}
	return noSpace, nil
}
