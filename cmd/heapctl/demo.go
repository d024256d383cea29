package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
	"github.com/spf13/cobra"
)

var demoArena arenaFlags

func init() {
	cmd := newDemoCmd()
	demoArena.register(cmd, "1024")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the allocation scenarios",
		Long: `The demo command creates one arena and runs two scenarios on it:

  alloc/free  allocate 128 and 256 bytes, check both succeed, free both
  realloc     allocate 128 bytes, write to them, grow the block to 256
              bytes, check the contents moved with it, free it

Each scenario prints PASSED or FAILED; any failure exits with status 1.

Example:
  heapctl demo
  heapctl demo --capacity 4KiB --coalesce immediate --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	return cmd
}

type scenarioResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
}

type demoReport struct {
	Scenarios []scenarioResult `json:"scenarios"`
	Stats     arena.Stats      `json:"stats"`
}

var demoScenarios = []struct {
	name string
	run  func(*arena.Arena) error
}{
	{"alloc/free", scenarioAllocFree},
	{"realloc", scenarioRealloc},
}

var errScenario = errors.New("scenario failed")

func runDemo() error {
	a, err := demoArena.newArena()
	if err != nil {
		return err
	}
	defer a.Close()

	report := demoReport{}
	failed := 0
	for _, sc := range demoScenarios {
		res := scenarioResult{Name: sc.name, Passed: true}
		if err := sc.run(a); err != nil {
			res.Passed = false
			res.Error = err.Error()
			failed++
			logger.Warn("scenario failed", "scenario", sc.name, "err", err)
		}
		if err := a.Check(); err != nil && res.Passed {
			res.Passed = false
			res.Error = err.Error()
			failed++
		}
		report.Scenarios = append(report.Scenarios, res)
	}
	report.Stats = a.Stats()

	if jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		for _, res := range report.Scenarios {
			if res.Passed {
				printInfo("%-12s PASSED\n", res.Name)
				continue
			}
			printInfo("%-12s FAILED\n", res.Name)
			printError("%s: %s\n", res.Name, res.Error)
		}
		if verbose {
			printInfo("\n")
			printStats(report.Stats)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errScenario, failed, len(report.Scenarios))
	}
	return nil
}

func scenarioAllocFree(a *arena.Arena) error {
	r1, _, err := a.Alloc(128)
	if err != nil {
		return fmt.Errorf("alloc 128: %w", err)
	}
	r2, _, err := a.Alloc(256)
	if err != nil {
		return fmt.Errorf("alloc 256: %w", err)
	}
	if r1 == arena.NilRef || r2 == arena.NilRef {
		return fmt.Errorf("alloc returned a nil reference")
	}
	if err := a.Free(r1); err != nil {
		return fmt.Errorf("free first block: %w", err)
	}
	if err := a.Free(r2); err != nil {
		return fmt.Errorf("free second block: %w", err)
	}
	return nil
}

func scenarioRealloc(a *arena.Arena) error {
	msg := []byte("heapkit realloc")

	ref, p, err := a.Alloc(128)
	if err != nil {
		return fmt.Errorf("alloc 128: %w", err)
	}
	copy(p, msg)

	ref, p, err = a.Realloc(ref, 256)
	if err != nil {
		return fmt.Errorf("realloc to 256: %w", err)
	}
	if len(p) < 256 {
		return fmt.Errorf("realloc returned %d bytes, want at least 256", len(p))
	}
	if !bytes.Equal(p[:len(msg)], msg) {
		return fmt.Errorf("payload not preserved: %q", p[:len(msg)])
	}
	if err := a.Free(ref); err != nil {
		return fmt.Errorf("free: %w", err)
	}
	return nil
}
