package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	logLevel string
)

// arenaFlags holds the arena configuration flags of one command.
type arenaFlags struct {
	capacity string
	fit      string
	coalesce string
	backing  string
}

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Exercise and inspect heapkit arena allocators",
	Long: `heapctl drives heapkit arenas from the command line. It runs the
allocation scenarios, stress-tests an arena from many goroutines, and prints
the physical block layout produced by a script of operations.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "off", "Allocator log level on stderr (off, debug, info, warn, error)")
}

// register adds the arena configuration flags to cmd.
func (f *arenaFlags) register(cmd *cobra.Command, defaultCapacity string) {
	cmd.Flags().StringVar(&f.capacity, "capacity", defaultCapacity, "Arena size (e.g. 1024, 64KiB, 1MiB)")
	cmd.Flags().StringVar(&f.fit, "fit", "best", "Fit policy: best or smallest")
	cmd.Flags().StringVar(&f.coalesce, "coalesce", "none", "Coalescing strategy: none or immediate")
	cmd.Flags().StringVar(&f.backing, "backing", "heap", "Backing storage: heap or mmap")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, enabled, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	if verbose && !enabled {
		level, enabled = slog.LevelInfo, true
	}
	logger.Init(logger.Options{Enabled: enabled, Level: level, JSON: jsonOut})
	logger.Debug("logging initialized", "command", cmd.Name(), "level", level.String())
	return nil
}

// newArena builds an arena from the flags.
func (f *arenaFlags) newArena() (*arena.Arena, error) {
	capacity, err := humanize.ParseBytes(f.capacity)
	if err != nil {
		return nil, fmt.Errorf("invalid --capacity: %w", err)
	}
	if capacity > arena.MaxCapacity {
		return nil, fmt.Errorf("invalid --capacity: %s exceeds %s",
			humanize.IBytes(capacity), humanize.IBytes(arena.MaxCapacity))
	}

	opts := arena.DefaultOptions
	if opts.Fit, err = arena.ParseFit(f.fit); err != nil {
		return nil, err
	}
	if opts.Coalesce, err = arena.ParseCoalesce(f.coalesce); err != nil {
		return nil, err
	}
	if opts.Backing, err = arena.ParseBacking(f.backing); err != nil {
		return nil, err
	}
	opts.Logger = logger.L

	printVerbose("Arena: %s, fit=%s, coalesce=%s, backing=%s\n",
		humanize.IBytes(capacity), opts.Fit, opts.Coalesce, opts.Backing)
	return arena.New(int(capacity), &opts)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

var numbers = message.NewPrinter(language.English)

func formatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

func formatNumber(n int64) string {
	return numbers.Sprintf("%d", n)
}

// printStats prints an arena statistics block.
func printStats(s arena.Stats) {
	printInfo("Arena Statistics:\n")
	printInfo("  Capacity: %s (%s bytes, %s)\n", formatBytes(int64(s.Capacity)), formatNumber(int64(s.Capacity)), s.Backing)
	printInfo("  Calls: alloc %s, free %s, realloc %s\n",
		formatNumber(int64(s.AllocCalls)), formatNumber(int64(s.FreeCalls)), formatNumber(int64(s.ReallocCalls)))
	printInfo("  Failed allocs: %s\n", formatNumber(int64(s.FailedAllocs)))
	printInfo("  Splits: %s, coalesced forward %s, backward %s\n",
		formatNumber(int64(s.Splits)), formatNumber(int64(s.CoalesceForward)), formatNumber(int64(s.CoalesceBackward)))
	printInfo("  Blocks: %s used, %s free\n", formatNumber(int64(s.BlocksUsed)), formatNumber(int64(s.BlocksFree)))
	printInfo("  Bytes: %s in use, %s free, largest free %s\n",
		formatBytes(s.BytesInUse), formatBytes(s.BytesFree), formatBytes(int64(s.LargestFree)))
	printInfo("  Utilization: %.1f%%, fragmentation: %.1f%%\n", s.Utilization()*100, s.Fragmentation()*100)
	printVerbose("  Free index: %s entries, peak %s\n", formatNumber(int64(s.IndexLen)), formatNumber(int64(s.IndexPeak)))
}
