package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/heapkit/arena"
	"github.com/spf13/cobra"
)

var layoutArena arenaFlags

func init() {
	cmd := newLayoutCmd()
	layoutArena.register(cmd, "1024")
	rootCmd.AddCommand(cmd)
}

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout <op>...",
		Short: "Run a script of operations and print the block layout",
		Long: `The layout command applies a script of operations to a fresh arena and
prints the resulting physical block layout.

Operations:
  a<n>       allocate n bytes; allocations are numbered from 1
  f<i>       free allocation i
  r<i>:<n>   resize allocation i to n bytes

Out-of-space and invalid-reference results are reported and the script
continues, so double frees and exhausted arenas can be observed.

Example:
  heapctl layout a128 a256 f1 r2:512
  heapctl layout --coalesce immediate a100 a100 a100 f2 f1 f3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(args)
		},
	}
	return cmd
}

type opKind byte

const (
	opAlloc   opKind = 'a'
	opFree    opKind = 'f'
	opRealloc opKind = 'r'
)

type layoutOp struct {
	Kind opKind
	Slot int // 1-based allocation number for free and resize
	Size int
	Text string
}

// parseOp parses one script token.
func parseOp(s string) (layoutOp, error) {
	op := layoutOp{Text: s}
	if len(s) < 2 {
		return op, fmt.Errorf("invalid op %q", s)
	}
	op.Kind = opKind(s[0])
	rest := s[1:]

	var err error
	switch op.Kind {
	case opAlloc:
		op.Size, err = strconv.Atoi(rest)
	case opFree:
		op.Slot, err = strconv.Atoi(rest)
	case opRealloc:
		slot, size, ok := strings.Cut(rest, ":")
		if !ok {
			return op, fmt.Errorf("invalid op %q: resize needs r<i>:<n>", s)
		}
		if op.Slot, err = strconv.Atoi(slot); err == nil {
			op.Size, err = strconv.Atoi(size)
		}
	default:
		return op, fmt.Errorf("invalid op %q: unknown operation %q", s, s[0])
	}
	if err != nil {
		return op, fmt.Errorf("invalid op %q: %w", s, err)
	}
	if op.Kind != opAlloc && op.Slot < 1 {
		return op, fmt.Errorf("invalid op %q: allocation numbers start at 1", s)
	}
	return op, nil
}

func parseScript(args []string) ([]layoutOp, error) {
	ops := make([]layoutOp, 0, len(args))
	for _, s := range args {
		op, err := parseOp(s)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

type opResult struct {
	Op     string    `json:"op"`
	Slot   int       `json:"slot,omitempty"`
	Ref    arena.Ref `json:"ref"`
	Usable int       `json:"usable,omitempty"`
	Error  string    `json:"error,omitempty"`
}

type layoutBlock struct {
	arena.Block
	Slot int `json:"slot,omitempty"`
}

type layoutReport struct {
	Ops    []opResult    `json:"ops"`
	Blocks []layoutBlock `json:"blocks"`
	Stats  arena.Stats   `json:"stats"`
}

// reportable errors are shown in the op log instead of aborting the script.
func reportable(err error) bool {
	return errors.Is(err, arena.ErrNoSpace) ||
		errors.Is(err, arena.ErrBadRef) ||
		errors.Is(err, arena.ErrDoubleFree) ||
		errors.Is(err, arena.ErrNegativeSize)
}

// slot is the current reference of one numbered allocation.
type slot struct {
	ref  arena.Ref
	live bool
}

// applyScript runs ops against a and returns one result per op and the
// final state of every numbered allocation.
func applyScript(a *arena.Arena, ops []layoutOp) ([]opResult, []slot, error) {
	var slots []slot
	results := make([]opResult, 0, len(ops))

	for _, op := range ops {
		res := opResult{Op: op.Text}
		var err error

		switch op.Kind {
		case opAlloc:
			var p []byte
			res.Ref, p, err = a.Alloc(op.Size)
			if err == nil {
				slots = append(slots, slot{ref: res.Ref, live: true})
				res.Slot = len(slots)
				res.Usable = len(p)
			}

		case opFree, opRealloc:
			if op.Slot > len(slots) {
				return results, slots, fmt.Errorf("op %q: only %d allocation(s) so far", op.Text, len(slots))
			}
			res.Slot = op.Slot
			sl := &slots[op.Slot-1]
			if op.Kind == opFree {
				res.Ref = sl.ref
				if err = a.Free(sl.ref); err == nil {
					sl.live = false
				}
				break
			}
			var p []byte
			res.Ref, p, err = a.Realloc(sl.ref, op.Size)
			if err == nil {
				sl.ref, sl.live = res.Ref, res.Ref != arena.NilRef
				res.Usable = len(p)
			}
		}

		if err != nil {
			if !reportable(err) {
				return results, slots, fmt.Errorf("op %q: %w", op.Text, err)
			}
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, slots, nil
}

func runLayout(args []string) error {
	ops, err := parseScript(args)
	if err != nil {
		return err
	}

	a, err := layoutArena.newArena()
	if err != nil {
		return err
	}
	defer a.Close()

	results, slots, err := applyScript(a, ops)
	if err != nil {
		return err
	}
	if err := a.Check(); err != nil {
		return err
	}

	bySlot := make(map[arena.Ref]int, len(slots))
	for i, sl := range slots {
		if sl.live {
			bySlot[sl.ref] = i + 1
		}
	}
	report := layoutReport{Ops: results, Stats: a.Stats()}
	if err := a.Walk(func(b arena.Block) bool {
		lb := layoutBlock{Block: b}
		if !b.Free {
			lb.Slot = bySlot[b.Ref]
		}
		report.Blocks = append(report.Blocks, lb)
		return true
	}); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(report)
	}

	printInfo("Operations:\n")
	for _, r := range report.Ops {
		switch {
		case r.Error != "":
			printInfo("  %-10s error: %s\n", r.Op, r.Error)
		case r.Op[0] == byte(opFree):
			printInfo("  %-10s #%d freed (ref 0x%04X)\n", r.Op, r.Slot, uint32(r.Ref))
		case r.Ref == arena.NilRef:
			printInfo("  %-10s #%d released\n", r.Op, r.Slot)
		default:
			printInfo("  %-10s #%d ref 0x%04X, %d usable bytes\n", r.Op, r.Slot, uint32(r.Ref), r.Usable)
		}
	}

	printInfo("\nLayout:\n")
	printInfo("  %-8s %-8s %8s  %-5s %s\n", "HEADER", "REF", "SIZE", "STATE", "ALLOC")
	for _, b := range report.Blocks {
		state, label := "used", ""
		if b.Free {
			state = "free"
		} else if b.Slot > 0 {
			label = "#" + strconv.Itoa(b.Slot)
		}
		printInfo("  0x%06X 0x%06X %8d  %-5s %s\n", b.Off, uint32(b.Ref), b.Size, state, label)
	}

	if verbose {
		printInfo("\n")
		printStats(report.Stats)
	}
	return nil
}
