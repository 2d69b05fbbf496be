// Package config parses the csolve command line: trail and arena sizes,
// search strategy switches, worker and timeout limits, and the single
// optional input file. Every option has a short and a long spelling;
// each option that takes a value may be given at most once.
package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rhartert/csolve/internal/csp"
)

// Command-line defaults. All but DefaultRestartFreq match
// csp.DefaultOptions, which has restarts disabled.
const (
	DefaultBindSize       = 1 << 20
	DefaultPatchSize      = 1 << 16
	DefaultArenaSize      = 64 << 20
	DefaultConflArenaSize = 16 << 20
	DefaultRestartFreq    = 100
	DefaultStatsFreq      = 0
	DefaultTimeLimit      = 0
	DefaultWorkers        = 1
)

// Size suffix multipliers.
const (
	kilo = 1024
	mega = kilo * kilo
	giga = kilo * kilo * kilo
)

// Config is the parsed command line.
type Config struct {
	BindSize       int
	PatchSize      int
	ArenaSize      int
	ConflArenaSize int

	CreateConflicts bool
	PreferFailing   bool
	ComputeWeights  bool
	Order           csp.OrderMode

	RestartFreq uint64
	StatsFreq   uint64
	TimeLimit   int
	Workers     int

	// InputFile is the problem file, or "" for stdin.
	InputFile string

	// Help and Version request printing the usage or version text and
	// exiting successfully.
	Help    bool
	Version bool
}

// onceValue wraps a flag target so that giving the same option twice
// (in either its short or long spelling) is rejected.
type onceValue struct {
	name string
	seen *bool
	set  func(string) error
}

func (v *onceValue) String() string { return "" }

func (v *onceValue) Set(s string) error {
	if *v.seen {
		return fmt.Errorf("option --%s given twice", v.name)
	}
	*v.seen = true
	return v.set(s)
}

// ParseArgs parses the given command line (without the program name).
func ParseArgs(args []string, usageOut io.Writer) (*Config, error) {
	cfg := &Config{
		BindSize:       DefaultBindSize,
		PatchSize:      DefaultPatchSize,
		ArenaSize:      DefaultArenaSize,
		ConflArenaSize: DefaultConflArenaSize,
		Order:          csp.OrderSmallestDomain,
		RestartFreq:    DefaultRestartFreq,
		StatsFreq:      DefaultStatsFreq,
		TimeLimit:      DefaultTimeLimit,
		Workers:        DefaultWorkers,
	}

	fs := flag.NewFlagSet("csolve", flag.ContinueOnError)
	fs.SetOutput(usageOut)
	fs.Usage = func() { PrintUsage(usageOut) }

	add := func(short, long, name string, set func(string) error) {
		seen := new(bool)
		v := &onceValue{name: name, seen: seen, set: set}
		fs.Var(v, short, "")
		fs.Var(v, long, "")
	}

	add("b", "binds", "binds", func(s string) error {
		return parseSizeInto(s, &cfg.BindSize)
	})
	add("p", "patches", "patches", func(s string) error {
		return parseSizeInto(s, &cfg.PatchSize)
	})
	add("m", "memory", "memory", func(s string) error {
		return parseSizeInto(s, &cfg.ArenaSize)
	})
	add("M", "confl-memory", "confl-memory", func(s string) error {
		return parseSizeInto(s, &cfg.ConflArenaSize)
	})
	add("c", "conflicts", "conflicts", func(s string) error {
		return parseBoolInto(s, &cfg.CreateConflicts)
	})
	add("f", "prefer-failing", "prefer-failing", func(s string) error {
		return parseBoolInto(s, &cfg.PreferFailing)
	})
	add("w", "weighten", "weighten", func(s string) error {
		return parseBoolInto(s, &cfg.ComputeWeights)
	})
	add("o", "order", "order", func(s string) error {
		order, err := ParseOrder(s)
		if err != nil {
			return err
		}
		cfg.Order = order
		return nil
	})
	add("r", "restart-freq", "restart-freq", func(s string) error {
		n, err := parseInt(s)
		if err != nil {
			return err
		}
		cfg.RestartFreq = uint64(n)
		return nil
	})
	add("s", "stats-freq", "stats-freq", func(s string) error {
		n, err := parseInt(s)
		if err != nil {
			return err
		}
		cfg.StatsFreq = uint64(n)
		return nil
	})
	add("t", "time", "time", func(s string) error {
		n, err := parseInt(s)
		if err != nil {
			return err
		}
		cfg.TimeLimit = n
		return nil
	})
	add("j", "jobs", "jobs", func(s string) error {
		n, err := parseInt(s)
		if err != nil {
			return err
		}
		if n < 1 {
			return fmt.Errorf("invalid worker count %d", n)
		}
		cfg.Workers = n
		return nil
	})
	fs.BoolVar(&cfg.Help, "h", false, "")
	fs.BoolVar(&cfg.Help, "help", false, "")
	fs.BoolVar(&cfg.Version, "v", false, "")
	fs.BoolVar(&cfg.Version, "version", false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// At most one positional argument, naming the input file; "-" and
	// absence both mean stdin.
	switch fs.NArg() {
	case 0:
	case 1:
		if fs.Arg(0) != "-" {
			cfg.InputFile = fs.Arg(0)
		}
	default:
		return nil, fmt.Errorf("at most one input file expected, got %d", fs.NArg())
	}

	return cfg, nil
}

// PrintUsage writes the option summary.
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: csolve [<options>] [<file>]")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintf(w, "  -b --binds <size>           maximum number of binds (default: %d)\n", DefaultBindSize)
	fmt.Fprintf(w, "  -c --conflicts <bool>       create conflict clauses (default: false)\n")
	fmt.Fprintf(w, "  -f --prefer-failing <bool>  prefer failing variables when ordering (default: false)\n")
	fmt.Fprintf(w, "  -h --help                   show this message and exit\n")
	fmt.Fprintf(w, "  -j --jobs <int>             number of jobs to run simultaneously (default: %d)\n", DefaultWorkers)
	fmt.Fprintf(w, "  -m --memory <size>          allocation stack size in bytes (default: %d)\n", DefaultArenaSize)
	fmt.Fprintf(w, "  -M --confl-memory <size>    conflict allocation stack size in bytes (default: %d)\n", DefaultConflArenaSize)
	fmt.Fprintf(w, "  -o --order <order>          how to order variables during solving (default: smallest-domain)\n")
	fmt.Fprintf(w, "  -p --patches <size>         maximum number of patches (default: %d)\n", DefaultPatchSize)
	fmt.Fprintf(w, "  -r --restart-freq <int>     restart frequency when looking for any solution (default: %d), set to 0 to disable\n", DefaultRestartFreq)
	fmt.Fprintf(w, "  -s --stats-freq <int>       statistics printing frequency (default: %d), set to 0 to disable\n", DefaultStatsFreq)
	fmt.Fprintf(w, "  -t --time <int>             maximum solving time in seconds (default: %d), set to 0 to disable\n", DefaultTimeLimit)
	fmt.Fprintf(w, "  -v --version                print version and exit\n")
	fmt.Fprintf(w, "  -w --weighten <bool>        compute weights of variables for initial order (default: false)\n")
}

// ParseOrder maps an order name to its mode.
func ParseOrder(s string) (csp.OrderMode, error) {
	switch s {
	case "none":
		return csp.OrderNone, nil
	case "smallest-domain":
		return csp.OrderSmallestDomain, nil
	case "largest-domain":
		return csp.OrderLargestDomain, nil
	case "smallest-value":
		return csp.OrderSmallestValue, nil
	case "largest-value":
		return csp.OrderLargestValue, nil
	default:
		return 0, fmt.Errorf("invalid order %q", s)
	}
}

// ParseSize parses an integer with an optional k/M/G suffix (case
// insensitive).
func ParseSize(s string) (int, error) {
	mult := 1
	switch {
	case s == "":
		return 0, fmt.Errorf("invalid size %q", s)
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		mult, s = kilo, s[:len(s)-1]
	case strings.HasSuffix(s, "m"), strings.HasSuffix(s, "M"):
		mult, s = mega, s[:len(s)-1]
	case strings.HasSuffix(s, "g"), strings.HasSuffix(s, "G"):
		mult, s = giga, s[:len(s)-1]
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return int(n) * mult, nil
}

func parseSizeInto(s string, dst *int) error {
	n, err := ParseSize(s)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseBoolInto(s string, dst *bool) error {
	switch s {
	case "true":
		*dst = true
	case "false":
		*dst = false
	default:
		return fmt.Errorf("invalid bool %q", s)
	}
	return nil
}

func parseInt(s string) (int, error) {
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int(n), nil
}
