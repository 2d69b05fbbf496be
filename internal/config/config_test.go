package config

import (
	"io"
	"testing"

	"github.com/rhartert/csolve/internal/csp"
)

func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	return ParseArgs(args, io.Discard)
}

func TestDefaults(t *testing.T) {
	cfg, err := parse(t)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.BindSize != DefaultBindSize {
		t.Errorf("BindSize: got %d, want %d", cfg.BindSize, DefaultBindSize)
	}
	if cfg.Order != csp.OrderSmallestDomain {
		t.Errorf("Order: got %d, want smallest-domain", cfg.Order)
	}
	if cfg.Workers != 1 || cfg.CreateConflicts || cfg.InputFile != "" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestParseFlags(t *testing.T) {
	cfg, err := parse(t,
		"-b", "2048",
		"-m", "4M",
		"-M", "512k",
		"-c", "true",
		"-f", "true",
		"-w", "false",
		"-o", "largest-domain",
		"-r", "0",
		"-s", "1000",
		"-t", "60",
		"-j", "4",
		"problem.txt",
	)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.BindSize != 2048 {
		t.Errorf("BindSize: got %d, want 2048", cfg.BindSize)
	}
	if cfg.ArenaSize != 4<<20 {
		t.Errorf("ArenaSize: got %d, want 4M", cfg.ArenaSize)
	}
	if cfg.ConflArenaSize != 512<<10 {
		t.Errorf("ConflArenaSize: got %d, want 512k", cfg.ConflArenaSize)
	}
	if !cfg.CreateConflicts || !cfg.PreferFailing || cfg.ComputeWeights {
		t.Errorf("bool flags: %+v", cfg)
	}
	if cfg.Order != csp.OrderLargestDomain {
		t.Errorf("Order: got %d, want largest-domain", cfg.Order)
	}
	if cfg.RestartFreq != 0 || cfg.StatsFreq != 1000 || cfg.TimeLimit != 60 || cfg.Workers != 4 {
		t.Errorf("numeric flags: %+v", cfg)
	}
	if cfg.InputFile != "problem.txt" {
		t.Errorf("InputFile: got %q, want problem.txt", cfg.InputFile)
	}
}

func TestLongFlags(t *testing.T) {
	cfg, err := parse(t, "--conflicts", "true", "--order", "none", "--jobs", "2")
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if !cfg.CreateConflicts || cfg.Order != csp.OrderNone || cfg.Workers != 2 {
		t.Errorf("long flags not applied: %+v", cfg)
	}
}

func TestDuplicateFlagRejected(t *testing.T) {
	if _, err := parse(t, "-b", "10", "-b", "20"); err == nil {
		t.Errorf("repeated short flag must be rejected")
	}
	if _, err := parse(t, "-b", "10", "--binds", "20"); err == nil {
		t.Errorf("short plus long spelling of one option must be rejected")
	}
}

func TestStdinInput(t *testing.T) {
	cfg, err := parse(t, "-")
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.InputFile != "" {
		t.Errorf(`"-" should select stdin, got %q`, cfg.InputFile)
	}
	if _, err := parse(t, "a.txt", "b.txt"); err == nil {
		t.Errorf("two input files must be rejected")
	}
}

func TestParseSize(t *testing.T) {
	testCases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"123", 123, false},
		{"2k", 2048, false},
		{"2K", 2048, false},
		{"3M", 3 << 20, false},
		{"1G", 1 << 30, false},
		{"0x10", 16, false},
		{"", 0, true},
		{"12q", 0, true},
		{"-5", 0, true},
	}
	for _, tc := range testCases {
		got, err := ParseSize(tc.in)
		if tc.wantErr != (err != nil) {
			t.Errorf("ParseSize(%q): err = %v, wantErr = %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("ParseSize(%q): got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseOrder(t *testing.T) {
	if _, err := ParseOrder("biggest"); err == nil {
		t.Errorf("invalid order must be rejected")
	}
	got, err := ParseOrder("smallest-value")
	if err != nil || got != csp.OrderSmallestValue {
		t.Errorf("ParseOrder(smallest-value): got %d, err %v", got, err)
	}
}

func TestInvalidBool(t *testing.T) {
	if _, err := parse(t, "-c", "yes"); err == nil {
		t.Errorf("non true/false bool must be rejected")
	}
}
