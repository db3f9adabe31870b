package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/samdwyer/dungeonlayout/internal/config"
	"github.com/samdwyer/dungeonlayout/internal/errors"
	"github.com/samdwyer/dungeonlayout/internal/snapshot"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() without a logger should return log.Default()")
	}

	l := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("loggerFromContext() did not return the attached logger")
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("generated layout", "rooms", 3)
	out := buf.String()
	if !strings.Contains(out, "generated layout") || !strings.Contains(out, "elapsed") {
		t.Errorf("progress output = %q", out)
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvSeed, "")
	t.Setenv(config.EnvRooms, "")

	var stdout, stderr bytes.Buffer
	root, opts := newRootCmd(&stderr)
	defer opts.closeLog()
	root.SetOut(&stdout)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGenerateJSONToStdout(t *testing.T) {
	stdout, stderr, err := run(t, "generate", "--seed", "9", "--rooms", "12", "--json", "-")
	if err != nil {
		t.Fatalf("generate error = %v\n%s", err, stderr)
	}

	var snap snapshot.Snapshot
	if err := json.Unmarshal([]byte(stdout), &snap); err != nil {
		t.Fatalf("stdout is not a snapshot: %v", err)
	}
	if snap.Seed != 9 || len(snap.Rooms) != 12 || !snap.Done {
		t.Errorf("snapshot seed %d rooms %d done %v", snap.Seed, len(snap.Rooms), snap.Done)
	}
	if !strings.Contains(stderr, "generated layout") {
		t.Errorf("stderr is missing the summary: %q", stderr)
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	first, _, err := run(t, "generate", "--seed", "77", "--rooms", "15", "--ascii", "-")
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := run(t, "generate", "--seed", "77", "--rooms", "15", "--ascii", "-")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("same seed produced different maps")
	}
}

func TestGenerateFiles(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "layout.png")
	dotPath := filepath.Join(dir, "layout.dot")

	_, stderr, err := run(t, "generate", "--seed", "3", "--rooms", "10",
		"--png", pngPath, "--width", "200", "--height", "100", "--debug",
		"--dot", dotPath)
	if err != nil {
		t.Fatalf("generate error = %v\n%s", err, stderr)
	}

	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("PNG size = %dx%d", b.Dx(), b.Dy())
	}

	dot, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(dot), "graph layout {") {
		t.Errorf("DOT output = %q", dot)
	}
}

func TestConfigFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.toml")
	if err := os.WriteFile(path, []byte("rooms = 4\n\n[connect]\nrooms = \"all\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := run(t, "generate", "--config", path, "--seed", "1", "--json", "-")
	if err != nil {
		t.Fatal(err)
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal([]byte(stdout), &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Rooms) != 4 || len(snap.Vertices) != 4 {
		t.Errorf("rooms %d vertices %d, want 4 and 4", len(snap.Rooms), len(snap.Vertices))
	}

	if _, _, err := run(t, "generate", "--rooms", "-1"); err == nil {
		t.Error("generate --rooms -1 should fail validation")
	}
}

func TestLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	_, stderr, err := run(t, "generate", "--seed", "2", "--rooms", "3", "--log-file", logPath)
	if err != nil {
		t.Fatal(err)
	}
	if stderr != "" {
		t.Errorf("stderr should be empty with --log-file, got %q", stderr)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "generated layout") {
		t.Errorf("log file = %q", data)
	}
}

func TestPipelineFactoryAdvancesSeed(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 100
	factory := pipelineFactory(cfg, log.New(&bytes.Buffer{}))

	for want := int64(100); want < 103; want++ {
		p, err := factory()
		if err != nil {
			t.Fatal(err)
		}
		if got := p.Config().Seed; got != want {
			t.Errorf("seed = %d, want %d", got, want)
		}
	}
}

func TestLogFileClosedWhenCommandFails(t *testing.T) {
	t.Setenv(config.EnvSeed, "")
	t.Setenv(config.EnvRooms, "")
	logPath := filepath.Join(t.TempDir(), "run.log")

	root, opts := newRootCmd(&bytes.Buffer{})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"generate", "--rooms", "-1", "--log-file", logPath})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Fatal("generate --rooms -1 should fail")
	}

	f := opts.logOut
	if f == nil {
		t.Fatal("log file was not opened")
	}
	if err := opts.closeLog(); err != nil {
		t.Fatalf("closeLog() error = %v", err)
	}
	if err := f.Close(); err == nil {
		t.Error("log file still open after closeLog()")
	}
	if err := opts.closeLog(); err != nil {
		t.Errorf("second closeLog() error = %v", err)
	}
}

func TestCommandErrorsAreCoded(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no", "such", "dir")
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unwritable output", []string{"generate", "--rooms", "3", "--json", filepath.Join(missing, "out.json")}, errors.ErrCodeInvalidInput},
		{"unwritable log file", []string{"generate", "--rooms", "3", "--log-file", filepath.Join(missing, "run.log")}, errors.ErrCodeInvalidInput},
		{"invalid config", []string{"generate", "--rooms", "0"}, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("error code = %q (%v), want %q", got, err, tt.code)
			}
		})
	}
}
