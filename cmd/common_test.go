package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/illarion/cryptshred/internal/config"
	"github.com/illarion/cryptshred/internal/core"
	"github.com/illarion/cryptshred/internal/shred"
	"github.com/sirupsen/logrus"
)

func testEnv(t *testing.T) *Env {
	t.Helper()
	cfg := config.Default()
	log, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	return &Env{Config: cfg, Log: log}
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"

	log, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter = %T, want JSONFormatter", log.Formatter)
	}

	cfg.LogFormat = "xml"
	if _, err := NewLogger(cfg); err == nil {
		t.Error("expected error for unknown format")
	}

	cfg.LogFormat = "text"
	cfg.LogLevel = "loud"
	if _, err := NewLogger(cfg); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestOptionsMergeFlagsOverConfig(t *testing.T) {
	env := testEnv(t)
	env.Config.Shred.Passes = 7
	env.Config.Workers = 4
	env.Config.Exclude = []string{"*.log"}

	opts := env.Options(ProcessFlags{Exclude: []string{"tmp/**"}})
	if opts.Passes != 7 || opts.Workers != 4 {
		t.Errorf("config defaults not applied: passes=%d workers=%d", opts.Passes, opts.Workers)
	}
	if len(opts.Exclude) != 2 || opts.Exclude[0] != "*.log" || opts.Exclude[1] != "tmp/**" {
		t.Errorf("Exclude = %v", opts.Exclude)
	}

	opts = env.Options(ProcessFlags{Passes: 1, Workers: 2, CleanFolders: true})
	if opts.Passes != 1 || opts.Workers != 2 || !opts.CleanEmptyFolders {
		t.Errorf("flags did not override config: %+v", opts)
	}

	// the config slice must not be aliased by the merged list
	opts = env.Options(ProcessFlags{Exclude: []string{"a"}})
	opts.Exclude[0] = "changed"
	if env.Config.Exclude[0] != "*.log" {
		t.Error("Options modified the config exclude list")
	}
}

func TestPasswordSourceOrder(t *testing.T) {
	env := testEnv(t)

	chain, ok := env.PasswordSource(false, false).(core.ChainPassword)
	if !ok {
		t.Fatalf("expected ChainPassword")
	}
	if len(chain) != 2 {
		t.Fatalf("without keyring chain has %d sources, want 2", len(chain))
	}
	if _, ok := chain[0].(core.EnvPassword); !ok {
		t.Errorf("first source = %T, want EnvPassword", chain[0])
	}

	chain = env.PasswordSource(true, true).(core.ChainPassword)
	if len(chain) != 3 {
		t.Fatalf("with keyring chain has %d sources, want 3", len(chain))
	}
	kr, ok := chain[1].(core.KeyringPassword)
	if !ok || kr.Account != "default" {
		t.Errorf("second source = %#v, want keyring for default account", chain[1])
	}
	if tp, ok := chain[2].(core.TerminalPassword); !ok || !tp.Confirm {
		t.Errorf("last source = %#v, want confirming terminal prompt", chain[2])
	}
}

func TestPasswordSourceFromEnv(t *testing.T) {
	t.Setenv(core.EnvPasswordVar, "from-env")
	env := testEnv(t)

	pw, err := env.PasswordSource(false, false).Password()
	if err != nil {
		t.Fatalf("Password failed: %v", err)
	}
	if string(pw) != "from-env" {
		t.Errorf("password = %q", pw)
	}
}

func TestShredEventsAreLogged(t *testing.T) {
	env := testEnv(t)
	var buf bytes.Buffer
	env.Log.SetOutput(&buf)
	env.Log.SetLevel(logrus.InfoLevel)

	s := env.Shredder()
	if s.ChunkSize != env.Config.Shred.ChunkSize {
		t.Errorf("ChunkSize = %d, want %d", s.ChunkSize, env.Config.Shred.ChunkSize)
	}

	s.OnEvent(shred.Event{Type: shred.EventPassStarted, Path: "a", Pass: 1, Passes: 3})
	if buf.Len() != 0 {
		t.Errorf("pass start logged at info: %q", buf.String())
	}

	s.OnEvent(shred.Event{Type: shred.EventPassSynced, Path: "a", Pass: 1, Passes: 3})
	if !strings.Contains(buf.String(), "Overwrite pass complete") {
		t.Errorf("pass completion not logged: %q", buf.String())
	}
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		0:                      "0 bytes",
		1023:                   "1023 bytes",
		1024:                   "1.0 KB",
		5 * 1024 * 1024:        "5.0 MB",
		3 * 1024 * 1024 * 1024: "3.0 GB",
	}
	for size, want := range tests {
		if got := formatSize(size); got != want {
			t.Errorf("formatSize(%d) = %q, want %q", size, got, want)
		}
	}
}
