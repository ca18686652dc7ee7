package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/illarion/cryptshred/internal/config"
	"github.com/illarion/cryptshred/internal/core"
	"github.com/illarion/cryptshred/internal/crypto"
	"github.com/illarion/cryptshred/internal/git"
	"github.com/illarion/cryptshred/internal/keyring"
	"github.com/illarion/cryptshred/internal/shred"
	"github.com/illarion/cryptshred/internal/storage"
	"github.com/sirupsen/logrus"
)

// Env carries what every command needs: the loaded config and the logger
type Env struct {
	Config *config.Config
	Log    *logrus.Logger
}

// GlobalFlags are accepted by every command
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// Setup loads the configuration, applies flag overrides and builds the logger.
// It exits on any error.
func Setup(flags GlobalFlags) *Env {
	path := flags.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		HandleError(err)
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.LogFormat = flags.LogFormat
	}

	log, err := NewLogger(cfg)
	if err != nil {
		HandleError(err)
	}
	log.WithField("config", path).Debug("Configuration loaded")
	return &Env{Config: cfg, Log: log}
}

// NewLogger builds a logger writing to stderr so results on stdout stay clean
func NewLogger(cfg *config.Config) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)

	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}
	return log, nil
}

// Detector returns the encrypted-file detector configured for this run
func (e *Env) Detector() *crypto.Detector {
	return &crypto.Detector{RequireExtension: e.Config.Detect.RequireExtension}
}

// Shredder returns a shredder that reports its progress to the logger
func (e *Env) Shredder() *shred.Shredder {
	s := shred.New()
	s.ChunkSize = e.Config.Shred.ChunkSize
	s.OnEvent = e.logShredEvent
	return s
}

func (e *Env) logShredEvent(ev shred.Event) {
	log := e.Log.WithField("file", ev.Path)
	switch ev.Type {
	case shred.EventPassStarted:
		log.WithFields(logrus.Fields{"pass": ev.Pass, "passes": ev.Passes, "pattern": ev.Pattern}).Debug("Overwrite pass started")
	case shred.EventProgress:
		log.WithFields(logrus.Fields{"pass": ev.Pass, "written": ev.Bytes, "size": ev.Total}).Trace("Overwrite progress")
	case shred.EventPassSynced:
		log.WithFields(logrus.Fields{"pass": ev.Pass, "passes": ev.Passes}).Info("Overwrite pass complete")
	case shred.EventRemoved, shred.EventEmptyRemoved:
		log.Info("Securely deleted")
	case shred.EventMissing:
		log.Warn("File vanished before shredding")
	case shred.EventDirRemoved:
		e.Log.WithField("dir", ev.Path).Debug("Removed empty directory")
	}
}

// OpenJournal opens the run journal when enabled in the config.
// A journal that cannot be opened is logged and the run continues without it.
func (e *Env) OpenJournal() *storage.Journal {
	if !e.Config.Journal.Enabled {
		return nil
	}
	j, err := storage.Open(e.Config.Journal.Path)
	if err != nil {
		e.Log.WithError(err).Warn("Cannot open journal, history will not be recorded")
		return nil
	}
	return j
}

// PasswordSource returns the chain used to obtain a password:
// the environment, then the keyring when enabled, then the terminal.
// confirm asks twice on the terminal, as when choosing a password to encrypt with.
func (e *Env) PasswordSource(useKeyring, confirm bool) core.PasswordSource {
	chain := core.ChainPassword{core.EnvPassword{}}
	if useKeyring || e.Config.Keyring.Enabled {
		chain = append(chain, core.KeyringPassword{Account: e.account()})
	}
	return append(chain, core.TerminalPassword{Confirm: confirm})
}

func (e *Env) account() string {
	if e.Config.Keyring.Account == "" {
		return keyring.DefaultAccount
	}
	return e.Config.Keyring.Account
}

// WarnGitTracked prints a warning for targets that git would still hold in history
func WarnGitTracked(log logrus.FieldLogger, paths []string) {
	status, err := git.CheckTracked(paths)
	if err != nil {
		log.WithError(err).Debug("git check failed")
		return
	}
	if msg := git.FormatStatus(status); msg != "" {
		fmt.Fprint(os.Stderr, msg)
	}
}

// PrintSummary prints the outcome of a run and reports whether anything failed
func PrintSummary(verb string, s *core.Summary) bool {
	fmt.Printf("%s %d file(s)", verb, s.Processed)
	if s.Skipped > 0 {
		fmt.Printf(", skipped %d", s.Skipped)
	}
	if s.Failed > 0 {
		fmt.Printf(", failed %d", s.Failed)
	}
	fmt.Println()

	if s.Shredded > 0 {
		fmt.Printf("Securely deleted %d original(s)\n", s.Shredded)
	}
	if s.RemovedDirs > 0 {
		fmt.Printf("Removed %d empty director(ies)\n", s.RemovedDirs)
	}
	if s.RunID != "" {
		fmt.Printf("Run: %s\n", s.RunID)
	}
	for _, f := range s.Errors {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Path, f.Err)
	}
	return s.Failed == 0
}

// HandleError handles common errors consistently
func HandleError(err error) {
	switch {
	case errors.Is(err, core.ErrNoPassword):
		fmt.Fprintf(os.Stderr, "Error: no password available\n")
		fmt.Fprintf(os.Stderr, "Set %s, save one with 'cryptshred keyring save', or run in a terminal\n", core.EnvPasswordVar)
	case errors.Is(err, core.ErrPasswordMismatch):
		fmt.Fprintf(os.Stderr, "Error: passwords do not match\n")
	case errors.Is(err, core.ErrEmptyPassword):
		fmt.Fprintf(os.Stderr, "Error: password cannot be empty\n")
	case errors.Is(err, core.ErrCancelled), errors.Is(err, context.Canceled):
		fmt.Fprintf(os.Stderr, "Cancelled\n")
	case errors.Is(err, core.ErrPathNotFound), errors.Is(err, core.ErrNotDirectory):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case crypto.IsDecryptionError(err):
		fmt.Fprintf(os.Stderr, "Error: decryption failed (wrong password or corrupted file)\n")
	case errors.Is(err, crypto.ErrInvalidFormat):
		fmt.Fprintf(os.Stderr, "Error: not a cryptshred file: %s\n", err)
	case errors.Is(err, crypto.ErrUnsupportedVersion):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "The file was written by a newer version of cryptshred\n")
	case errors.Is(err, shred.ErrInvalidPasses):
		fmt.Fprintf(os.Stderr, "Error: %s (allowed %d..%d)\n", err, config.MinPasses, config.MaxPasses)
	case errors.Is(err, storage.ErrRunNotFound):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'cryptshred history' to list runs\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
