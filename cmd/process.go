package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/cryptshred/internal/config"
	"github.com/illarion/cryptshred/internal/core"
	"github.com/illarion/cryptshred/internal/git"
)

// ProcessFlags are the options shared by encrypt and decrypt
type ProcessFlags struct {
	Output       string
	Recursive    bool
	Force        bool
	SecureDelete bool
	Passes       int // 0 means the configured default
	CleanFolders bool
	Exclude      []string
	Workers      int // 0 means the configured default
	Keyring      bool
	Yes          bool // confirm secure deletion without asking
}

// Options merges command-line flags over the configuration
func (e *Env) Options(f ProcessFlags) core.Options {
	opts := core.Options{
		OutputPath:        f.Output,
		Recursive:         f.Recursive,
		Force:             f.Force,
		SecureDelete:      f.SecureDelete,
		Passes:            e.Config.Shred.Passes,
		CleanEmptyFolders: f.CleanFolders || e.Config.Shred.CleanFolders,
		Exclude:           append(append([]string(nil), e.Config.Exclude...), f.Exclude...),
		Workers:           e.Config.Workers,
	}
	if f.Passes != 0 {
		opts.Passes = f.Passes
	}
	if f.Workers != 0 {
		opts.Workers = f.Workers
	}
	return opts
}

// NewProcessor wires the engines, prompter and journal for a run.
// The caller closes the returned journal when it is not nil.
func (e *Env) NewProcessor(f ProcessFlags) (*core.Processor, func()) {
	p := core.NewProcessor(e.Options(f))
	p.Detector = e.Detector()
	p.Shredder = e.Shredder()
	p.Log = e.Log
	if f.Yes {
		p.Prompter = core.StaticPrompter{SecureDelete: true}
	} else {
		p.Prompter = core.NewTerminalPrompter()
	}

	closeFn := func() {}
	if j := e.OpenJournal(); j != nil {
		p.Journal = j
		closeFn = func() {
			if err := j.Close(); err != nil {
				e.Log.WithError(err).Warn("Failed to close journal")
			}
		}
	}
	return p, closeFn
}

// Encrypt encrypts a file or directory
func Encrypt(ctx context.Context, env *Env, path string, f ProcessFlags) {
	process(ctx, env, path, core.ModeEncrypt, f)
}

// Decrypt decrypts a file or directory
func Decrypt(ctx context.Context, env *Env, path string, f ProcessFlags) {
	process(ctx, env, path, core.ModeDecrypt, f)
}

func process(ctx context.Context, env *Env, path string, mode core.Mode, f ProcessFlags) {
	if f.Passes != 0 {
		if err := config.ValidatePasses(f.Passes); err != nil {
			HandleError(fmt.Errorf("--passes %w", err))
		}
	}

	if f.SecureDelete {
		WarnGitTracked(env.Log, []string{path})
	}

	p, closeJournal := env.NewProcessor(f)
	var summary *core.Summary
	src := env.PasswordSource(f.Keyring, mode == core.ModeEncrypt)
	err := core.WithPassword(src, func(password []byte) error {
		var err error
		summary, err = p.ProcessPath(ctx, path, mode, password)
		return err
	})
	closeJournal()
	if err != nil {
		HandleError(err)
	}

	verb := "Encrypted"
	if mode == core.ModeDecrypt {
		verb = "Decrypted"
		if msg := git.FormatStatus(git.CheckIgnored(summary.Outputs)); msg != "" {
			fmt.Fprint(os.Stderr, msg)
		}
	}
	if !PrintSummary(verb, summary) {
		os.Exit(1)
	}
}
