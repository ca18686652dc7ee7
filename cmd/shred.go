package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/cryptshred/internal/config"
	"github.com/illarion/cryptshred/internal/core"
)

// ShredFlags are the options of the shred command
type ShredFlags struct {
	Passes       int
	CleanFolders bool
	Recursive    bool
	Exclude      []string
	Yes          bool
}

// Shred securely deletes files and directories without encrypting them
func Shred(ctx context.Context, env *Env, paths []string, f ShredFlags) {
	if f.Passes != 0 {
		if err := config.ValidatePasses(f.Passes); err != nil {
			HandleError(fmt.Errorf("--passes %w", err))
		}
	}

	WarnGitTracked(env.Log, paths)

	p, closeJournal := env.NewProcessor(ProcessFlags{
		SecureDelete: true,
		Passes:       f.Passes,
		CleanFolders: f.CleanFolders,
		Recursive:    f.Recursive,
		Exclude:      f.Exclude,
		Yes:          f.Yes,
	})
	summary, err := p.ShredPaths(ctx, paths)
	closeJournal()
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Shredded %d file(s)", summary.Shredded)
	if summary.Skipped > 0 {
		fmt.Printf(", skipped %d", summary.Skipped)
	}
	if summary.Failed > 0 {
		fmt.Printf(", failed %d", summary.Failed)
	}
	fmt.Println()
	if summary.RemovedDirs > 0 {
		fmt.Printf("Removed %d empty director(ies)\n", summary.RemovedDirs)
	}
	for _, failure := range summary.Errors {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", failure.Path, failure.Err)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// Prune removes empty directories below dir, and dir itself if it ends up empty
func Prune(env *Env, dir string, recursive bool) {
	info, err := os.Stat(dir)
	if err != nil {
		HandleError(fmt.Errorf("%w: %s", core.ErrPathNotFound, dir))
	}
	if !info.IsDir() {
		HandleError(fmt.Errorf("%w: %s", core.ErrNotDirectory, dir))
	}

	n, err := env.Shredder().CleanEmptyDirectories(dir, recursive)
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("Removed %d empty director(ies)\n", n)
}
