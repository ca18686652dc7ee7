package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/illarion/cryptshred/internal/storage"
	"github.com/sirupsen/logrus"
)

// ShredPaths securely deletes files, or every file below directories, without
// encrypting anything first. Each top-level path is confirmed once.
func (p *Processor) ShredPaths(ctx context.Context, paths []string) (*Summary, error) {
	if err := validatePasses(p.Options.Passes); err != nil {
		return nil, err
	}

	summary := &Summary{}
	run := p.beginRun("shred", commonRoot(paths))
	if run != nil {
		summary.RunID = run.ID
	}
	defer p.finishRun(run, summary)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		info, err := os.Lstat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				p.fail(run, summary, path, "", fmt.Errorf("%w: %s", ErrPathNotFound, path), 0)
				summary.Total++
				continue
			}
			return summary, err
		}

		ok, err := p.Prompter.ConfirmSecureDelete(path, info.IsDir(), p.Options.CleanEmptyFolders)
		if err != nil {
			return summary, err
		}
		if !ok {
			p.Log.WithField("path", path).Warn("Secure deletion declined")
			summary.Skipped++
			summary.Total++
			p.record(run, storage.Entry{Input: path, Status: storage.StatusSkipped, Reason: "declined"})
			continue
		}

		if !info.IsDir() {
			summary.Total++
			p.shredOne(run, path, summary)
			continue
		}

		files, err := p.collectFiles(path, path)
		if err != nil {
			return summary, err
		}
		summary.Total += len(files)
		p.Log.WithFields(logrus.Fields{"dir": path, "files": len(files)}).Info("Shredding directory")
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			p.shredOne(run, file, summary)
		}

		if p.Options.CleanEmptyFolders {
			n, err := p.Shredder.CleanEmptyDirectories(path, p.Options.Recursive)
			summary.RemovedDirs += n
			if err != nil {
				return summary, fmt.Errorf("failed to clean empty directories: %w", err)
			}
		}
	}
	return summary, nil
}

func (p *Processor) shredOne(run *storage.Run, path string, summary *Summary) {
	start := time.Now()
	if err := p.Shredder.SecureDelete(path, p.Options.Passes); err != nil {
		p.fail(run, summary, path, "", err, time.Since(start))
		return
	}
	summary.Processed++
	summary.Shredded++
	p.record(run, storage.Entry{
		Input:    path,
		Status:   storage.StatusProcessed,
		Shredded: true,
		Duration: time.Since(start),
	})
}

func commonRoot(paths []string) string {
	if len(paths) == 1 {
		return paths[0]
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}
