package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/illarion/cryptshred/internal/crypto"
	"github.com/illarion/cryptshred/internal/security"
	"github.com/illarion/cryptshred/internal/shred"
	"github.com/illarion/cryptshred/internal/storage"
	"github.com/sirupsen/logrus"
)

// Cipher encrypts and decrypts whole files, creating outputs through dst.
// *crypto.Engine implements it.
type Cipher interface {
	EncryptTo(dst crypto.Destination, in, out string, password []byte) error
	DecryptTo(dst crypto.Destination, in, out string, password []byte) error
}

// Detector recognises encrypted files
type Detector interface {
	IsEncrypted(path string) bool
}

// Shredder destroys originals and prunes the directories left behind
type Shredder interface {
	SecureDelete(path string, passes int) error
	CleanEmptyDirectories(root string, recursive bool) (int, error)
}

// Journal records what each run did. *storage.Journal implements it.
type Journal interface {
	BeginRun(operation, root string) (*storage.Run, error)
	Record(runID string, entry storage.Entry) error
	FinishRun(run *storage.Run) error
}

// Options control a single encrypt, decrypt or shred run
type Options struct {
	OutputPath        string
	Recursive         bool
	Force             bool // overwrite existing outputs without asking
	SecureDelete      bool
	Passes            int
	CleanEmptyFolders bool     // only honoured together with SecureDelete
	Exclude           []string // doublestar globs matched against paths relative to the root
	Workers           int
}

// FileFailure pairs a path with the error that stopped it
type FileFailure struct {
	Path string
	Err  error
}

// Summary reports the outcome of a run
type Summary struct {
	RunID       string
	Total       int
	Processed   int
	Skipped     int
	Failed      int
	Shredded    int
	RemovedDirs int
	Outputs     []string // files written by the run
	Errors      []FileFailure
}

// Processor walks inputs and drives the crypto and shred engines
type Processor struct {
	Crypto   Cipher
	Detector Detector
	Shredder Shredder
	Prompter Prompter
	Journal  Journal // optional
	Log      logrus.FieldLogger
	Options  Options

	overwriteAll atomic.Bool
	promptMu     sync.Mutex
}

// NewProcessor returns a Processor with the default engines that never
// overwrites or shreds without being told to
func NewProcessor(opts Options) *Processor {
	return &Processor{
		Crypto:   crypto.New(),
		Detector: &crypto.Detector{},
		Shredder: shred.New(),
		Prompter: StaticPrompter{},
		Log:      logrus.StandardLogger(),
		Options:  opts,
	}
}

type job struct {
	input  string
	output string
	rel    string // output relative to the output root, directory mode only
}

type outcome struct {
	skipped  bool
	reason   string
	shredded bool
}

// ProcessPath encrypts or decrypts a file or every file in a directory.
// Per-file failures are collected in the summary; the returned error is
// reserved for problems with the run as a whole.
func (p *Processor) ProcessPath(ctx context.Context, path string, mode Mode, password []byte) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return nil, err
	}

	secureDelete, err := p.confirmSecureDelete(path, info.IsDir())
	if err != nil {
		return nil, err
	}

	p.overwriteAll.Store(false)
	summary := &Summary{}
	run := p.beginRun(mode.String(), path)
	if run != nil {
		summary.RunID = run.ID
	}
	defer p.finishRun(run, summary)

	if info.IsDir() {
		err = p.processDirectory(ctx, run, path, mode, password, secureDelete, summary)
		return summary, err
	}

	output := OutputPath(path, p.Options.OutputPath, mode)
	summary.Total = 1
	p.runJob(run, job{input: path, output: output}, nil, mode, password, secureDelete, summary, nil)
	return summary, nil
}

func (p *Processor) confirmSecureDelete(path string, isDir bool) (bool, error) {
	if !p.Options.SecureDelete {
		return false, nil
	}
	if err := validatePasses(p.Options.Passes); err != nil {
		return false, err
	}
	ok, err := p.Prompter.ConfirmSecureDelete(path, isDir, p.Options.CleanEmptyFolders)
	if err != nil {
		return false, err
	}
	if !ok {
		p.Log.WithField("path", path).Warn("Secure deletion declined, originals will be kept")
	}
	return ok, nil
}

func validatePasses(n int) error {
	if n < 1 {
		return shred.ErrInvalidPasses
	}
	return nil
}

func (p *Processor) processDirectory(ctx context.Context, run *storage.Run, root string, mode Mode, password []byte, secureDelete bool, summary *Summary) error {
	outDir := p.Options.OutputPath
	if outDir == "" {
		outDir = root
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	validator, err := security.New(outDir)
	if err != nil {
		return err
	}
	defer validator.Close()

	files, err := p.collectFiles(root, outDir)
	if err != nil {
		return err
	}
	summary.Total = len(files)
	p.Log.WithFields(logrus.Fields{"dir": root, "files": len(files)}).Info("Processing directory")

	jobs := make([]job, 0, len(files))
	for _, file := range files {
		rel, err := RelativeOutputPath(file, root, mode)
		if err == nil {
			var out string
			if out, err = validator.Resolve(rel); err == nil {
				jobs = append(jobs, job{input: file, output: out, rel: rel})
				continue
			}
		}
		p.fail(run, summary, file, "", fmt.Errorf("invalid output path: %w", err), 0)
	}

	var mu sync.Mutex
	p.runAll(ctx, jobs, func(j job) {
		p.runJob(run, j, validator, mode, password, secureDelete, summary, &mu)
	})

	if secureDelete && p.Options.CleanEmptyFolders {
		n, err := p.Shredder.CleanEmptyDirectories(root, p.Options.Recursive)
		summary.RemovedDirs = n
		if err != nil {
			return fmt.Errorf("failed to clean empty directories: %w", err)
		}
		p.Log.WithField("removed", n).Info("Removed empty directories")
	}

	return ctx.Err()
}

// runAll feeds jobs to Options.Workers goroutines and stops dispatching
// once ctx is done. Files already started always finish.
func (p *Processor) runAll(ctx context.Context, jobs []job, fn func(job)) {
	workers := p.Options.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	queue := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				fn(j)
			}
		}()
	}

dispatch:
	for _, j := range jobs {
		select {
		case <-ctx.Done():
			break dispatch
		case queue <- j:
		}
	}
	close(queue)
	wg.Wait()
}

// collectFiles lists regular files under root, honouring Recursive and
// Exclude. Files inside a separate output directory below root are left out.
func (p *Processor) collectFiles(root, outDir string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			p.Log.WithError(err).WithField("path", path).Debug("Skipping unreadable entry")
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if !p.Options.Recursive {
				return filepath.SkipDir
			}
			if absOut != absRoot {
				if abs, _ := filepath.Abs(path); abs == absOut {
					return filepath.SkipDir
				}
			}
			if p.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || p.excluded(rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func (p *Processor) excluded(rel string) bool {
	slashed := filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, pattern := range p.Options.Exclude {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, base); ok {
				return true
			}
		}
	}
	return false
}

// runJob processes one file and folds the result into the summary
func (p *Processor) runJob(run *storage.Run, j job, validator *security.PathValidator, mode Mode, password []byte, secureDelete bool, summary *Summary, mu *sync.Mutex) {
	start := time.Now()
	res, err := p.processFile(j, validator, mode, password, secureDelete)
	elapsed := time.Since(start)

	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}

	if err != nil {
		p.fail(run, summary, j.input, j.output, err, elapsed)
		return
	}

	entry := storage.Entry{Input: j.input, Output: j.output, Duration: elapsed, Shredded: res.shredded}
	if res.skipped {
		summary.Skipped++
		entry.Status = storage.StatusSkipped
		entry.Reason = res.reason
		entry.Output = ""
		p.Log.WithFields(logrus.Fields{"file": j.input, "reason": res.reason}).Info("Skipped")
	} else {
		summary.Processed++
		summary.Outputs = append(summary.Outputs, j.output)
		if res.shredded {
			summary.Shredded++
		}
		entry.Status = storage.StatusProcessed
	}
	p.record(run, entry)
}

func (p *Processor) fail(run *storage.Run, summary *Summary, input, output string, err error, elapsed time.Duration) {
	summary.Failed++
	summary.Errors = append(summary.Errors, FileFailure{Path: input, Err: err})
	p.Log.WithError(err).WithField("file", input).Error("Failed to process file")
	p.record(run, storage.Entry{
		Input:    input,
		Output:   output,
		Status:   storage.StatusFailed,
		Error:    err.Error(),
		Duration: elapsed,
	})
}

func (p *Processor) processFile(j job, validator *security.PathValidator, mode Mode, password []byte, secureDelete bool) (outcome, error) {
	// Skip files that are already in the target format
	switch mode {
	case ModeEncrypt:
		if crypto.HasEncryptedExt(j.input) {
			return outcome{skipped: true, reason: "already encrypted"}, nil
		}
	case ModeDecrypt:
		if !p.Detector.IsEncrypted(j.input) {
			return outcome{skipped: true, reason: "not an encrypted file"}, nil
		}
	}

	if sameFile(j.input, j.output) {
		return outcome{}, fmt.Errorf("output %s would overwrite the input", j.output)
	}

	proceed, err := p.checkOverwrite(j, validator)
	if err != nil {
		return outcome{}, err
	}
	if !proceed {
		return outcome{skipped: true, reason: ErrOutputExists.Error()}, nil
	}

	if err := p.ensureParent(j, validator); err != nil {
		return outcome{}, err
	}

	// in directory mode the output is opened through the root, never by absolute path
	var dst crypto.Destination = crypto.OSDestination{}
	name := j.output
	if validator != nil {
		dst, name = validator, j.rel
	}

	log := p.Log.WithFields(logrus.Fields{"file": j.input, "output": j.output})
	if mode == ModeEncrypt {
		log.Info("Encrypting")
		err = p.Crypto.EncryptTo(dst, j.input, name, password)
	} else {
		log.Info("Decrypting")
		err = p.Crypto.DecryptTo(dst, j.input, name, password)
	}
	if err != nil {
		return outcome{}, err
	}

	if !secureDelete {
		return outcome{}, nil
	}
	if err := p.Shredder.SecureDelete(j.input, p.Options.Passes); err != nil {
		return outcome{}, fmt.Errorf("output written but original not shredded: %w", err)
	}
	return outcome{shredded: true}, nil
}

// checkOverwrite applies Force, the shared "all" answer, or asks the prompter
func (p *Processor) checkOverwrite(j job, validator *security.PathValidator) (bool, error) {
	var info fs.FileInfo
	var err error
	if validator != nil {
		if info, err = validator.Lookup(j.rel); err != nil {
			return false, err
		}
	} else if info, err = os.Lstat(j.output); err != nil {
		info = nil
	}

	exists := info != nil
	if exists && !info.Mode().IsRegular() {
		return false, fmt.Errorf("%w: %s", ErrOutputNotRegular, j.output)
	}

	if !exists || p.Options.Force || p.overwriteAll.Load() {
		return true, nil
	}

	// one prompt at a time when running several workers
	p.promptMu.Lock()
	defer p.promptMu.Unlock()
	if p.overwriteAll.Load() {
		return true, nil
	}

	action, err := p.Prompter.ConfirmOverwrite(j.output)
	if err != nil {
		return false, err
	}
	switch action {
	case OverwriteAll:
		p.overwriteAll.Store(true)
		return true, nil
	case OverwriteYes:
		return true, nil
	default:
		return false, nil
	}
}

func (p *Processor) ensureParent(j job, validator *security.PathValidator) error {
	if validator != nil {
		return validator.EnsureParent(j.rel, 0755)
	}
	dir := filepath.Dir(j.output)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		p.Log.WithField("dir", dir).Info("Created directory")
	}
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	if absA == absB {
		return true
	}
	ia, errA := os.Stat(absA)
	ib, errB := os.Stat(absB)
	return errA == nil && errB == nil && os.SameFile(ia, ib)
}

func (p *Processor) beginRun(operation, root string) *storage.Run {
	if p.Journal == nil {
		return nil
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	run, err := p.Journal.BeginRun(operation, root)
	if err != nil {
		p.Log.WithError(err).Warn("Journal unavailable, run will not be recorded")
		return nil
	}
	return run
}

func (p *Processor) record(run *storage.Run, entry storage.Entry) {
	if run == nil {
		return
	}
	if err := p.Journal.Record(run.ID, entry); err != nil {
		p.Log.WithError(err).Warn("Failed to record journal entry")
	}
}

func (p *Processor) finishRun(run *storage.Run, summary *Summary) {
	if run == nil {
		return
	}
	run.Processed = summary.Processed
	run.Skipped = summary.Skipped
	run.Failed = summary.Failed
	if err := p.Journal.FinishRun(run); err != nil {
		p.Log.WithError(err).Warn("Failed to finish journal run")
	}
}
