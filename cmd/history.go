package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/illarion/cryptshred/internal/storage"
)

// HistoryFlags select what the history command does
type HistoryFlags struct {
	Forget  bool // delete the given run
	Clear   bool // delete every run
	Compact bool // reclaim space in the journal file
}

// History lists recorded runs, or the entries of one run
func History(env *Env, runID string, f HistoryFlags) {
	if _, err := os.Stat(env.Config.Journal.Path); err != nil {
		fmt.Println("No journal found")
		if !env.Config.Journal.Enabled {
			fmt.Println("Enable it with 'journal.enabled: true' in the config file")
		}
		return
	}

	journal, err := storage.Open(env.Config.Journal.Path)
	if err != nil {
		HandleError(err)
	}
	err = runHistory(os.Stdout, journal, runID, f)
	// HandleError exits, so the bolt file is released first
	if cerr := journal.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		HandleError(err)
	}
}

func runHistory(w io.Writer, journal *storage.Journal, runID string, f HistoryFlags) error {
	switch {
	case f.Clear:
		if err := journal.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(w, "Journal cleared")
	case f.Forget:
		if runID == "" {
			return storage.ErrInvalidRun
		}
		if err := journal.DeleteRun(runID); err != nil {
			return err
		}
		fmt.Fprintf(w, "Forgot run %s\n", runID)
	case runID != "":
		if err := showRun(w, journal, runID); err != nil {
			return err
		}
	case !f.Compact:
		if err := listRuns(w, journal); err != nil {
			return err
		}
	}

	if f.Compact || f.Clear || f.Forget {
		return compactJournal(w, journal)
	}
	return nil
}

func listRuns(w io.Writer, journal *storage.Journal) error {
	runs, err := journal.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	for _, run := range runs {
		state := "unfinished"
		if run.Done() {
			state = fmt.Sprintf("%d processed, %d skipped, %d failed", run.Processed, run.Skipped, run.Failed)
		}
		fmt.Fprintf(w, "%s  %s  %-7s  %s  (%s)\n", shortID(run.ID), run.Started.Format(time.RFC3339), run.Operation, run.Root, state)
	}
	return nil
}

func showRun(w io.Writer, journal *storage.Journal, runID string) error {
	run, err := journal.GetRun(runID)
	if err != nil {
		return err
	}
	entries, err := journal.Entries(run.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Run:       %s\n", run.ID)
	fmt.Fprintf(w, "Operation: %s\n", run.Operation)
	fmt.Fprintf(w, "Root:      %s\n", run.Root)
	fmt.Fprintf(w, "Started:   %s\n", run.Started.Format(time.RFC3339))
	if run.Done() {
		fmt.Fprintf(w, "Finished:  %s\n", run.Finished.Format(time.RFC3339))
	}
	fmt.Fprintln(w)

	for _, e := range entries {
		icon := "✓"
		switch e.Status {
		case storage.StatusSkipped:
			icon = "-"
		case storage.StatusFailed:
			icon = "✗"
		}
		line := fmt.Sprintf("  %s %s", icon, e.Input)
		if e.Output != "" {
			line += " -> " + e.Output
		}
		if e.Shredded {
			line += " [shredded]"
		}
		switch {
		case e.Error != "":
			line += ": " + e.Error
		case e.Reason != "":
			line += " (" + e.Reason + ")"
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func compactJournal(w io.Writer, journal *storage.Journal) error {
	info, err := os.Stat(journal.Path())
	if err != nil {
		return err
	}
	sizeBefore := info.Size()

	if err := journal.Compact(); err != nil {
		return err
	}

	info, err = os.Stat(journal.Path())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(info.Size()))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
