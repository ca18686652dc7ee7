package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/illarion/cryptshred/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "encrypt":
		runProcess(ctx, "encrypt", os.Args[2:])
	case "decrypt":
		runProcess(ctx, "decrypt", os.Args[2:])
	case "list", "ls":
		runList(ctx, os.Args[2:])
	case "shred":
		runShred(ctx, os.Args[2:])
	case "prune":
		runPrune(ctx, os.Args[2:])
	case "diff":
		runDiff(ctx, os.Args[2:])
	case "history":
		runHistory(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// stringList collects a repeatable flag
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func globalFlags(fs *flag.FlagSet) *cmd.GlobalFlags {
	g := &cmd.GlobalFlags{}
	fs.StringVar(&g.ConfigPath, "config", "", "Config file (default $CRYPTSHRED_CONFIG or the user config dir)")
	fs.StringVar(&g.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	fs.StringVar(&g.LogFormat, "log-format", "", "Log format: text or json")
	return g
}

// parse accepts flags before and after positional arguments
func parse(fs *flag.FlagSet, args []string) []string {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func requireArgs(name string, args []string, n int) {
	if len(args) != n {
		fmt.Fprintf(os.Stderr, "Error: %s expects %d argument(s), got %d\n\n", name, n, len(args))
		printCommandHelp(name)
		os.Exit(1)
	}
}

func runProcess(ctx context.Context, name string, args []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	g := globalFlags(fs)

	var f cmd.ProcessFlags
	var exclude stringList
	fs.StringVar(&f.Output, "o", "", "Output file or directory")
	fs.StringVar(&f.Output, "output", "", "Output file or directory")
	fs.BoolVar(&f.Recursive, "r", false, "Process subdirectories")
	fs.BoolVar(&f.Recursive, "recursive", false, "Process subdirectories")
	fs.BoolVar(&f.Force, "f", false, "Overwrite existing outputs without asking")
	fs.BoolVar(&f.Force, "force", false, "Overwrite existing outputs without asking")
	fs.BoolVar(&f.SecureDelete, "s", false, "Securely delete originals after processing")
	fs.BoolVar(&f.SecureDelete, "secure-delete", false, "Securely delete originals after processing")
	fs.IntVar(&f.Passes, "p", 0, "Overwrite passes for secure deletion (1-35)")
	fs.IntVar(&f.Passes, "passes", 0, "Overwrite passes for secure deletion (1-35)")
	fs.BoolVar(&f.CleanFolders, "c", false, "Remove empty folders after secure deletion")
	fs.BoolVar(&f.CleanFolders, "clean-folders", false, "Remove empty folders after secure deletion")
	fs.Var(&exclude, "exclude", "Glob of files to leave alone (repeatable)")
	fs.IntVar(&f.Workers, "workers", 0, "Files processed in parallel")
	fs.BoolVar(&f.Keyring, "keyring", false, "Use the password stored in the OS keyring")
	fs.BoolVar(&f.Yes, "yes", false, "Confirm secure deletion without asking")

	args = parse(fs, args)
	requireArgs(name, args, 1)
	f.Exclude = exclude

	env := cmd.Setup(*g)
	if name == "encrypt" {
		cmd.Encrypt(ctx, env, args[0], f)
	} else {
		cmd.Decrypt(ctx, env, args[0], f)
	}
}

func runList(_ context.Context, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	g := globalFlags(fs)
	var recursive bool
	fs.BoolVar(&recursive, "r", false, "Search subdirectories")
	fs.BoolVar(&recursive, "recursive", false, "Search subdirectories")
	strict := fs.Bool("strict", false, "Only report files ending in .enc")

	args = parse(fs, args)
	dir := "."
	if len(args) > 0 {
		requireArgs("list", args, 1)
		dir = args[0]
	}

	cmd.List(cmd.Setup(*g), dir, recursive, *strict)
}

func runShred(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("shred", flag.ExitOnError)
	g := globalFlags(fs)

	var f cmd.ShredFlags
	var exclude stringList
	fs.IntVar(&f.Passes, "p", 0, "Overwrite passes (1-35)")
	fs.IntVar(&f.Passes, "passes", 0, "Overwrite passes (1-35)")
	fs.BoolVar(&f.CleanFolders, "c", false, "Remove empty folders afterwards")
	fs.BoolVar(&f.CleanFolders, "clean-folders", false, "Remove empty folders afterwards")
	fs.BoolVar(&f.Recursive, "r", false, "Descend into subdirectories")
	fs.BoolVar(&f.Recursive, "recursive", false, "Descend into subdirectories")
	fs.Var(&exclude, "exclude", "Glob of files to leave alone (repeatable)")
	fs.BoolVar(&f.Yes, "yes", false, "Do not ask for confirmation")

	args = parse(fs, args)
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: shred needs at least one path")
		printCommandHelp("shred")
		os.Exit(1)
	}
	f.Exclude = exclude

	cmd.Shred(ctx, cmd.Setup(*g), args, f)
}

func runPrune(_ context.Context, args []string) {
	fs := flag.NewFlagSet("prune", flag.ExitOnError)
	g := globalFlags(fs)
	var recursive bool
	fs.BoolVar(&recursive, "r", false, "Descend into subdirectories")
	fs.BoolVar(&recursive, "recursive", false, "Descend into subdirectories")

	args = parse(fs, args)
	requireArgs("prune", args, 1)

	cmd.Prune(cmd.Setup(*g), args[0], recursive)
}

func runDiff(_ context.Context, args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	g := globalFlags(fs)
	useKeyring := fs.Bool("keyring", false, "Use the password stored in the OS keyring")

	args = parse(fs, args)
	requireArgs("diff", args, 2)

	cmd.Diff(cmd.Setup(*g), args[0], args[1], *useKeyring)
}

func runHistory(_ context.Context, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	g := globalFlags(fs)
	var f cmd.HistoryFlags
	fs.BoolVar(&f.Forget, "forget", false, "Delete the given run")
	fs.BoolVar(&f.Clear, "clear", false, "Delete every run")
	fs.BoolVar(&f.Compact, "compact", false, "Compact the journal file")

	args = parse(fs, args)
	runID := ""
	if len(args) > 0 {
		requireArgs("history", args, 1)
		runID = args[0]
	}

	cmd.History(cmd.Setup(*g), runID, f)
}

func runKeyring(_ context.Context, args []string) {
	fs := flag.NewFlagSet("keyring", flag.ExitOnError)
	g := globalFlags(fs)

	args = parse(fs, args)
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: cryptshred keyring <save|delete|status>")
		os.Exit(1)
	}

	env := cmd.Setup(*g)
	switch args[0] {
	case "save":
		cmd.KeyringSave(env)
	case "delete":
		cmd.KeyringDelete(env)
	case "status":
		cmd.KeyringStatus(env)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: cryptshred completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("cryptshred - File encryption with secure deletion")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cryptshred <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  encrypt     Encrypt a file or directory")
	fmt.Println("  decrypt     Decrypt a file or directory")
	fmt.Println("  list, ls    List encrypted files in a directory")
	fmt.Println("  shred       Securely delete files without encrypting")
	fmt.Println("  prune       Remove empty directories")
	fmt.Println("  diff        Compare an encrypted file with a plaintext file")
	fmt.Println("  history     Show runs recorded in the journal")
	fmt.Println("  keyring     Manage the password in the OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Global flags (any command):")
	fmt.Println("  --config <file>       Config file")
	fmt.Println("  --log-level <level>   trace, debug, info, warn, error")
	fmt.Println("  --log-format <fmt>    text or json")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  cryptshred encrypt secrets.txt            # Writes secrets.txt.enc")
	fmt.Println("  cryptshred encrypt -r -s docs/            # Encrypt a tree, shred originals")
	fmt.Println("  cryptshred decrypt -o out/ -r docs/       # Decrypt a tree into out/")
	fmt.Println("  cryptshred shred -p 7 old.key             # Seven-pass secure delete")
	fmt.Println()
	fmt.Println("Use 'cryptshred help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "encrypt", "decrypt":
		fmt.Printf("cryptshred %s [flags] <path>\n", command)
		fmt.Println()
		if command == "encrypt" {
			fmt.Println("Encrypts a file, or every file in a directory, with a password.")
			fmt.Println("Each output gets the .enc suffix; files already ending in .enc are skipped.")
		} else {
			fmt.Println("Decrypts a file, or every encrypted file in a directory.")
			fmt.Println("The .enc suffix is stripped; other names get .dec appended.")
			fmt.Println("Files that are not cryptshred files are skipped.")
		}
		fmt.Println()
		fmt.Println("The password is taken from $CRYPTSHRED_PASSWORD, the OS keyring")
		fmt.Println("(with --keyring), or asked on the terminal.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -o, --output <path>   Output file, or output directory for a directory")
		fmt.Println("  -r, --recursive       Process subdirectories")
		fmt.Println("  -f, --force           Overwrite existing outputs without asking")
		fmt.Println("  -s, --secure-delete   Securely delete originals after processing")
		fmt.Println("  -p, --passes <n>      Overwrite passes for secure deletion (1-35, default 3)")
		fmt.Println("  -c, --clean-folders   Remove empty folders after secure deletion")
		fmt.Println("  --exclude <glob>      Leave matching files alone (repeatable, ** supported)")
		fmt.Println("  --workers <n>         Files processed in parallel")
		fmt.Println("  --keyring             Use the password stored in the OS keyring")
		fmt.Println("  --yes                 Confirm secure deletion without asking")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Printf("  cryptshred %s report.pdf\n", command)
		fmt.Printf("  cryptshred %s -r --exclude '**/*.log' project/\n", command)
	case "list", "ls":
		fmt.Println("cryptshred list [-r] [--strict] [<dir>]")
		fmt.Println()
		fmt.Println("Lists files whose content carries a cryptshred header.")
		fmt.Println("Does not require a password.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -r, --recursive   Search subdirectories")
		fmt.Println("  --strict          Only report files ending in .enc")
	case "shred":
		fmt.Println("cryptshred shred [flags] <path> [path...]")
		fmt.Println()
		fmt.Println("Overwrites files with several passes of patterns and deletes them.")
		fmt.Println("Directories are shredded file by file; each path is confirmed once.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -p, --passes <n>      Overwrite passes (1-35, default 3)")
		fmt.Println("  -c, --clean-folders   Remove empty folders afterwards")
		fmt.Println("  -r, --recursive       Descend into subdirectories")
		fmt.Println("  --exclude <glob>      Leave matching files alone (repeatable)")
		fmt.Println("  --yes                 Do not ask for confirmation")
		fmt.Println()
		fmt.Println("Note: on SSDs and copy-on-write filesystems overwriting cannot")
		fmt.Println("guarantee that old blocks are gone.")
	case "prune":
		fmt.Println("cryptshred prune [-r] <dir>")
		fmt.Println()
		fmt.Println("Removes empty directories below <dir>, deepest first, then <dir>")
		fmt.Println("itself if it ended up empty.")
	case "diff":
		fmt.Println("cryptshred diff [--keyring] <file.enc> <file>")
		fmt.Println()
		fmt.Println("Decrypts <file.enc> in memory and shows a unified diff against <file>.")
		fmt.Println("Nothing is written to disk.")
	case "history":
		fmt.Println("cryptshred history [--forget|--clear|--compact] [<run-id>]")
		fmt.Println()
		fmt.Println("Shows runs recorded in the journal, or the files of one run.")
		fmt.Println("The journal is off unless 'journal.enabled: true' is set in the config.")
		fmt.Println("Run IDs may be abbreviated to a unique prefix.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --forget    Delete the given run")
		fmt.Println("  --clear     Delete every run")
		fmt.Println("  --compact   Compact the journal file")
	case "keyring":
		fmt.Println("cryptshred keyring <save|delete|status>")
		fmt.Println()
		fmt.Println("Stores the password in the OS keyring under the configured account.")
		fmt.Println("Use --keyring on encrypt, decrypt or diff, or set keyring.enabled.")
	case "completion":
		fmt.Println("cryptshred completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(cryptshred completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(cryptshred completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  cryptshred completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
