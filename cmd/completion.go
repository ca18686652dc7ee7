package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_cryptshred() {
    local cur prev words cword
    _init_completion || return

    local commands="encrypt decrypt list shred prune diff history keyring help completion"
    local global="--config --log-level --log-format"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    case "$prev" in
        --log-level)
            COMPREPLY=($(compgen -W "trace debug info warn error" -- "$cur"))
            return
            ;;
        --log-format)
            COMPREPLY=($(compgen -W "text json" -- "$cur"))
            return
            ;;
        --config|-o|--output)
            _filedir
            return
            ;;
    esac

    local cmd="${words[1]}"
    case "$cmd" in
        encrypt|decrypt)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-o --output -r --recursive -f --force -s --secure-delete -p --passes -c --clean-folders --exclude --workers --keyring --yes $global" -- "$cur"))
            else
                _filedir
            fi
            ;;
        list)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-r --recursive --strict $global" -- "$cur"))
            else
                _filedir -d
            fi
            ;;
        shred)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-p --passes -c --clean-folders -r --recursive --exclude --yes $global" -- "$cur"))
            else
                _filedir
            fi
            ;;
        prune)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-r --recursive $global" -- "$cur"))
            else
                _filedir -d
            fi
            ;;
        diff)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "--keyring $global" -- "$cur"))
            else
                _filedir
            fi
            ;;
        history)
            COMPREPLY=($(compgen -W "--forget --clear --compact $global" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _cryptshred cryptshred
`

const zshCompletion = `#compdef cryptshred

_cryptshred() {
    local -a commands global
    commands=(
        'encrypt:Encrypt a file or directory'
        'decrypt:Decrypt a file or directory'
        'list:List encrypted files in a directory'
        'shred:Securely delete files'
        'prune:Remove empty directories'
        'diff:Compare an encrypted file with a plaintext file'
        'history:Show recorded runs'
        'keyring:Manage password in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )
    global=(
        '--config[Config file]:file:_files'
        '--log-level[Log level]:level:(trace debug info warn error)'
        '--log-format[Log format]:format:(text json)'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'cryptshred commands' commands
            ;;
        args)
            case "${words[2]}" in
                encrypt|decrypt)
                    _arguments $global \
                        {-o,--output}'[Output file or directory]:output:_files' \
                        {-r,--recursive}'[Process subdirectories]' \
                        {-f,--force}'[Overwrite existing outputs]' \
                        {-s,--secure-delete}'[Securely delete originals]' \
                        {-p,--passes}'[Overwrite passes]:passes:' \
                        {-c,--clean-folders}'[Remove empty folders afterwards]' \
                        '--exclude[Glob to exclude]:pattern:' \
                        '--workers[Parallel workers]:workers:' \
                        '--keyring[Use password from OS keyring]' \
                        '--yes[Confirm secure deletion]' \
                        '*:path:_files'
                    ;;
                list)
                    _arguments $global \
                        {-r,--recursive}'[Search subdirectories]' \
                        '--strict[Require .enc extension]' \
                        '*:directory:_directories'
                    ;;
                shred)
                    _arguments $global \
                        {-p,--passes}'[Overwrite passes]:passes:' \
                        {-c,--clean-folders}'[Remove empty folders afterwards]' \
                        {-r,--recursive}'[Descend into subdirectories]' \
                        '--exclude[Glob to exclude]:pattern:' \
                        '--yes[Do not ask for confirmation]' \
                        '*:file:_files'
                    ;;
                prune)
                    _arguments $global \
                        {-r,--recursive}'[Descend into subdirectories]' \
                        '*:directory:_directories'
                    ;;
                diff)
                    _arguments $global \
                        '--keyring[Use password from OS keyring]' \
                        '*:file:_files'
                    ;;
                history)
                    _arguments $global \
                        '--forget[Delete the given run]' \
                        '--clear[Delete all runs]' \
                        '--compact[Compact the journal]'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'cryptshred commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_cryptshred "$@"
`

const fishCompletion = `# cryptshred fish completions

set -l commands encrypt decrypt list shred prune diff history keyring help completion

complete -c cryptshred -f

# Commands
complete -c cryptshred -n "not __fish_seen_subcommand_from $commands" -a encrypt -d 'Encrypt a file or directory'
complete -c cryptshred -n "not __fish_seen_subcommand_from $commands" -a decrypt -d 'Decrypt a file or directory'
complete -c cryptshred -n "not __fish_seen_subcommand_from $commands" -a list -d 'List encrypted files'
complete -c cryptshred -n "not __fish_seen_subcommand_from $commands" -a shred -d 'Securely delete files'
complete -c cryptshred -n "not __fish_seen_subcommand_from $commands" -a prune -d 'Remove empty directories'
complete -c cryptshred -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare encrypted and plaintext'
complete -c cryptshred -n "not __fish_seen_subcommand_from $commands" -a history -d 'Show recorded runs'
complete -c cryptshred -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c cryptshred -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c cryptshred -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# global flags
complete -c cryptshred -n "__fish_seen_subcommand_from $commands" -l config -r -F -d 'Config file'
complete -c cryptshred -n "__fish_seen_subcommand_from $commands" -l log-level -x -a "trace debug info warn error" -d 'Log level'
complete -c cryptshred -n "__fish_seen_subcommand_from $commands" -l log-format -x -a "text json" -d 'Log format'

# encrypt and decrypt
complete -c cryptshred -n "__fish_seen_subcommand_from encrypt decrypt" -s o -l output -r -F -d 'Output path'
complete -c cryptshred -n "__fish_seen_subcommand_from encrypt decrypt" -s r -l recursive -d 'Process subdirectories'
complete -c cryptshred -n "__fish_seen_subcommand_from encrypt decrypt" -s f -l force -d 'Overwrite existing outputs'
complete -c cryptshred -n "__fish_seen_subcommand_from encrypt decrypt" -s s -l secure-delete -d 'Securely delete originals'
complete -c cryptshred -n "__fish_seen_subcommand_from encrypt decrypt" -s c -l clean-folders -d 'Remove empty folders'
complete -c cryptshred -n "__fish_seen_subcommand_from encrypt decrypt" -l keyring -d 'Use keyring password'
complete -c cryptshred -n "__fish_seen_subcommand_from encrypt decrypt" -F

# list, shred, prune, diff
complete -c cryptshred -n "__fish_seen_subcommand_from list" -l strict -d 'Require .enc extension'
complete -c cryptshred -n "__fish_seen_subcommand_from list prune shred" -s r -l recursive -d 'Descend into subdirectories'
complete -c cryptshred -n "__fish_seen_subcommand_from shred" -l yes -d 'Do not ask for confirmation'
complete -c cryptshred -n "__fish_seen_subcommand_from shred" -F
complete -c cryptshred -n "__fish_seen_subcommand_from diff" -F

# history flags
complete -c cryptshred -n "__fish_seen_subcommand_from history" -l forget -d 'Delete a run'
complete -c cryptshred -n "__fish_seen_subcommand_from history" -l clear -d 'Delete all runs'
complete -c cryptshred -n "__fish_seen_subcommand_from history" -l compact -d 'Compact the journal'

# keyring subcommands
complete -c cryptshred -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c cryptshred -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c cryptshred -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
