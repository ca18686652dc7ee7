package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/cryptshred/internal/core"
	"github.com/illarion/cryptshred/internal/crypto"
	"github.com/illarion/cryptshred/internal/keyring"
)

// KeyringSave saves a password to the OS keyring
func KeyringSave(env *Env) {
	password, err := core.ReadPasswordConfirm("Enter password to store: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(password)

	if err := keyring.SavePassword(env.account(), password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("Password saved to keyring (account %q)\n", env.account())
	if !env.Config.Keyring.Enabled {
		fmt.Println("Pass --keyring or set 'keyring.enabled: true' to use it")
	}
}

// KeyringDelete removes the password from the OS keyring
func KeyringDelete(env *Env) {
	if !keyring.HasPassword(env.account()) {
		fmt.Println("No password stored in keyring")
		return
	}

	if err := keyring.DeletePassword(env.account()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to delete from keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus checks if a password is stored in the keyring
func KeyringStatus(env *Env) {
	if keyring.HasPassword(env.account()) {
		fmt.Printf("Password: stored in keyring (account %q)\n", env.account())
	} else {
		fmt.Println("Password: not stored")
	}
}
