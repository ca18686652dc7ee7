package cmd

import (
	"fmt"

	"github.com/illarion/cryptshred/internal/core"
	"github.com/illarion/cryptshred/internal/crypto"
)

// Diff compares an encrypted file with a plaintext file without writing either
func Diff(env *Env, encPath, plainPath string, useKeyring bool) {
	engine := crypto.New()

	var out string
	err := core.WithPassword(env.PasswordSource(useKeyring, false), func(password []byte) error {
		var err error
		out, err = core.Diff(engine, encPath, plainPath, password)
		return err
	})
	if err != nil {
		HandleError(err)
	}

	if out == "" {
		fmt.Println("Files are identical")
		return
	}
	fmt.Print(out)
}
