package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/cryptshred/internal/core"
)

// List shows the encrypted files found under dir.
// strict additionally requires the .enc extension.
func List(env *Env, dir string, recursive, strict bool) {
	detector := env.Detector()
	if strict {
		detector.RequireExtension = true
	}

	files, err := core.ListEncrypted(dir, recursive, detector)
	if err != nil {
		HandleError(err)
	}

	if len(files) == 0 {
		fmt.Printf("No encrypted files in %s\n", dir)
		return
	}

	fmt.Printf("Encrypted files in %s:\n", dir)
	for _, file := range files {
		size := ""
		if info, err := os.Stat(file); err == nil {
			size = " (" + formatSize(info.Size()) + ")"
		}
		fmt.Printf("  %s%s\n", file, size)
	}
	fmt.Printf("\n%d file(s)\n", len(files))
}
