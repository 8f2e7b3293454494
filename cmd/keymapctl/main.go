// keymapctl inspects the active ZSA keyboard layout and resolves Neovim
// key sequences against it.
package main

import (
	"os"
)

// Set by the linker.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
