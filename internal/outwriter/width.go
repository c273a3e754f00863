package outwriter

import (
	"os"

	"github.com/huangsam/prlens/internal/contract"
	"golang.org/x/term"
)

// maxTableWidth resolves the terminal width used to size table columns.
// A configured width always wins; otherwise the terminal is probed with a
// conservative fallback for pipes and CI.
func maxTableWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80
	}
	return detected
}
