// Command docspell spell-checks documents from the command line or serves
// the check API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docspell/internal/console"
	"github.com/dgallion1/docspell/internal/spellcheck"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	os.Exit(exitCode(err))
}

// exitCode maps found mistakes to 1 and any other failure to 2.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, spellcheck.ErrMistakesFound):
		return 1
	default:
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		return 2
	}
}
