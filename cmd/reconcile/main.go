// Command reconcile runs a schedule reconciliation from the command line
// and writes the result workbook.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/reconcile/internal/core"
	_ "github.com/JonMunkholm/reconcile/internal/core/sources" // Register all source kinds
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		var userErr *core.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, "Error:", core.FormatUserError(userErr.Technical))
			fmt.Fprintln(os.Stderr, "Detail:", userErr.Technical)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
