// Package cli contains the cobra commands for the worrybox binary.
package cli

import (
	gocontext "context"

	"github.com/example/worrybox/internal/ctxutil"
)

// NewContext creates a context tagged with the CLI action source.
// Use this instead of context.Background() in CLI commands so the activity
// history records where each change came from.
func NewContext() gocontext.Context {
	return ctxutil.WithSource(gocontext.Background(), ctxutil.SourceCLI)
}
