package cmd

import (
	"context"

	"github.com/ardnew/dcsmiz/cli/cmd/repl"
	"github.com/ardnew/dcsmiz/log"
)

// Repl starts an interactive query shell over the namespace of a chunk.
type Repl struct {
	Input `embed:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	g := globalsFrom(ctx)

	src, err := r.read(ctx)
	if err != nil {
		return err
	}

	return repl.Run(ctx, repl.Config{
		Source:   src,
		Name:     r.name(ctx),
		CacheDir: g.CacheDir,
		Logger:   log.Default(),
		Options:  g.langOptions(),
	})
}
