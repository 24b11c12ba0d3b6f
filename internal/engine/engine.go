// Package engine runs the full detection cycle: load both catalog layers,
// merge them, evaluate triggers against the working tree and prompt, and
// pack the winners under a token budget.
package engine

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/scbrown/crib/internal/assemble"
	"github.com/scbrown/crib/internal/catalog"
	"github.com/scbrown/crib/internal/trigger"
)

// DefaultBudget caps the combined declared token size of loaded references.
const DefaultBudget = 8000

// Options locate the two catalog layers and shape one detection cycle.
// UserDir and ProjectDir are catalog roots, each expected to hold a
// references directory; either may be absent.
type Options struct {
	UserDir     string
	ProjectDir  string
	WorkDir     string
	Prompt      string
	Budget      int
	SourceExts  []string
	ExcludeDirs []string
	Concurrency int
	Logger      *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

// Catalog loads and merges both layers without evaluating anything.
func Catalog(opts Options) catalog.Catalog {
	logger := opts.logger()
	user := catalog.Load(opts.UserDir, logger)
	project := catalog.Load(opts.ProjectDir, logger)
	if user == nil && project == nil {
		return nil
	}
	merged := catalog.Merge(user, project)
	logger.Debug("catalogs merged",
		"user", len(user), "project", len(project), "merged", len(merged))
	return merged
}

// Detect merges both catalog layers and evaluates every trigger kind,
// returning matches in descending priority order.
func Detect(ctx context.Context, opts Options) []trigger.Match {
	logger := opts.logger()
	return trigger.Evaluate(ctx, Catalog(opts), trigger.Options{
		WorkDir:     opts.WorkDir,
		Prompt:      opts.Prompt,
		SourceExts:  opts.SourceExts,
		ExcludeDirs: opts.ExcludeDirs,
		Concurrency: opts.Concurrency,
		Logger:      logger,
	})
}

// Run performs a complete cycle and renders the context block. ok is false
// when nothing matched or nothing fit under the budget; callers emit no
// output at all in that case rather than an empty header.
func Run(ctx context.Context, opts Options) (string, bool) {
	budget := opts.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	matches := Detect(ctx, opts)
	return assemble.Assemble(matches, budget, opts.logger())
}
