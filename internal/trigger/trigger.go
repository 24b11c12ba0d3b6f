// Package trigger evaluates catalog entries against a working tree and
// prompt. Each entry's four trigger kinds (file patterns, imports,
// dependencies, keywords) are checked independently; any kind firing
// activates the entry. All scanning is in-process, and every failure is
// absorbed as "no match for this kind".
package trigger

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/scbrown/crib/internal/catalog"
	"github.com/scbrown/crib/internal/manifest"
)

// DefaultSourceExts are the file extensions import searches consider.
var DefaultSourceExts = []string{
	".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs",
	".py", ".rb", ".go", ".rs", ".java", ".kt", ".swift",
	".c", ".h", ".cc", ".cpp", ".hpp", ".cs", ".php", ".scala", ".sh",
}

// DefaultExcludeDirs are never scanned, whatever the pattern says.
var DefaultExcludeDirs = []string{
	".git", "node_modules", "dist", "build", "out", "target",
	"vendor", "__pycache__", ".venv", "venv", ".next", ".cache",
}

const (
	// DefaultConcurrency bounds parallel entry evaluation.
	DefaultConcurrency = 4
	// maxEvidencePaths caps the matched paths retained per entry.
	maxEvidencePaths = 3
	// maxFileSize caps how large a file the import search will read.
	maxFileSize = 1 << 20
)

// Match is the detection result for one catalog entry.
type Match struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	Description string   `json:"description,omitempty"`
	Priority    int      `json:"priority"`
	MaxTokens   int      `json:"maxTokens"`
	Evidence    []string `json:"evidence"`
	Files       []string `json:"files,omitempty"`
}

// Options configure one evaluation cycle. Zero values take the defaults
// above; nothing is read from process-wide state.
type Options struct {
	WorkDir     string
	Prompt      string
	SourceExts  []string
	ExcludeDirs []string
	Concurrency int
	Logger      *log.Logger
}

// Evaluate checks every catalog entry against the working tree and prompt,
// returning the matches ordered by descending priority. Entries are
// evaluated in sorted-name order and the sort is stable, so equal priorities
// come out name-ordered and repeated runs agree.
func Evaluate(ctx context.Context, cat catalog.Catalog, opts Options) []Match {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	ev := newEvaluator(opts)

	keys := cat.Keys()
	results := make([]*Match, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g.SetLimit(limit)
	for i, key := range keys {
		i, entry := i, cat[key]
		g.Go(func() error {
			if m, ok := ev.evaluate(gctx, entry); ok {
				results[i] = &m
			}
			return nil
		})
	}
	// Workers absorb their own failures and never return errors.
	_ = g.Wait()

	matches := make([]Match, 0, len(results))
	for _, m := range results {
		if m != nil {
			matches = append(matches, *m)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority > matches[j].Priority
	})
	return matches
}

// evaluator holds the per-cycle scan state shared across entries. The
// source-file list and the manifest declarations are computed once, lazily.
type evaluator struct {
	workdir string
	prompt  string
	exclude map[string]bool
	exts    map[string]bool
	logger  *log.Logger

	sourceFiles func() []string
	deps        func() manifest.Deps
}

func newEvaluator(opts Options) *evaluator {
	exts := map[string]bool{}
	src := opts.SourceExts
	if src == nil {
		src = DefaultSourceExts
	}
	for _, e := range src {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	exclude := map[string]bool{}
	for _, d := range DefaultExcludeDirs {
		exclude[d] = true
	}
	for _, d := range opts.ExcludeDirs {
		if d != "" {
			exclude[d] = true
		}
	}
	ev := &evaluator{
		workdir: opts.WorkDir,
		prompt:  opts.Prompt,
		exclude: exclude,
		exts:    exts,
		logger:  opts.Logger,
	}
	ev.sourceFiles = sync.OnceValue(ev.collectSourceFiles)
	ev.deps = sync.OnceValue(func() manifest.Deps {
		return manifest.LoadDeps(ev.workdir, ev.logger)
	})
	return ev
}

// evaluate runs the four kind checks for one entry. Empty kinds are skipped;
// a canceled context skips whatever remains.
func (ev *evaluator) evaluate(ctx context.Context, e catalog.Entry) (Match, bool) {
	m := Match{
		Name:        e.Name,
		Path:        e.Path,
		Description: e.Description,
		Priority:    e.Priority,
		MaxTokens:   e.MaxTokens,
	}
	if ctx.Err() == nil && len(e.Triggers.FilePatterns) > 0 {
		if paths, ok := ev.matchFiles(e.Triggers.FilePatterns); ok {
			m.Files = paths
			m.Evidence = append(m.Evidence, filesEvidence(paths))
		}
	}
	if ctx.Err() == nil && len(e.Triggers.Imports) > 0 {
		if pattern, ok := ev.matchImports(e.Triggers.Imports); ok {
			m.Evidence = append(m.Evidence, "import: "+pattern)
		}
	}
	if ctx.Err() == nil && len(e.Triggers.Dependencies) > 0 {
		if name, ok := ev.matchDependencies(e.Triggers.Dependencies); ok {
			m.Evidence = append(m.Evidence, "dependency: "+name)
		}
	}
	if ctx.Err() == nil && ev.prompt != "" && len(e.Triggers.Keywords) > 0 {
		if kw, ok := matchKeywords(ev.prompt, e.Triggers.Keywords); ok {
			m.Evidence = append(m.Evidence, "keyword: "+kw)
		}
	}
	return m, len(m.Evidence) > 0
}

func (ev *evaluator) matchDependencies(list []string) (string, bool) {
	deps := ev.deps()
	for _, name := range list {
		if deps.Has(name) {
			return name, true
		}
	}
	return "", false
}

// matchKeywords returns the first keyword the prompt contains,
// case-insensitively.
func matchKeywords(prompt string, keywords []string) (string, bool) {
	lower := strings.ToLower(prompt)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return kw, true
		}
	}
	return "", false
}

// filesEvidence shows at most the first two of the retained paths.
func filesEvidence(paths []string) string {
	shown := paths
	if len(shown) > 2 {
		shown = shown[:2]
	}
	return "files: " + strings.Join(shown, ", ")
}
