// Package investigate assembles a repository report from independent
// signals: the filesystem survey, recent git activity, and declared
// dependencies. Collectors run concurrently and absorb their own
// failures; a report is produced even when individual signals are
// unavailable.
package investigate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/scbrown/crib/internal/analyze"
	"github.com/scbrown/crib/internal/manifest"
)

const (
	// DefaultGitDepth is how many commits the git signals cover.
	DefaultGitDepth = 30
	// maxTouchedFiles caps the churn list in a report.
	maxTouchedFiles = 10
)

// Report is the result of one investigation.
type Report struct {
	ID        string              `json:"id"`
	Root      string              `json:"root"`
	CreatedAt time.Time           `json:"created_at"`
	Duration  time.Duration       `json:"duration"`
	Survey    *analyze.Survey     `json:"survey,omitempty"`
	Git       *GitSignals         `json:"git,omitempty"`
	Manifests []manifest.Manifest `json:"manifests,omitempty"`
	Errors    []string            `json:"errors,omitempty"`
}

// GitSignals summarizes recent repository activity.
type GitSignals struct {
	Commits      []Commit    `json:"commits,omitempty"`
	TouchedFiles []FileChurn `json:"touched_files,omitempty"`
}

// Commit is one recent commit.
type Commit struct {
	Hash    string    `json:"hash"`
	Author  string    `json:"author"`
	Time    time.Time `json:"time"`
	Subject string    `json:"subject"`
}

// FileChurn counts how often a file appeared in recent commits.
type FileChurn struct {
	Path    string `json:"path"`
	Changes int    `json:"changes"`
}

// Options shape one investigation.
type Options struct {
	Root        string
	GitDepth    int
	SourceExts  []string
	ExcludeDirs []string
	Logger      *log.Logger
}

// Gather runs the signal collectors concurrently and assembles the report.
// Individual collectors degrade into Errors entries; only an unusable root
// fails the whole investigation.
func Gather(ctx context.Context, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	fi, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("investigate %s: %w", opts.Root, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("investigate %s: not a directory", opts.Root)
	}
	depth := opts.GitDepth
	if depth <= 0 {
		depth = DefaultGitDepth
	}

	start := time.Now()
	report := &Report{
		ID:        uuid.New().String(),
		Root:      opts.Root,
		CreatedAt: start,
	}

	var mu sync.Mutex
	addError := func(msg string) {
		mu.Lock()
		report.Errors = append(report.Errors, msg)
		mu.Unlock()
	}

	// Each collector owns one report field, so no locking beyond Errors.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := analyze.Scan(opts.Root, analyze.Options{
			SourceExts:  opts.SourceExts,
			ExcludeDirs: opts.ExcludeDirs,
			Logger:      logger,
		})
		if err != nil {
			addError(fmt.Sprintf("survey: %v", err))
			return nil
		}
		report.Survey = s
		return nil
	})
	g.Go(func() error {
		signals, err := gitSignals(gctx, opts.Root, depth)
		if err != nil {
			addError(fmt.Sprintf("git: %v", err))
			return nil
		}
		report.Git = signals
		return nil
	})
	g.Go(func() error {
		report.Manifests = manifest.Survey(opts.Root, logger)
		return nil
	})
	_ = g.Wait()

	report.Duration = time.Since(start)
	logger.Debug("investigation complete",
		"id", report.ID, "errors", len(report.Errors), "took", report.Duration)
	return report, nil
}

// Save writes the report as indented JSON under root's investigations
// directory and returns the file path.
func (r *Report) Save(root string) (string, error) {
	dir := filepath.Join(root, "investigations")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating investigations directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}
	data = append(data, '\n')
	path := filepath.Join(dir, r.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// gitSignals shells out to the local git binary. A missing binary or a
// non-repo root yields no signals rather than an error.
func gitSignals(ctx context.Context, root string, depth int) (*GitSignals, error) {
	if !insideGitRepo(ctx, root) {
		return nil, nil
	}
	cmd := exec.CommandContext(ctx, "git", "log",
		fmt.Sprintf("-n%d", depth),
		"--pretty=format:COMMIT:%H|%an|%ct|%s",
		"--numstat",
	)
	cmd.Dir = root
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	return parseGitLog(output), nil
}

func insideGitRepo(ctx context.Context, dir string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// parseGitLog reads the COMMIT-prefixed pretty format interleaved with
// numstat file lines.
func parseGitLog(output []byte) *GitSignals {
	signals := &GitSignals{}
	churn := make(map[string]int)

	sc := bufio.NewScanner(bytes.NewReader(output))
	for sc.Scan() {
		line := sc.Text()
		if rest, ok := strings.CutPrefix(line, "COMMIT:"); ok {
			parts := strings.SplitN(rest, "|", 4)
			if len(parts) < 4 {
				continue
			}
			c := Commit{Hash: parts[0], Author: parts[1], Subject: parts[3]}
			if ts, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
				c.Time = time.Unix(ts, 0).UTC()
			}
			signals.Commits = append(signals.Commits, c)
			continue
		}
		// numstat: "added\tdeleted\tpath"; split on tabs, paths may
		// contain spaces.
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) == 3 && fields[2] != "" {
			churn[fields[2]]++
		}
	}

	for path, changes := range churn {
		signals.TouchedFiles = append(signals.TouchedFiles, FileChurn{Path: path, Changes: changes})
	}
	sort.Slice(signals.TouchedFiles, func(i, j int) bool {
		a, b := signals.TouchedFiles[i], signals.TouchedFiles[j]
		if a.Changes != b.Changes {
			return a.Changes > b.Changes
		}
		return a.Path < b.Path
	})
	if len(signals.TouchedFiles) > maxTouchedFiles {
		signals.TouchedFiles = signals.TouchedFiles[:maxTouchedFiles]
	}
	return signals
}
