package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/scbrown/crib/internal/catalog"
	"github.com/scbrown/crib/internal/config"
)

// resetFlags resets global flag and config state that persists between
// cobra executions, and isolates the user layer in a fresh CRIB_HOME.
// It returns that directory.
func resetFlags(t *testing.T) string {
	t.Helper()

	jsonOutput = false
	sourceName = "crib"
	homeFlag = ""
	projectFlag = ""
	cwdFlag = ""
	verbose = false

	loadPrompt = ""
	loadHook = false
	loadBudget = 0
	loadQuiet = false

	detectPrompt = ""

	indexUser = false
	indexDir = ""
	indexCheck = false
	indexWatch = false

	newDescription = ""
	newKeywords = nil
	newFilePatterns = nil
	newImports = nil
	newDeps = nil
	newPriority = catalog.DefaultPriority
	newMaxTokens = catalog.DefaultMaxTokens
	newUser = false
	newForce = false

	initUser = false
	initHooks = false
	initEvent = ""

	investigateDiagram = false
	investigateSave = false
	investigateDepth = 0

	// The Changed marks survive Execute calls too; PersistentPreRun and the
	// hook cwd handling read them, so stale marks leak between tests.
	rootCmd.PersistentFlags().VisitAll(clearChanged)
	rootCmd.Flags().VisitAll(clearChanged)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(clearChanged)
	}
	rootCmd.SetIn(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)

	cribHome := t.TempDir()
	t.Setenv("CRIB_HOME", cribHome)
	configPath = filepath.Join(cribHome, "config.toml")
	cfg = &config.Config{}
	logger = log.New(io.Discard)
	return cribHome
}

func clearChanged(f *pflag.Flag) { f.Changed = false }

// captureStdoutAndStderr runs fn while capturing both stdout and stderr.
func captureStdoutAndStderr(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()

	oldOut := os.Stdout
	oldErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	fn()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldOut
	os.Stderr = oldErr

	var bufOut, bufErr bytes.Buffer
	io.Copy(&bufOut, rOut)
	io.Copy(&bufErr, rErr)
	return bufOut.String(), bufErr.String()
}

// writeRef writes one reference document into dir, creating it as needed.
func writeRef(t *testing.T, dir, file, doc string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// projectRefs is where the crib source keeps the project layer of work.
func projectRefs(work string) string {
	return filepath.Join(work, ".crib", catalog.RefsDir)
}

func TestResolveRootsCribSource(t *testing.T) {
	cribHome := resetFlags(t)
	work := t.TempDir()

	userRoot, projectRoot, err := resolveRoots(work)
	if err != nil {
		t.Fatalf("resolveRoots: %v", err)
	}
	if userRoot != cribHome {
		t.Errorf("userRoot = %q, want CRIB_HOME %q", userRoot, cribHome)
	}
	if want := filepath.Join(work, ".crib"); projectRoot != want {
		t.Errorf("projectRoot = %q, want %q", projectRoot, want)
	}
}

func TestResolveRootsFlagOverrides(t *testing.T) {
	resetFlags(t)
	work := t.TempDir()
	homeFlag = filepath.Join(work, "custom-home")
	projectFlag = filepath.Join(work, "custom-project")

	userRoot, projectRoot, err := resolveRoots(work)
	if err != nil {
		t.Fatalf("resolveRoots: %v", err)
	}
	if userRoot != homeFlag {
		t.Errorf("userRoot = %q, want --home %q", userRoot, homeFlag)
	}
	if projectRoot != projectFlag {
		t.Errorf("projectRoot = %q, want --project-dir %q", projectRoot, projectFlag)
	}
}

func TestResolveRootsClaudeCodeSource(t *testing.T) {
	resetFlags(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	sourceName = "claude-code"
	work := t.TempDir()

	userRoot, projectRoot, err := resolveRoots(work)
	if err != nil {
		t.Fatalf("resolveRoots: %v", err)
	}
	if want := filepath.Join(home, ".claude"); userRoot != want {
		t.Errorf("userRoot = %q, want %q", userRoot, want)
	}
	if want := filepath.Join(work, ".claude"); projectRoot != want {
		t.Errorf("projectRoot = %q, want %q", projectRoot, want)
	}
}

func TestResolveRootsUnknownSource(t *testing.T) {
	resetFlags(t)
	sourceName = "emacs"

	_, _, err := resolveRoots(t.TempDir())
	if err == nil {
		t.Fatal("expected error for unknown source")
	}
	if !strings.Contains(err.Error(), `unknown source "emacs"`) {
		t.Errorf("error = %v, want unknown source", err)
	}
	if !strings.Contains(err.Error(), "claude-code") {
		t.Errorf("error should list the available sources, got %v", err)
	}
}

func TestWorkDirCwdFlag(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	cwdFlag = dir

	got, err := workDir()
	if err != nil {
		t.Fatalf("workDir: %v", err)
	}
	if got != dir {
		t.Errorf("workDir = %q, want %q", got, dir)
	}
}

func TestWorkDirDefaultsToGetwd(t *testing.T) {
	resetFlags(t)

	got, err := workDir()
	if err != nil {
		t.Fatalf("workDir: %v", err)
	}
	wd, _ := os.Getwd()
	if got != wd {
		t.Errorf("workDir = %q, want %q", got, wd)
	}
}
