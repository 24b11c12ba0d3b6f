package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scbrown/crib/internal/catalog"
)

func TestIndexCmdWrite(t *testing.T) {
	resetFlags(t)
	work := t.TempDir()
	refs := projectRefs(work)
	writeRef(t, refs, "vpc.md", vpcDoc)
	writeRef(t, refs, "tf.md", tfFilesDoc)

	stdout, _ := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"index", "-C", work})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})

	if !strings.Contains(stdout, "(2 references)") {
		t.Errorf("expected the write summary, got:\n%s", stdout)
	}

	data, err := os.ReadFile(filepath.Join(refs, catalog.IndexFile))
	if err != nil {
		t.Fatalf("index.json not written: %v", err)
	}
	var idx map[string]catalog.Entry
	if err := json.Unmarshal(data, &idx); err != nil {
		t.Fatalf("unmarshal index: %v", err)
	}
	e, ok := idx["vpc layout"]
	if !ok {
		t.Fatalf("index keys = %v, want vpc layout", idx)
	}
	if e.Path != "vpc.md" {
		t.Errorf("Path = %q, want the document-relative %q", e.Path, "vpc.md")
	}
}

func TestIndexCmdUserLayer(t *testing.T) {
	cribHome := resetFlags(t)
	work := t.TempDir()
	userRefs := filepath.Join(cribHome, catalog.RefsDir)
	writeRef(t, userRefs, "vpc.md", vpcDoc)

	_, _ = captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"index", "--user", "-C", work})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})

	if _, err := os.Stat(filepath.Join(userRefs, catalog.IndexFile)); err != nil {
		t.Errorf("--user should index the user layer: %v", err)
	}
}

func TestIndexCmdExplicitDir(t *testing.T) {
	resetFlags(t)
	refs := filepath.Join(t.TempDir(), "docs", "references")
	writeRef(t, refs, "vpc.md", vpcDoc)

	_, _ = captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"index", "--dir", refs})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})

	if _, err := os.Stat(filepath.Join(refs, catalog.IndexFile)); err != nil {
		t.Errorf("--dir should index the given directory: %v", err)
	}
}

func TestIndexCmdMissingDir(t *testing.T) {
	resetFlags(t)
	work := t.TempDir()

	rootCmd.SetArgs([]string{"index", "-C", work})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected an error when the references directory does not exist")
	}
}

func TestIndexCmdCheckCurrent(t *testing.T) {
	resetFlags(t)
	work := t.TempDir()
	refs := projectRefs(work)
	writeRef(t, refs, "vpc.md", vpcDoc)

	_, _ = captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"index", "-C", work})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("write: %v", err)
		}
	})

	stdout, _ := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"index", "--check", "-C", work})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("check: %v", err)
		}
	})

	if !strings.Contains(stdout, "is current (1 references)") {
		t.Errorf("expected the current summary, got:\n%s", stdout)
	}
}

func TestIndexCmdCheckStale(t *testing.T) {
	resetFlags(t)
	work := t.TempDir()
	refs := projectRefs(work)
	writeRef(t, refs, "vpc.md", vpcDoc)

	_, _ = captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"index", "-C", work})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("write: %v", err)
		}
	})

	// A new document makes the on-disk index stale.
	writeRef(t, refs, "tf.md", tfFilesDoc)

	rootCmd.SetArgs([]string{"index", "--check", "-C", work})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected an error for a stale index")
	}
	if !strings.Contains(err.Error(), "is stale; run: crib index") {
		t.Errorf("error = %v", err)
	}
}

func TestIndexCmdCheckMissing(t *testing.T) {
	resetFlags(t)
	work := t.TempDir()
	writeRef(t, projectRefs(work), "vpc.md", vpcDoc)

	rootCmd.SetArgs([]string{"index", "--check", "-C", work})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected an error for a missing index")
	}
	if !strings.Contains(err.Error(), "does not exist; run: crib index") {
		t.Errorf("error = %v", err)
	}
}

func TestIndexCmdWriteJSON(t *testing.T) {
	resetFlags(t)
	work := t.TempDir()
	refs := projectRefs(work)
	writeRef(t, refs, "vpc.md", vpcDoc)

	stdout, _ := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"index", "-C", work, "--json"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})

	var got struct {
		Path       string `json:"path"`
		References int    `json:"references"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("unmarshal JSON output: %v\noutput: %s", err, stdout)
	}
	if got.References != 1 {
		t.Errorf("references = %d, want 1", got.References)
	}
	if got.Path != filepath.Join(refs, catalog.IndexFile) {
		t.Errorf("path = %q", got.Path)
	}
}

func TestWatchIndexStopsOnCancel(t *testing.T) {
	resetFlags(t)
	refs := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := watchIndex(ctx, refs); err != nil {
		t.Fatalf("watchIndex on a cancelled context: %v", err)
	}
}
