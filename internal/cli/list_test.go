package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scbrown/crib/internal/catalog"
)

const userOnlyDoc = `---
name: Git Hygiene
priority: 30
triggers:
  keywords:
    - rebase
---
# Git Hygiene

Rebase before merging.
`

const userTerraformDoc = `---
name: Terraform
triggers:
  keywords:
    - terraform
---
# Terraform

User-level advice.
`

const projectTerraformDoc = `---
name: Terraform
priority: 70
triggers:
  dependencies:
    - terraform
---
# Terraform

Project-level advice.
`

func TestListCmdMergedLayers(t *testing.T) {
	cribHome := resetFlags(t)
	work := t.TempDir()
	writeRef(t, filepath.Join(cribHome, catalog.RefsDir), "git.md", userOnlyDoc)
	writeRef(t, filepath.Join(cribHome, catalog.RefsDir), "terraform.md", userTerraformDoc)
	writeRef(t, projectRefs(work), "terraform.md", projectTerraformDoc)
	writeRef(t, projectRefs(work), "vpc.md", vpcDoc)

	stdout, _ := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"list", "-C", work})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})

	if !strings.Contains(stdout, "Git Hygiene") || !strings.Contains(stdout, "user") {
		t.Errorf("expected the user-only entry with its layer, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "VPC Layout") {
		t.Errorf("expected the project-only entry, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "user+project") {
		t.Errorf("expected the merged layer for Terraform, got:\n%s", stdout)
	}

	// Ordered: VPC Layout (80) above Terraform (70) above Git Hygiene (30).
	iVPC := strings.Index(stdout, "VPC Layout")
	iTF := strings.Index(stdout, "Terraform")
	iGit := strings.Index(stdout, "Git Hygiene")
	if !(iVPC < iTF && iTF < iGit) {
		t.Errorf("expected descending priority order, got:\n%s", stdout)
	}
}

func TestListCmdNoCatalogs(t *testing.T) {
	resetFlags(t)
	work := t.TempDir()

	stdout, _ := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"list", "-C", work})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})

	if !strings.Contains(stdout, "No catalogs found.") {
		t.Errorf("expected the no-catalogs hint, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "crib init") {
		t.Errorf("expected the init hint, got:\n%s", stdout)
	}
}

func TestListCmdEmptyCatalog(t *testing.T) {
	resetFlags(t)
	work := t.TempDir()
	// A references directory with no annotated documents.
	writeRef(t, projectRefs(work), "README.md", "# Docs\n")

	stdout, _ := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"list", "-C", work})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})

	if !strings.Contains(stdout, "No references declared.") {
		t.Errorf("expected the empty-catalog message, got:\n%s", stdout)
	}
}

func TestListCmdJSON(t *testing.T) {
	resetFlags(t)
	work := t.TempDir()
	writeRef(t, projectRefs(work), "vpc.md", vpcDoc)

	stdout, _ := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"list", "-C", work, "--json"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})

	var rows []struct {
		Name     string `json:"name"`
		Layer    string `json:"layer"`
		Priority int    `json:"priority"`
	}
	if err := json.Unmarshal([]byte(stdout), &rows); err != nil {
		t.Fatalf("unmarshal JSON output: %v\noutput: %s", err, stdout)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Name != "VPC Layout" || rows[0].Layer != "project" || rows[0].Priority != 80 {
		t.Errorf("row = %+v, want VPC Layout/project/80", rows[0])
	}
}

func TestTriggerSummary(t *testing.T) {
	tests := []struct {
		name string
		set  catalog.TriggerSet
		want string
	}{
		{"empty", catalog.TriggerSet{}, "-"},
		{"keywords only", catalog.TriggerSet{Keywords: []string{"a", "b"}}, "keywords:2"},
		{
			"all kinds",
			catalog.TriggerSet{
				FilePatterns: []string{"*.tf"},
				Imports:      []string{"boto3"},
				Dependencies: []string{"react", "react-dom"},
				Keywords:     []string{"deploy"},
			},
			"files:1 imports:1 deps:2 keywords:1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := triggerSummary(tt.set); got != tt.want {
				t.Errorf("triggerSummary = %q, want %q", got, tt.want)
			}
		})
	}
}
