package git

import (
	"os"
	"os/exec"
	"reflect"
	"testing"
)

func TestParseSubjectLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty output",
			input:    "",
			expected: nil,
		},
		{
			name:     "single subject",
			input:    "git: update to 2.50.1\n",
			expected: []string{"git: update to 2.50.1"},
		},
		{
			name:  "multiple subjects",
			input: "add ripgrep manifest\nvim: update to 9.1\n\n",
			expected: []string{
				"add ripgrep manifest",
				"vim: update to 9.1",
			},
		},
		{
			name:     "blank lines dropped",
			input:    "\n\nfirst\n\nsecond\n",
			expected: []string{"first", "second"},
		},
		{
			name:     "whitespace trimmed",
			input:    "  padded subject  \n",
			expected: []string{"padded subject"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseSubjectLines(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("parseSubjectLines(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

// initTestRepo creates a real git repository for runner tests
func initTestRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runner := NewRunner()
	if _, _, err := runner.runCommand(dir, "init"); err != nil {
		t.Fatalf("failed to init git repo: %v", err)
	}
	return dir
}

func TestIsRepo(t *testing.T) {
	runner := NewRunner()

	repo := initTestRepo(t)
	if !runner.IsRepo(repo) {
		t.Error("IsRepo(initialized repo) = false, want true")
	}

	plain := t.TempDir()
	if runner.IsRepo(plain) {
		t.Error("IsRepo(plain directory) = true, want false")
	}
}

func TestRemote(t *testing.T) {
	runner := NewRunner()
	repo := initTestRepo(t)

	if _, err := runner.Remote(repo); err == nil {
		t.Error("Remote without an origin should return an error")
	}

	url := "https://example.com/buckets/main"
	if _, _, err := runner.runCommand(repo, "remote", "add", "origin", url); err != nil {
		t.Fatalf("failed to add remote: %v", err)
	}

	got, err := runner.Remote(repo)
	if err != nil {
		t.Fatalf("Remote returned error: %v", err)
	}
	if got != url {
		t.Errorf("Remote = %q, want %q", got, url)
	}
}

func TestCommitsSinceRemote_NoUpstream(t *testing.T) {
	runner := NewRunner()
	repo := initTestRepo(t)

	// Give the repo one commit so HEAD resolves
	if _, _, err := runner.runCommand(repo, "config", "user.email", "test@example.com"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runner.runCommand(repo, "config", "user.name", "Test User"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(repo+"/file.txt", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runner.runCommand(repo, "add", "."); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runner.runCommand(repo, "commit", "-m", "initial"); err != nil {
		t.Fatal(err)
	}

	subjects, err := runner.CommitsSinceRemote(repo)
	if err != nil {
		t.Fatalf("CommitsSinceRemote without upstream should degrade to empty, got error: %v", err)
	}
	if len(subjects) != 0 {
		t.Errorf("subjects = %v, want empty", subjects)
	}
}
