package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	root := string(filepath.Separator) + filepath.Join("tmp", "proj")

	tests := []struct {
		name string
		file string
		want string
	}{
		{"relative path", "src/models.py", filepath.Join(root, "src", "models.py")},
		{"dotted relative path", "./a.py", filepath.Join(root, "a.py")},
		{"absolute path", filepath.Join(root, "b.py"), filepath.Join(root, "b.py")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(root, tt.file); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", root, tt.file, got, tt.want)
			}
		})
	}
}

func TestCanonicalize(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "src")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "main.go")
	if err := os.WriteFile(file, []byte("package main\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Canonicalize(file, root)
	if err != nil {
		t.Fatalf("Canonicalize error: %v", err)
	}
	if got != "src/main.go" {
		t.Errorf("Canonicalize = %q, want src/main.go", got)
	}
}

func TestCanonicalizeMissingFile(t *testing.T) {
	root := t.TempDir()

	got, err := Canonicalize(filepath.Join(root, "ghost.py"), root)
	if err != nil {
		t.Fatalf("Canonicalize should tolerate missing files: %v", err)
	}
	if got != "ghost.py" {
		t.Errorf("Canonicalize = %q, want ghost.py", got)
	}
}

func TestIsWithinWorkspace(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "pkg", "a.go")
	outside := filepath.Join(root, "..", "elsewhere.go")

	if !IsWithinWorkspace(inside, root) {
		t.Errorf("%q should be inside %q", inside, root)
	}
	if IsWithinWorkspace(outside, root) {
		t.Errorf("%q should be outside %q", outside, root)
	}
	if IsWithinWorkspace(filepath.Dir(root), root) {
		t.Error("parent directory should be outside the workspace")
	}
}

func TestExistsAndIsDir(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if !Exists(file) {
		t.Error("Exists should find the file")
	}
	if Exists(filepath.Join(root, "missing")) {
		t.Error("Exists should not find a missing path")
	}
	if !IsDir(root) {
		t.Error("IsDir should report the temp dir")
	}
	if IsDir(file) {
		t.Error("IsDir should reject a regular file")
	}
}
