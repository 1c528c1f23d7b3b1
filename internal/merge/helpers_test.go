package merge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// writeTree materializes rel-path -> content under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func mustList(t *testing.T, root string) []string {
	t.Helper()
	files, err := ListFiles(root)
	if err != nil {
		t.Fatalf("listFiles: %v", err)
	}
	return files
}

func exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

// fakeRunner records invocations and simulates the converter by writing a
// marker file at the -o argument.
type fakeRunner struct {
	calls [][]string
	fail  func(args []string) error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.fail != nil {
		if err := f.fail(args); err != nil {
			return nil, []byte("simulated failure"), err
		}
	}
	out := args[len(args)-1]
	if err := os.WriteFile(out, []byte("webp:"+args[0]), 0o600); err != nil {
		return nil, nil, fmt.Errorf("fake output: %w", err)
	}
	return nil, nil, nil
}
