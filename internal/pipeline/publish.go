package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// publisher stages artifacts inside the workspace and moves them to their
// final paths only after the whole run succeeds. Unchanged outputs are left
// alone so their timestamps keep incremental builds quiet.
type publisher struct {
	dir     string
	targets map[string]string
	seq     int
}

func newPublisher(dir string) *publisher {
	return &publisher{dir: dir, targets: make(map[string]string)}
}

// stage returns the workspace path that stands in for final until publish.
// Calling stage twice with the same final path returns the same staged path.
func (p *publisher) stage(final string) string {
	if staged, ok := p.targets[final]; ok {
		return staged
	}
	p.seq++
	staged := filepath.Join(p.dir, fmt.Sprintf("%03d-%s", p.seq, filepath.Base(final)))
	p.targets[final] = staged
	return staged
}

// publish moves every staged artifact into place and returns the final paths
// that were actually rewritten. A staged file whose content equals the
// existing output is skipped.
func (p *publisher) publish() ([]string, error) {
	finals := make([]string, 0, len(p.targets))
	for final := range p.targets {
		finals = append(finals, final)
	}
	sort.Strings(finals)

	var published []string
	for _, final := range finals {
		staged := p.targets[final]
		changed, err := replaceIfChanged(staged, final)
		if err != nil {
			return published, err
		}
		if changed {
			published = append(published, final)
		}
	}
	return published, nil
}

func replaceIfChanged(staged, final string) (bool, error) {
	newData, err := os.ReadFile(staged)
	if err != nil {
		return false, fmt.Errorf("staged artifact missing %q: %w", staged, err)
	}
	if oldData, err := os.ReadFile(final); err == nil && bytes.Equal(oldData, newData) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(final), 0o750); err != nil {
		return false, err
	}
	// Rename within the workspace cannot be atomic across filesystems, so
	// write-then-rename next to the destination instead.
	tmp, err := os.CreateTemp(filepath.Dir(final), "."+filepath.Base(final)+".*")
	if err != nil {
		return false, err
	}
	if _, err := tmp.Write(newData); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return false, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	return true, nil
}
