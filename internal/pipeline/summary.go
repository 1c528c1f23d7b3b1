package pipeline

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when runSummary format changes.
const summarySchemaVersion uint16 = 1

// runSummary is the msgpack-encoded analytics artifact. Durations are in
// microseconds so the consumer never depends on Go's duration encoding.
type runSummary struct {
	Schema       uint16
	StageMicros  map[string]int64
	Dependencies int
	Renames      int
	Deleted      int
	Recompressed int
	Published    []string
	Warnings     int
}

func writeSummary(path string, result *PackResult) error {
	stages := make(map[string]int64)
	for _, stage := range Stages() {
		if result.Timings.Has(stage) {
			stages[string(stage)] = result.Timings.Duration(stage).Microseconds()
		}
	}
	data, err := msgpack.Marshal(runSummary{
		Schema:       summarySchemaVersion,
		StageMicros:  stages,
		Dependencies: result.Counts.Dependencies,
		Renames:      result.Counts.Renames,
		Deleted:      result.Counts.Deleted,
		Recompressed: result.Counts.Recompressed,
		Published:    result.Published,
		Warnings:     len(result.Warnings),
	})
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write run summary %q: %w", path, err)
	}
	return nil
}
