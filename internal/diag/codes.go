package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Configuration contradictions: mutually exclusive or logically
	// impossible option combinations. Never retried.
	ConfigContradiction Code = 1001
	ConfigMissingKey    Code = 1002
	ConfigBadValue      Code = 1003
	ConfigSelfRename    Code = 1004

	// Missing inputs: referenced archives, symbol tables, or policy files
	// that cannot be found.
	InputMissingArchive     Code = 2001
	InputMissingSymbolTable Code = 2002
	InputMissingManifest    Code = 2003
	InputBadArchive         Code = 2004

	// External tool failures: aapt2 or cwebp exited non-zero.
	ToolCompileFailed    Code = 3001
	ToolLinkFailed       Code = 3002
	ToolOptimizeFailed   Code = 3003
	ToolConvertFailed    Code = 3004
	ToolRecompressFailed Code = 3005
	ToolDumpFailed       Code = 3006

	// Policy mismatches: the produced archive disagrees with the declared
	// expectation.
	PolicyPackageID Code = 4001
	PolicyManifest  Code = 4002

	// Merge invariant violations detected mid-pipeline.
	MergeLedgerCollision   Code = 5001
	MergeDensityCollision  Code = 5002
	MergeWorkspaceConflict Code = 5003
)

func (c Code) String() string {
	return fmt.Sprintf("RP%04d", uint16(c))
}
