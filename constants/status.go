package constants

// RunStatus is the canonical status for rows in comparison_run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusMatched    RunStatus = "MATCHED"    // report produced, overallFlag true
	RunStatusMismatched RunStatus = "MISMATCHED" // report produced, at least one difference
	RunStatusRejected   RunStatus = "REJECTED"   // document type gate refused the pair
	RunStatusFailed     RunStatus = "FAILED"     // text source or reasoner failure
)
