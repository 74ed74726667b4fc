package capture

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a capture run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase   // Operation phase
	Step    int     // Current target number, 1-based
	Total   int     // Number of targets in the run
	Message string  // Human-readable message for display
	Target  *Target // Target the update refers to, if any
	Err     error   // Failure cause for TargetFailed
}

// ProgressBuffer is the channel capacity that holds every update of a run over n targets:
// two per target plus login, mapping and done.
func ProgressBuffer(n int) int {
	return 2*n + 3
}

// Capture phase enumeration
type Phase int

const (
	Login Phase = iota
	CaptureTarget
	TargetSaved
	TargetFailed
	WriteMapping
	Done
)

func (p Phase) String() string {
	switch p {
	case Login:
		return "login"
	case CaptureTarget:
		return "capture_target"
	case TargetSaved:
		return "target_saved"
	case TargetFailed:
		return "target_failed"
	case WriteMapping:
		return "write_mapping"
	case Done:
		return "done"
	default:
		return ""
	}
}

func loginUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: Login, Message: "Verifying session..."}
}

func captureUpdate(step, total int, t Target) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CaptureTarget,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Capturing %s...", t.Key()),
		Target:  &t,
	}
}

func savedUpdate(step, total int, t Target, change string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TargetSaved,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Saved %s (%s)", t.Key(), change),
		Target:  &t,
	}
}

func failedUpdate(step, total int, t Target, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TargetFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed %s: %v", t.Key(), err),
		Target:  &t,
		Err:     err,
	}
}

func mappingUpdate(entries int) ProgressUpdate {
	return ProgressUpdate{Phase: WriteMapping, Message: fmt.Sprintf("Writing type mapping (%d entries)...", entries)}
}

func doneUpdate(saved, failed int) ProgressUpdate {
	return ProgressUpdate{Phase: Done, Message: fmt.Sprintf("Capture finished: %d saved, %d failed", saved, failed)}
}
