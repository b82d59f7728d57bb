package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors surfaced by lifecycle operations and by Store
// implementations.
var (
	// ErrInvalidStage: the job sits on a terminal or unrecognized stage. No
	// user input fixes this; it signals a data-integrity problem upstream.
	ErrInvalidStage = errors.New("job stage cannot be advanced")

	// ErrConflict: another actor won a concurrent update race (optimistic
	// version check or bid compare-and-set). Retryable: re-fetch and
	// re-evaluate.
	ErrConflict = errors.New("job was just updated, please retry")

	// ErrEmptyReason: send-back requires a recorded reason.
	ErrEmptyReason = errors.New("send-back reason is required")

	// ErrNotBackward: send-back only moves to an earlier stage.
	ErrNotBackward = errors.New("send-back target must be an earlier stage")
)

// GateError reports a blocked advancement: the gate's missing-requirement
// list, unchanged from the evaluator. Recoverable — the caller re-prompts for
// the missing fields. Distinct from ErrInvalidStage.
type GateError struct {
	Missing       []string
	FirstBlocking string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("gate blocked: %s", strings.Join(e.Missing, "; "))
}

// AsGateError unwraps err into a *GateError when it is one.
func AsGateError(err error) (*GateError, bool) {
	var ge *GateError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
