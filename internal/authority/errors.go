package authority

import (
	"errors"
	"fmt"
	"time"
)

// NoStatusError reports that no reply arrived within the proposal's window.
// Callers recover locally by falling back to the last known status.
type NoStatusError struct {
	Seq     int64
	EvType  string
	Timeout time.Duration
}

func (e *NoStatusError) Error() string {
	return fmt.Sprintf("no authority status for proposal %d (%s) within %s", e.Seq, e.EvType, e.Timeout)
}

// IsNoStatus reports whether err is, or wraps, a NoStatusError.
func IsNoStatus(err error) bool {
	var ns *NoStatusError
	return errors.As(err, &ns)
}
