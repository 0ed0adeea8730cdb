// Package penalty implements the strike state machine: warnings accumulate
// until the supplier is blocked, and only an explicit reset clears them.
package penalty

import (
	"errors"
	"strings"
	"time"

	"supplier-portal/internal/model"
)

// BlockThreshold is the warning count at which a supplier becomes blocked
const BlockThreshold = 3

// DefaultReason is logged when a manager applies a warning without a reason
const DefaultReason = "Penalidade aplicada manualmente pelo gestor via Central."

// ErrAlreadyBlocked is returned when a warning targets a blocked supplier
var ErrAlreadyBlocked = errors.New("supplier is already blocked")

// State is the penalty state of a supplier
type State string

const (
	StateActive  State = "ATIVO"
	StateBlocked State = "BLOQUEADO"
)

// StateOf returns the current state of s
func StateOf(s *model.Supplier) State {
	if s.IsBlocked {
		return StateBlocked
	}
	return StateActive
}

// ApplyWarning adds one strike to s and logs it. Reaching BlockThreshold
// blocks the supplier. A blocked supplier is left untouched.
func ApplyWarning(s *model.Supplier, reason, manager string, at time.Time) error {
	if s.IsBlocked {
		return ErrAlreadyBlocked
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultReason
	}

	s.Warnings++
	s.WarningLogs = append(s.WarningLogs, model.WarningLog{
		SupplierID: s.ID,
		Date:       at.Format(time.DateOnly),
		Reason:     reason,
		Manager:    manager,
	})
	if s.Warnings >= BlockThreshold {
		s.IsBlocked = true
	}
	return nil
}

// ResetWarnings clears every strike and unblocks s. The log is discarded.
func ResetWarnings(s *model.Supplier) {
	s.Warnings = 0
	s.IsBlocked = false
	s.WarningLogs = []model.WarningLog{}
}

// Remaining is how many more warnings s can take before being blocked
func Remaining(s *model.Supplier) int {
	if s.IsBlocked || s.Warnings >= BlockThreshold {
		return 0
	}
	return BlockThreshold - s.Warnings
}
