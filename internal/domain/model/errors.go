package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds shared by the simulation core. Typed errors below match
// their sentinel through errors.Is so callers can branch on the kind alone.
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrDataIncomplete   = errors.New("data incomplete")
	ErrBullpenExhausted = errors.New("bullpen exhausted")
	ErrInvalidLine      = errors.New("invalid line")
	ErrRunawayInning    = errors.New("runaway half-inning")
	ErrNoReplications   = errors.New("no completed replications")
)

// ConfigurationError reports invalid or missing setup. It is fatal and is
// raised before any simulation work begins.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// NewConfigurationError formats a ConfigurationError.
func NewConfigurationError(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// DataIncompleteError reports a player missing a statistic the engine needs.
type DataIncompleteError struct {
	PlayerID string
	Field    string
	Reason   string
}

func (e *DataIncompleteError) Error() string {
	msg := fmt.Sprintf("%s: player %q field %q", ErrDataIncomplete, e.PlayerID, e.Field)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports whether target is ErrDataIncomplete.
func (e *DataIncompleteError) Is(target error) bool { return target == ErrDataIncomplete }

// BullpenExhaustedError reports that no eligible reliever remained when a
// pitching change was required.
type BullpenExhaustedError struct {
	Team    string
	Inning  int
	Trigger string
}

func (e *BullpenExhaustedError) Error() string {
	return fmt.Sprintf("%s: team %q inning %d (trigger %s)", ErrBullpenExhausted, e.Team, e.Inning, e.Trigger)
}

// Is reports whether target is ErrBullpenExhausted.
func (e *BullpenExhaustedError) Is(target error) bool { return target == ErrBullpenExhausted }

// InvalidLineError reports a pricing request that makes no sense against the PMF.
type InvalidLineError struct {
	Line   float64
	Reason string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("%s %v: %s", ErrInvalidLine, e.Line, e.Reason)
}

// Is reports whether target is ErrInvalidLine.
func (e *InvalidLineError) Is(target error) bool { return target == ErrInvalidLine }

// Recoverable reports whether err only invalidates a single replication.
func Recoverable(err error) bool {
	return errors.Is(err, ErrBullpenExhausted) || errors.Is(err, ErrRunawayInning)
}

// FailureKind returns a short label for a replication failure, used as a
// counter key and metric label.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrBullpenExhausted):
		return "bullpen_exhausted"
	case errors.Is(err, ErrRunawayInning):
		return "runaway_inning"
	case errors.Is(err, ErrDataIncomplete):
		return "data_incomplete"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "unknown"
	}
}
