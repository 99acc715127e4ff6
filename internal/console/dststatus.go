// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package console

import "fmt"

// DstStatus tracks how far the operator has progressed through DST
// configuration. It lives in session memory, not on the device, so a fresh
// process always starts at StatusDisabled even when the device still holds a
// rule pair committed by an earlier run.
type DstStatus uint8

const (
	// StatusDisabled is the initial state: no DST progress this session.
	StatusDisabled DstStatus = iota
	// StatusStartValid records that a valid start rule has been captured.
	StatusStartValid
	// StatusEndValid records that both rules are captured, commit pending.
	StatusEndValid
	// StatusEnabled records that a rule pair was committed to the device.
	StatusEnabled
)

// String returns the status name for logging.
func (s DstStatus) String() string {
	switch s {
	case StatusDisabled:
		return "disabled"
	case StatusStartValid:
		return "start_valid"
	case StatusEndValid:
		return "end_valid"
	case StatusEnabled:
		return "enabled"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// legalNext is the transition table of the configuration flow. A new valid
// start line or a disable commit may begin from any status; the end entry
// and the final commit are only reachable through their predecessors.
// Self-transitions are handled as no-ops before the table is consulted.
var legalNext = map[DstStatus][]DstStatus{
	StatusDisabled:   {StatusStartValid},
	StatusStartValid: {StatusEndValid, StatusDisabled},
	StatusEndValid:   {StatusEnabled, StatusStartValid, StatusDisabled},
	StatusEnabled:    {StatusStartValid, StatusDisabled},
}

// CanTransition reports whether moving from one status to another is a legal
// step of the configuration flow.
func CanTransition(from, next DstStatus) bool {
	for _, allowed := range legalNext[from] {
		if allowed == next {
			return true
		}
	}
	return false
}
