// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldCommandID = "command_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// State machine fields
	FieldOldState  = "old_state"
	FieldNewState  = "new_state"
	FieldDstStatus = "dst_status"

	// Hardware fields
	FieldDevice   = "device"
	FieldTerminal = "terminal"
	FieldAttempts = "attempts"

	// Path fields
	FieldPath = "path"
)
