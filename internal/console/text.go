// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package console

import (
	"fmt"

	"github.com/ManuGH/rtcterm/internal/rtc"
)

// Command characters accepted at the prompts.
const (
	cmdSetDateTime = '1'
	cmdConfigDst   = '2'

	dstCmdEnable  = '1'
	dstCmdDisable = '2'
	dstCmdQuit    = '3'

	fmtCmdFixed    = '1'
	fmtCmdRelative = '2'
)

// minSpaceCount is the separator count of a complete six-field entry.
const minSpaceCount = 5

// Operator-facing terminal text. Everything is written with explicit \r\n
// pairs because the far end may be a raw serial terminal with no output
// post-processing. The trailing-space runs and the uneven spacing in some
// messages are intentional; do not normalize them.
const (
	textClearScreen = "\x1b[2J\x1b[;H"

	textBannerTop    = "************************************************************\r\n"
	textBannerTitle  = "rtcterm: RTC console\r\n"
	textBannerBottom = "************************************************************\r\n\n"

	textMenuHeader    = "Available commands\r\n"
	textMenuSetTime   = "1 : Set new time and date\r\n"
	textMenuConfigDst = "2 : Configure DST feature\r\n\n"

	textEchoSetTime   = "\r[Command] : Set new time              \r\n"
	textEchoConfigDst = "\r[Command] : Configure DST feature              \r\n"

	textEnterTime  = "\rEnter time in \"mm dd HH MM SS yy\" format \r\n"
	textRtcUpdated = "\rRTC time updated\r\n\n"

	textTimeout = "\rTimeout \r\n"

	textDstStatusActive   = "\rCurrent DST Status :: Active\r\n\n"
	textDstStatusInactive = "\rCurrent DST Status :: Inactive\r\n\n"
	textDstStatusDisabled = "\rCurrent DST Status :: Disabled\r\n\n"

	textDstMenuHeader  = "Available DST commands \r\n"
	textDstMenuEnable  = "1 : Enable DST feature\r\n"
	textDstMenuDisable = "2 : Disable DST feature\r\n"
	textDstMenuQuit    = "3 : Quit DST Configuration\r\n\n"

	textDstFormatHeader   = "Enter DST format \r\n"
	textDstFormatFixed    = "1 : Fixed DST format\r\n"
	textDstFormatRelative = "2 : Relative DST format\r\n\n"

	textDstEnterStart = "Enter DST start time in \"mm dd HH MM SS yy\" format\r\n"
	textDstEnterEnd   = "Enter DST end time  in \"mm dd HH MM SS yy\" format\r\n"

	textDstUpdated  = "\rDST time updated\r\n\n"
	textDstDisabled = "\rDST feature disabled\r\n\n"
	textDstExit     = "\rExit from DST Configuration \r\n\n"
)

// Invalid-entry messages. Each variant is tied to its call site; the spacing
// differs between them and is part of the fixed output contract.
const (
	textBadSetTimeFields = "\rInvalid values! Please enter thevalues in specified format\r\n"
	textBadEntry         = "\rInvalid values! Please enter the values in specified format\r\n"
	textBadDstEndFields  = "\rInvalid values! Pleaseenter the values in specified format\r\n"
	textBadDstEndValues  = "\rInvalid values! Please enter the  values in specified format\r\n"
)

// formatClockLine renders the running clock line. The line ends with a bare
// carriage return and no newline, so each refresh overwrites the previous one
// in place. The year prints in its two-digit register form.
func formatClockLine(dt rtc.DateTime) string {
	return fmt.Sprintf("Mon %d Date %d    %d : %d : %d    %d Year \r",
		dt.Month, dt.Day, dt.Hour, dt.Min, dt.Sec, dt.Year%100)
}
