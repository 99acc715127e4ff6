// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package console implements the interactive operator loop: a continuously
// refreshed clock line, a set-time command and a DST configuration command,
// all driven over a byte-oriented terminal port.
package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/rtcterm/internal/log"
	"github.com/ManuGH/rtcterm/internal/resilience"
	"github.com/ManuGH/rtcterm/internal/rtc"
	"github.com/ManuGH/rtcterm/internal/uart"
)

// ErrHalted reports an unrecoverable device failure: a write that kept
// failing after the full retry budget, or a rejected DST commit. The session
// cannot trust the clock state beyond this point, so it stops instead of
// offering further commands.
var ErrHalted = errors.New("console: halted on device failure")

// Session runs the operator loop against one device and one terminal port.
// It is not safe for concurrent use; Run owns the port until it returns.
type Session struct {
	port   uart.Port
	reader *uart.Reader
	device rtc.Device
	logger zerolog.Logger

	status DstStatus

	inputTimeout  time.Duration
	charTimeout   time.Duration
	retryAttempts int
	retryDelay    time.Duration

	writeErr error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithInputTimeout bounds each interactive entry step.
func WithInputTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.inputTimeout = d }
}

// WithCharTimeout bounds the idle poll between clock refreshes.
func WithCharTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.charTimeout = d }
}

// WithRetryPolicy sets the attempt budget and inter-attempt delay for
// device writes.
func WithRetryPolicy(attempts int, delay time.Duration) SessionOption {
	return func(s *Session) {
		s.retryAttempts = attempts
		s.retryDelay = delay
	}
}

// NewSession wires a session over the given port, line reader and device.
func NewSession(port uart.Port, reader *uart.Reader, device rtc.Device, opts ...SessionOption) *Session {
	s := &Session{
		port:          port,
		reader:        reader,
		device:        device,
		logger:        xglog.WithComponent("console"),
		status:        StatusDisabled,
		inputTimeout:  uart.InputTimeout,
		charTimeout:   uart.CharTimeout,
		retryAttempts: rtc.RetryAttempts,
		retryDelay:    rtc.RetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DstStatus returns the session's DST configuration progress.
func (s *Session) DstStatus() DstStatus {
	return s.status
}

// Run drives the operator loop until ctx is cancelled, the terminal dies or
// the session hits an unrecoverable device failure. While idle the clock
// line is re-rendered after every expired poll; a recognized command
// suspends the refresh for the length of the interaction.
func (s *Session) Run(ctx context.Context) error {
	sessionID := uuid.NewString()
	ctx = xglog.ContextWithSessionID(ctx, sessionID)
	s.logger = s.logger.With().Str(xglog.FieldSessionID, sessionID).Logger()

	s.logger.Info().Str(xglog.FieldEvent, "session_start").Msg("console session started")

	s.put(textClearScreen)
	s.put(textBannerTop)
	s.put(textBannerTitle)
	s.put(textBannerBottom)
	s.put(textMenuHeader)
	s.put(textMenuSetTime)
	s.put(textMenuConfigDst)

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info().Str(xglog.FieldEvent, "session_stop").Msg("console session stopped")
			return err
		}
		if s.writeErr != nil {
			return fmt.Errorf("console: terminal write: %w", s.writeErr)
		}

		dt, err := s.device.DateTime()
		if err != nil {
			s.logger.Error().Err(err).Str(xglog.FieldEvent, "clock_read_failed").Msg("clock read failed")
			return ErrHalted
		}
		s.put(formatClockLine(dt))

		cmd, err := s.reader.GetChar(ctx, s.charTimeout)
		if err != nil {
			if errors.Is(err, uart.ErrNoData) {
				continue
			}
			return err
		}

		switch cmd {
		case cmdSetDateTime:
			cmdCtx, logger := s.commandContext(ctx)
			logger.Info().Str(xglog.FieldEvent, "command_start").Msg("set time command")
			s.put(textEchoSetTime)
			if err := s.setNewTime(cmdCtx, logger); err != nil {
				return err
			}
		case cmdConfigDst:
			cmdCtx, logger := s.commandContext(ctx)
			logger.Info().
				Str(xglog.FieldEvent, "command_start").
				Str(xglog.FieldDstStatus, s.status.String()).
				Msg("configure dst command")
			s.put(textEchoConfigDst)
			if err := s.configureDst(cmdCtx, logger); err != nil {
				return err
			}
		}
	}
}

// commandContext derives a per-command correlation ID and a logger carrying
// it together with the session ID.
func (s *Session) commandContext(ctx context.Context) (context.Context, zerolog.Logger) {
	ctx = xglog.ContextWithCommandID(ctx, uuid.NewString())
	return ctx, xglog.WithContext(ctx, s.logger)
}

// put writes terminal text, latching the first write error. Later puts are
// no-ops; Run notices the latched error on its next pass and shuts the
// session down.
func (s *Session) put(text string) {
	if s.writeErr != nil {
		return
	}
	if err := s.port.PutString(text); err != nil {
		s.writeErr = err
		s.logger.Warn().Err(err).Msg("terminal write failed")
	}
}

// setStatus advances the DST progress marker and logs the transition.
func (s *Session) setStatus(logger zerolog.Logger, next DstStatus) {
	if next == s.status {
		return
	}
	if !CanTransition(s.status, next) {
		logger.Warn().
			Str(xglog.FieldEvent, "dst_status_rejected").
			Str(xglog.FieldOldState, s.status.String()).
			Str(xglog.FieldNewState, next.String()).
			Msg("illegal dst status transition")
		return
	}
	logger.Info().
		Str(xglog.FieldEvent, "dst_status_change").
		Str(xglog.FieldOldState, s.status.String()).
		Str(xglog.FieldNewState, next.String()).
		Msg("dst status changed")
	s.status = next
}

// setNewTime prompts for a full date-time entry and writes it to the device,
// retrying transient failures. The confirmation line prints before the final
// verdict is known; when the write still fails after the whole retry budget
// the entry is reported as invalid and the session halts.
func (s *Session) setNewTime(ctx context.Context, logger zerolog.Logger) error {
	s.put(textEnterTime)

	line, spaces, err := s.reader.FetchLine(ctx, s.inputTimeout)
	if err != nil {
		if errors.Is(err, uart.ErrNoData) {
			s.put(textTimeout)
			logger.Warn().Str(xglog.FieldEvent, "entry_timeout").Msg("set time entry timed out")
			return nil
		}
		return err
	}
	if spaces != minSpaceCount {
		s.put(textBadSetTimeFields)
		logger.Warn().Str(xglog.FieldEvent, "entry_rejected").Int("spaces", spaces).Msg("set time entry malformed")
		return nil
	}

	dt := parseDateTime(line)

	writeErr := resilience.Do(ctx, s.retryAttempts, s.retryDelay, func() error {
		return s.device.SetDateTime(dt)
	})
	if writeErr != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	s.put(textRtcUpdated)
	if writeErr != nil {
		s.put(textBadEntry)
		logger.Error().Err(writeErr).
			Str(xglog.FieldEvent, "rtc_write_failed").
			Int(xglog.FieldAttempts, s.retryAttempts).
			Msg("set time failed after retries")
		return ErrHalted
	}

	logger.Info().
		Str(xglog.FieldEvent, "rtc_updated").
		Str("time", dt.Time().Format(time.RFC3339)).
		Msg("rtc time updated")
	return nil
}

// configureDst shows the DST status and menu, then runs one configuration
// command.
func (s *Session) configureDst(ctx context.Context, logger zerolog.Logger) error {
	if err := s.showDstStatus(logger); err != nil {
		return err
	}

	s.put(textDstMenuHeader)
	s.put(textDstMenuEnable)
	s.put(textDstMenuDisable)
	s.put(textDstMenuQuit)

	cmd, err := s.reader.GetChar(ctx, s.inputTimeout)
	if err != nil {
		if errors.Is(err, uart.ErrNoData) {
			s.put(textTimeout)
			logger.Warn().Str(xglog.FieldEvent, "entry_timeout").Msg("dst command entry timed out")
			return nil
		}
		return err
	}

	switch cmd {
	case dstCmdEnable:
		return s.enableDst(ctx, logger)
	case dstCmdDisable:
		return s.disableDst(logger)
	case dstCmdQuit:
		s.put(textDstExit)
		return nil
	default:
		return nil
	}
}

// showDstStatus prints the status line. The device's live answer is
// consulted only once configuration has completed; in every other state the
// feature reads as disabled, regardless of what an earlier process may have
// committed to the device.
func (s *Session) showDstStatus(logger zerolog.Logger) error {
	if s.status != StatusEnabled {
		s.put(textDstStatusDisabled)
		return nil
	}
	active, err := s.device.DstActive()
	if err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "dst_read_failed").Msg("dst status read failed")
		return ErrHalted
	}
	if active {
		s.put(textDstStatusActive)
	} else {
		s.put(textDstStatusInactive)
	}
	return nil
}

// enableDst walks format selection, start entry and end entry, then commits
// the rule pair. Every later stage is gated on the session status alone, so
// a stage that fails in this pass can still ride on progress recorded by an
// earlier pass. The pair itself is local to this pass: riding on old status
// commits zero-valued rules for the stages this pass never filled in.
func (s *Session) enableDst(ctx context.Context, logger zerolog.Logger) error {
	var pair rtc.DstPair

	s.put(textDstFormatHeader)
	s.put(textDstFormatFixed)
	s.put(textDstFormatRelative)

	fmtCmd, err := s.reader.GetChar(ctx, s.inputTimeout)
	if err != nil {
		if errors.Is(err, uart.ErrNoData) {
			s.put(textTimeout)
			logger.Warn().Str(xglog.FieldEvent, "entry_timeout").Msg("dst format entry timed out")
			return nil
		}
		return err
	}

	var format rtc.DstFormat
	switch fmtCmd {
	case fmtCmdFixed:
		format = rtc.DstFormatFixed
	case fmtCmdRelative:
		format = rtc.DstFormatRelative
	}

	s.put(textDstEnterStart)
	line, spaces, err := s.reader.FetchLine(ctx, s.inputTimeout)
	switch {
	case errors.Is(err, uart.ErrNoData):
		s.put(textTimeout)
	case err != nil:
		return err
	case spaces != minSpaceCount:
		s.put(textBadEntry)
	default:
		dt := parseDateTime(line)
		rule, buildErr := rtc.BuildDstRule(dt, format)
		if dt.Valid() && buildErr == nil {
			pair.Start = rule
			s.setStatus(logger, StatusStartValid)
		} else {
			s.put(textBadEntry)
		}
	}

	// End entry opens on recorded progress, not on this pass's outcome.
	if s.status == StatusStartValid {
		s.put(textDstEnterEnd)
		line, spaces, err = s.reader.FetchLine(ctx, s.inputTimeout)
		switch {
		case errors.Is(err, uart.ErrNoData):
			s.put(textTimeout)
		case err != nil:
			return err
		case spaces != minSpaceCount:
			s.put(textBadDstEndFields)
		default:
			dt := parseDateTime(line)
			rule, buildErr := rtc.BuildDstRule(dt, format)
			if dt.Valid() && buildErr == nil {
				pair.Stop = rule
				s.setStatus(logger, StatusEndValid)
			} else {
				s.put(textBadDstEndValues)
			}
		}
	}

	if s.status == StatusEndValid {
		if err := s.device.EnableDst(pair); err != nil {
			logger.Error().Err(err).Str(xglog.FieldEvent, "dst_commit_failed").Msg("dst commit rejected")
			return ErrHalted
		}
		s.setStatus(logger, StatusEnabled)
		s.put(textDstUpdated)
		logger.Info().
			Str(xglog.FieldEvent, "dst_enabled").
			Str("start", rtc.DescribeRule(pair.Start)).
			Str("stop", rtc.DescribeRule(pair.Stop)).
			Msg("dst window committed")
	}
	return nil
}

// disableDst commits the degenerate rule pair whose start and stop coincide,
// emptying the DST window.
func (s *Session) disableDst(logger zerolog.Logger) error {
	if err := s.device.EnableDst(rtc.DisabledDstPair()); err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "dst_commit_failed").Msg("dst disable rejected")
		return ErrHalted
	}
	s.setStatus(logger, StatusDisabled)
	s.put(textDstDisabled)
	logger.Info().Str(xglog.FieldEvent, "dst_disabled").Msg("dst feature disabled")
	return nil
}
