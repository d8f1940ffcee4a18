package tui

import "go.trai.ch/goalkeeper/internal/core/domain"

// MsgGoalsUpdated carries the latest versions of the watched goals.
type MsgGoalsUpdated struct {
	Goals []domain.Goal
}

// MsgPollFailed is sent when the goal source returns an error.
type MsgPollFailed struct {
	Err error
}

// msgPoll triggers the next read from the goal source.
type msgPoll struct{}
