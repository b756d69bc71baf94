// Package models defines the client-side data models kept in the local store
// and reconciled with the remote API.
package models

import (
	"strings"
	"time"
)

// SessionStatus is the server-tracked generation state of a session.
type SessionStatus string

const (
	StatusRequested SessionStatus = "REQUESTED"
	StatusCompleted SessionStatus = "COMPLETED"
	StatusFailed    SessionStatus = "FAILED"
)

// ParseSessionStatus converts a stored or wire status string into a
// SessionStatus. The parse is total: matching is case-insensitive and any
// unrecognized or legacy value maps to StatusRequested. Older app versions
// persisted free-form status strings, so leniency here is required to read
// databases they left behind.
func ParseSessionStatus(s string) SessionStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COMPLETED":
		return StatusCompleted
	case "FAILED":
		return StatusFailed
	default:
		return StatusRequested
	}
}

// IsTerminal reports whether no further status transition is expected.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Session is one unit of server-generated meditation audio assigned to a user
// for a specific day.
//
// SessionID is the server-assigned identity and is stable across syncs; ID is
// the local auto-increment surrogate key (0 until first saved). The download
// bookkeeping fields (LocalAudioPath, IsDownloaded, DownloadedAt,
// FileSizeBytes) belong to the download manager: sync never writes them except
// to copy them forward when reconciling a remote record onto an existing local
// row.
type Session struct {
	ID        int64
	SessionID string
	UserID    string
	Timestamp time.Time
	AudioPath string
	Status    SessionStatus

	// ErrorMessage is meaningful only when Status is StatusFailed.
	ErrorMessage string

	LocalAudioPath string
	IsDownloaded   bool
	DownloadedAt   *time.Time
	FileSizeBytes  int64
}
