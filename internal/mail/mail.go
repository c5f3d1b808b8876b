// Package mail defines the inbox transport used by the pipeline and a Gmail
// implementation of it. The rest of the application only sees RawMessage
// trees and the Client interface, never the Gmail API types.
package mail

import (
	"context"
	"time"
)

// Part is one node of a message's MIME tree. Container parts carry nested
// Parts; leaf parts carry a decoded Body. A part with a Filename is an
// attachment regardless of its media type.
type Part struct {
	MimeType string
	Filename string
	Body     []byte
	Parts    []Part
}

// IsAttachment reports whether this part carries an attached file.
func (p Part) IsAttachment() bool {
	return p.Filename != ""
}

// RawMessage is a fetched message: stable identity, the headers the pipeline
// cares about, and the decoded part tree. Part trees are finite and acyclic.
type RawMessage struct {
	ID      string
	Subject string
	Sender  string
	Date    string
	Payload Part
}

// Client is the inbox transport collaborator. Implementations own their
// authentication lifecycle.
type Client interface {
	// ListRecent returns the identifiers of messages received since the
	// given time, newest first.
	ListRecent(ctx context.Context, since time.Time) ([]string, error)

	// GetFull fetches a message with its complete part tree, attachment
	// payloads included.
	GetFull(ctx context.Context, id string) (*RawMessage, error)
}
