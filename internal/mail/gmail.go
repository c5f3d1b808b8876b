package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"fjacquet/email-ledger/internal/logging"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailClient implements Client on top of the Gmail REST API.
type GmailClient struct {
	service    *gmail.Service
	maxResults int64
	logger     logging.Logger
}

// NewGmailClient builds a Gmail-backed Client using the given credentials
// file. Token handling is delegated to the Google client libraries.
// maxResults caps one list call; values below 1 fall back to 100.
func NewGmailClient(ctx context.Context, credentialsFile string, maxResults int, logger logging.Logger) (*GmailClient, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if maxResults < 1 {
		maxResults = 100
	}

	service, err := gmail.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gmail.GmailReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &GmailClient{
		service:    service,
		maxResults: int64(maxResults),
		logger:     logger,
	}, nil
}

// ListRecent returns the identifiers of messages received after the given time.
func (c *GmailClient) ListRecent(ctx context.Context, since time.Time) ([]string, error) {
	query := fmt.Sprintf("after:%s", since.Format("2006/01/02"))

	resp, err := c.service.Users.Messages.List("me").
		Q(query).
		MaxResults(c.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}

	c.logger.WithFields(
		logging.Field{Key: "count", Value: len(ids)},
		logging.Field{Key: "query", Value: query},
	).Debug("Listed recent messages")

	return ids, nil
}

// GetFull fetches a message and resolves its full part tree, downloading
// attachment bodies that the list response only references by id.
func (c *GmailClient) GetFull(ctx context.Context, id string) (*RawMessage, error) {
	msg, err := c.service.Users.Messages.Get("me", id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", id, err)
	}

	raw := &RawMessage{ID: msg.Id}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch strings.ToLower(h.Name) {
			case "subject":
				raw.Subject = h.Value
			case "from":
				raw.Sender = h.Value
			case "date":
				raw.Date = h.Value
			}
		}
		raw.Payload = c.convertPart(ctx, id, msg.Payload)
	}

	return raw, nil
}

// convertPart maps a Gmail MessagePart to our Part, recursively. Bodies that
// fail to decode or download degrade to empty, never to an error: a broken
// attachment must not sink the whole message.
func (c *GmailClient) convertPart(ctx context.Context, messageID string, part *gmail.MessagePart) Part {
	p := Part{
		MimeType: part.MimeType,
		Filename: part.Filename,
	}

	if part.Body != nil {
		if part.Body.Data != "" {
			p.Body = decodeBody(part.Body.Data)
		} else if part.Body.AttachmentId != "" {
			p.Body = c.fetchAttachment(ctx, messageID, part.Body.AttachmentId)
		}
	}

	for _, child := range part.Parts {
		p.Parts = append(p.Parts, c.convertPart(ctx, messageID, child))
	}

	return p
}

func (c *GmailClient) fetchAttachment(ctx context.Context, messageID, attachmentID string) []byte {
	att, err := c.service.Users.Messages.Attachments.Get("me", messageID, attachmentID).
		Context(ctx).
		Do()
	if err != nil {
		c.logger.WithError(err).WithField("message_id", messageID).
			Warn("Failed to download attachment body")
		return nil
	}
	return decodeBody(att.Data)
}

// decodeBody decodes the base64url payloads the Gmail API returns. Padding is
// inconsistent across responses, so both variants are tried.
func decodeBody(data string) []byte {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return decoded
	}
	decoded, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return nil
	}
	return decoded
}
