package mail

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartIsAttachment(t *testing.T) {
	assert.True(t, Part{MimeType: "application/pdf", Filename: "invoice.pdf"}.IsAttachment())
	assert.False(t, Part{MimeType: "text/plain"}.IsAttachment())
	// Inline images without a filename are body parts, not attachments.
	assert.False(t, Part{MimeType: "image/png"}.IsAttachment())
}

func TestDecodeBody(t *testing.T) {
	payload := []byte("Total: $99.99")

	padded := base64.URLEncoding.EncodeToString(payload)
	assert.Equal(t, payload, decodeBody(padded))

	raw := base64.RawURLEncoding.EncodeToString(payload)
	assert.Equal(t, payload, decodeBody(raw))

	assert.Nil(t, decodeBody("!!! not base64 !!!"))
}

func TestMockClient(t *testing.T) {
	client := NewMockClient(
		RawMessage{ID: "msg-1", Subject: "Receipt"},
		RawMessage{ID: "msg-2", Subject: "Invoice"},
	)

	ids, err := client.ListRecent(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"msg-1", "msg-2"}, ids)

	msg, err := client.GetFull(context.Background(), "msg-2")
	require.NoError(t, err)
	assert.Equal(t, "Invoice", msg.Subject)

	_, err = client.GetFull(context.Background(), "msg-404")
	assert.ErrorIs(t, err, ErrMessageNotFound)

	assert.Equal(t, 1, client.ListCalls)
	assert.Equal(t, 2, client.GetCalls)
}
