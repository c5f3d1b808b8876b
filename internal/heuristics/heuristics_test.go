package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fjacquet/email-ledger/internal/config"
	"fjacquet/email-ledger/internal/models"
)

func newTestClassifier() *Classifier {
	return New(config.DefaultSenderPatterns, config.DefaultSubjectKeywords)
}

func TestIsFinancial(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name    string
		content models.NormalizedContent
		want    bool
	}{
		{
			"known financial sender",
			models.NormalizedContent{Sender: "receipts@stripe.com", Subject: "Hi"},
			true,
		},
		{
			"invoice local part",
			models.NormalizedContent{Sender: "invoice@smallshop.example", Subject: "Hi"},
			true,
		},
		{
			"subject keyword",
			models.NormalizedContent{Sender: "someone@example.com", Subject: "Your receipt from last night"},
			true,
		},
		{
			"financial attachment",
			models.NormalizedContent{Sender: "someone@example.com", Subject: "Hi", HasFinancialAttachment: true},
			true,
		},
		{
			"symbol amount in body",
			models.NormalizedContent{Sender: "someone@example.com", Subject: "Hi", PlainBody: "You owe me $12.50 for lunch"},
			true,
		},
		{
			"code amount in body",
			models.NormalizedContent{Sender: "someone@example.com", Subject: "Hi", PlainBody: "Charged SGD 95.90 today"},
			true,
		},
		{
			"attached phrase in body",
			models.NormalizedContent{Sender: "someone@example.com", Subject: "Documents", PlainBody: "Please find attached the paperwork."},
			true,
		},
		{
			"amount in html only",
			models.NormalizedContent{Sender: "someone@example.com", Subject: "Hi", HTMLText: "Total €45.00"},
			true,
		},
		{
			"plain conversation",
			models.NormalizedContent{Sender: "friend@example.com", Subject: "Lunch on Friday?", PlainBody: "See you at noon."},
			false,
		},
		{
			"empty message",
			models.NormalizedContent{Sender: "friend@example.com", Subject: "Hello"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsFinancial(tt.content))
		})
	}
}

func TestIsFinancialIsPure(t *testing.T) {
	c := newTestClassifier()
	content := models.NormalizedContent{
		Sender:    "friend@example.com",
		Subject:   "Lunch on Friday?",
		PlainBody: "See you at noon.",
	}

	first := c.IsFinancial(content)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.IsFinancial(content))
	}
}

func TestMatchingIsCaseInsensitive(t *testing.T) {
	c := New([]string{"stripe.com"}, []string{"invoice"})

	assert.True(t, c.IsFinancial(models.NormalizedContent{Sender: "Receipts@STRIPE.COM"}))
	assert.True(t, c.IsFinancial(models.NormalizedContent{Subject: "INVOICE #42"}))
}
