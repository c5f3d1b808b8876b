package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/email-ledger/internal/aiclient"
	"fjacquet/email-ledger/internal/logging"
	"fjacquet/email-ledger/internal/models"
)

func sampleData() models.ExtractedFinancialData {
	data := models.NewExtractedFinancialData()
	data.Vendor = "Uber"
	data.Description = "Trip on March 10"
	return data
}

func sampleContent() models.NormalizedContent {
	return models.NormalizedContent{
		MessageID: "msg-1",
		Subject:   "Your Tuesday trip with Uber",
		Sender:    "receipts@uber.com",
		PlainBody: "Thanks for riding. Trip from the airport to downtown, total $18.20.",
		Attachments: []models.AttachmentDescriptor{
			{Filename: "receipt.pdf", MediaType: "application/pdf", ExtractedText: "Trip receipt total 18.20 USD"},
		},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"valid category", `{"category": "transport"}`, models.CategoryTransport},
		{"markdown fenced", "```json\n{\"category\": \"saas_subscriptions\"}\n```", models.CategorySaaS},
		{"mixed case normalized", `{"category": "Transport"}`, models.CategoryTransport},
		{"bare category name", "transport", models.CategoryTransport},
		{"unknown category defaults", `{"category": "crypto"}`, models.CategoryOther},
		{"prose response defaults", "This looks like a ride share expense.", models.CategoryOther},
		{"empty response defaults", "", models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := New(aiclient.NewMockClient(tt.response), nil, DefaultOptions(), logging.NewMockLogger())
			got := engine.Classify(context.Background(), sampleContent(), sampleData())
			assert.Equal(t, tt.want, got.Category)
		})
	}
}

func TestClassifyDefaultsOnAIError(t *testing.T) {
	mock := &aiclient.MockClient{Err: errors.New("quota exceeded")}
	engine := New(mock, nil, DefaultOptions(), logging.NewMockLogger())

	got := engine.Classify(context.Background(), sampleContent(), sampleData())

	assert.Equal(t, models.CategoryOther, got.Category)
}

func TestClassifyWithoutAIClient(t *testing.T) {
	engine := New(nil, nil, DefaultOptions(), logging.NewMockLogger())

	got := engine.Classify(context.Background(), sampleContent(), sampleData())

	assert.Equal(t, models.CategoryOther, got.Category)
}

func TestBuildPromptListsAllCategories(t *testing.T) {
	prompt := buildPrompt(sampleContent(), sampleData())

	for _, cat := range models.ExpenseCategories {
		assert.Contains(t, prompt, cat)
	}
	assert.Contains(t, prompt, "Vendor: Uber")
}

func TestBuildPromptIncludesEmailContext(t *testing.T) {
	prompt := buildPrompt(sampleContent(), sampleData())

	assert.Contains(t, prompt, "Subject: Your Tuesday trip with Uber")
	assert.Contains(t, prompt, "Sender: receipts@uber.com")
	assert.Contains(t, prompt, "total $18.20")
	assert.Contains(t, prompt, "Attachment receipt.pdf: Trip receipt total 18.20 USD")
}

func TestClassifySendsEmailContextToModel(t *testing.T) {
	mock := aiclient.NewMockClient(`{"category": "transport"}`)
	engine := New(mock, nil, DefaultOptions(), logging.NewMockLogger())

	engine.Classify(context.Background(), sampleContent(), sampleData())

	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "Subject: Your Tuesday trip with Uber")
	assert.Contains(t, mock.Prompts[0], "Sender: receipts@uber.com")
	assert.Contains(t, mock.Prompts[0], "total $18.20")
}

func TestBuildPromptClipsLongBody(t *testing.T) {
	content := sampleContent()
	content.PlainBody = strings.Repeat("receipt ", 1000)

	prompt := buildPrompt(content, sampleData())

	assert.Less(t, len(prompt), 3000)
}
