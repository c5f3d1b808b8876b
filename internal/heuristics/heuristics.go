// Package heuristics implements the cheap financial-relevance gate that runs
// before any AI call. The decision is a monotonic OR of independent signals:
// evaluation order only affects cost, never the verdict.
package heuristics

import (
	"regexp"
	"strings"

	"fjacquet/email-ledger/internal/models"
)

// Currency-amount patterns: a symbol or ISO code adjacent to a number.
var (
	symbolAmountPattern = regexp.MustCompile(`(?i)[$€£]\s?\d+(?:[.,]\d+)?`)
	codeAmountPattern   = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|CAD|AUD|JPY|CHF|SEK|NOK|DKK|SGD)\s?\d+(?:[.,]\d+)?`)
	amountCodePattern   = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?\s?(USD|EUR|GBP|CAD|AUD|JPY|CHF|SEK|NOK|DKK|SGD)\b`)
)

// attachedPhrases signal that a financial document rides along as an
// attachment even when the body itself names no amount.
var attachedPhrases = []string{
	"invoice attached", "receipt attached", "statement attached",
	"bill attached", "payment attached", "document attached",
	"find attached", "please find attached", "see attached",
}

// Classifier decides whether a message is plausibly financial. It is pure:
// identical input always yields the identical verdict.
type Classifier struct {
	senderPatterns  []string
	subjectKeywords []string
}

// New creates a Classifier with the given sender patterns and subject
// keywords (typically config.DefaultSenderPatterns and friends).
func New(senderPatterns, subjectKeywords []string) *Classifier {
	return &Classifier{
		senderPatterns:  lowerAll(senderPatterns),
		subjectKeywords: lowerAll(subjectKeywords),
	}
}

// IsFinancial reports whether the message warrants AI extraction. It
// short-circuits on the first positive signal.
func (c *Classifier) IsFinancial(content models.NormalizedContent) bool {
	if c.matchesSender(content.Sender) {
		return true
	}
	if c.matchesSubject(content.Subject) {
		return true
	}
	if content.HasFinancialAttachment {
		return true
	}
	return c.matchesBody(content.CombinedBody())
}

// matchesSender checks the sender address against known financial-service
// patterns: domain substrings or local-part prefixes like "invoice@".
func (c *Classifier) matchesSender(sender string) bool {
	sender = strings.ToLower(sender)
	for _, pattern := range c.senderPatterns {
		if strings.Contains(sender, pattern) {
			return true
		}
	}
	return false
}

func (c *Classifier) matchesSubject(subject string) bool {
	subject = strings.ToLower(subject)
	for _, keyword := range c.subjectKeywords {
		if strings.Contains(subject, keyword) {
			return true
		}
	}
	return false
}

// matchesBody looks for a currency-amount pattern or an attached-document
// phrase in the combined body text.
func (c *Classifier) matchesBody(body string) bool {
	if body == "" {
		return false
	}

	if symbolAmountPattern.MatchString(body) ||
		codeAmountPattern.MatchString(body) ||
		amountCodePattern.MatchString(body) {
		return true
	}

	lower := strings.ToLower(body)
	for _, phrase := range attachedPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
