package config

// DefaultSenderPatterns match known financial-service senders. A pattern is a
// bare substring of the address (domains) or a local-part prefix ending in @.
var DefaultSenderPatterns = []string{
	"stripe.com", "paypal.com", "wise.com", "bank.com",
	"receipt@", "invoice@", "payment@", "billing@",
	"noreply@", "service@", "notifications@", "confirmation@",
	"finops@", "finance@", "accounting@",
}

// DefaultSubjectKeywords flag plausibly financial subjects for the cheap gate.
var DefaultSubjectKeywords = []string{
	"receipt", "invoice", "payment", "transaction", "charge",
	"billing", "statement", "confirmation", "order", "purchase",
	"transfer", "withdrawal", "deposit", "refund", "renewal",
	"subscription", "fee", "amount", "total", "balance",
	"$", "€", "£", "usd", "eur", "gbp", "sgd",
}

// DefaultAttachmentKeywords flag financial documents by filename.
var DefaultAttachmentKeywords = []string{
	"invoice", "receipt", "statement", "payment", "bill", "quote", "transaction",
}

// Post-extraction gate lists. These deliberately differ from the heuristic
// lists above: the first gate bounds AI cost, the second keeps extraction
// noise out of the ledger.

// DefaultGateVendorKeywords accept a vendor name as financial evidence.
var DefaultGateVendorKeywords = []string{
	"stripe", "paypal", "wise", "bank", "payment", "invoice", "receipt", "billing",
}

// DefaultGateSubjectKeywords accept a subject as financial evidence.
var DefaultGateSubjectKeywords = []string{
	"invoice", "receipt", "bill", "payment",
}

// DefaultGateBodyPhrases accept an attached-document phrase as evidence.
var DefaultGateBodyPhrases = []string{
	"invoice attached", "receipt attached", "bill attached",
}
