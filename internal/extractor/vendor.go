package extractor

import (
	"regexp"
	"strings"
)

// genericSubdomains are stripped from the sender domain before deriving a
// vendor name, so "finops@mail.earlybirdapp.co" yields "Earlybirdapp" rather
// than "Mail".
var genericSubdomains = map[string]bool{
	"www":     true,
	"mail":    true,
	"smtp":    true,
	"finops":  true,
	"noreply": true,
	"service": true,
	"email":   true,
	"notify":  true,
}

// vendorOverrides map well-known domains to their proper brand spelling.
var vendorOverrides = map[string]string{
	"openai":       "OpenAI",
	"paypal":       "PayPal",
	"github":       "GitHub",
	"linkedin":     "LinkedIn",
	"whatsapp":     "WhatsApp",
	"youtube":      "YouTube",
	"mailchimp":    "Mailchimp",
	"digitalocean": "DigitalOcean",
}

var (
	emailAddressPattern = regexp.MustCompile(`[\w.+-]+@([\w.-]+)`)
	forwardedFromLine   = regexp.MustCompile(`(?im)^\s*>?\s*From:\s*(.+)$`)
)

// deriveVendorFromSender turns a sender address into a display vendor name.
// It takes the first non-generic label of the domain and title-cases it.
// Returns "" when no domain can be parsed.
func deriveVendorFromSender(sender string) string {
	m := emailAddressPattern.FindStringSubmatch(sender)
	if m == nil {
		return ""
	}
	domain := strings.ToLower(m[1])

	labels := strings.Split(domain, ".")
	for _, label := range labels {
		if label == "" || genericSubdomains[label] {
			continue
		}
		if override, ok := vendorOverrides[label]; ok {
			return override
		}
		return titleCase(label)
	}
	return ""
}

// deriveVendorFromForwarded scans a forwarded body for the quoted original
// "From:" line and derives the vendor from that address instead of the
// forwarding mailbox.
func deriveVendorFromForwarded(body string) string {
	m := forwardedFromLine.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return deriveVendorFromSender(m[1])
}

func titleCase(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
