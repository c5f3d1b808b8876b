package models

// Expense categories form a closed set; anything the classifier cannot place
// confidently lands in CategoryOther.
const (
	CategoryMeals        = "meals_and_entertainment"
	CategoryTransport    = "transport"
	CategorySaaS         = "saas_subscriptions"
	CategoryTravel       = "travel"
	CategoryOffice       = "office_supplies"
	CategoryUtilities    = "utilities"
	CategoryInsurance    = "insurance"
	CategoryProfessional = "professional_services"
	CategoryMarketing    = "marketing"
	CategoryOther        = "other"
)

// DefaultCurrency is used whenever no currency can be detected.
const DefaultCurrency = "USD"

// ExpenseCategories lists every valid category label.
var ExpenseCategories = []string{
	CategoryMeals,
	CategoryTransport,
	CategorySaaS,
	CategoryTravel,
	CategoryOffice,
	CategoryUtilities,
	CategoryInsurance,
	CategoryProfessional,
	CategoryMarketing,
	CategoryOther,
}

// CategoryDescriptions explain each label; the classifier embeds these in its
// prompt so the model picks from the closed set.
var CategoryDescriptions = map[string]string{
	CategoryMeals:        "Food, restaurants, entertainment",
	CategoryTransport:    "Uber, Lyft, gas, parking, public transport",
	CategorySaaS:         "Software subscriptions, online services",
	CategoryTravel:       "Flights, hotels, travel expenses",
	CategoryOffice:       "Office materials, equipment",
	CategoryUtilities:    "Electricity, water, internet, phone bills",
	CategoryInsurance:    "Insurance payments",
	CategoryProfessional: "Legal, consulting, professional fees",
	CategoryMarketing:    "Advertising, marketing expenses",
	CategoryOther:        "Anything that doesn't fit above categories",
}

// IsValidCategory reports whether the label belongs to the closed set.
func IsValidCategory(category string) bool {
	for _, c := range ExpenseCategories {
		if c == category {
			return true
		}
	}
	return false
}

// SupportedCurrencies is the ISO-4217 whitelist accepted from extraction.
var SupportedCurrencies = []string{
	"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CHF", "SEK", "NOK", "DKK", "SGD",
}

// IsSupportedCurrency reports whether code is in the whitelist.
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}
