package category

import (
	"strings"

	"github.com/neem-ai/assistant/backend/internal/model/chat"
)

// Rule maps a set of keywords to a category. A rule matches when any of
// its keywords is a case-insensitive substring of the text.
type Rule struct {
	Category chat.Category
	Keywords []string
}

// DefaultRules are evaluated in order; the first matching rule wins.
var DefaultRules = []Rule{
	{Category: chat.CategoryAPI, Keywords: []string{"api", "integration", "code"}},
	{Category: chat.CategoryBilling, Keywords: []string{"bill", "payment", "charge", "invoice"}},
	{Category: chat.CategoryOnboarding, Keywords: []string{"onboard", "setup", "getting started", "partner"}},
}

// Classifier infers a message category from keyword rules.
type Classifier struct {
	rules    []Rule
	fallback chat.Category
}

// NewClassifier builds a classifier over rules. Nil rules select DefaultRules.
func NewClassifier(rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules
	}
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		words := make([]string, 0, len(r.Keywords))
		for _, w := range r.Keywords {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			words = append(words, w)
		}
		normalized = append(normalized, Rule{Category: r.Category, Keywords: words})
	}
	return &Classifier{rules: normalized, fallback: chat.CategoryGeneral}
}

// Detect returns the category of the first matching rule, or general.
func (c *Classifier) Detect(text string) chat.Category {
	normalized := strings.ToLower(text)
	if strings.TrimSpace(normalized) == "" {
		return c.fallback
	}

	for _, rule := range c.rules {
		for _, word := range rule.Keywords {
			if strings.Contains(normalized, word) {
				return rule.Category
			}
		}
	}
	return c.fallback
}

var defaultClassifier = NewClassifier(nil)

// Detect classifies text with the default rules.
func Detect(text string) chat.Category {
	return defaultClassifier.Detect(text)
}

// ParseFilter resolves a category filter from a query value. Empty and
// "all" mean no filter.
func ParseFilter(raw string) (chat.Category, bool) {
	switch chat.Category(strings.ToLower(strings.TrimSpace(raw))) {
	case "", "all":
		return "", true
	case chat.CategoryAPI:
		return chat.CategoryAPI, true
	case chat.CategoryBilling:
		return chat.CategoryBilling, true
	case chat.CategoryOnboarding:
		return chat.CategoryOnboarding, true
	case chat.CategoryGeneral:
		return chat.CategoryGeneral, true
	case chat.CategoryError:
		return chat.CategoryError, true
	default:
		return "", false
	}
}
