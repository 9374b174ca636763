package category

import (
	"testing"

	"github.com/neem-ai/assistant/backend/internal/model/chat"
)

func TestDetectAPIQuestion(t *testing.T) {
	if got := Detect("What's my API integration status?"); got != chat.CategoryAPI {
		t.Fatalf("expected api, got %s", got)
	}
}

func TestDetectBillingQuestion(t *testing.T) {
	if got := Detect("I have a billing invoice question"); got != chat.CategoryBilling {
		t.Fatalf("expected billing, got %s", got)
	}
}

func TestDetectOnboardingQuestion(t *testing.T) {
	if got := Detect("How do I finish GETTING STARTED as a partner?"); got != chat.CategoryOnboarding {
		t.Fatalf("expected onboarding, got %s", got)
	}
}

func TestDetectFallsBackToGeneral(t *testing.T) {
	for _, text := range []string{"hello there", "", "   "} {
		if got := Detect(text); got != chat.CategoryGeneral {
			t.Fatalf("Detect(%q): expected general, got %s", text, got)
		}
	}
}

func TestDetectFirstRuleWins(t *testing.T) {
	// matches both the api and billing keyword sets
	if got := Detect("my payment api keeps failing"); got != chat.CategoryAPI {
		t.Fatalf("expected api to take precedence, got %s", got)
	}
}

func TestCustomRules(t *testing.T) {
	c := NewClassifier([]Rule{{Category: chat.CategoryBilling, Keywords: []string{" Refund "}}})
	if got := c.Detect("I want a refund"); got != chat.CategoryBilling {
		t.Fatalf("expected billing, got %s", got)
	}
	if got := c.Detect("api question"); got != chat.CategoryGeneral {
		t.Fatalf("expected general with custom rules, got %s", got)
	}
}

func TestParseFilter(t *testing.T) {
	if got, ok := ParseFilter("all"); !ok || got != "" {
		t.Fatalf("expected empty filter for all, got %q ok=%v", got, ok)
	}
	if got, ok := ParseFilter("Billing"); !ok || got != chat.CategoryBilling {
		t.Fatalf("expected billing filter, got %q ok=%v", got, ok)
	}
	if _, ok := ParseFilter("escalated"); ok {
		t.Fatal("expected unknown filter to be rejected")
	}
}
