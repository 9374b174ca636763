package ai

import (
	"fmt"
	"strings"

	"github.com/neem-ai/assistant/backend/internal/model/role"
)

// PromptTemplate defines the structure for role prompts
type PromptTemplate struct {
	SystemPrompt string
	StyleHints   []string
	ContextRules []string
}

// RolePromptManager manages prompt templates for the audience roles
type RolePromptManager struct {
	templates map[string]*PromptTemplate
}

// NewRolePromptManager creates a prompt manager with the built-in templates
func NewRolePromptManager() *RolePromptManager {
	manager := &RolePromptManager{
		templates: make(map[string]*PromptTemplate),
	}
	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the template registered for roleID
func (pm *RolePromptManager) GetPromptTemplate(roleID string) (*PromptTemplate, error) {
	template, exists := pm.templates[roleID]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for role: %s", roleID)
	}
	return template, nil
}

// BuildSystemPrompt creates the system prompt for r
func (pm *RolePromptManager) BuildSystemPrompt(r *role.Role) string {
	template, err := pm.GetPromptTemplate(r.ID)
	if err != nil {
		return pm.buildBasicSystemPrompt(r)
	}

	return fmt.Sprintf(`%s

Audience:
- Role: %s
- Expectation: %s
- Tone: %s

Style:
- %s

Rules:
- %s`,
		template.SystemPrompt,
		r.Label,
		r.Description,
		r.Tone,
		strings.Join(template.StyleHints, "\n- "),
		strings.Join(template.ContextRules, "\n- "),
	)
}

func (pm *RolePromptManager) buildBasicSystemPrompt(r *role.Role) string {
	return fmt.Sprintf(`You are Neem AI Assistant, a support agent for onboarding, API integration, billing and general questions.

You are answering for the %s audience (%s). Keep a %s tone.
%s`,
		r.Label,
		r.Description,
		r.Tone,
		r.PromptHint,
	)
}

const assistantIdentity = "You are Neem AI Assistant. You help customers with onboarding, API integration, billing questions and general support. Answer in plain text, keep replies short, and say so when you do not know."

func (pm *RolePromptManager) loadDefaultTemplates() {
	pm.templates["customer"] = &PromptTemplate{
		SystemPrompt: assistantIdentity,
		StyleHints: []string{
			"Use business language, not engineering jargon",
			"Lead with the outcome, then the steps",
			"Offer to escalate when the request needs a human",
		},
		ContextRules: []string{
			"Never quote internal system names",
			"Point to self-service options before tickets",
		},
	}

	pm.templates["finance"] = &PromptTemplate{
		SystemPrompt: assistantIdentity,
		StyleHints: []string{
			"Keep a formal register",
			"Put amounts, dates and invoice references first",
			"Use tables or lists for figures",
		},
		ContextRules: []string{
			"Do not speculate about amounts you were not given",
			"Flag anything that needs approval from the billing team",
		},
	}

	pm.templates["tech"] = &PromptTemplate{
		SystemPrompt: assistantIdentity,
		StyleHints: []string{
			"Be direct and precise",
			"Include endpoints, status codes and log excerpts when useful",
			"Prefer short code snippets over prose",
		},
		ContextRules: []string{
			"State assumptions about API versions explicitly",
			"Suggest the next diagnostic step when the cause is unclear",
		},
	}
}
