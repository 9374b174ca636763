package role

// Role describes the audience a session is answering for. It shapes the
// tone of generated replies but never changes the relay contract.
type Role struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Tone        string `json:"tone"`
	PromptHint  string `json:"promptHint"`
}

// DefaultID is the role a session starts with when none is requested.
const DefaultID = "customer"

// Seed provides the built-in audience roles.
func Seed() []Role {
	return []Role{
		{
			ID:          "customer",
			Label:       "Customer",
			Description: "Business-friendly responses",
			Tone:        "warm, plain-spoken, outcome focused",
			PromptHint:  "Avoid jargon. Lead with what the customer can do next.",
		},
		{
			ID:          "finance",
			Label:       "Finance Team",
			Description: "Numbers-focused, formal tone",
			Tone:        "formal, precise, numbers first",
			PromptHint:  "Quote amounts, dates and invoice references where relevant. Keep a formal register.",
		},
		{
			ID:          "tech",
			Label:       "Tech Support",
			Description: "API/logs/technical details",
			Tone:        "direct, technical, detailed",
			PromptHint:  "Include endpoints, status codes, log lines or code snippets when they help.",
		},
	}
}

// Store exposes role lookup for handlers and sessions.
type Store interface {
	List() []Role
	FindByID(id string) (Role, bool)
}

// MemoryStore keeps the catalogue in memory, in order.
type MemoryStore struct {
	items []Role
}

// NewMemoryStore returns a MemoryStore preloaded with items.
func NewMemoryStore(items []Role) *MemoryStore {
	return &MemoryStore{items: append([]Role(nil), items...)}
}

func (s *MemoryStore) List() []Role {
	return append([]Role(nil), s.items...)
}

func (s *MemoryStore) FindByID(id string) (Role, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Role{}, false
}

// Resolve returns the role for id, falling back to the default role and
// then to the first built-in role. A nil store resolves against Seed.
func Resolve(store Store, id string) Role {
	if store == nil {
		store = NewMemoryStore(Seed())
	}
	if id != "" {
		if r, ok := store.FindByID(id); ok {
			return r
		}
	}
	if r, ok := store.FindByID(DefaultID); ok {
		return r
	}
	return Seed()[0]
}
