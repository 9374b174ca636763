package chat

import "time"

// Origin identifies who authored a message.
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// DeliveryStatus tracks the lifecycle of an outbound user message.
type DeliveryStatus string

const (
	StatusSending   DeliveryStatus = "sending"
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
	StatusError     DeliveryStatus = "error"
)

var statusRank = map[DeliveryStatus]int{
	StatusSending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// CanAdvanceTo reports whether moving from s to next keeps the lifecycle
// monotonic. Error is reachable from every other state and is terminal.
func (s DeliveryStatus) CanAdvanceTo(next DeliveryStatus) bool {
	if s == StatusError {
		return false
	}
	if next == StatusError {
		return true
	}
	cur, ok := statusRank[s]
	if !ok {
		return false
	}
	nxt, ok := statusRank[next]
	if !ok {
		return false
	}
	return nxt > cur
}

// Category is the coarse topic attached to assistant messages.
type Category string

const (
	CategoryAPI        Category = "api"
	CategoryBilling    Category = "billing"
	CategoryOnboarding Category = "onboarding"
	CategoryGeneral    Category = "general"
	CategoryError      Category = "error"
)

// Message is a single turn in a conversation. Text and CreatedAt never
// change after creation; only Status is mutated in place.
type Message struct {
	ID        string         `json:"id"`
	Origin    Origin         `json:"origin"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"createdAt"`
	Status    DeliveryStatus `json:"deliveryStatus,omitempty"`
	Category  Category       `json:"category,omitempty"`
}

// Reply is the documented success shape of the upstream AI service.
type Reply struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}
