package chat

import "time"

// ConnectionState is the health of the link between a session and the
// relay, as last observed by the health monitor or a send.
type ConnectionState string

const (
	ConnectionConnecting   ConnectionState = "connecting"
	ConnectionConnected    ConnectionState = "connected"
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionError        ConnectionState = "error"
)

// Snapshot is a point-in-time copy of a conversation session.
type Snapshot struct {
	ID               string          `json:"id"`
	Role             string          `json:"role"`
	Connection       ConnectionState `json:"connection"`
	Pending          bool            `json:"pending"`
	SelectedCategory Category        `json:"selectedCategory"`
	CreatedAt        time.Time       `json:"createdAt"`
	Messages         []Message       `json:"messages"`
}

const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
)

// HealthReport is the liveness probe payload.
type HealthReport struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Healthy reports whether the probe answered with a healthy status.
func (r HealthReport) Healthy() bool {
	return r.Status == HealthHealthy
}
