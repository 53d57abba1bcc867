package contact

import (
	"time"

	"github.com/uptrace/bun"
)

type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusReplied  Status = "replied"
	StatusArchived Status = "archived"
)

// UnknownUserAgent is stored when the client sends no User-Agent header.
const UnknownUserAgent = "Unknown"

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied, StatusArchived:
		return true
	}
	return false
}

// Submission is one stored contact form entry. IP address and user agent are
// kept for abuse review but never returned by the admin listing.
type Submission struct {
	bun.BaseModel `bun:"table:contacts,alias:c"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull" json:"email"`
	Message   string    `bun:"message,notnull" json:"message"`
	IPAddress *string   `bun:"ip_address" json:"-"`
	UserAgent string    `bun:"user_agent" json:"-"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	Status    Status    `bun:"status,notnull" json:"status"`
}

type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type ListResponse struct {
	Success  bool         `json:"success"`
	Contacts []Submission `json:"contacts"`
	Total    int          `json:"total"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=new read replied archived"`
}

// SubmittedEvent is published after a submission has been stored.
type SubmittedEvent struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
