package models

import "time"

const RoleUser = "user"

type User struct {
	ID                int64
	Email             string
	Name              string
	PassHash          string
	VerificationToken *string
	IsVerified        bool
	Role              string
	Banned            bool
}

// Session is what a login token resolves to while it is alive.
type Session struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	ChatTypeSupport = "support"

	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatHistoryEntry struct {
	UserEmail string
	ChatType  string
	Message   string
	Role      string
}

// ChatMessage is one turn of a conversation as the storefront sends it.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

// VerificationMessage is the job the mail sender consumes from the queue.
type VerificationMessage struct {
	Email   string `json:"to"`
	Link    string `json:"link"`
	Purpose string `json:"purpose"`
}

const PurposeEmailVerification = "email_verification"

// AuthRequest is the body every auth action shares; each action reads the
// fields it needs.
type AuthRequest struct {
	Action   string `json:"action"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Token    string `json:"token"`
}
