package feedback

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Feedback is a free-text note sent in by a user from the app.
type Feedback struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	AccountID *uuid.UUID `db:"account_id" json:"account_id,omitempty"`
	Subject   string     `db:"subject" json:"subject" validate:"required,max=200"`
	Message   string     `db:"message" json:"message" validate:"required,max=5000"`
	Category  string     `db:"category" json:"category" validate:"oneof=general bug feature data"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type Filter struct {
	Category string
}

func normalize(f *Feedback) {
	f.Subject = strings.TrimSpace(f.Subject)
	f.Message = strings.TrimSpace(f.Message)
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	if f.Category == "" {
		f.Category = "general"
	}
}
