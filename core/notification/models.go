package notification

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Notification is an in-app message between two accounts. Sender and
// recipient are fixed at creation.
type Notification struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	ReadAt      time.Time `json:"read_at"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// Involves reports whether the given account is the sender or the recipient.
func (n Notification) Involves(userID string) bool {
	return n.SenderID == userID || n.RecipientID == userID
}

// NewNotification contains information needed to send a new Notification.
type NewNotification struct {
	RecipientID string `json:"recipient_id" validate:"required,uuid4"`
	Subject     string `json:"subject" validate:"required"`
	Body        string `json:"body" validate:"required"`
}

func (nn *NewNotification) Validate(ctx context.Context, validate *validator.Validate) error {
	nn.Subject = core.CleanString(nn.Subject)
	nn.Body = core.CleanString(nn.Body)
	return validate.StructCtx(ctx, nn)
}
