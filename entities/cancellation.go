package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cancellation is one user's cancellation flow: the assigned downsell
// variant and the full wizard history as a JSON array.
type Cancellation struct {
	ID              string    `gorm:"primaryKey;type:text" json:"id"`
	UserID          string    `gorm:"uniqueIndex;not null" json:"user_id"`
	SubscriptionID  string    `gorm:"index" json:"subscription_id"`
	DownsellVariant string    `json:"downsell_variant"` // A|B, empty only on legacy rows
	StateJSONArray  string    `gorm:"column:state_json_array;type:text" json:"state_json_array"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (c *Cancellation) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
