// File: entities/user.go
package entities

import (
	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email"`
	Username  string    `gorm:"uniqueIndex;size:150" json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Password  string    `json:"-"`
	Role      string    `gorm:"size:15;default:user" json:"role"`

	Timestamp
}

// Subscription is a directed follow edge between two users. The pair is
// unique and a user can never follow themselves; the self-edge check
// constraint is installed at migration time.
type Subscription struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SubscriberID   uuid.UUID `gorm:"uniqueIndex:idx_subscriber_subscribed_to" json:"subscriber_id"`
	SubscribedToID uuid.UUID `gorm:"uniqueIndex:idx_subscriber_subscribed_to" json:"subscribed_to_id"`

	Subscriber   *User `gorm:"foreignKey:SubscriberID"`
	SubscribedTo *User `gorm:"foreignKey:SubscribedToID"`
	Timestamp
}
