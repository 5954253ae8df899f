package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is stored as one document in MongoDB with participants and messages embedded.
type Chat struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Participants []ChatParticipant  `bson:"participants" json:"participants"`
	Messages     []Message          `bson:"messages" json:"messages,omitempty"`
	Open         bool               `bson:"open" json:"open"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

type ChatParticipant struct {
	User string `bson:"user" json:"user"`
	Read bool   `bson:"read" json:"read"`
}

type Message struct {
	Author string    `bson:"author" json:"author"`
	Text   string    `bson:"text" json:"text"`
	SentAt time.Time `bson:"sent_at" json:"sent_at"`
}

// Participant returns the entry for userID, or nil.
func (c *Chat) Participant(userID string) *ChatParticipant {
	for i := range c.Participants {
		if c.Participants[i].User == userID {
			return &c.Participants[i]
		}
	}
	return nil
}
