package dto

import "github.com/google/uuid"

// Event describes one notification to deliver. It is also the payload of the retry queue.
type Event struct {
	Action        string    `json:"action"`
	ActorID       uuid.UUID `json:"actor_id"`
	Medium        string    `json:"medium"`
	MediumRef     uuid.UUID `json:"medium_ref"`
	MediumOwnerID uuid.UUID `json:"medium_owner_id"`
	NotifyID      uuid.UUID `json:"notify_id"`
	Attempt       int       `json:"attempt"`
}

type StatusResponse struct {
	SeenNotifications bool  `json:"seen_notifications"`
	Count             int64 `json:"count"`
}
