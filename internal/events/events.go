// Package events publishes listing lifecycle events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"time"
)

const (
	MessCreated = "mess.created"
	MessUpdated = "mess.updated"
	MessDeleted = "mess.deleted"
)

// MessEvent is the JSON body published for every listing change
type MessEvent struct {
	Type    string    `json:"type"`
	MessID  int       `json:"mess_id"`
	OwnerID int       `json:"owner_id"`
	ActorID int       `json:"actor_id"`
	At      time.Time `json:"at"`
}

// Publisher sends an event under a routing key
type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
}

// NopPublisher drops every event; used when no broker is configured
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
