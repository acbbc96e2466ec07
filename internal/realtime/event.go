package realtime

import (
	"context"
	"strings"
)

// EventType discriminant of a push notification
type EventType string

// push notification types
const (
	EventMessage     EventType = "MESSAGE"
	EventImage       EventType = "IMAGE"
	EventSeen        EventType = "SEEN"
	EventGroupUpdate EventType = "GROUP_UPDATE"
	EventGroupPost   EventType = "GROUP_POST"
)

// group topics, the payload carries no type so the topic decides it
const (
	TopicGroupUpdates = "/topic/group-updates"
	TopicGroupPosts   = "/topic/group-posts"
)

// ChatDestination per-user chat destination
func ChatDestination(userID string) string {
	return "/user/" + userID + "/chat"
}

// EventForDestination event type implied by a group topic, "" for per-user destinations
func EventForDestination(destination string) EventType {
	switch destination {
	case TopicGroupUpdates:
		return EventGroupUpdate
	case TopicGroupPosts:
		return EventGroupPost
	default:
		return ""
	}
}

// Envelope one raw push payload and where it arrived
type Envelope struct {
	Destination string
	Body        []byte
}

// Sink accept envelopes from a transport
type Sink interface {
	Enqueue(ctx context.Context, env Envelope) error
}

// Transport deliver push payloads of destinations into sink until ctx is done
type Transport interface {
	Run(ctx context.Context, destinations []string, sink Sink) error
}

// TokenSource bearer token for transports that authenticate
type TokenSource interface {
	BearerToken() (string, error)
}

// Subject NATS subject for a destination, "/user/u1/chat" -> "user.u1.chat"
func Subject(destination string) string {
	return strings.ReplaceAll(strings.Trim(destination, "/"), "/", ".")
}
