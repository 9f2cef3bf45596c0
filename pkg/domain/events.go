package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRequestStart EventType = "request_start"
	EventRequestEnd   EventType = "request_end"
	EventRequestError EventType = "request_error"
)

// RequestEvent describes one outgoing request as seen by observers.
type RequestEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	InFlight  int       `json:"in_flight"`
	Commands  int       `json:"commands"`
	Err       error     `json:"-"`
}

// LifecycleHooks defines callbacks for loading UIs and other observers.
type LifecycleHooks struct {
	OnRequestStart func(context.Context, *RequestEvent)
	OnRequestEnd   func(context.Context, *RequestEvent)
	OnRequestError func(context.Context, *RequestEvent)
}
