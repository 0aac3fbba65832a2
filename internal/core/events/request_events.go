package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRequestCreated       = "request.created"
	EventTypeRequestStatusChanged = "request.status_changed"
	EventTypeRequestDelegated     = "request.delegated"
	EventTypeChatMessagePosted    = "chat.message_posted"
	EventTypeUserChanged          = "user.changed"
)

// MutationEvents lists every event type emitted after a write to the store.
var MutationEvents = []string{
	EventTypeRequestCreated,
	EventTypeRequestStatusChanged,
	EventTypeRequestDelegated,
	EventTypeChatMessagePosted,
	EventTypeUserChanged,
}

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type RequestCreatedEvent struct {
	BaseEvent
	RequestID        string `json:"request_id"`
	SenderDepartment string `json:"sender_department"`
	TargetDepartment string `json:"target_department"`
}

func NewRequestCreatedEvent(requestID, senderDept, targetDept string) *RequestCreatedEvent {
	return &RequestCreatedEvent{
		BaseEvent: newBase(EventTypeRequestCreated, map[string]interface{}{
			"request_id":        requestID,
			"sender_department": senderDept,
			"target_department": targetDept,
		}),
		RequestID:        requestID,
		SenderDepartment: senderDept,
		TargetDepartment: targetDept,
	}
}

type RequestStatusChangedEvent struct {
	BaseEvent
	RequestID string `json:"request_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Actor     string `json:"actor"`
}

func NewRequestStatusChangedEvent(requestID, from, to, actor string) *RequestStatusChangedEvent {
	return &RequestStatusChangedEvent{
		BaseEvent: newBase(EventTypeRequestStatusChanged, map[string]interface{}{
			"request_id": requestID,
			"from":       from,
			"to":         to,
			"actor":      actor,
		}),
		RequestID: requestID,
		From:      from,
		To:        to,
		Actor:     actor,
	}
}

type RequestDelegatedEvent struct {
	BaseEvent
	RequestID   string `json:"request_id"`
	Delegate    string `json:"delegate"`
	DelegatedBy string `json:"delegated_by"`
}

func NewRequestDelegatedEvent(requestID, delegate, delegatedBy string) *RequestDelegatedEvent {
	return &RequestDelegatedEvent{
		BaseEvent: newBase(EventTypeRequestDelegated, map[string]interface{}{
			"request_id":   requestID,
			"delegate":     delegate,
			"delegated_by": delegatedBy,
		}),
		RequestID:   requestID,
		Delegate:    delegate,
		DelegatedBy: delegatedBy,
	}
}

type ChatMessagePostedEvent struct {
	BaseEvent
	RequestID string `json:"request_id"`
	Sender    string `json:"sender"`
}

func NewChatMessagePostedEvent(requestID, sender string) *ChatMessagePostedEvent {
	return &ChatMessagePostedEvent{
		BaseEvent: newBase(EventTypeChatMessagePosted, map[string]interface{}{
			"request_id": requestID,
			"sender":     sender,
		}),
		RequestID: requestID,
		Sender:    sender,
	}
}

type UserChangedEvent struct {
	BaseEvent
	Email  string `json:"email"`
	Action string `json:"action"`
}

func NewUserChangedEvent(email, action string) *UserChangedEvent {
	return &UserChangedEvent{
		BaseEvent: newBase(EventTypeUserChanged, map[string]interface{}{
			"email":  email,
			"action": action,
		}),
		Email:  email,
		Action: action,
	}
}
