package chat

import (
	"time"

	chatDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/chat"
)

const timeLayout = "2006-01-02 15:04:05"

type Message struct {
	ID         int64
	RequestID  string
	Sender     string
	Department string
	Body       string
	FileName   string
	SentAt     time.Time
}

// MessageResponse is the wire form of a chat message.
type MessageResponse struct {
	RequestID  string `json:"request_id"`
	Sender     string `json:"sender"`
	Department string `json:"department"`
	Message    string `json:"message"`
	File       string `json:"file"`
	SentAt     string `json:"sent_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		RequestID:  m.RequestID,
		Sender:     m.Sender,
		Department: m.Department,
		Message:    m.Body,
		File:       m.FileName,
		SentAt:     m.SentAt.Format(timeLayout),
	}
}

func ToDataModel(m *Message) *chatDatamodel.Message {
	return &chatDatamodel.Message{
		ID:         m.ID,
		RequestID:  m.RequestID,
		Sender:     m.Sender,
		Department: m.Department,
		Body:       m.Body,
		FileName:   m.FileName,
		SentAt:     m.SentAt,
	}
}

func FromDataModel(m *chatDatamodel.Message) *Message {
	return &Message{
		ID:         m.ID,
		RequestID:  m.RequestID,
		Sender:     m.Sender,
		Department: m.Department,
		Body:       m.Body,
		FileName:   m.FileName,
		SentAt:     m.SentAt,
	}
}
