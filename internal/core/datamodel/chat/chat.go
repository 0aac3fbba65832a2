package chat

import "time"

type Message struct {
	ID         int64     `gorm:"primaryKey"`
	RequestID  string    `gorm:"column:request_id;index;not null"`
	Sender     string    `gorm:"column:sender;not null"`
	Department string    `gorm:"column:department;not null;default:''"`
	Body       string    `gorm:"column:message;not null"`
	FileName   string    `gorm:"column:file_name;not null;default:''"`
	SentAt     time.Time `gorm:"column:sent_at;not null"`
}

func (Message) TableName() string {
	return "chat_messages"
}
