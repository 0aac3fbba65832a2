package request

import "time"

type Request struct {
	ID               int64      `gorm:"primaryKey"`
	RequestID        string     `gorm:"column:request_id;uniqueIndex;not null"`
	Title            string     `gorm:"column:title;not null"`
	Description      string     `gorm:"column:description;not null"`
	SenderDepartment string     `gorm:"column:sender_department;not null"`
	SenderName       string     `gorm:"column:sender_name;not null;default:''"`
	TargetDepartment string     `gorm:"column:target_department;not null"`
	Status           string     `gorm:"column:status;not null;default:new"`
	Assignee         string     `gorm:"column:assignee;not null;default:''"`
	LastUpdatedBy    string     `gorm:"column:last_updated_by;not null;default:''"`
	StartedBy        string     `gorm:"column:started_by;not null;default:''"`
	ClosedBy         string     `gorm:"column:closed_by;not null;default:''"`
	Duration         string     `gorm:"column:duration;not null;default:''"`
	FileName         string     `gorm:"column:file_name;not null;default:''"`
	StartedAt        *time.Time `gorm:"column:started_at"`
	PausedAt         *time.Time `gorm:"column:paused_at"`
	ClosedAt         *time.Time `gorm:"column:closed_at"`
	Version          int64      `gorm:"column:version;not null;default:1"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Request) TableName() string {
	return "requests"
}

// Sequence holds the last request number issued for a year.
type Sequence struct {
	Year      int       `gorm:"column:year;primaryKey;autoIncrement:false"`
	LastValue int       `gorm:"column:last_value;not null"`
	Version   int64     `gorm:"column:version;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Sequence) TableName() string {
	return "request_sequences"
}
