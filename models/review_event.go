package models

import "time"

// ReviewEvent is an append-only audit record of a reviewer decision. The workflow
// itself only reads the dataset's last_reviewer_id pointer; events exist for
// reporting and are never consulted when computing transitions.
type ReviewEvent struct {
	EventID    int          `gorm:"primaryKey;column:event_id" json:"event_id"`
	DatasetID  string       `gorm:"column:dataset_id" json:"dataset_id"`
	ReviewerID int          `gorm:"column:reviewer_id" json:"reviewer_id"`
	Decision   ReviewStatus `gorm:"column:decision" json:"decision"`
	DecidedAt  time.Time    `gorm:"column:decided_at" json:"decided_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// TableName specifies the table name for ReviewEvent.
func (ReviewEvent) TableName() string {
	return "review_events"
}
