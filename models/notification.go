package models

import "time"

type ReviewNotification struct {
	NotificationID   int        `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	ReviewerID       int        `gorm:"column:reviewer_id" json:"reviewer_id"`
	RelatedDatasetID *string    `gorm:"column:related_dataset_id" json:"related_dataset_id,omitempty"`
	Title            string     `gorm:"column:title" json:"title"`
	Message          string     `gorm:"column:message" json:"message"`
	IsRead           bool       `gorm:"column:is_read" json:"is_read"`
	CreateAt         time.Time  `gorm:"column:create_at" json:"created_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"-"`
}

func (ReviewNotification) TableName() string { return "review_notifications" }
