package models

import "time"

// Visibility is the published/unpublished flag of a dataset.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// ReviewStatus tracks where a dataset sits in the moderation workflow.
// ReviewStatusNone only appears on rows written before the workflow existed.
type ReviewStatus string

const (
	ReviewStatusNone     ReviewStatus = "none"
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// IsDecision reports whether s is a terminal reviewer decision.
func (s ReviewStatus) IsDecision() bool {
	return s == ReviewStatusApproved || s == ReviewStatusRejected
}

type Dataset struct {
	DatasetID                 string       `gorm:"primaryKey;column:dataset_id" json:"dataset_id"`
	Title                     string       `gorm:"column:title" json:"title"`
	Notes                     *string      `gorm:"column:notes" json:"notes,omitempty"`
	OwnerID                   int          `gorm:"column:owner_id" json:"owner_id"`
	Visibility                Visibility   `gorm:"column:visibility" json:"visibility"`
	ReviewStatus              ReviewStatus `gorm:"column:review_status" json:"review_status"`
	LastReviewerID            *int         `gorm:"column:last_reviewer_id" json:"last_reviewer_id,omitempty"`
	ResubmittedAfterRejection bool         `gorm:"column:resubmitted_after_rejection" json:"resubmitted_after_rejection"`
	ReviewedAt                *time.Time   `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreateAt                  *time.Time   `gorm:"column:create_at" json:"create_at"`
	UpdateAt                  *time.Time   `gorm:"column:update_at" json:"update_at"`
	DeleteAt                  *time.Time   `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Owner        *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	LastReviewer *User `gorm:"foreignKey:LastReviewerID" json:"last_reviewer,omitempty"`
}

// TableName overrides
func (Dataset) TableName() string {
	return "datasets"
}
