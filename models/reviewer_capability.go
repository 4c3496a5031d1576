package models

import "time"

// ReviewerCapability is the per-user reviewer flag. Rows are created lazily with
// can_review = false and are only ever flipped by grant/revoke; deleting a row is the
// user store's concern, never this service's.
type ReviewerCapability struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	CanReview bool       `gorm:"column:can_review" json:"can_review"`
	GrantedBy *int       `gorm:"column:granted_by" json:"granted_by,omitempty"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for ReviewerCapability.
func (ReviewerCapability) TableName() string {
	return "reviewer_capabilities"
}
