package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"dataset-review-api/models"
)

// Actor identifies who is performing an operation. It is always passed
// explicitly; nothing in the services layer reads ambient request state.
type Actor struct {
	UserID  int
	Email   string
	IsAdmin bool
}

// ReviewerService resolves who may review datasets and manages the per-user
// reviewer capability flag. Administrators are always reviewers regardless of
// the flag.
type ReviewerService struct {
	db *gorm.DB
}

func NewReviewerService(db *gorm.DB) *ReviewerService {
	return &ReviewerService{db: db}
}

// resolveUser looks a user up by numeric id, email, or display name, skipping
// soft-deleted rows.
func (s *ReviewerService) resolveUser(ref string) (*models.User, error) {
	if ref == "" {
		return nil, &ValidationError{Field: "user", Message: "user reference is required"}
	}

	var user models.User
	err := s.db.
		Where("delete_at IS NULL").
		Where("user_id = ? OR email = ? OR display_name = ?", ref, ref, ref).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, err
	}
	return &user, nil
}

// IsReviewer reports whether ref resolves to a user allowed to issue review
// decisions. Anonymous or unresolvable refs are never reviewers; inactive
// accounts lose the capability even when the flag is set.
func (s *ReviewerService) IsReviewer(ref string) bool {
	if ref == "" {
		return false
	}

	user, err := s.resolveUser(ref)
	if err != nil {
		if !IsNotFound(err) && !IsValidation(err) {
			log.Printf("Could not resolve user %q for reviewer check: %v", ref, err)
		}
		return false
	}
	if !user.IsActive() {
		return false
	}
	if user.IsAdmin {
		return true
	}

	var capability models.ReviewerCapability
	if err := s.db.Where("user_id = ?", user.UserID).First(&capability).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Could not load reviewer capability for user %d: %v", user.UserID, err)
		}
		return false
	}
	return capability.CanReview
}

// AuthorizeGrant allows only administrators to grant reviewer permissions.
func (s *ReviewerService) AuthorizeGrant(actor Actor) error {
	if actor.IsAdmin {
		return nil
	}
	return &NotAuthorizedError{Message: "Only administrators can grant reviewer permissions"}
}

// AuthorizeRevoke allows only administrators to revoke reviewer permissions.
func (s *ReviewerService) AuthorizeRevoke(actor Actor) error {
	if actor.IsAdmin {
		return nil
	}
	return &NotAuthorizedError{Message: "Only administrators can revoke reviewer permissions"}
}

// AuthorizeReview allows administrators and users holding the reviewer
// capability to issue decisions.
func (s *ReviewerService) AuthorizeReview(actor Actor) error {
	if actor.IsAdmin {
		return nil
	}
	if s.IsReviewer(fmt.Sprintf("%d", actor.UserID)) {
		return nil
	}
	return &NotAuthorizedError{
		Message: fmt.Sprintf("User %s not authorized to review datasets", actor.Email),
	}
}

// Grant sets the reviewer flag for target, creating the capability row if the
// user has never held one. Granting an existing reviewer is a no-op success.
func (s *ReviewerService) Grant(actor Actor, target string) (*models.ReviewerCapability, error) {
	if err := s.AuthorizeGrant(actor); err != nil {
		return nil, err
	}

	user, err := s.resolveUser(target)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var capability models.ReviewerCapability
	err = s.db.Where("user_id = ?", user.UserID).First(&capability).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		capability = models.ReviewerCapability{
			UserID:    user.UserID,
			CanReview: true,
			GrantedBy: &actor.UserID,
			CreateAt:  &now,
			UpdateAt:  &now,
		}
		if err := s.db.Create(&capability).Error; err != nil {
			return nil, fmt.Errorf("failed to create reviewer capability: %w", err)
		}
	case err != nil:
		return nil, err
	default:
		capability.CanReview = true
		capability.GrantedBy = &actor.UserID
		capability.UpdateAt = &now
		if err := s.db.Save(&capability).Error; err != nil {
			return nil, fmt.Errorf("failed to update reviewer capability: %w", err)
		}
	}

	log.Printf("Granted reviewer permission to user %s (id %d)", user.DisplayName, user.UserID)
	return &capability, nil
}

// Revoke clears the reviewer flag for target. A user without a capability row
// has nothing to revoke; that is a success, not an error.
func (s *ReviewerService) Revoke(actor Actor, target string) (*models.ReviewerCapability, error) {
	if err := s.AuthorizeRevoke(actor); err != nil {
		return nil, err
	}

	user, err := s.resolveUser(target)
	if err != nil {
		return nil, err
	}

	var capability models.ReviewerCapability
	err = s.db.Where("user_id = ?", user.UserID).First(&capability).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.ReviewerCapability{UserID: user.UserID, CanReview: false}, nil
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	capability.CanReview = false
	capability.UpdateAt = &now
	if err := s.db.Save(&capability).Error; err != nil {
		return nil, fmt.Errorf("failed to update reviewer capability: %w", err)
	}

	log.Printf("Revoked reviewer permission from user %s (id %d)", user.DisplayName, user.UserID)
	return &capability, nil
}

// ListReviewers returns all active users that currently count as reviewers,
// either through the capability flag or through the implicit administrator rule.
func (s *ReviewerService) ListReviewers() ([]models.User, error) {
	var users []models.User
	err := s.db.
		Joins("LEFT JOIN reviewer_capabilities rc ON rc.user_id = users.user_id").
		Where("users.delete_at IS NULL AND users.account_status = ?", models.AccountStatusActive).
		Where("users.is_admin = ? OR rc.can_review = ?", true, true).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviewers: %w", err)
	}
	return users, nil
}
