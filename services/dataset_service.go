package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dataset-review-api/models"
)

// CreateDatasetInput carries the caller-supplied fields of a new dataset.
type CreateDatasetInput struct {
	Title      string
	Notes      *string
	Visibility models.Visibility
}

// DatasetService orchestrates the moderation workflow: it fetches the current
// dataset state, lets the pure ReviewEngine decide the transition, persists
// the resulting patch, and then executes any side-effect instructions.
//
// Concurrent mutations of the same dataset are not serialized here; the flow
// is read-then-write and the last persisted patch wins. Callers that need
// per-dataset ordering must provide it at the storage layer.
type DatasetService struct {
	db            *gorm.DB
	engine        *ReviewEngine
	reviewers     *ReviewerService
	notifications *NotificationService
}

func NewDatasetService(db *gorm.DB) *DatasetService {
	return &DatasetService{
		db:            db,
		engine:        NewReviewEngine(),
		reviewers:     NewReviewerService(db),
		notifications: NewNotificationService(db),
	}
}

func reviewStateOf(d *models.Dataset) ReviewState {
	return ReviewState{
		Visibility:                d.Visibility,
		ReviewStatus:              d.ReviewStatus,
		LastReviewerID:            d.LastReviewerID,
		ResubmittedAfterRejection: d.ResubmittedAfterRejection,
	}
}

// applyTransition folds the engine's partial next state into a column patch.
// Transition fields override whatever the raw request asked for.
func applyTransition(patch map[string]interface{}, t Transition) {
	if t.Visibility != nil {
		patch["visibility"] = *t.Visibility
	}
	if t.ReviewStatus != nil {
		patch["review_status"] = *t.ReviewStatus
	}
	if t.LastReviewerID != nil {
		patch["last_reviewer_id"] = *t.LastReviewerID
	}
	if t.ResubmittedAfterRejection != nil {
		patch["resubmitted_after_rejection"] = *t.ResubmittedAfterRejection
	}
}

// Create inserts a new dataset. The engine forces every new dataset private
// and pending review, whatever visibility was requested.
func (s *DatasetService) Create(actor Actor, input CreateDatasetInput) (*models.Dataset, error) {
	if input.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}

	t := s.engine.OnCreate(input.Visibility)

	now := time.Now()
	dataset := models.Dataset{
		DatasetID:                 uuid.NewString(),
		Title:                     input.Title,
		Notes:                     input.Notes,
		OwnerID:                   actor.UserID,
		Visibility:                *t.Visibility,
		ReviewStatus:              *t.ReviewStatus,
		ResubmittedAfterRejection: *t.ResubmittedAfterRejection,
		CreateAt:                  &now,
		UpdateAt:                  &now,
	}
	if err := s.db.Create(&dataset).Error; err != nil {
		return nil, fmt.Errorf("failed to create dataset: %w", err)
	}

	log.Printf("Created dataset %s - visibility: %s, review_status: %s",
		dataset.DatasetID, dataset.Visibility, dataset.ReviewStatus)
	return &dataset, nil
}

// Get returns a dataset the actor is allowed to see: public datasets, the
// actor's own, or any dataset when the actor is a reviewer.
func (s *DatasetService) Get(actor Actor, id string) (*models.Dataset, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Message: "dataset id is required"}
	}

	var dataset models.Dataset
	err := s.db.Preload("LastReviewer").
		Where("dataset_id = ? AND delete_at IS NULL", id).
		First(&dataset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "dataset"}
		}
		return nil, err
	}

	if dataset.Visibility != models.VisibilityPublic && dataset.OwnerID != actor.UserID {
		if err := s.reviewers.AuthorizeReview(actor); err != nil {
			return nil, err
		}
	}
	return &dataset, nil
}

// ListForReview returns datasets for the review queue, optionally filtered by
// review status, newest modifications first. Reviewer-only.
func (s *DatasetService) ListForReview(actor Actor, status models.ReviewStatus) ([]models.Dataset, error) {
	if err := s.reviewers.AuthorizeReview(actor); err != nil {
		return nil, err
	}

	query := s.db.Preload("LastReviewer").
		Where("delete_at IS NULL").
		Order("update_at DESC")
	if status != "" {
		query = query.Where("review_status = ?", status)
	}

	var datasets []models.Dataset
	if err := query.Find(&datasets).Error; err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return datasets, nil
}

// Update applies caller changes through the engine's update triggers: an
// unapproved dataset asking to go public is forced back to private and
// pending, and substantive edits to a rejected dataset count as a
// resubmission that notifies the prior reviewer.
//
// If the current state cannot be read (other than the row being gone), the
// error is logged and the update proceeds with the raw requested fields only:
// a transient store problem must not turn an edit into a failure.
func (s *DatasetService) Update(ctx context.Context, actor Actor, id string, changes ChangeSet) (*models.Dataset, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Message: "dataset id is required"}
	}

	var (
		transition Transition
		effects    []Effect
	)
	var current models.Dataset
	err := s.db.Where("dataset_id = ? AND delete_at IS NULL", id).First(&current).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, &NotFoundError{Resource: "dataset"}
	case err != nil:
		log.Printf("Could not check current state of dataset %s: %v", id, err)
	default:
		if current.OwnerID != actor.UserID && !actor.IsAdmin {
			return nil, &NotAuthorizedError{
				Message: fmt.Sprintf("User %s not authorized to edit dataset %s", actor.Email, id),
			}
		}
		transition, effects = s.engine.OnUpdate(reviewStateOf(&current), changes)
	}

	patch := map[string]interface{}{"update_at": time.Now()}
	if changes.Title != nil {
		patch["title"] = *changes.Title
	}
	if changes.Notes != nil {
		patch["notes"] = *changes.Notes
	}
	if changes.Visibility != nil {
		patch["visibility"] = *changes.Visibility
	}
	applyTransition(patch, transition)
	for _, effect := range effects {
		if record, ok := effect.(RecordLastReviewer); ok {
			patch["last_reviewer_id"] = record.ReviewerID
		}
	}

	update := s.db.Model(&models.Dataset{}).
		Where("dataset_id = ? AND delete_at IS NULL", id)
	if !actor.IsAdmin {
		// Ownership is enforced in the write itself, so a failed state read
		// above cannot skip it.
		update = update.Where("owner_id = ?", actor.UserID)
	}
	result := update.Updates(patch)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update dataset: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &NotFoundError{Resource: "dataset"}
	}

	var updated models.Dataset
	if err := s.db.Where("dataset_id = ?", id).First(&updated).Error; err != nil {
		return nil, fmt.Errorf("failed to reload dataset: %w", err)
	}

	for _, effect := range effects {
		if notify, ok := effect.(Notify); ok {
			s.notifications.NotifyResubmission(ctx, notify.ReviewerID, &updated)
		}
	}

	log.Printf("Updated dataset %s - visibility: %s, review_status: %s",
		updated.DatasetID, updated.Visibility, updated.ReviewStatus)
	return &updated, nil
}

// Review records a reviewer decision. Approval makes the dataset public;
// rejection leaves it private. Either way the deciding reviewer is recorded,
// the resubmitted flag is cleared, and an audit event is appended. If the
// dataset was resubmitted after a rejection, the prior reviewer is notified
// best-effort once the decision is persisted.
func (s *DatasetService) Review(ctx context.Context, actor Actor, id string, decision models.ReviewStatus) (*models.Dataset, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Message: "dataset id is required"}
	}
	if err := s.reviewers.AuthorizeReview(actor); err != nil {
		return nil, err
	}

	var current models.Dataset
	err := s.db.Where("dataset_id = ? AND delete_at IS NULL", id).First(&current).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "dataset"}
		}
		return nil, err
	}

	transition, effects, err := s.engine.OnReviewDecision(reviewStateOf(&current), decision, actor.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	patch := map[string]interface{}{
		"reviewed_at": now,
		"update_at":   now,
	}
	applyTransition(patch, transition)

	if err := s.db.Model(&models.Dataset{}).
		Where("dataset_id = ?", id).
		Updates(patch).Error; err != nil {
		return nil, fmt.Errorf("failed to record review decision: %w", err)
	}

	event := models.ReviewEvent{
		DatasetID:  id,
		ReviewerID: actor.UserID,
		Decision:   decision,
		DecidedAt:  now,
	}
	if err := s.db.Create(&event).Error; err != nil {
		log.Printf("Could not append review event for dataset %s: %v", id, err)
	}

	var updated models.Dataset
	if err := s.db.Where("dataset_id = ?", id).First(&updated).Error; err != nil {
		return nil, fmt.Errorf("failed to reload dataset: %w", err)
	}

	for _, effect := range effects {
		if notify, ok := effect.(Notify); ok {
			s.notifications.NotifyDecision(ctx, notify.ReviewerID, &updated)
		}
	}

	log.Printf("Dataset %s review status changed to %s by reviewer %d", id, decision, actor.UserID)
	return &updated, nil
}
