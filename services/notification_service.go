package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"dataset-review-api/config"
	"dataset-review-api/models"
)

// NotificationService tells a reviewer that a dataset they decided on has been
// resubmitted. Dispatch is best-effort: every failure is logged and swallowed,
// because the dataset transition it is attached to has already been committed.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func datasetURL(datasetID string) string {
	base := strings.TrimRight(os.Getenv("SITE_URL"), "/")
	if base == "" {
		base = "http://localhost:8080"
	}
	return fmt.Sprintf("%s/datasets/%s", base, datasetID)
}

// NotifyResubmission tells a reviewer that a dataset they rejected has been
// edited and is pending their review again.
func (s *NotificationService) NotifyResubmission(ctx context.Context, reviewerID int, dataset *models.Dataset) {
	title := fmt.Sprintf("Dataset resubmitted for review: %s", dataset.Title)
	body := fmt.Sprintf(
		"A dataset you previously reviewed has been modified and resubmitted for review.\n\n"+
			"Dataset: %s\nURL: %s\n\nThe dataset is now pending your review.",
		dataset.Title, datasetURL(dataset.DatasetID),
	)
	s.notify(ctx, reviewerID, dataset, title, body)
}

// NotifyDecision tells the prior reviewer that a dataset resubmitted after
// their rejection has received a new decision.
func (s *NotificationService) NotifyDecision(ctx context.Context, reviewerID int, dataset *models.Dataset) {
	title := fmt.Sprintf("Resubmitted dataset reviewed: %s", dataset.Title)
	body := fmt.Sprintf(
		"A dataset that was resubmitted after your rejection has received a new review decision.\n\n"+
			"Dataset: %s\nDecision: %s\nURL: %s",
		dataset.Title, dataset.ReviewStatus, datasetURL(dataset.DatasetID),
	)
	s.notify(ctx, reviewerID, dataset, title, body)
}

// notify records an in-app notification for the reviewer and, when the
// reviewer has an email address, sends them a message. The passed context is
// detached from request cancellation: the caller's request finishing must not
// cut the dispatch short, but the dispatch itself is bounded by a timeout.
func (s *NotificationService) notify(ctx context.Context, reviewerID int, dataset *models.Dataset, title, body string) {
	ctx, cancel := context.WithTimeout(persistentContext(ctx), notifyTimeout)
	defer cancel()

	var reviewer models.User
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND delete_at IS NULL", reviewerID).
		First(&reviewer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Notification skipped: reviewer %d no longer exists", reviewerID)
		} else {
			log.Printf("Could not load reviewer %d for notification: %v", reviewerID, err)
		}
		return
	}

	notification := models.ReviewNotification{
		ReviewerID:       reviewer.UserID,
		RelatedDatasetID: &dataset.DatasetID,
		Title:            title,
		Message:          body,
		CreateAt:         time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		log.Printf("Could not record notification for reviewer %d: %v", reviewer.UserID, err)
	}

	if reviewer.Email == "" {
		return
	}

	html := fmt.Sprintf(
		"<p>Hello %s,</p><p>%s</p>",
		reviewer.DisplayName, strings.ReplaceAll(body, "\n", "<br>"),
	)
	if err := config.SendMail([]string{reviewer.Email}, title, html); err != nil {
		log.Printf("Failed to send notification email to %s: %v", reviewer.Email, err)
		return
	}
	log.Printf("Sent notification to %s for dataset %s", reviewer.Email, dataset.DatasetID)
}

// ListForReviewer returns the in-app notifications addressed to a reviewer,
// newest first.
func (s *NotificationService) ListForReviewer(reviewerID int) ([]models.ReviewNotification, error) {
	var notifications []models.ReviewNotification
	err := s.db.
		Where("reviewer_id = ?", reviewerID).
		Order("create_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one of the reviewer's notifications as read.
func (s *NotificationService) MarkRead(reviewerID, notificationID int) error {
	now := time.Now()
	result := s.db.Model(&models.ReviewNotification{}).
		Where("notification_id = ? AND reviewer_id = ?", notificationID, reviewerID).
		Updates(map[string]interface{}{"is_read": true, "update_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Resource: "notification"}
	}
	return nil
}
