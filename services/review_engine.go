package services

import (
	"dataset-review-api/models"
)

// ReviewState is the moderation tuple of a dataset as the engine sees it.
type ReviewState struct {
	Visibility                models.Visibility
	ReviewStatus              models.ReviewStatus
	LastReviewerID            *int
	ResubmittedAfterRejection bool
}

// ChangeSet carries the fields an update request wants to write. Nil means
// "leave untouched". Title and Notes are the substantive fields whose edit
// counts as a resubmission of a rejected dataset.
type ChangeSet struct {
	Title      *string
	Notes      *string
	Visibility *models.Visibility
}

// HasSubstantiveChange reports whether the request edits dataset content,
// as opposed to only toggling visibility.
func (c ChangeSet) HasSubstantiveChange() bool {
	return c.Title != nil || c.Notes != nil
}

// Transition is the partial next state the caller should persist. Nil fields
// stay as they are; the requested ChangeSet fields are persisted alongside,
// except where the transition overrides them.
type Transition struct {
	Visibility                *models.Visibility
	ReviewStatus              *models.ReviewStatus
	LastReviewerID            *int
	ResubmittedAfterRejection *bool
}

// Effect is a side-effect instruction returned by the engine for the caller to
// execute after persisting the transition. Executing effects may fail
// independently; failures never undo the transition.
type Effect interface {
	effect()
}

// RecordLastReviewer instructs the caller to carry the prior reviewer pointer
// through the persisted patch so a later decision can notify them.
type RecordLastReviewer struct {
	ReviewerID int
}

// Notify instructs the caller to alert a reviewer that the dataset under
// mutation needs their attention again. Dispatch is best-effort.
type Notify struct {
	ReviewerID int
}

func (RecordLastReviewer) effect() {}
func (Notify) effect()             {}

// ReviewEngine computes moderation transitions. It is pure: no I/O, no clock,
// no stored state. All persistence and notification happens in the caller,
// driven by the returned Transition and Effects.
type ReviewEngine struct{}

func NewReviewEngine() *ReviewEngine {
	return &ReviewEngine{}
}

// OnCreate decides the initial moderation state of a new dataset. Every
// dataset enters the workflow pending review; a request to create as public is
// forced private until a reviewer approves it.
func (e *ReviewEngine) OnCreate(requested models.Visibility) Transition {
	visibility := models.VisibilityPrivate
	status := models.ReviewStatusPending
	resubmitted := false
	return Transition{
		Visibility:                &visibility,
		ReviewStatus:              &status,
		ResubmittedAfterRejection: &resubmitted,
	}
}

// OnUpdate evaluates the two update triggers in order; the first match wins.
//
//  1. Visibility escalation: a private, not-yet-approved dataset asking to go
//     public is forced back to private and re-enters pending review. No
//     notification is sent for a bare escalation attempt.
//  2. Resubmission: substantive edits to a rejected dataset re-enter it into
//     pending review, flag it as resubmitted, and notify the prior reviewer.
//
// When neither trigger fires the request passes through untouched.
func (e *ReviewEngine) OnUpdate(current ReviewState, req ChangeSet) (Transition, []Effect) {
	if current.Visibility == models.VisibilityPrivate &&
		req.Visibility != nil && *req.Visibility == models.VisibilityPublic &&
		current.ReviewStatus != models.ReviewStatusApproved {
		visibility := models.VisibilityPrivate
		status := models.ReviewStatusPending
		t := Transition{
			Visibility:   &visibility,
			ReviewStatus: &status,
		}
		var effects []Effect
		if current.LastReviewerID != nil {
			effects = append(effects, RecordLastReviewer{ReviewerID: *current.LastReviewerID})
		}
		return t, effects
	}

	if current.ReviewStatus == models.ReviewStatusRejected && req.HasSubstantiveChange() {
		status := models.ReviewStatusPending
		resubmitted := true
		t := Transition{
			ReviewStatus:              &status,
			ResubmittedAfterRejection: &resubmitted,
		}
		var effects []Effect
		if current.LastReviewerID != nil {
			effects = append(effects,
				RecordLastReviewer{ReviewerID: *current.LastReviewerID},
				Notify{ReviewerID: *current.LastReviewerID},
			)
		}
		return t, effects
	}

	return Transition{}, nil
}

// OnReviewDecision applies a reviewer decision. Approval is the only path in
// the engine that makes a dataset public, which keeps the public-implies-
// approved invariant structural. Rejection leaves a private dataset's
// visibility untouched and unpublishes a public one: a rejected dataset can
// never stay public. Either decision clears the resubmitted flag and records
// the deciding reviewer.
func (e *ReviewEngine) OnReviewDecision(current ReviewState, decision models.ReviewStatus, reviewerID int) (Transition, []Effect, error) {
	if !decision.IsDecision() {
		return Transition{}, nil, &ValidationError{
			Field:   "review_status",
			Message: "invalid review_status: must be approved or rejected",
		}
	}

	resubmitted := false
	t := Transition{
		ReviewStatus:              &decision,
		LastReviewerID:            &reviewerID,
		ResubmittedAfterRejection: &resubmitted,
	}
	if decision == models.ReviewStatusApproved {
		visibility := models.VisibilityPublic
		t.Visibility = &visibility
	} else if current.Visibility == models.VisibilityPublic {
		visibility := models.VisibilityPrivate
		t.Visibility = &visibility
	}

	var effects []Effect
	if current.ResubmittedAfterRejection && current.LastReviewerID != nil {
		effects = append(effects, Notify{ReviewerID: *current.LastReviewerID})
	}
	return t, effects, nil
}
