package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
)

var (
	userSelectPattern       = regexp.MustCompile("SELECT .* FROM `users` WHERE delete_at IS NULL AND \\(user_id = \\? OR email = \\? OR display_name = \\?\\)")
	capabilitySelectPattern = regexp.MustCompile("SELECT .* FROM `reviewer_capabilities` WHERE user_id = \\?")
)

func userRow(id int64, email, name string, isAdmin bool, status string) [][]driver.Value {
	admin := int64(0)
	if isAdmin {
		admin = 1
	}
	return [][]driver.Value{{id, email, "", name, admin, status, nil, nil, nil}}
}

var userColumns = []string{
	"user_id", "email", "password", "display_name",
	"is_admin", "account_status", "create_at", "update_at", "delete_at",
}

var capabilityColumns = []string{"user_id", "can_review", "granted_by", "create_at", "update_at"}

func TestIsReviewerAnonymousIsFalse(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := NewReviewerService(db)
	if svc.IsReviewer("") {
		t.Fatal("anonymous ref must never be a reviewer")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("anonymous check must not touch the store: %v", err)
	}
}

func TestIsReviewerAdminWithoutCapabilityFlag(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userSelectPattern,
			columns: userColumns,
			rows:    userRow(7, "admin@example.com", "Admin", true, "active"),
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerService(db)
	if !svc.IsReviewer("admin@example.com") {
		t.Fatal("administrators are always reviewers")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("admin check must not consult the capability table: %v", err)
	}
}

func TestIsReviewerCapabilityFlag(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userSelectPattern,
			columns: userColumns,
			rows:    userRow(7, "rev@example.com", "Reviewer", false, "active"),
		},
		{
			kind:    kindQuery,
			pattern: capabilitySelectPattern,
			columns: capabilityColumns,
			rows:    [][]driver.Value{{int64(7), int64(1), nil, nil, nil}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerService(db)
	if !svc.IsReviewer("rev@example.com") {
		t.Fatal("active user with can_review flag must be a reviewer")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIsReviewerInactiveAccount(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userSelectPattern,
			columns: userColumns,
			rows:    userRow(7, "rev@example.com", "Reviewer", false, "suspended"),
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerService(db)
	if svc.IsReviewer("rev@example.com") {
		t.Fatal("inactive accounts must not review, whatever the flag says")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIsReviewerUnknownUser(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userSelectPattern,
			columns: userColumns,
			rows:    [][]driver.Value{},
		},
	}

	db, _, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerService(db)
	if svc.IsReviewer("nobody") {
		t.Fatal("unresolvable ref must not be a reviewer")
	}
}

func TestAuthorizeGrantNonAdmin(t *testing.T) {
	db, _, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := NewReviewerService(db)
	err := svc.AuthorizeGrant(Actor{UserID: 2, Email: "bob@example.com"})
	if err == nil || !IsNotAuthorized(err) {
		t.Fatalf("expected NotAuthorizedError, got %v", err)
	}
	if err.Error() != "Only administrators can grant reviewer permissions" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	err = svc.AuthorizeRevoke(Actor{UserID: 2, Email: "bob@example.com"})
	if err == nil || err.Error() != "Only administrators can revoke reviewer permissions" {
		t.Fatalf("unexpected revoke result: %v", err)
	}
}

func TestAuthorizeReviewDeniedMessage(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userSelectPattern,
			columns: userColumns,
			rows:    userRow(2, "bob@example.com", "Bob", false, "active"),
		},
		{
			kind:    kindQuery,
			pattern: capabilitySelectPattern,
			columns: capabilityColumns,
			rows:    [][]driver.Value{},
		},
	}

	db, _, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerService(db)
	err := svc.AuthorizeReview(Actor{UserID: 2, Email: "bob@example.com"})
	if err == nil || !IsNotAuthorized(err) {
		t.Fatalf("expected NotAuthorizedError, got %v", err)
	}
	if err.Error() != "User bob@example.com not authorized to review datasets" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestAuthorizeReviewAdminShortCircuits(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := NewReviewerService(db)
	if err := svc.AuthorizeReview(Actor{UserID: 1, Email: "admin@example.com", IsAdmin: true}); err != nil {
		t.Fatalf("admin must always be authorized: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("admin authorization must not touch the store: %v", err)
	}
}

func TestGrantEmptyTarget(t *testing.T) {
	db, _, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := NewReviewerService(db)
	_, err := svc.Grant(Actor{UserID: 1, IsAdmin: true}, "")
	if err == nil || !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestGrantUnknownUser(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userSelectPattern,
			columns: userColumns,
			rows:    [][]driver.Value{},
		},
	}

	db, _, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerService(db)
	_, err := svc.Grant(Actor{UserID: 1, IsAdmin: true}, "ghost")
	if err == nil || !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestGrantCreatesCapabilityRow(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userSelectPattern,
			columns: userColumns,
			rows:    userRow(7, "rev@example.com", "Reviewer", false, "active"),
		},
		{
			kind:    kindQuery,
			pattern: capabilitySelectPattern,
			columns: capabilityColumns,
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `reviewer_capabilities`"),
			result:  scriptedResult{rowsAffected: 1},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerService(db)
	capability, err := svc.Grant(Actor{UserID: 1, IsAdmin: true}, "rev@example.com")
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if !capability.CanReview {
		t.Fatal("granted capability must have can_review set")
	}
	if capability.GrantedBy == nil || *capability.GrantedBy != 1 {
		t.Fatalf("expected grantor recorded, got %v", capability.GrantedBy)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGrantIsIdempotent(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userSelectPattern,
			columns: userColumns,
			rows:    userRow(7, "rev@example.com", "Reviewer", false, "active"),
		},
		{
			kind:    kindQuery,
			pattern: capabilitySelectPattern,
			columns: capabilityColumns,
			rows:    [][]driver.Value{{int64(7), int64(1), int64(1), nil, nil}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `reviewer_capabilities` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerService(db)
	capability, err := svc.Grant(Actor{UserID: 1, IsAdmin: true}, "rev@example.com")
	if err != nil {
		t.Fatalf("re-granting an existing reviewer must succeed: %v", err)
	}
	if !capability.CanReview {
		t.Fatal("capability must remain set")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevokeWithoutCapabilityRowIsNoop(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userSelectPattern,
			columns: userColumns,
			rows:    userRow(7, "rev@example.com", "Reviewer", false, "active"),
		},
		{
			kind:    kindQuery,
			pattern: capabilitySelectPattern,
			columns: capabilityColumns,
			rows:    [][]driver.Value{},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerService(db)
	capability, err := svc.Revoke(Actor{UserID: 1, IsAdmin: true}, "rev@example.com")
	if err != nil {
		t.Fatalf("revoking a user without a capability row must be a no-op success: %v", err)
	}
	if capability.CanReview {
		t.Fatal("capability must be reported as off")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("no-op revoke must not write: %v", err)
	}
}

func TestRevokeClearsFlag(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userSelectPattern,
			columns: userColumns,
			rows:    userRow(7, "rev@example.com", "Reviewer", false, "active"),
		},
		{
			kind:    kindQuery,
			pattern: capabilitySelectPattern,
			columns: capabilityColumns,
			rows:    [][]driver.Value{{int64(7), int64(1), int64(1), nil, nil}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `reviewer_capabilities` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerService(db)
	capability, err := svc.Revoke(Actor{UserID: 1, IsAdmin: true}, "rev@example.com")
	if err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if capability.CanReview {
		t.Fatal("capability must be cleared")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
