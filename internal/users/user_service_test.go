package users

import (
	"context"
	"errors"
	"testing"

	"github.com/ricardomaia/fundeira/internal/notify"
	"github.com/ricardomaia/fundeira/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingDispatcher struct {
	dispatched []string
	err        error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, userID uint, template string) error {
	d.dispatched = append(d.dispatched, template)
	return d.err
}

func newTestService(t *testing.T) (*UserService, *gorm.DB, *recordingDispatcher) {
	t.Helper()
	db := newTestDB(t)
	dispatcher := &recordingDispatcher{}
	service := NewUserService(NewUserRepository(db), NewContributionRepository(db), dispatcher)
	return service, db, dispatcher
}

func TestRegister(t *testing.T) {
	service, _, _ := newTestService(t)

	user, err := service.Register(context.Background(), RegisterOptions{
		Email:    "New.User@Example.COM",
		Name:     "New User",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "new.user@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.ID == 0 {
		t.Fatalf("expected generated id")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter22")); err != nil {
		t.Fatalf("expected stored password hash to verify: %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service, _, _ := newTestService(t)

	opts := RegisterOptions{Email: "dupe@example.com", Password: "hunter22"}
	if _, err := service.Register(context.Background(), opts); err != nil {
		t.Fatalf("first register: %v", err)
	}
	opts.Email = "DUPE@example.com"
	if _, err := service.Register(context.Background(), opts); !errors.Is(err, ErrEmailRegistered) {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), RegisterOptions{
		Email:    "not-an-email",
		Password: "short",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected email and password violations, got %v", verr.Fields)
	}
}

func TestUpdateProfile(t *testing.T) {
	service, db, _ := newTestService(t)

	user := model.User{Email: "edit@example.com", Password: "x"}
	mustCreate(t, db, &user)

	name := "Edited"
	twitter := "@edited"
	staffs := []int{model.StaffTeam, model.StaffAdviceBoard}
	err := service.UpdateProfile(context.Background(), user.ID, ProfileUpdate{
		Name:    &name,
		Twitter: &twitter,
		Staffs:  &staffs,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}

	updated, err := service.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if updated.Name != "Edited" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if updated.Twitter != "edited" {
		t.Fatalf("expected @ stripped from twitter handle, got %q", updated.Twitter)
	}
	if len(updated.Staffs) != 2 {
		t.Fatalf("expected 2 staff roles, got %v", updated.Staffs)
	}
}

func TestUpdateProfileRejectsUnknownStaffRole(t *testing.T) {
	service, db, _ := newTestService(t)

	user := model.User{Email: "roles@example.com", Password: "x"}
	mustCreate(t, db, &user)

	staffs := []int{99}
	err := service.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Staffs: &staffs})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	service, _, _ := newTestService(t)

	name := "Ghost"
	err := service.UpdateProfile(context.Background(), 424242, ProfileUpdate{Name: &name})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeactivate(t *testing.T) {
	service, db, dispatcher := newTestService(t)

	user := model.User{Email: "leaving@example.com", Password: "x"}
	mustCreate(t, db, &user)
	mustCreate(t, db, &model.Contribution{UserID: user.ID, ProjectID: 1, State: model.ContributionConfirmed})
	mustCreate(t, db, &model.Contribution{UserID: user.ID, ProjectID: 2, State: model.ContributionPending})

	if err := service.Deactivate(context.Background(), user.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	var reloaded model.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.DeactivatedAt == nil {
		t.Fatalf("expected deactivated_at to be stamped")
	}
	if reloaded.ReactivateToken == "" {
		t.Fatalf("expected a reactivation token to be issued")
	}

	var anonymous int64
	if err := db.Model(&model.Contribution{}).
		Where("user_id = ? AND anonymous = ?", user.ID, true).
		Count(&anonymous).Error; err != nil {
		t.Fatalf("count contributions: %v", err)
	}
	if anonymous != 2 {
		t.Fatalf("expected every contribution anonymized, got %d", anonymous)
	}

	if len(dispatcher.dispatched) != 1 || dispatcher.dispatched[0] != notify.TemplateUserDeactivate {
		t.Fatalf("expected a deactivation notification, got %v", dispatcher.dispatched)
	}

	// the account is now invisible to active lookups
	if _, err := service.FindActive(context.Background(), user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected deactivated account to be hidden, got %v", err)
	}
}

func TestDeactivateTwice(t *testing.T) {
	service, db, _ := newTestService(t)

	user := model.User{Email: "twice@example.com", Password: "x"}
	mustCreate(t, db, &user)

	if err := service.Deactivate(context.Background(), user.ID); err != nil {
		t.Fatalf("first deactivate: %v", err)
	}
	if err := service.Deactivate(context.Background(), user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected second deactivate to report not found, got %v", err)
	}
}

func TestDeactivateSurvivesNotificationFailure(t *testing.T) {
	service, db, dispatcher := newTestService(t)
	dispatcher.err = errors.New("smtp down")

	user := model.User{Email: "offline@example.com", Password: "x"}
	mustCreate(t, db, &user)

	if err := service.Deactivate(context.Background(), user.ID); err != nil {
		t.Fatalf("expected deactivation to succeed despite mail failure, got %v", err)
	}
}

func TestReactivateRoundTrip(t *testing.T) {
	service, db, _ := newTestService(t)

	user := model.User{Email: "back@example.com", Password: "x"}
	mustCreate(t, db, &user)
	if err := service.Deactivate(context.Background(), user.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	var deactivated model.User
	if err := db.First(&deactivated, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}

	restored, err := service.Reactivate(context.Background(), deactivated.ReactivateToken)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if restored.ID != user.ID {
		t.Fatalf("expected the same account back, got %d", restored.ID)
	}
	if restored.DeactivatedAt != nil || restored.ReactivateToken != "" {
		t.Fatalf("expected deactivation state cleared, got %+v", restored)
	}

	if _, err := service.FindActive(context.Background(), user.ID); err != nil {
		t.Fatalf("expected reactivated account to be active again: %v", err)
	}

	// the token is single use
	if _, err := service.Reactivate(context.Background(), deactivated.ReactivateToken); !errors.Is(err, ErrInvalidReactivateToken) {
		t.Fatalf("expected spent token to be rejected, got %v", err)
	}
}

func TestReactivateInvalidToken(t *testing.T) {
	service, db, _ := newTestService(t)

	user := model.User{Email: "stay@example.com", Password: "x"}
	mustCreate(t, db, &user)
	if err := service.Deactivate(context.Background(), user.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := service.Reactivate(context.Background(), "wrong-token"); !errors.Is(err, ErrInvalidReactivateToken) {
		t.Fatalf("expected ErrInvalidReactivateToken, got %v", err)
	}
	if _, err := service.Reactivate(context.Background(), ""); !errors.Is(err, ErrInvalidReactivateToken) {
		t.Fatalf("expected empty token to be rejected, got %v", err)
	}

	// the account state is untouched
	var reloaded model.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.DeactivatedAt == nil || reloaded.ReactivateToken == "" {
		t.Fatalf("expected account to remain deactivated, got %+v", reloaded)
	}
}

func TestMadeContributionToProject(t *testing.T) {
	service, db, _ := newTestService(t)

	user := model.User{Email: "pledge@example.com", Password: "x"}
	mustCreate(t, db, &user)
	mustCreate(t, db, &model.Contribution{UserID: user.ID, ProjectID: 1, State: model.ContributionRequestedRefund})
	mustCreate(t, db, &model.Contribution{UserID: user.ID, ProjectID: 2, State: model.ContributionCanceled})

	made, err := service.MadeContributionToProject(context.Background(), user.ID, 1)
	if err != nil {
		t.Fatalf("check project 1: %v", err)
	}
	if !made {
		t.Fatalf("expected requested_refund pledge to count")
	}

	made, err = service.MadeContributionToProject(context.Background(), user.ID, 2)
	if err != nil {
		t.Fatalf("check project 2: %v", err)
	}
	if made {
		t.Fatalf("expected canceled pledge to not count")
	}
}

func TestHasNoConfirmedContributionToProject(t *testing.T) {
	service, db, _ := newTestService(t)

	user := model.User{Email: "again@example.com", Password: "x"}
	mustCreate(t, db, &user)
	mustCreate(t, db, &model.Contribution{UserID: user.ID, ProjectID: 5, State: model.ContributionWaitingConfirmation})

	free, err := service.HasNoConfirmedContributionToProject(context.Background(), user.ID, 5)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if free {
		t.Fatalf("expected pending confirmation to block a second pledge")
	}

	free, err = service.HasNoConfirmedContributionToProject(context.Background(), user.ID, 6)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !free {
		t.Fatalf("expected an unpledged project to be open")
	}
}

func TestSendCreditsNotification(t *testing.T) {
	service, db, dispatcher := newTestService(t)

	user := model.User{Email: "credits@example.com", Password: "x"}
	mustCreate(t, db, &user)

	if err := service.SendCreditsNotification(context.Background(), user.ID); err != nil {
		t.Fatalf("send credits notification: %v", err)
	}
	if len(dispatcher.dispatched) != 1 || dispatcher.dispatched[0] != notify.TemplateCreditsWarning {
		t.Fatalf("expected a credits warning dispatch, got %v", dispatcher.dispatched)
	}
}
