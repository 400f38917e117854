package users

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ricardomaia/fundeira/internal/audit"
	"github.com/ricardomaia/fundeira/internal/common"
	"github.com/ricardomaia/fundeira/internal/notify"
	"github.com/ricardomaia/fundeira/model"
	"github.com/ricardomaia/fundeira/params"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RegisterOptions struct {
	Email      string
	Name       string
	FullName   string
	Password   string
	Bio        string
	AccessType model.AccessType
	Gender     model.Gender
	Locale     string
}

type ProfileUpdate struct {
	Name     *string
	FullName *string
	Bio      *string
	ImageURL *string
	Twitter  *string
	Locale   *string
	Staffs   *[]int
}

type UserService struct {
	userRepo    UserRepository
	contribRepo ContributionRepository
	notifier    notify.Dispatcher
}

func NewUserService(userRepo UserRepository, contribRepo ContributionRepository, notifier notify.Dispatcher) *UserService {
	return &UserService{
		userRepo:    userRepo,
		contribRepo: contribRepo,
		notifier:    notifier,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.ByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, err
	}
	user, err := s.userRepo.First(ctx, WithEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// FindActive returns the account only if it has not been deactivated.
func (s *UserService) FindActive(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.First(ctx, ByID(userID), Active())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ListUsers evaluates a composed set of eligibility filters.
func (s *UserService) ListUsers(ctx context.Context, scopes ...Scope) ([]*model.User, error) {
	return s.userRepo.List(ctx, scopes...)
}

func validateRegister(opts RegisterOptions) error {
	verr := &ValidationError{}
	if _, err := mail.ParseAddress(opts.Email); err != nil {
		verr.Add("email", "invalid email address")
	}
	if len(opts.Password) < params.PasswordMinLength {
		verr.Add("password", "password too short")
	}
	if len(opts.Bio) > params.BioMaxLength {
		verr.Add("bio", "bio is too long")
	}
	if opts.AccessType != model.AccessTypeIndividual && opts.AccessType != model.AccessTypeLegalEntity {
		verr.Add("access_type", "unknown access type")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Register creates a new account. Emails are unique case-insensitively.
func (s *UserService) Register(ctx context.Context, opts RegisterOptions) (*model.User, error) {
	if err := validateRegister(opts); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(opts.Email))
	existing, err := s.userRepo.First(ctx, WithEmail(email))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailRegistered
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Email:      email,
		Name:       opts.Name,
		FullName:   opts.FullName,
		Password:   string(passwordHash),
		Bio:        opts.Bio,
		AccessType: opts.AccessType,
		Gender:     opts.Gender,
		Locale:     opts.Locale,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailRegistered
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial self-service profile edit.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) error {
	columns := map[string]interface{}{}
	if update.Name != nil {
		columns["name"] = *update.Name
	}
	if update.FullName != nil {
		columns["full_name"] = *update.FullName
	}
	if update.Bio != nil {
		if len(*update.Bio) > params.BioMaxLength {
			verr := &ValidationError{}
			verr.Add("bio", "bio is too long")
			return verr
		}
		columns["bio"] = *update.Bio
	}
	if update.ImageURL != nil {
		columns["image_url"] = *update.ImageURL
	}
	if update.Twitter != nil {
		columns["twitter"] = strings.ReplaceAll(*update.Twitter, "@", "")
	}
	if update.Locale != nil {
		columns["locale"] = *update.Locale
	}
	if update.Staffs != nil {
		for _, code := range *update.Staffs {
			if _, ok := model.StaffNames[code]; !ok {
				verr := &ValidationError{}
				verr.Add("staffs", "unknown staff role")
				return verr
			}
		}
		columns["staffs"] = datatypes.JSONSlice[int](*update.Staffs)
	}
	if len(columns) == 0 {
		return nil
	}

	affected, err := s.userRepo.Updates(ctx, userID, columns)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID uint, newPassword string) error {
	if len(newPassword) < params.PasswordMinLength {
		verr := &ValidationError{}
		verr.Add("password", "password too short")
		return verr
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	affected, err := s.userRepo.Updates(ctx, userID, map[string]interface{}{"password": string(passwordHash)})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) ChangeLocale(ctx context.Context, userID uint, locale string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Locale == locale {
		return nil
	}
	_, err = s.userRepo.Updates(ctx, userID, map[string]interface{}{"locale": locale})
	return err
}

// Approve marks a legal entity account as approved by an administrator. The
// approval expires after a year.
func (s *UserService) Approve(ctx context.Context, userID uint, actorID uint) error {
	affected, err := s.userRepo.Updates(ctx, userID, map[string]interface{}{"approved_at": time.Now()})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	if err := audit.RecordApproved(ctx, audit.LifecycleRecord{UserID: userID, ActorID: actorID}); err != nil {
		slog.Error("Failed to record approval audit event", "userId", userID, "error", err)
	}
	return nil
}

// Deactivate soft-deletes an account: stamps deactivated_at, issues a fresh
// reactivation token and anonymizes every owned contribution, then notifies
// the account. Already-deactivated accounts report ErrUserNotFound.
func (s *UserService) Deactivate(ctx context.Context, userID uint) error {
	token, err := common.GenerateSecret(params.ReactivateTokenLength)
	if err != nil {
		return err
	}

	err = s.userRepo.Transaction(func(tx *gorm.DB) error {
		txUsers := s.userRepo.WithTx(tx)
		user, err := txUsers.LockFirst(ctx, ByID(userID), Active())
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		now := time.Now()
		if _, err := txUsers.Updates(ctx, user.ID, map[string]interface{}{
			"deactivated_at":   now,
			"reactivate_token": token,
		}); err != nil {
			return err
		}
		_, err = s.contribRepo.WithTx(tx).AnonymizeByUser(ctx, user.ID)
		return err
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.Dispatch(ctx, userID, notify.TemplateUserDeactivate); err != nil {
			slog.Error("Failed to send deactivation notification", "userId", userID, "error", err)
		}
	}
	if err := audit.RecordDeactivated(ctx, audit.LifecycleRecord{UserID: userID}); err != nil {
		slog.Error("Failed to record deactivation audit event", "userId", userID, "error", err)
	}
	return nil
}

// Reactivate restores a deactivated account when the supplied token matches
// its stored reactivation token. A mismatch leaves the account untouched and
// reports ErrInvalidReactivateToken.
func (s *UserService) Reactivate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrInvalidReactivateToken
	}

	var user *model.User
	err := s.userRepo.Transaction(func(tx *gorm.DB) error {
		txUsers := s.userRepo.WithTx(tx)
		found, err := txUsers.LockFirst(ctx, func(db *gorm.DB) *gorm.DB {
			return db.Where("users.reactivate_token = ?", token)
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidReactivateToken
		}
		if err != nil {
			return err
		}

		if _, err := txUsers.Updates(ctx, found.ID, map[string]interface{}{
			"deactivated_at":   nil,
			"reactivate_token": "",
		}); err != nil {
			return err
		}
		found.DeactivatedAt = nil
		found.ReactivateToken = ""
		user = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := audit.RecordReactivated(ctx, audit.LifecycleRecord{UserID: user.ID}); err != nil {
		slog.Error("Failed to record reactivation audit event", "userId", user.ID, "error", err)
	}
	return user, nil
}

// MadeContributionToProject reports whether the account has any countable
// pledge to the project.
func (s *UserService) MadeContributionToProject(ctx context.Context, userID uint, projectID uint) (bool, error) {
	return s.contribRepo.ExistsForProject(ctx, userID, projectID, model.CountableStates)
}

// HasNoConfirmedContributionToProject reports whether the account may still
// pledge to the project.
func (s *UserService) HasNoConfirmedContributionToProject(ctx context.Context, userID uint, projectID uint) (bool, error) {
	exists, err := s.contribRepo.ExistsForProject(ctx, userID, projectID, []string{
		model.ContributionConfirmed, model.ContributionWaitingConfirmation,
	})
	return !exists, err
}

// SendCreditsNotification warns the account about an unspent credit balance.
func (s *UserService) SendCreditsNotification(ctx context.Context, userID uint) error {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.Dispatch(ctx, userID, notify.TemplateCreditsWarning)
}
