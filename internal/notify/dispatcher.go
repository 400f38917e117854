package notify

import (
	"context"
	"fmt"

	"github.com/ricardomaia/fundeira/internal/i18n"
	"github.com/ricardomaia/fundeira/internal/presenter"
	"github.com/ricardomaia/fundeira/internal/render"
	"github.com/ricardomaia/fundeira/model"
)

// Notification template names.
const (
	TemplateUserDeactivate = "user_deactivate"
	TemplateCreditsWarning = "credits_warning"
)

var ErrUnknownTemplate = fmt.Errorf("unknown notification template")

// Dispatcher delivers a templated notification to an account.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID uint, template string) error
}

// UserDirectory resolves an account for addressing. Satisfied by the users
// repository.
type UserDirectory interface {
	ByID(ctx context.Context, id uint) (*model.User, error)
}

// SummaryReader supplies the credit balance interpolated into credit
// notifications. Satisfied by the finance summary service.
type SummaryReader interface {
	Credits(ctx context.Context, userID uint) (int64, error)
}

// MailDispatcher renders notification templates and sends them by mail.
type MailDispatcher struct {
	users      UserDirectory
	summaries  SummaryReader
	sender     MailSender
	translator *i18n.Manager
	siteName   string
	baseURL    string
}

func NewMailDispatcher(users UserDirectory, summaries SummaryReader, sender MailSender, translator *i18n.Manager, siteName string, baseURL string) *MailDispatcher {
	return &MailDispatcher{
		users:      users,
		summaries:  summaries,
		sender:     sender,
		translator: translator,
		siteName:   siteName,
		baseURL:    baseURL,
	}
}

func (d *MailDispatcher) Dispatch(ctx context.Context, userID uint, template string) error {
	user, err := d.users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	display := presenter.NewUserPresenter(user, user.Locale, d.translator, d.baseURL)

	vars := map[string]interface{}{
		"siteName":    d.siteName,
		"displayName": display.DisplayName(),
	}
	var subject string
	switch template {
	case TemplateUserDeactivate:
		subject = "Your account has been deactivated"
		vars["reactivateURL"] = fmt.Sprintf("%s/reactivate?token=%s", d.baseURL, user.ReactivateToken)
	case TemplateCreditsWarning:
		subject = "You still have unused credits"
		credits, err := d.summaries.Credits(ctx, user.ID)
		if err != nil {
			return err
		}
		vars["credits"] = display.DisplayCredits(credits)
		vars["exploreURL"] = d.baseURL + "/explore"
	default:
		return ErrUnknownTemplate
	}

	body, err := render.RenderHTML("mail/"+templateFile(template), vars)
	if err != nil {
		return err
	}
	return d.sender.Send(&Message{
		To:      []string{user.Email},
		Subject: subject,
		Body:    body,
		IsHTML:  true,
	})
}

// templateFile maps an event name to its mail template file name.
func templateFile(template string) string {
	switch template {
	case TemplateUserDeactivate:
		return "user-deactivate"
	case TemplateCreditsWarning:
		return "credits-warning"
	}
	return template
}
