package presenter

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/ricardomaia/fundeira/internal/i18n"
	"github.com/ricardomaia/fundeira/model"
	"github.com/ricardomaia/fundeira/params"
)

// DefaultAvatarPath is served when the account has no image anywhere.
const DefaultAvatarPath = "/assets/user.png"

// UserPresenter maps raw account state to human-facing strings. Every method
// is total over a valid account; none of them touch the store.
type UserPresenter struct {
	user       *model.User
	locale     string
	translator *i18n.Manager
	baseURL    string
}

func NewUserPresenter(user *model.User, locale string, translator *i18n.Manager, baseURL string) *UserPresenter {
	if locale == "" {
		locale = user.Locale
	}
	return &UserPresenter{
		user:       user,
		locale:     locale,
		translator: translator,
		baseURL:    baseURL,
	}
}

func (p *UserPresenter) t(key string, args map[string]any) string {
	return p.translator.T(p.locale, key, args)
}

// DisplayName falls back from name to full name to a localized placeholder.
func (p *UserPresenter) DisplayName() string {
	if p.user.Name != "" {
		return p.user.Name
	}
	if p.user.FullName != "" {
		return p.user.FullName
	}
	return p.t("user.no_name", nil)
}

func (p *UserPresenter) ShortName() string {
	return truncate(p.DisplayName(), params.ShortNameLength)
}

func (p *UserPresenter) MediumName() string {
	return truncate(p.DisplayName(), params.MediumNameLength)
}

// GravatarURL derives an avatar URL from the email hash. Empty when the
// account has no email.
func (p *UserPresenter) GravatarURL(size int) string {
	if p.user.Email == "" {
		return ""
	}
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(p.user.Email))))
	fallback := url.QueryEscape(p.baseURL + DefaultAvatarPath)
	return fmt.Sprintf("https://gravatar.com/avatar/%s.jpg?default=%s&s=%d", hex.EncodeToString(sum[:]), fallback, size)
}

// DisplayImage picks the first non-empty of: uploaded thumbnail, external
// image URL, gravatar, default asset.
func (p *UserPresenter) DisplayImage() string {
	return p.displayImage(80)
}

func (p *UserPresenter) LargerDisplayImage() string {
	return p.displayImage(256)
}

func (p *UserPresenter) displayImage(gravatarSize int) string {
	if p.user.UploadedImage != "" {
		return p.user.UploadedImage
	}
	if p.user.ImageURL != "" {
		return p.user.ImageURL
	}
	if gravatar := p.GravatarURL(gravatarSize); gravatar != "" {
		return gravatar
	}
	return DefaultAvatarPath
}

// ContributionsText phrases the contributed-project count. Zero yields an
// empty string; above two the phrase counts the other projects (total - 1).
func (p *UserPresenter) ContributionsText(totalContributedProjects int64) string {
	switch {
	case totalContributedProjects == 1:
		return p.t("user.contributions_text.one", nil)
	case totalContributedProjects == 2:
		return p.t("user.contributions_text.two", nil)
	case totalContributedProjects > 2:
		return p.t("user.contributions_text.many", map[string]any{"total": totalContributedProjects - 1})
	}
	return ""
}

// DisplayCredits formats a credit balance in cents as localized currency.
func (p *UserPresenter) DisplayCredits(creditCents int64) string {
	decimalSep := "."
	if p.translator.Normalize(p.locale) == i18n.LangPT {
		decimalSep = ","
	}
	sign := ""
	if creditCents < 0 {
		sign = "-"
		creditCents = -creditCents
	}
	amount := fmt.Sprintf("%s%d%s%02d", sign, creditCents/100, decimalSep, creditCents%100)
	return p.t("currency.format", map[string]any{"amount": amount})
}

// TwitterLink is empty when the account has no twitter handle.
func (p *UserPresenter) TwitterLink() string {
	if p.user.Twitter == "" {
		return ""
	}
	return "http://twitter.com/" + p.user.Twitter
}

// DisplayBankAccount formats the payout destination, or a localized "not
// filled" placeholder when no bank account is linked.
func (p *UserPresenter) DisplayBankAccount() string {
	account := p.user.BankAccount
	if account == nil {
		return p.t("user.not_filled", nil)
	}
	return p.t("user.bank_account", map[string]any{
		"bank_code": account.BankCode,
		"bank_name": account.BankName,
		"agency":    joinDigit(account.Agency, account.AgencyDigit),
		"account":   joinDigit(account.Account, account.AccountDigit),
	})
}

func (p *UserPresenter) DisplayBankAccountOwner() string {
	account := p.user.BankAccount
	if account == nil {
		return p.t("user.not_filled", nil)
	}
	return p.t("user.bank_account_owner", map[string]any{
		"owner_name":     account.OwnerName,
		"owner_document": account.OwnerDocument,
	})
}

// StaffNames lists the localized names of the account's staff roles.
func (p *UserPresenter) StaffNames() []string {
	names := make([]string, 0, len(p.user.Staffs))
	for _, code := range p.user.Staffs {
		if name, ok := model.StaffNames[code]; ok {
			names = append(names, p.t("user.staff."+name, nil))
		}
	}
	return names
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func joinDigit(number, digit string) string {
	if digit == "" {
		return number
	}
	return number + "-" + digit
}
