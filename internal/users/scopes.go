package users

import (
	"strings"
	"time"

	"github.com/ricardomaia/fundeira/model"
	"github.com/ricardomaia/fundeira/params"
	"gorm.io/gorm"
)

// Scope is a composable filter over the user collection. Scopes never mutate
// the store and compose via logical AND through db.Scopes; every parameter is
// bound, never spliced into SQL.
type Scope = func(*gorm.DB) *gorm.DB

// Active selects accounts that have not been deactivated.
func Active() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("users.deactivated_at IS NULL")
	}
}

// ByID selects a single account by its exact id.
func ByID(id uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("users.id = ?", id)
	}
}

// WithEmail selects the account registered under the exact email,
// case-insensitively.
func WithEmail(email string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("lower(users.email) = ?", strings.ToLower(email))
	}
}

// ByEmail selects accounts whose email contains the pattern,
// case-insensitively.
func ByEmail(pattern string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("lower(users.email) LIKE ? ESCAPE '\\'", likeContains(pattern))
	}
}

// ByName selects accounts whose display name contains the pattern,
// case-insensitively.
func ByName(pattern string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("lower(users.name) LIKE ? ESCAPE '\\'", likeContains(pattern))
	}
}

// ByKey selects accounts having a contribution whose payment key contains the
// pattern, case-insensitively.
func ByKey(pattern string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"EXISTS (SELECT 1 FROM contributions WHERE contributions.user_id = users.id AND lower(contributions.`key`) LIKE ? ESCAPE '\\')",
			likeContains(pattern))
	}
}

// WhoContributedProject selects accounts with at least one confirmed
// contribution to the project.
func WhoContributedProject(projectID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"users.id IN (SELECT user_id FROM contributions WHERE contributions.state = ? AND contributions.project_id = ?)",
			model.ContributionConfirmed, projectID)
	}
}

// SubscribedToPosts selects accounts without a global notification opt-out.
func SubscribedToPosts() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("users.id NOT IN (SELECT user_id FROM unsubscribes WHERE project_id IS NULL)")
	}
}

// SubscribedToProject selects accounts that contributed to the project and
// have no opt-out for it.
func SubscribedToProject(projectID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return WhoContributedProject(projectID)(db).
			Where("users.id NOT IN (SELECT user_id FROM unsubscribes WHERE project_id = ?)", projectID)
	}
}

// WithUserTotals joins the precomputed aggregate row so callers can select or
// order by its columns.
func WithUserTotals() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("LEFT JOIN user_totals ON user_totals.user_id = users.id")
	}
}

// HasCredits selects accounts with a positive credit balance.
func HasCredits() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("users.id IN (SELECT user_id FROM user_totals WHERE credit_cents > 0)")
	}
}

// OnlyOrganizations selects legal entity accounts.
func OnlyOrganizations() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("users.access_type = ?", model.AccessTypeLegalEntity)
	}
}

// AlreadyUsedCredits selects accounts holding credits that have at least one
// confirmed contribution paid with credits.
func AlreadyUsedCredits() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return HasCredits()(db).Where(
			"EXISTS (SELECT 1 FROM contributions WHERE contributions.credits = ? AND contributions.state = ? AND contributions.user_id = users.id)",
			true, model.ContributionConfirmed)
	}
}

// HasNotUsedCreditsLastMonth selects accounts holding credits with no
// confirmed credit-paid contribution created within the trailing 30 days.
func HasNotUsedCreditsLastMonth() Scope {
	cutoff := time.Now().Add(-params.CreditReuseWindow)
	return func(db *gorm.DB) *gorm.DB {
		return HasCredits()(db).Where(
			"NOT EXISTS (SELECT 1 FROM contributions WHERE contributions.created_at > ? AND contributions.credits = ? AND contributions.state = ? AND contributions.user_id = users.id)",
			cutoff, true, model.ContributionConfirmed)
	}
}

// Staff selects accounts holding at least one staff role.
func Staff() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("users.staffs IS NOT NULL AND CAST(users.staffs AS CHAR) NOT IN ('', '[]', 'null')")
	}
}

// WithVisibleProjects selects accounts owning at least one publicly listed
// project.
func WithVisibleProjects() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"EXISTS (SELECT 1 FROM projects WHERE projects.user_id = users.id AND projects.state NOT IN ?)",
			model.HiddenProjectStates)
	}
}

// Sortable columns accepted by OrderBy. Anything else falls back to id so
// caller input never reaches the ORDER BY clause verbatim.
var sortableColumns = map[string]string{
	"id":         "users.id",
	"name":       "users.name",
	"email":      "users.email",
	"created_at": "users.created_at",
}

// OrderBy applies a stable ordering by the given whitelisted field.
func OrderBy(field string) Scope {
	column, ok := sortableColumns[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		column = sortableColumns["id"]
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column)
	}
}

// likeContains builds a case-insensitive substring LIKE pattern with the LIKE
// metacharacters escaped.
func likeContains(pattern string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(pattern))
	return "%" + escaped + "%"
}
