package api

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ricardomaia/fundeira/internal/finance"
	"github.com/ricardomaia/fundeira/internal/i18n"
	"github.com/ricardomaia/fundeira/internal/presenter"
	"github.com/ricardomaia/fundeira/internal/users"
	"github.com/ricardomaia/fundeira/model"
)

type UsersHandler struct {
	userService    *users.UserService
	summaryService *finance.SummaryService
	translator     *i18n.Manager
	baseURL        string
}

func NewUsersHandler(userService *users.UserService, summaryService *finance.SummaryService, translator *i18n.Manager, baseURL string) *UsersHandler {
	return &UsersHandler{
		userService:    userService,
		summaryService: summaryService,
		translator:     translator,
		baseURL:        baseURL,
	}
}

type userResponse struct {
	UserID           uint      `json:"userId"`
	Email            string    `json:"email"`
	DisplayName      string    `json:"displayName"`
	ShortName        string    `json:"shortName"`
	MediumName       string    `json:"mediumName"`
	DisplayImage     string    `json:"displayImage"`
	Bio              string    `json:"bio,omitempty"`
	AccessType       string    `json:"accessType"`
	Approved         bool      `json:"approved"`
	PendingDocuments bool      `json:"pendingDocuments"`
	DocumentsList    []string  `json:"documentsList"`
	Staff            bool      `json:"staff"`
	Deactivated      bool      `json:"deactivated"`
	TwitterLink      string    `json:"twitterLink,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type creditsResponse struct {
	Credits                  string `json:"credits"`
	CreditCents              int64  `json:"creditCents"`
	TotalContributedProjects int64  `json:"totalContributedProjects"`
	ContributionsText        string `json:"contributionsText,omitempty"`
}

type registerRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	FullName   string `json:"fullName"`
	Password   string `json:"password"`
	Bio        string `json:"bio"`
	AccessType string `json:"accessType"`
	Locale     string `json:"locale"`
}

type profileUpdateRequest struct {
	Name     *string `json:"name"`
	FullName *string `json:"fullName"`
	Bio      *string `json:"bio"`
	ImageURL *string `json:"imageUrl"`
	Twitter  *string `json:"twitter"`
	Locale   *string `json:"locale"`
	Staffs   *[]int  `json:"staffs"`
}

func (h *UsersHandler) locale(ctx *fiber.Ctx, user *model.User) string {
	if locale := ctx.Query("locale"); locale != "" {
		return locale
	}
	if user != nil && user.Locale != "" {
		return user.Locale
	}
	return h.translator.DefaultLanguage()
}

func (h *UsersHandler) userResponse(ctx *fiber.Ctx, user *model.User) userResponse {
	display := presenter.NewUserPresenter(user, h.locale(ctx, user), h.translator, h.baseURL)
	return userResponse{
		UserID:           user.ID,
		Email:            user.Email,
		DisplayName:      display.DisplayName(),
		ShortName:        display.ShortName(),
		MediumName:       display.MediumName(),
		DisplayImage:     display.DisplayImage(),
		Bio:              user.Bio,
		AccessType:       user.AccessType.String(),
		Approved:         user.Approved(),
		PendingDocuments: user.PendingDocuments(),
		DocumentsList:    user.DocumentsList(),
		Staff:            user.IsStaff(),
		Deactivated:      !user.ActiveForAuthentication(),
		TwitterLink:      display.TwitterLink(),
		CreatedAt:        user.CreatedAt,
	}
}

func parseUserID(ctx *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func validationDetails(verr *users.ValidationError) []APIErrorDetail {
	details := make([]APIErrorDetail, len(verr.Fields))
	for i, field := range verr.Fields {
		details[i] = APIErrorDetail{
			Domain:  "users",
			Reason:  field.Field,
			Message: field.Message,
		}
	}
	return details
}

// PostRegister creates an account.
func (h *UsersHandler) PostRegister(ctx *fiber.Ctx) error {
	var req registerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, "Invalid request body"))
	}

	accessType := model.AccessTypeIndividual
	if req.AccessType == model.AccessTypeLegalEntity.String() {
		accessType = model.AccessTypeLegalEntity
	} else if req.AccessType != "" && req.AccessType != model.AccessTypeIndividual.String() {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(
			NewErrorResponse(fiber.StatusUnprocessableEntity, "Unknown access type"))
	}

	user, err := h.userService.Register(ctx.Context(), users.RegisterOptions{
		Email:      req.Email,
		Name:       req.Name,
		FullName:   req.FullName,
		Password:   req.Password,
		Bio:        req.Bio,
		AccessType: accessType,
		Locale:     req.Locale,
	})
	if err != nil {
		var verr *users.ValidationError
		switch {
		case errors.As(err, &verr):
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(
				NewErrorResponse(fiber.StatusUnprocessableEntity, "Validation failed", validationDetails(verr)...))
		case errors.Is(err, users.ErrEmailRegistered):
			return ctx.Status(fiber.StatusConflict).JSON(
				NewErrorResponse(fiber.StatusConflict, "Email already registered"))
		}
		slog.Error("Failed to register user", "error", err)
		return fiber.ErrInternalServerError
	}
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(h.userResponse(ctx, user)))
}

// GetUser shows an active account.
func (h *UsersHandler) GetUser(ctx *fiber.Ctx) error {
	userID, err := parseUserID(ctx)
	if err != nil {
		return fiber.ErrBadRequest
	}
	user, err := h.userService.FindActive(ctx.Context(), userID)
	if errors.Is(err, users.ErrUserNotFound) {
		return fiber.ErrNotFound
	}
	if err != nil {
		slog.Error("Failed to load user", "userId", userID, "error", err)
		return fiber.ErrInternalServerError
	}
	return ctx.JSON(NewDataResponse(h.userResponse(ctx, user)))
}

// GetUsers runs an admin search composed from the eligibility filters.
func (h *UsersHandler) GetUsers(ctx *fiber.Ctx) error {
	scopes := []users.Scope{}
	if ctx.QueryBool("active", true) {
		scopes = append(scopes, users.Active())
	}
	if email := ctx.Query("email"); email != "" {
		scopes = append(scopes, users.ByEmail(email))
	}
	if name := ctx.Query("name"); name != "" {
		scopes = append(scopes, users.ByName(name))
	}
	if id := ctx.QueryInt("id"); id > 0 {
		scopes = append(scopes, users.ByID(uint(id)))
	}
	if key := ctx.Query("key"); key != "" {
		scopes = append(scopes, users.ByKey(key))
	}
	if ctx.QueryBool("staff", false) {
		scopes = append(scopes, users.Staff())
	}
	if ctx.QueryBool("hasCredits", false) {
		scopes = append(scopes, users.HasCredits())
	}
	if ctx.QueryBool("onlyOrganizations", false) {
		scopes = append(scopes, users.OnlyOrganizations())
	}
	if ctx.QueryBool("alreadyUsedCredits", false) {
		scopes = append(scopes, users.AlreadyUsedCredits())
	}
	if ctx.QueryBool("unusedCreditsLastMonth", false) {
		scopes = append(scopes, users.HasNotUsedCreditsLastMonth())
	}
	if ctx.QueryBool("withVisibleProjects", false) {
		scopes = append(scopes, users.WithVisibleProjects())
	}
	if projectID := ctx.QueryInt("contributedProject"); projectID > 0 {
		scopes = append(scopes, users.WhoContributedProject(uint(projectID)))
	}
	scopes = append(scopes, users.OrderBy(ctx.Query("orderBy", "id")))

	found, err := h.userService.ListUsers(ctx.Context(), scopes...)
	if err != nil {
		slog.Error("User search failed", "error", err)
		return fiber.ErrInternalServerError
	}
	result := make([]userResponse, len(found))
	for i, user := range found {
		result[i] = h.userResponse(ctx, user)
	}
	return ctx.JSON(NewDataResponse(result))
}

// PatchUser applies a self-service profile edit.
func (h *UsersHandler) PatchUser(ctx *fiber.Ctx) error {
	userID, err := parseUserID(ctx)
	if err != nil {
		return fiber.ErrBadRequest
	}
	var req profileUpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, "Invalid request body"))
	}

	err = h.userService.UpdateProfile(ctx.Context(), userID, users.ProfileUpdate{
		Name:     req.Name,
		FullName: req.FullName,
		Bio:      req.Bio,
		ImageURL: req.ImageURL,
		Twitter:  req.Twitter,
		Locale:   req.Locale,
		Staffs:   req.Staffs,
	})
	if err != nil {
		var verr *users.ValidationError
		switch {
		case errors.As(err, &verr):
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(
				NewErrorResponse(fiber.StatusUnprocessableEntity, "Validation failed", validationDetails(verr)...))
		case errors.Is(err, users.ErrUserNotFound):
			return fiber.ErrNotFound
		}
		slog.Error("Failed to update user", "userId", userID, "error", err)
		return fiber.ErrInternalServerError
	}

	user, err := h.userService.GetUserByID(ctx.Context(), userID)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return ctx.JSON(NewDataResponse(h.userResponse(ctx, user)))
}

// DeleteUser deactivates an account. The account stays on record and all of
// its contributions become anonymous.
func (h *UsersHandler) DeleteUser(ctx *fiber.Ctx) error {
	userID, err := parseUserID(ctx)
	if err != nil {
		return fiber.ErrBadRequest
	}
	if err := h.userService.Deactivate(ctx.Context(), userID); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return fiber.ErrNotFound
		}
		slog.Error("Failed to deactivate user", "userId", userID, "error", err)
		return fiber.ErrInternalServerError
	}
	return ctx.JSON(NewDataResponse(fiber.Map{"deactivated": true}))
}

type reactivateResponse struct {
	Reactivated bool          `json:"reactivated"`
	Notice      string        `json:"notice"`
	User        *userResponse `json:"user,omitempty"`
}

// PostReactivate restores a deactivated account from its emailed token. A bad
// token is a recoverable outcome, not an error status.
func (h *UsersHandler) PostReactivate(ctx *fiber.Ctx) error {
	token := ctx.Query("token", ctx.FormValue("token"))
	user, err := h.userService.Reactivate(ctx.Context(), token)
	if errors.Is(err, users.ErrInvalidReactivateToken) {
		return ctx.JSON(NewDataResponse(reactivateResponse{
			Reactivated: false,
			Notice:      h.translator.T(h.locale(ctx, nil), "user.failed_reactivation", nil),
		}))
	}
	if err != nil {
		slog.Error("Failed to reactivate user", "error", err)
		return fiber.ErrInternalServerError
	}
	response := h.userResponse(ctx, user)
	return ctx.JSON(NewDataResponse(reactivateResponse{
		Reactivated: true,
		Notice:      h.translator.T(h.locale(ctx, user), "user.reactivated_notice", nil),
		User:        &response,
	}))
}

// PostApprove stamps an administrative approval on a legal entity account.
func (h *UsersHandler) PostApprove(ctx *fiber.Ctx) error {
	userID, err := parseUserID(ctx)
	if err != nil {
		return fiber.ErrBadRequest
	}
	if err := h.userService.Approve(ctx.Context(), userID, 0); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return fiber.ErrNotFound
		}
		slog.Error("Failed to approve user", "userId", userID, "error", err)
		return fiber.ErrInternalServerError
	}
	return ctx.JSON(NewDataResponse(fiber.Map{"approved": true}))
}

// GetCredits reads the financial summary for an account.
func (h *UsersHandler) GetCredits(ctx *fiber.Ctx) error {
	userID, err := parseUserID(ctx)
	if err != nil {
		return fiber.ErrBadRequest
	}
	user, err := h.userService.FindActive(ctx.Context(), userID)
	if errors.Is(err, users.ErrUserNotFound) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return fiber.ErrInternalServerError
	}

	summary, err := h.summaryService.Summary(ctx.Context(), userID)
	if err != nil {
		slog.Error("Failed to load user summary", "userId", userID, "error", err)
		return fiber.ErrInternalServerError
	}
	display := presenter.NewUserPresenter(user, h.locale(ctx, user), h.translator, h.baseURL)
	return ctx.JSON(NewDataResponse(creditsResponse{
		Credits:                  display.DisplayCredits(summary.CreditCents),
		CreditCents:              summary.CreditCents,
		TotalContributedProjects: summary.TotalContributedProjects,
		ContributionsText:        display.ContributionsText(summary.TotalContributedProjects),
	}))
}
