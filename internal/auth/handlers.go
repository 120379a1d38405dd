package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/aldoetobex/legalflow-backend/internal/store"
	"github.com/aldoetobex/legalflow-backend/pkg/models"
	"github.com/aldoetobex/legalflow-backend/pkg/utils"
	"github.com/aldoetobex/legalflow-backend/pkg/validation"
)

/* ================================ DTOs ================================= */

// Request body for /auth/login
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=60"`
	Password string `json:"password" validate:"required,max=72"`
}

// Response for /auth/login
type LoginResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Response for /auth/me
type MeResponse struct {
	User models.User `json:"user"`
}

// Request body for PUT /user/:id. Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Username      *string `json:"username" validate:"omitempty,min=3,max=60"`
	Password      *string `json:"password" validate:"omitempty,min=6,max=72"`
	FullName      *string `json:"fullName" validate:"omitempty,max=120"`
	Email         *string `json:"email" validate:"omitempty,email,max=120"`
	Phone         *string `json:"phone" validate:"omitempty,max=40"`
	BarNumber     *string `json:"barNumber" validate:"omitempty,barnum"`
	PracticeAreas *string `json:"practiceAreas" validate:"omitempty,max=500"`
	Avatar        *string `json:"avatar" validate:"omitempty,max=500"`
}

/* ============================== Handler ================================= */

type Handler struct {
	store  store.Store
	secret string
	ttl    time.Duration
}

func NewHandler(st store.Store, secret string, ttl time.Duration) *Handler {
	return &Handler{store: st, secret: secret, ttl: ttl}
}

/* ================================ Login ================================= */

// @Summary      Login
// @Description  Authenticate with username and password and receive a JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  LoginRequest  true  "Login payload"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  models.ValidationErrorResponse
// @Failure      401      {object}  models.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	var in LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Username = strings.TrimSpace(in.Username)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	u, err := h.store.GetUserByUsername(c.UserContext(), in.Username)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return err
	}

	// Verify password
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)) != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := IssueToken(h.secret, h.ttl, u.ID)
	if err != nil {
		return err
	}
	return c.JSON(LoginResponse{User: *u, Token: token})
}

/* ================================= Me =================================== */

// @Summary      Get current user profile
// @Description  Return the profile of the authenticated user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  MeResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /auth/me [get]
func (h *Handler) Me(c *fiber.Ctx) error {
	userID, ok := UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	u, err := h.store.GetUser(c.UserContext(), userID)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.ErrUnauthorized
	}
	if err != nil {
		return err
	}
	return c.JSON(MeResponse{User: *u})
}

/* ============================ Update profile ============================ */

// @Summary      Update profile
// @Description  Partially update the authenticated user's own profile. A new password is re-hashed.
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  int                   true  "User ID"
// @Param        payload  body  UpdateProfileRequest  true  "Profile fields"
// @Success      200      {object}  models.User
// @Failure      400      {object}  models.ValidationErrorResponse
// @Failure      401      {object}  models.ErrorResponse
// @Failure      403      {object}  models.ErrorResponse
// @Failure      404      {object}  models.ErrorResponse
// @Failure      409      {object}  models.ErrorResponse  "username taken"
// @Router       /user/{id} [put]
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	// Only the owner may edit a profile
	userID, ok := UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	if userID != id {
		return fiber.NewError(fiber.StatusForbidden, "cannot update another user's profile")
	}

	var in UpdateProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Username = utils.TrimPtr(in.Username)
	in.Email = utils.TrimPtr(in.Email)
	in.FullName = utils.TrimPtr(in.FullName)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	patch := store.UserPatch{
		Username:      in.Username,
		FullName:      in.FullName,
		Email:         in.Email,
		Phone:         in.Phone,
		BarNumber:     in.BarNumber,
		PracticeAreas: in.PracticeAreas,
		Avatar:        in.Avatar,
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hashed := string(hash)
		patch.Password = &hashed
	}

	u, err := h.store.UpdateUser(c.UserContext(), id, patch)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(u)
}
