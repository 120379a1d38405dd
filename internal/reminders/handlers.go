package reminders

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/legalflow-backend/internal/store"
	"github.com/aldoetobex/legalflow-backend/pkg/models"
	"github.com/aldoetobex/legalflow-backend/pkg/utils"
	"github.com/aldoetobex/legalflow-backend/pkg/validation"
)

// ===== DTOs =====

// CreateReminderRequest: dueDate is RFC3339, e.g. 2025-03-01T09:00:00Z.
type CreateReminderRequest struct {
	Title       string               `json:"title" validate:"required,max=200"`
	Description string               `json:"description" validate:"max=5000"`
	DueDate     *time.Time           `json:"dueDate" validate:"required"`
	Location    string               `json:"location" validate:"max=200"`
	Type        *models.ReminderType `json:"type" validate:"omitempty,oneof=hearing deadline meeting filing general"`
	Priority    *models.Priority     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Completed   bool                 `json:"completed"`
	CaseID      *uint                `json:"caseId" validate:"omitempty,gt=0"`
}

type UpdateReminderRequest struct {
	Title       *string              `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string              `json:"description" validate:"omitempty,max=5000"`
	DueDate     *time.Time           `json:"dueDate"`
	Location    *string              `json:"location" validate:"omitempty,max=200"`
	Type        *models.ReminderType `json:"type" validate:"omitempty,oneof=hearing deadline meeting filing general"`
	Priority    *models.Priority     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Completed   *bool                `json:"completed"`
	CaseID      *uint                `json:"caseId" validate:"omitempty,gt=0"`
}

type Handler struct{ store store.Store }

func NewHandler(st store.Store) *Handler { return &Handler{store: st} }

var errReminderNotFound = fiber.NewError(fiber.StatusNotFound, "Reminder not found")

// @Summary      List reminders
// @Description  All reminders, soonest due first, each with its case when linked
// @Tags         reminders
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  models.Reminder
// @Router       /reminders [get]
func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.store.GetReminders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// @Summary      Get reminder
// @Tags         reminders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Reminder ID"
// @Success      200  {object}  models.Reminder
// @Failure      404  {object}  models.ErrorResponse
// @Router       /reminders/{id} [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	r, err := h.store.GetReminder(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return errReminderNotFound
	}
	if err != nil {
		return err
	}
	return c.JSON(r)
}

// @Summary      Create reminder
// @Description  Type defaults to general, priority to medium
// @Tags         reminders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateReminderRequest  true  "Reminder payload"
// @Success      201  {object}  models.Reminder
// @Failure      400  {object}  models.ValidationErrorResponse
// @Router       /reminders [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateReminderRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Title = strings.TrimSpace(in.Title)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	r := models.Reminder{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate.UTC(),
		Location:    strings.TrimSpace(in.Location),
		Completed:   in.Completed,
		CaseID:      in.CaseID,
	}
	if in.Type != nil {
		r.Type = *in.Type
	}
	if in.Priority != nil {
		r.Priority = *in.Priority
	}
	created, err := h.store.CreateReminder(c.UserContext(), r)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// @Summary      Update reminder
// @Description  Partial update, e.g. {"completed": true}
// @Tags         reminders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  int                    true  "Reminder ID"
// @Param        payload  body  UpdateReminderRequest  true  "Fields to change"
// @Success      200  {object}  models.Reminder
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /reminders/{id} [put]
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in UpdateReminderRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Title = utils.TrimPtr(in.Title)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	if in.DueDate != nil {
		due := in.DueDate.UTC()
		in.DueDate = &due
	}

	r, err := h.store.UpdateReminder(c.UserContext(), id, store.ReminderPatch{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Location:    in.Location,
		Type:        in.Type,
		Priority:    in.Priority,
		Completed:   in.Completed,
		CaseID:      in.CaseID,
	})
	if errors.Is(err, store.ErrNotFound) {
		return errReminderNotFound
	}
	if err != nil {
		return err
	}
	return c.JSON(r)
}

// @Summary      Delete reminder
// @Tags         reminders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Reminder ID"
// @Success      200  {object}  models.MessageResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /reminders/{id} [delete]
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	deleted, err := h.store.DeleteReminder(c.UserContext(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return errReminderNotFound
	}
	return c.JSON(models.MessageResponse{Message: "Reminder deleted successfully"})
}
