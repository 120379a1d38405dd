package cases

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/aldoetobex/legalflow-backend/internal/storage"
	"github.com/aldoetobex/legalflow-backend/internal/store"
	"github.com/aldoetobex/legalflow-backend/pkg/models"
	"github.com/aldoetobex/legalflow-backend/pkg/utils"
	"github.com/aldoetobex/legalflow-backend/pkg/validation"
)

// ===== DTOs =====

type CreateCaseRequest struct {
	Title       string             `json:"title" validate:"required,max=200"`
	CaseNumber  *string            `json:"caseNumber" validate:"omitempty,casenum"`
	CaseType    *uint              `json:"caseType" validate:"omitempty,gt=0"`
	Status      *models.CaseStatus `json:"status" validate:"omitempty,oneof=active pending review closed"`
	Priority    *models.Priority   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Description string             `json:"description" validate:"max=5000"`
	ClientID    *uint              `json:"clientId" validate:"omitempty,gt=0"`
	NIC         string             `json:"nic" validate:"max=40"`
}

// UpdateCaseRequest is the partial form: absent fields stay unchanged.
type UpdateCaseRequest struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=200"`
	CaseNumber  *string            `json:"caseNumber" validate:"omitempty,casenum"`
	CaseType    *uint              `json:"caseType" validate:"omitempty,gt=0"`
	Status      *models.CaseStatus `json:"status" validate:"omitempty,oneof=active pending review closed"`
	Priority    *models.Priority   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Description *string            `json:"description" validate:"omitempty,max=5000"`
	ClientID    *uint              `json:"clientId" validate:"omitempty,gt=0"`
	NIC         *string            `json:"nic" validate:"omitempty,max=40"`
}

type Handler struct {
	store   store.Store
	objects storage.ObjectStore
	log     *zap.Logger

	maxUpload int64
}

func NewHandler(st store.Store, objects storage.ObjectStore, maxUpload int64, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: st, objects: objects, maxUpload: maxUpload, log: log}
}

var errCaseNotFound = fiber.NewError(fiber.StatusNotFound, "Case not found")

// List Cases godoc
// @Summary      List cases
// @Description  All cases, newest first, each with its client and case type
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   models.Case
// @Router       /cases [get]
func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.store.GetCases(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// Get Case godoc
// @Summary      Get case
// @Description  Case with client, case type and documents (documents carry a retrievable url)
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Case ID"
// @Success      200  {object}  models.Case
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id} [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	cs, err := h.store.GetCase(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return errCaseNotFound
	}
	if err != nil {
		return err
	}
	h.attachURLs(c, cs.Documents)
	return c.JSON(cs)
}

// Create Case godoc
// @Summary      Create case
// @Description  Create a case. Status defaults to active, priority to medium.
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateCaseRequest  true  "Case payload"
// @Success      201  {object}  models.Case
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      409  {object}  models.ErrorResponse  "duplicate case number"
// @Router       /cases [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Title = strings.TrimSpace(in.Title)
	in.CaseNumber = utils.TrimPtr(in.CaseNumber)

	// Validation (Laravel-style response)
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	cs := models.Case{
		Title:       in.Title,
		CaseNumber:  in.CaseNumber,
		CaseTypeID:  in.CaseType,
		Description: strings.TrimSpace(in.Description),
		ClientID:    in.ClientID,
		NIC:         strings.TrimSpace(in.NIC),
	}
	if in.Status != nil {
		cs.Status = *in.Status
	}
	if in.Priority != nil {
		cs.Priority = *in.Priority
	}

	created, err := h.store.CreateCase(c.UserContext(), cs)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// Update Case godoc
// @Summary      Update case
// @Description  Partial update; updatedAt is always refreshed
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  int                true  "Case ID"
// @Param        payload  body  UpdateCaseRequest  true  "Fields to change"
// @Success      200  {object}  models.Case
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse  "duplicate case number"
// @Router       /cases/{id} [put]
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in UpdateCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Title = utils.TrimPtr(in.Title)
	in.CaseNumber = utils.TrimPtr(in.CaseNumber)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	updated, err := h.store.UpdateCase(c.UserContext(), id, store.CasePatch{
		Title:       in.Title,
		CaseNumber:  in.CaseNumber,
		CaseTypeID:  in.CaseType,
		Status:      in.Status,
		Priority:    in.Priority,
		Description: in.Description,
		ClientID:    in.ClientID,
		NIC:         in.NIC,
	})
	if errors.Is(err, store.ErrNotFound) {
		return errCaseNotFound
	}
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

// Delete Case godoc
// @Summary      Delete case
// @Description  Deletes the case with its reminders and documents, including stored files
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Case ID"
// @Success      200  {object}  models.MessageResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id} [delete]
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	// Collect object keys before the rows go away
	docs, err := h.store.GetDocuments(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := h.store.DeleteCase(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errCaseNotFound
	}

	if len(docs) > 0 {
		keys := make([]string, 0, len(docs))
		for _, d := range docs {
			keys = append(keys, d.File)
		}
		// Best effort: the rows are already gone
		if err := h.objects.BulkDelete(ctx, keys); err != nil {
			h.log.Warn("case files not removed", zap.Uint("case_id", id), zap.Error(err))
		}
	}
	return c.JSON(models.MessageResponse{Message: "Case deleted successfully"})
}

// List Case Types godoc
// @Summary      List case types
// @Description  Lookup values for the caseType field
// @Tags         cases
// @Produce      json
// @Success      200  {array}  models.CaseType
// @Router       /case-types [get]
func (h *Handler) CaseTypes(c *fiber.Ctx) error {
	types, err := h.store.GetCaseTypes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(types)
}
