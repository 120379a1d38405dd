package clients

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/legalflow-backend/internal/store"
	"github.com/aldoetobex/legalflow-backend/pkg/models"
	"github.com/aldoetobex/legalflow-backend/pkg/utils"
	"github.com/aldoetobex/legalflow-backend/pkg/validation"
)

/* ================================ DTOs ================================= */

type CreateClientRequest struct {
	Name    string               `json:"name" validate:"required,max=120"`
	Email   string               `json:"email" validate:"omitempty,email,max=120"`
	Phone   string               `json:"phone" validate:"max=40"`
	Address string               `json:"address" validate:"max=300"`
	NIC     string               `json:"nic" validate:"max=40"`
	Status  *models.ClientStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

type UpdateClientRequest struct {
	Name    *string              `json:"name" validate:"omitempty,min=1,max=120"`
	Email   *string              `json:"email" validate:"omitempty,email,max=120"`
	Phone   *string              `json:"phone" validate:"omitempty,max=40"`
	Address *string              `json:"address" validate:"omitempty,max=300"`
	NIC     *string              `json:"nic" validate:"omitempty,max=40"`
	Status  *models.ClientStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

/* ============================== Handler ================================= */

type Handler struct{ store store.Store }

func NewHandler(st store.Store) *Handler { return &Handler{store: st} }

var errClientNotFound = fiber.NewError(fiber.StatusNotFound, "Client not found")

// @Summary      List clients
// @Description  All clients, newest first
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  models.Client
// @Router       /clients [get]
func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.store.GetClients(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// @Summary      Get client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  models.Client
// @Failure      404  {object}  models.ErrorResponse
// @Router       /clients/{id} [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	cl, err := h.store.GetClient(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return errClientNotFound
	}
	if err != nil {
		return err
	}
	return c.JSON(cl)
}

// @Summary      List a client's cases
// @Description  Cases owned by the client, newest first. Unknown clients yield an empty list.
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path     int  true  "Client ID"
// @Success      200  {array}  models.Case
// @Router       /clients/{id}/cases [get]
func (h *Handler) Cases(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.store.GetCasesByClient(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// @Summary      Create client
// @Description  Status defaults to active
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateClientRequest  true  "Client payload"
// @Success      201  {object}  models.Client
// @Failure      400  {object}  models.ValidationErrorResponse
// @Router       /clients [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateClientRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	cl := models.Client{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
		NIC:     strings.TrimSpace(in.NIC),
	}
	if in.Status != nil {
		cl.Status = *in.Status
	}
	created, err := h.store.CreateClient(c.UserContext(), cl)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// @Summary      Update client
// @Description  Partial update
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  int                  true  "Client ID"
// @Param        payload  body  UpdateClientRequest  true  "Fields to change"
// @Success      200  {object}  models.Client
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /clients/{id} [put]
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in UpdateClientRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Name = utils.TrimPtr(in.Name)
	in.Email = utils.TrimPtr(in.Email)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	cl, err := h.store.UpdateClient(c.UserContext(), id, store.ClientPatch{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		NIC:     in.NIC,
		Status:  in.Status,
	})
	if errors.Is(err, store.ErrNotFound) {
		return errClientNotFound
	}
	if err != nil {
		return err
	}
	return c.JSON(cl)
}

// @Summary      Delete client
// @Description  Refused with 409 while any case still references the client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  models.MessageResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse  "client has cases"
// @Router       /clients/{id} [delete]
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	deleted, err := h.store.DeleteClient(c.UserContext(), id)
	if err != nil {
		return err // ErrClientHasCases -> 409 in the error handler
	}
	if !deleted {
		return errClientNotFound
	}
	return c.JSON(models.MessageResponse{Message: "Client deleted successfully"})
}
