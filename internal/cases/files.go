package cases

import (
	"errors"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/aldoetobex/legalflow-backend/internal/storage"
	"github.com/aldoetobex/legalflow-backend/internal/store"
	"github.com/aldoetobex/legalflow-backend/pkg/models"
	"github.com/aldoetobex/legalflow-backend/pkg/utils"
)

// allowedMimes lists the document types a case may carry.
var allowedMimes = map[string]bool{
	"application/pdf":    true,
	"image/png":          true,
	"image/jpeg":         true,
	"text/plain":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// contentType trusts the part header first, then the extension.
func contentType(header, filename string) string {
	ct := header
	if ct == "" || ct == "application/octet-stream" {
		ct = mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mt
	}
	return ct
}

func (h *Handler) attachURLs(c *fiber.Ctx, docs []models.CaseDocument) {
	if err := storage.AttachURLs(c.UserContext(), h.objects, docs); err != nil {
		h.log.Warn("document urls not resolved", zap.Error(err))
	}
}

// Upload Case Document godoc
// @Summary      Upload case document
// @Description  Stores one file for a case (PDF, PNG, JPEG, TXT, DOC, DOCX) and returns it with a retrievable url
// @Tags         documents
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        case   formData  int     true   "Case ID"
// @Param        title  formData  string  false  "Title (defaults to the file name)"
// @Param        file   formData  file    true   "Document"
// @Success      201    {object}  models.CaseDocument
// @Failure      400    {object}  models.ErrorResponse
// @Failure      404    {object}  models.ErrorResponse
// @Failure      413    {object}  models.ErrorResponse
// @Failure      415    {object}  models.ErrorResponse
// @Router       /documents [post]
func (h *Handler) UploadDocument(c *fiber.Ctx) error {
	caseID, err := strconv.ParseUint(strings.TrimSpace(c.FormValue("case")), 10, 64)
	if err != nil || caseID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "case is required")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	// ---- Validate the file
	if fh.Size <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "empty file")
	}
	if fh.Size > h.maxUpload {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "file too large")
	}
	ct := contentType(fh.Header.Get("Content-Type"), fh.Filename)
	if !allowedMimes[ct] {
		return fiber.NewError(fiber.StatusUnsupportedMediaType, "only PDF, PNG, JPEG, TXT, DOC or DOCX are allowed")
	}

	ctx := c.UserContext()
	id := uint(caseID)
	if _, err := h.store.GetCase(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errCaseNotFound
		}
		return err
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		title = fh.Filename
	}

	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot read file")
	}
	defer f.Close()

	// Unique key so re-uploads never collide
	key := storage.MakeObjectKey(id, fh.Filename)
	if err := h.objects.Upload(ctx, key, f, ct, fh.Size); err != nil {
		return err
	}

	doc, err := h.store.CreateDocument(ctx, models.CaseDocument{
		CaseID:       id,
		Title:        title,
		File:         key,
		Mime:         ct,
		Size:         fh.Size,
		OriginalName: fh.Filename,
	})
	if err != nil {
		// Don't leave an orphaned object behind
		if derr := h.objects.Delete(ctx, key); derr != nil {
			h.log.Warn("orphaned upload", zap.String("key", key), zap.Error(derr))
		}
		return err
	}

	out := []models.CaseDocument{*doc}
	h.attachURLs(c, out)
	return c.Status(fiber.StatusCreated).JSON(out[0])
}

// List Case Documents godoc
// @Summary      List case documents
// @Description  Documents of one case, oldest upload first, each with a retrievable url
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        id   path     int  true  "Case ID"
// @Success      200  {array}  models.CaseDocument
// @Failure      404  {object} models.ErrorResponse
// @Router       /cases/{id}/documents [get]
func (h *Handler) ListDocuments(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	if _, err := h.store.GetCase(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errCaseNotFound
		}
		return err
	}
	docs, err := h.store.GetDocuments(ctx, id)
	if err != nil {
		return err
	}
	h.attachURLs(c, docs)
	return c.JSON(docs)
}

// Delete Case Document godoc
// @Summary      Delete case document
// @Description  Removes the document row and its stored file
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Document ID"
// @Success      200  {object}  models.MessageResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /documents/{id} [delete]
func (h *Handler) DeleteDocument(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	doc, err := h.store.GetDocument(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Document not found")
	}
	if err != nil {
		return err
	}
	deleted, err := h.store.DeleteDocument(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	if err := h.objects.Delete(ctx, doc.File); err != nil {
		h.log.Warn("document file not removed", zap.String("key", doc.File), zap.Error(err))
	}
	return c.JSON(models.MessageResponse{Message: "Document deleted successfully"})
}
