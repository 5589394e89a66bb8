package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldstone/crm-system/internal/api/metrics"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

type AttachmentHandler struct {
	attachments ports.AttachmentService
}

func NewAttachmentHandler(attachments ports.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Upload accepts a multipart form with a "file" part plus related_type
// and related_id fields linking the attachment to an entity.
func (h *AttachmentHandler) Upload(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	relatedType := c.FormValue("related_type")
	relatedID := c.FormValue("related_id")
	if relatedType == "" || relatedID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "related_type and related_id are required")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	attachment, err := h.attachments.Upload(c.Request().Context(), actor, ports.UploadAttachmentInput{
		RelatedType: relatedType,
		RelatedID:   relatedID,
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        src,
	})
	if err != nil {
		return err
	}

	metrics.AttachmentUploadsTotal.Inc()
	return c.JSON(http.StatusCreated, attachment)
}

// Download streams the attachment binary.
func (h *AttachmentHandler) Download(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	attachment, body, err := h.attachments.Download(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	defer body.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+attachment.Filename+`"`)
	return c.Stream(http.StatusOK, attachment.ContentType, body)
}

// List returns attachment metadata for a related entity.
func (h *AttachmentHandler) List(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	relatedType := c.QueryParam("related_type")
	relatedID := c.QueryParam("related_id")
	if relatedType == "" || relatedID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "related_type and related_id are required")
	}

	attachments, err := h.attachments.ListByRelated(c.Request().Context(), actor, relatedType, relatedID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, attachments)
}

// Delete removes the stored object and its metadata.
func (h *AttachmentHandler) Delete(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.attachments.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
