package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dextryayers/rujukan-jatim/internal/middleware"
	"github.com/dextryayers/rujukan-jatim/internal/repository"
	"github.com/dextryayers/rujukan-jatim/internal/service"
)

func (h *HandlerSet) listDocuments(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list documents failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": renderDocuments(docs)})
}

func (h *HandlerSet) getDocument(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			respondError(c, http.StatusNotFound, "not_found")
			return
		}
		h.log.Error().Err(err).Msg("get document failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": renderDocument(doc)})
}

func uploadErrorStatus(c *gin.Context, h *HandlerSet, err error) {
	switch {
	case errors.Is(err, service.ErrFileTooLarge):
		respondError(c, http.StatusUnprocessableEntity, "file_too_large")
	case errors.Is(err, service.ErrUnsupportedFile):
		respondError(c, http.StatusUnprocessableEntity, "unsupported_file")
	case errors.Is(err, service.ErrEmptyFile):
		respondError(c, http.StatusUnprocessableEntity, "empty_file")
	case errors.Is(err, repository.ErrDocumentNotFound):
		respondError(c, http.StatusNotFound, "not_found")
	default:
		h.log.Error().Err(err).Msg("document write failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
	}
}

func optionalFormValue(c *gin.Context, key string) (*string, bool) {
	values, ok := c.GetPostFormArray(key)
	if !ok || len(values) == 0 {
		return nil, false
	}
	return &values[0], true
}

func (h *HandlerSet) uploadDocument(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		respondError(c, http.StatusUnprocessableEntity, "title_required")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "file_required")
		return
	}
	defer file.Close()

	description, _ := optionalFormValue(c, "description")
	category, _ := optionalFormValue(c, "category")

	actor, _ := middleware.CurrentUser(c)

	doc, err := h.documents.Upload(c.Request.Context(), service.UploadInput{
		Title:       title,
		Description: description,
		Category:    category,
		File:        file,
		Header:      header,
		Actor:       &actor,
	})
	if err != nil {
		uploadErrorStatus(c, h, err)
		return
	}

	h.activity.Log(c.Request.Context(), "document.created",
		fmt.Sprintf("Dokumen %q diunggah.", doc.Title),
		&actor, map[string]any{"document_id": doc.ID})

	c.JSON(http.StatusCreated, gin.H{"document": renderDocument(doc)})
}

func (h *HandlerSet) updateDocument(c *gin.Context) {
	input := service.DocumentUpdateInput{}

	if title, ok := optionalFormValue(c, "title"); ok {
		input.Title = title
	}
	if description, ok := optionalFormValue(c, "description"); ok {
		input.Description = description
		input.HasDesc = true
	}
	if category, ok := optionalFormValue(c, "category"); ok {
		input.Category = category
		input.HasCategory = true
	}
	if file, header, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		input.File = file
		input.Header = header
	}

	doc, err := h.documents.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		uploadErrorStatus(c, h, err)
		return
	}

	actor, _ := middleware.CurrentUser(c)
	h.activity.Log(c.Request.Context(), "document.updated",
		fmt.Sprintf("Dokumen %q diperbarui.", doc.Title),
		&actor, map[string]any{"document_id": doc.ID})

	c.JSON(http.StatusOK, gin.H{"document": renderDocument(doc)})
}

func (h *HandlerSet) deleteDocument(c *gin.Context) {
	doc, err := h.documents.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			respondError(c, http.StatusNotFound, "not_found")
			return
		}
		h.log.Error().Err(err).Msg("delete document failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	actor, _ := middleware.CurrentUser(c)
	h.activity.Log(c.Request.Context(), "document.deleted",
		fmt.Sprintf("Dokumen %q dihapus.", doc.Title),
		&actor, map[string]any{"document_id": doc.ID})

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// downloadDocument streams the stored binary with an attachment disposition.
func (h *HandlerSet) downloadDocument(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			respondError(c, http.StatusNotFound, "not_found")
			return
		}
		h.log.Error().Err(err).Msg("get document failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	reader, err := h.documents.Open(c.Request.Context(), doc)
	if err != nil {
		h.log.Error().Err(err).Str("document_id", doc.ID).Msg("open document failed")
		respondError(c, http.StatusNotFound, "not_found")
		return
	}
	defer reader.Close()

	fileName := doc.ID
	if doc.FileName != nil {
		fileName = *doc.FileName
	}
	contentType := "application/octet-stream"
	if doc.MimeType != nil {
		contentType = *doc.MimeType
	}

	c.DataFromReader(http.StatusOK, doc.FileSize, contentType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", fileName),
	})
}
