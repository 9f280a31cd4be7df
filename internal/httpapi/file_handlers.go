package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/services"
)

func (s *Server) handleGetFile(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	f, err := s.files.GetFile(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toFileResponse(f))
}

// handleDownloadFile redirects to a presigned URL when the storage backend
// provides one, otherwise streams the blob through the API.
func (s *Server) handleDownloadFile(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	dl, err := s.files.DownloadFile(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	if dl.URL != "" {
		c.Redirect(http.StatusTemporaryRedirect, dl.URL)
		return
	}
	defer dl.Body.Close()

	c.DataFromReader(http.StatusOK, dl.File.SizeBytes, "application/octet-stream", dl.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", dl.File.Title),
	})
}

// handleUploadFile accepts a multipart upload for a catalog model.
func (s *Server) handleUploadFile(c *gin.Context) {
	modelID, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, apperrors.NewValidationError("file part is required"))
		return
	}

	body, err := fh.Open()
	if err != nil {
		writeError(c, apperrors.NewValidationError("file part is unreadable"))
		return
	}
	defer body.Close()

	created, err := s.files.UploadFile(c.Request.Context(), currentUser(c), services.UploadFileParams{
		ModelID:  modelID,
		Filename: fh.Filename,
		Title:    c.PostForm("title"),
		Version:  c.PostForm("version"),
		IsPublic: c.DefaultPostForm("is_public", "true") != "false",
		Size:     fh.Size,
		Body:     body,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toFileResponse(created))
}

func (s *Server) handleUpdateFile(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var update services.FileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		writeError(c, apperrors.NewValidationError("Invalid request body"))
		return
	}

	updated, err := s.files.UpdateFile(c.Request.Context(), currentUser(c), id, update)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toFileResponse(updated))
}

func (s *Server) handleDeleteFile(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := s.files.DeleteFile(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
