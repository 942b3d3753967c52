package controllers

import (
	"mime/multipart"
	"net/http"

	"staybook/services"

	"github.com/gin-gonic/gin"
)

const maxUploadFiles = 100

type UploadController struct {
	Uploads *services.UploadService
}

func NewUploadController(uploads *services.UploadService) UploadController {
	return UploadController{Uploads: uploads}
}

type UploadByLinkInput struct {
	Link string `json:"link" binding:"required"`
}

// UploadPhotos godoc
// @Summary Upload place photos
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param photos formData file true "One or more photos"
// @Success 200 {array} string
// @Failure 400 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /upload [post]
func (u UploadController) UploadPhotos(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, err)
		return
	}

	headers := form.File["photos"]
	if len(headers) > maxUploadFiles {
		failure(c, http.StatusBadRequest, KindBadRequest, "Too many files")
		return
	}

	files := make([]services.Upload, 0, len(headers))
	for _, h := range headers {
		src, err := h.Open()
		if err != nil {
			badRequest(c, err)
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(src)
		files = append(files, services.Upload{Filename: h.Filename, Body: src})
	}

	urls, err := u.Uploads.UploadFiles(c.Request.Context(), files)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Upload successful", urls)
}

// UploadByLink godoc
// @Summary Copy a remote photo into the blob store
// @Tags uploads
// @Accept json
// @Produce json
// @Param input body UploadByLinkInput true "Remote photo URL"
// @Success 200 {object} map[string]any
// @Router /upload-by-link [post]
func (u UploadController) UploadByLink(c *gin.Context) {
	var input UploadByLinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	url, err := u.Uploads.UploadByLink(c.Request.Context(), input.Link)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Upload successful", url)
}
