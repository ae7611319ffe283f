package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/baharkarakas/tradebinder/internal/api/httpx"
	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/services"
)

// imageField is the multipart form field carrying the file.
const imageField = "file"

type ImageHandler struct {
	svc *services.ImageService
}

func NewImageHandler(svc *services.ImageService) *ImageHandler {
	return &ImageHandler{svc: svc}
}

// imageBody streams the upload: the "file" part of a multipart form, or the raw body otherwise.
func imageBody(r *http.Request) (io.Reader, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, apperr.BadRequest("invalid multipart body")
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, apperr.BadRequest("multipart field %q is required", imageField)
		}
		if err != nil {
			return nil, apperr.BadRequest("invalid multipart body")
		}
		if part.FormName() == imageField {
			return part, nil
		}
	}
}

func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	body, err := imageBody(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	res, err := h.svc.Upload(r.Context(), p, body)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}
