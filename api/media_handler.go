package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/epitaphe360/cms-backend/services"
)

type mediaHandler struct {
	resourceHandler[models.Media, *models.Media]
	media          *services.MediaService
	maxUploadBytes int64
}

func newMediaHandler(media *services.MediaService, maxUploadMB int64) mediaHandler {
	return mediaHandler{
		resourceHandler: newResourceHandler[models.Media, *models.Media]("mediaHandler", media),
		media:           media,
		maxUploadBytes:  maxUploadMB << 20,
	}
}

// upload stores a multipart file and creates its media record
// @Summary Upload media
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param folder formData string false "Folder"
// @Param alt formData string false "Alternative text"
// @Success 201 {object} models.Media
// @Failure 413 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Router /api/admin/media/upload [post]
func (h mediaHandler) upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := h.actor(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.maxUploadBytes))
				return
			}
			h.responder.WriteError(w, errs.NewBadRequestErrorWithField("Formulaire invalide", "file", err.Error()))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("file"))
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to read uploaded file")
			h.responder.WriteError(w, errs.NewBadRequestError("Impossible de lire le fichier"))
			return
		}

		media, err := h.media.Upload(r.Context(), services.Upload{
			Filename: header.Filename,
			Content:  content,
			Folder:   r.FormValue("folder"),
			Alt:      r.FormValue("alt"),
		}, actor)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, media)
	}
}
