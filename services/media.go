package services

import (
	"context"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/epitaphe360/cms-backend/auth"
	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/epitaphe360/cms-backend/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var allowedMediaTypes = []string{
	"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml",
	"video/mp4", "video/webm",
	"application/pdf",
}

// MediaService adds uploads on top of the media resource.
type MediaService struct {
	*Resource[models.Media, *models.Media]
	objects storage.ObjectStore
}

// NewMediaService accepts a nil object store; uploads then fail with an
// internal error while metadata CRUD keeps working.
func NewMediaService(store Store[models.Media], audit *AuditRecorder, objects storage.ObjectStore) *MediaService {
	res := NewResource[models.Media, *models.Media](store, audit, "Média non trouvé").
		WithHooks(stampUploader)
	return &MediaService{Resource: res, objects: objects}
}

// stampUploader attributes a new row to the actor. Client values for the
// uploader and the storage key are never trusted.
func stampUploader(ctx context.Context, media, before *models.Media, actor auth.Actor) error {
	if before == nil {
		media.UploadedBy = actor.UserID
		return nil
	}
	media.UploadedBy = before.UploadedBy
	media.StorageKey = before.StorageKey
	return nil
}

// Upload stores the bytes and records an audited media row.
type Upload struct {
	Filename string
	Content  []byte
	Folder   string
	Alt      string
}

func (s *MediaService) Upload(ctx context.Context, in Upload, actor auth.Actor) (*models.Media, error) {
	if s.objects == nil {
		return nil, errs.NewInternalError("Stockage des médias non configuré")
	}

	contentType := http.DetectContentType(in.Content)
	if ext := strings.ToLower(path.Ext(in.Filename)); ext == ".svg" && strings.HasPrefix(contentType, "text/") {
		contentType = "image/svg+xml"
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if !slices.Contains(allowedMediaTypes, contentType) {
		return nil, errs.NewUnsupportedMediaTypeError(contentType, allowedMediaTypes)
	}

	key := storage.Key(in.Folder, in.Filename)
	url, err := s.objects.Put(ctx, key, contentType, in.Content)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload media")
		return nil, errs.NewInternalError("Échec de l'envoi du fichier")
	}

	media := &models.Media{
		Filename:     path.Base(key),
		OriginalName: in.Filename,
		MimeType:     contentType,
		Size:         int64(len(in.Content)),
		URL:          url,
		StorageKey:   key,
		Alt:          in.Alt,
		Folder:       in.Folder,
		UploadedBy:   actor.UserID,
	}
	created, err := s.Insert(ctx, media, actor)
	if err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}
	return created, nil
}

// Delete removes the row, then the stored object when there is one.
func (s *MediaService) Delete(ctx context.Context, id uuid.UUID, actor auth.Actor) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Resource.Delete(ctx, id, actor); err != nil {
		return err
	}
	if existing.StorageKey != "" {
		s.removeObject(ctx, existing.StorageKey)
	}
	return nil
}

func (s *MediaService) removeObject(ctx context.Context, key string) {
	if s.objects == nil {
		return
	}
	if err := s.objects.Delete(context.WithoutCancel(ctx), key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to remove stored media object")
	}
}
