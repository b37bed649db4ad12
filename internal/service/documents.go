package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/dextryayers/rujukan-jatim/internal/config"
	"github.com/dextryayers/rujukan-jatim/internal/docs/sniffer"
	"github.com/dextryayers/rujukan-jatim/internal/docs/svg"
	"github.com/dextryayers/rujukan-jatim/internal/ids"
	"github.com/dextryayers/rujukan-jatim/internal/models"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("empty file")
)

type DocumentStore interface {
	List(ctx context.Context) ([]models.Document, error)
	GetByID(ctx context.Context, id string) (models.Document, error)
	Create(ctx context.Context, doc models.Document) error
	Update(ctx context.Context, doc models.Document) error
	Delete(ctx context.Context, id string) error
}

type BinaryStore interface {
	Put(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (int64, error)
	Get(ctx context.Context, objectKey string) (io.ReadCloser, error)
	Remove(ctx context.Context, objectKey string) error
	PublicURL(objectKey string) string
}

type DocumentService struct {
	docs   DocumentStore
	store  BinaryStore
	users  UserStore
	cfg    config.UploadConfig
	log    zerolog.Logger
	now    func() time.Time
}

func NewDocumentService(docs DocumentStore, store BinaryStore, users UserStore, cfg config.UploadConfig, log zerolog.Logger) *DocumentService {
	return &DocumentService{
		docs:  docs,
		store: store,
		users: users,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

func (s *DocumentService) List(ctx context.Context) ([]models.Document, error) {
	return s.docs.List(ctx)
}

func (s *DocumentService) Get(ctx context.Context, id string) (models.Document, error) {
	return s.docs.GetByID(ctx, id)
}

type UploadInput struct {
	Title       string
	Description *string
	Category    *string
	File        multipart.File
	Header      *multipart.FileHeader
	Actor       *models.User
}

type storedFile struct {
	objectKey string
	fileName  string
	mimeType  string
	size      int64
}

// readAndStore validates the payload against the size cap and mime
// allow-list, sanitizes SVG content, and writes the binary to the store.
func (s *DocumentService) readAndStore(ctx context.Context, file multipart.File, header *multipart.FileHeader, docID string) (storedFile, error) {
	if header.Size > s.cfg.MaxBytes {
		return storedFile{}, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxBytes+1))
	if err != nil {
		return storedFile{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return storedFile{}, ErrEmptyFile
	}
	if int64(len(data)) > s.cfg.MaxBytes {
		return storedFile{}, ErrFileTooLarge
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	result, err := sniffer.DetectHead(head)
	if err != nil {
		return storedFile{}, ErrUnsupportedFile
	}

	declared := sniffer.MimeTypeFromHTTP(http.Header(header.Header))
	if !sniffer.Compatible(declared, result) {
		return storedFile{}, ErrUnsupportedFile
	}

	mimeType := result.MIME
	if declared != "" {
		mimeType = declared
	}
	if !s.mimeAllowed(mimeType) {
		return storedFile{}, ErrUnsupportedFile
	}

	if result.Type == sniffer.TypeSVG {
		clean, err := svg.Sanitize(data)
		if err != nil {
			return storedFile{}, ErrUnsupportedFile
		}
		data = clean
	}

	ext := path.Ext(header.Filename)
	objectKey := path.Join(s.now().UTC().Format("2006/01/02"), docID+ext)

	size, err := s.store.Put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), mimeType)
	if err != nil {
		return storedFile{}, fmt.Errorf("store binary: %w", err)
	}

	return storedFile{
		objectKey: objectKey,
		fileName:  header.Filename,
		mimeType:  mimeType,
		size:      size,
	}, nil
}

func (s *DocumentService) mimeAllowed(mimeType string) bool {
	for _, allowed := range s.cfg.AllowedTypes {
		if allowed == mimeType {
			return true
		}
	}
	return false
}

func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (models.Document, error) {
	if input.File == nil || input.Header == nil {
		return models.Document{}, ErrEmptyFile
	}

	docID := ids.New()
	stored, err := s.readAndStore(ctx, input.File, input.Header, docID)
	if err != nil {
		return models.Document{}, err
	}

	now := s.now()
	fileURL := s.store.PublicURL(stored.objectKey)

	doc := models.Document{
		ID:          docID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		ObjectKey:   &stored.objectKey,
		FileName:    &stored.fileName,
		MimeType:    &stored.mimeType,
		FileSize:    stored.size,
		FileURL:     &fileURL,
		PublishedAt: &now,
	}
	if input.Actor != nil {
		actorID := input.Actor.ID
		doc.CreatedBy = &actorID
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return models.Document{}, fmt.Errorf("save metadata: %w", err)
	}

	// A profile-photo upload doubles as the uploader's new avatar.
	if input.Category != nil && *input.Category == models.DocumentCategoryProfilePhoto && input.Actor != nil {
		user := *input.Actor
		user.PhotoURL = &fileURL
		if err := s.users.Update(ctx, user); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("update profile photo failed")
		}
	}

	return doc, nil
}

type DocumentUpdateInput struct {
	Title       *string
	Description *string
	HasDesc     bool
	Category    *string
	HasCategory bool
	File        multipart.File
	Header      *multipart.FileHeader
}

func (s *DocumentService) Update(ctx context.Context, id string, input DocumentUpdateInput) (models.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return models.Document{}, err
	}

	if input.File != nil && input.Header != nil {
		stored, err := s.readAndStore(ctx, input.File, input.Header, doc.ID)
		if err != nil {
			return models.Document{}, err
		}

		if doc.ObjectKey != nil && *doc.ObjectKey != stored.objectKey {
			if err := s.store.Remove(ctx, *doc.ObjectKey); err != nil {
				s.log.Warn().Err(err).Str("object_key", *doc.ObjectKey).Msg("remove old binary failed")
			}
		}

		fileURL := s.store.PublicURL(stored.objectKey)
		doc.ObjectKey = &stored.objectKey
		doc.FileName = &stored.fileName
		doc.MimeType = &stored.mimeType
		doc.FileSize = stored.size
		doc.FileURL = &fileURL
	}

	if input.Title != nil {
		doc.Title = *input.Title
	}
	if input.HasDesc {
		doc.Description = input.Description
	}
	if input.HasCategory {
		doc.Category = input.Category
	}
	if doc.PublishedAt == nil {
		now := s.now()
		doc.PublishedAt = &now
	}

	if err := s.docs.Update(ctx, doc); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

// Delete removes the stored binary best-effort before dropping the record;
// a missing binary is not fatal.
func (s *DocumentService) Delete(ctx context.Context, id string) (models.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return models.Document{}, err
	}

	if doc.ObjectKey != nil {
		if err := s.store.Remove(ctx, *doc.ObjectKey); err != nil {
			s.log.Warn().Err(err).Str("object_key", *doc.ObjectKey).Msg("remove binary failed")
		}
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

// Open returns the stored binary for streaming to the client.
func (s *DocumentService) Open(ctx context.Context, doc models.Document) (io.ReadCloser, error) {
	if doc.ObjectKey == nil {
		return nil, errors.New("document has no stored file")
	}
	return s.store.Get(ctx, *doc.ObjectKey)
}
