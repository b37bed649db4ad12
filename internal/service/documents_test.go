package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dextryayers/rujukan-jatim/internal/config"
	"github.com/dextryayers/rujukan-jatim/internal/models"
	"github.com/dextryayers/rujukan-jatim/internal/repository"
)

type fakeDocumentStore struct {
	docs map[string]models.Document
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: make(map[string]models.Document)}
}

func (f *fakeDocumentStore) List(_ context.Context) ([]models.Document, error) {
	var out []models.Document
	for _, doc := range f.docs {
		out = append(out, doc)
	}
	return out, nil
}

func (f *fakeDocumentStore) GetByID(_ context.Context, id string) (models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return models.Document{}, repository.ErrDocumentNotFound
	}
	return doc, nil
}

func (f *fakeDocumentStore) Create(_ context.Context, doc models.Document) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocumentStore) Update(_ context.Context, doc models.Document) error {
	if _, ok := f.docs[doc.ID]; !ok {
		return repository.ErrDocumentNotFound
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocumentStore) Delete(_ context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return repository.ErrDocumentNotFound
	}
	delete(f.docs, id)
	return nil
}

type fakeBinaryStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeBinaryStore() *fakeBinaryStore {
	return &fakeBinaryStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (f *fakeBinaryStore) Put(_ context.Context, objectKey string, reader io.Reader, _ int64, contentType string) (int64, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return 0, err
	}
	f.objects[objectKey] = data
	f.types[objectKey] = contentType
	return int64(len(data)), nil
}

func (f *fakeBinaryStore) Get(_ context.Context, objectKey string) (io.ReadCloser, error) {
	data, ok := f.objects[objectKey]
	if !ok {
		return nil, fmt.Errorf("object %s not found", objectKey)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBinaryStore) Remove(_ context.Context, objectKey string) error {
	delete(f.objects, objectKey)
	delete(f.types, objectKey)
	return nil
}

func (f *fakeBinaryStore) PublicURL(objectKey string) string {
	return "https://files.test/" + objectKey
}

func multipartUpload(t *testing.T, fileName, contentType string, data []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	partHeader.Set("Content-Type", contentType)
	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	header := form.File["file"][0]
	file, err := header.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })
	return file, header
}

func setupDocumentService(maxBytes int64) (*DocumentService, *fakeDocumentStore, *fakeBinaryStore, *fakeUserStore) {
	docs := newFakeDocumentStore()
	store := newFakeBinaryStore()
	users := newFakeUserStore()
	cfg := config.UploadConfig{
		MaxBytes:     maxBytes,
		AllowedTypes: []string{"application/pdf", "image/png", "text/plain"},
	}
	svc := NewDocumentService(docs, store, users, cfg, zerolog.Nop())
	return svc, docs, store, users
}

func TestUploadStoresPDF(t *testing.T) {
	svc, docs, store, _ := setupDocumentService(1 << 20)

	payload := []byte("%PDF-1.7 laporan tahunan")
	file, header := multipartUpload(t, "laporan.pdf", "application/pdf", payload)

	doc, err := svc.Upload(context.Background(), UploadInput{
		Title:  "Laporan Tahunan",
		File:   file,
		Header: header,
	})
	require.NoError(t, err)

	require.NotNil(t, doc.ObjectKey)
	assert.Equal(t, payload, store.objects[*doc.ObjectKey])
	assert.Equal(t, "application/pdf", *doc.MimeType)
	assert.Equal(t, int64(len(payload)), doc.FileSize)
	assert.Contains(t, docs.docs, doc.ID)
	require.NotNil(t, doc.FileURL)
	assert.Contains(t, *doc.FileURL, "https://files.test/")
}

func TestUploadRejectsDeclaredMimeMismatch(t *testing.T) {
	svc, _, _, _ := setupDocumentService(1 << 20)

	// PNG bytes declared as PDF must not pass.
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 1, 2, 3}
	file, header := multipartUpload(t, "bukan.pdf", "application/pdf", png)

	_, err := svc.Upload(context.Background(), UploadInput{Title: "Palsu", File: file, Header: header})
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, _, _, _ := setupDocumentService(16)

	file, header := multipartUpload(t, "besar.pdf", "application/pdf", []byte("%PDF-1.7 tooooooo laaaaaarge"))

	_, err := svc.Upload(context.Background(), UploadInput{Title: "Besar", File: file, Header: header})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUploadProfilePhotoUpdatesUser(t *testing.T) {
	svc, _, _, users := setupDocumentService(1 << 20)

	actor := models.User{ID: "u1", Username: "admin1"}
	require.NoError(t, users.Create(context.Background(), actor))

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 1, 2, 3}
	file, header := multipartUpload(t, "foto.png", "image/png", png)

	category := models.DocumentCategoryProfilePhoto
	doc, err := svc.Upload(context.Background(), UploadInput{
		Title:    "Foto Profil",
		Category: &category,
		File:     file,
		Header:   header,
		Actor:    &actor,
	})
	require.NoError(t, err)

	updated, err := users.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, updated.PhotoURL)
	assert.Equal(t, *doc.FileURL, *updated.PhotoURL)
}

func TestDeleteRemovesBinary(t *testing.T) {
	svc, docs, store, _ := setupDocumentService(1 << 20)

	file, header := multipartUpload(t, "hapus.pdf", "application/pdf", []byte("%PDF-1.7 x"))
	doc, err := svc.Upload(context.Background(), UploadInput{Title: "Hapus", File: file, Header: header})
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, deleted.ID)
	assert.NotContains(t, docs.docs, doc.ID)
	assert.Empty(t, store.objects)
}
