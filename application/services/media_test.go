package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"mindbloom-backend/infrastructure/storage/local"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMediaService(t *testing.T, f *fixture, maxBytes int64) *MediaService {
	t.Helper()
	files, err := local.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewMediaService(f.base, f.repos.Media, files, maxBytes)
}

func TestMediaService_UploadOpenDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newMediaService(t, f, 1024)

	file, err := svc.Upload(ctx, patientActor, "Beach Day.JPG", "application/octet-stream", strings.NewReader("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, "Beach Day.JPG", file.OriginalName)
	assert.Equal(t, file.ID+".jpg", file.StoredName)
	assert.Equal(t, "image/jpeg", file.ContentType)
	assert.Equal(t, int64(10), file.Size)

	list, err := svc.List(ctx, patientActor)
	require.NoError(t, err)
	require.Len(t, list, 1)

	meta, rc, err := svc.Open(ctx, patientActor, file.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(body))
	assert.Equal(t, file.ID, meta.ID)

	_, err = svc.Get(ctx, caregiverActor, file.ID)
	assert.True(t, pkgerrors.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, patientActor, file.ID))
	_, err = svc.Get(ctx, patientActor, file.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestMediaService_UploadRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newMediaService(t, f, 4)

	_, err := svc.Upload(ctx, patientActor, "notes.exe", "", strings.NewReader("x"))
	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", appErr.Code)

	_, err = svc.Upload(ctx, patientActor, "song.mp3", "audio/mpeg", strings.NewReader("too many bytes"))
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = svc.Upload(ctx, nil, "song.mp3", "audio/mpeg", strings.NewReader("x"))
	assert.True(t, pkgerrors.IsUnauthorized(err))

	list, err := svc.List(ctx, patientActor)
	require.NoError(t, err)
	assert.Empty(t, list)
}
