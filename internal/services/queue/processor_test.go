package queue

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/circle-mask/internal/models"
	"github.com/phambaophuc/circle-mask/internal/services/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeStore struct {
	mu        sync.Mutex
	cache     map[string][]byte
	files     map[string][]byte
	uploads   map[string][]byte
	jobs      []models.ProcessingJob
	uploadErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cache:   map[string][]byte{},
		files:   map[string][]byte{},
		uploads: map[string][]byte{},
	}
}

func (s *fakeStore) GetFromCache(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache[key], nil
}

func (s *fakeStore) SetCache(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = data
	return nil
}

func (s *fakeStore) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[filename] = data
	return "https://cdn.test/" + filename, nil
}

func (s *fakeStore) Download(ctx context.Context, path string, maxSize int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (s *fakeStore) SaveJob(ctx context.Context, job *models.ProcessingJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, *job)
	return nil
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (a *fakeAck) Ack(multiple bool) error {
	a.acked = true
	return nil
}

func (a *fakeAck) Nack(multiple, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func newTestQueue(t *testing.T, store Store) *QueueService {
	t.Helper()
	p, err := processor.NewImageProcessor(nil, processor.DefaultOptions(), zaptest.NewLogger(t))
	require.NoError(t, err)

	return &QueueService{
		logger:      zaptest.NewLogger(t),
		queueName:   "test",
		maxFileSize: 10 << 20,
		processor:   p,
		store:       store,
	}
}

func redPNG(t *testing.T, size int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(size, size, color.NRGBA{R: 255, A: 255}), imaging.PNG))
	return buf.Bytes()
}

func TestProcessJobFromStoragePath(t *testing.T) {
	store := newFakeStore()
	store.files["uploads/avatar.png"] = redPNG(t, 200)
	q := newTestQueue(t, store)

	job := &models.ProcessingJob{ID: "job-1", Request: models.CircleRequest{StoragePath: "uploads/avatar.png"}}
	result, err := q.processJob(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, models.ImageSize{Width: 196, Height: 196}, result.Size)
	assert.Equal(t, "https://cdn.test/avatar_circle.png", result.URL)
	assert.Equal(t, "hard", result.Edge)
	assert.False(t, result.Cached)
	assert.Len(t, store.cache, 1)

	again, err := q.processJob(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, result.FileSize, again.FileSize)
}

func TestProcessJobFromURL(t *testing.T) {
	data := redPNG(t, 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	store := newFakeStore()
	q := newTestQueue(t, store)

	job := &models.ProcessingJob{ID: "job-2", Request: models.CircleRequest{ImageURL: srv.URL + "/logo.png", Edge: "smooth"}}
	result, err := q.processJob(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, models.ImageSize{Width: 98, Height: 98}, result.Size)
	assert.Equal(t, "smooth", result.Edge)
	assert.Contains(t, store.uploads, "logo_circle.png")
}

func TestProcessJobErrors(t *testing.T) {
	store := newFakeStore()
	q := newTestQueue(t, store)
	ctx := context.Background()

	_, err := q.processJob(ctx, &models.ProcessingJob{ID: "a"})
	assert.ErrorIs(t, err, errNoSource)

	_, err = q.processJob(ctx, &models.ProcessingJob{ID: "b", Request: models.CircleRequest{StoragePath: "x.png", Edge: "wavy"}})
	assert.ErrorIs(t, err, processor.ErrInvalidEdge)

	store.files["bad.png"] = []byte("not an image")
	_, err = q.processJob(ctx, &models.ProcessingJob{ID: "c", Request: models.CircleRequest{StoragePath: "bad.png"}})
	assert.ErrorContains(t, err, "failed to process image")

	store.files["ok.png"] = redPNG(t, 50)
	store.uploadErr = errors.New("bucket full")
	_, err = q.processJob(ctx, &models.ProcessingJob{ID: "d", Request: models.CircleRequest{StoragePath: "ok.png"}})
	assert.ErrorContains(t, err, "bucket full")
}

func TestHandleDeliveryCompletes(t *testing.T) {
	store := newFakeStore()
	store.files["in.png"] = redPNG(t, 60)
	q := newTestQueue(t, store)
	ack := &fakeAck{}

	q.handleDelivery(context.Background(), []byte(`{"id":"job-9","request":{"storage_path":"in.png"},"status":"pending"}`), ack, 1)

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	require.Len(t, store.jobs, 2)
	assert.Equal(t, models.StatusProcessing, store.jobs[0].Status)
	assert.Equal(t, models.StatusCompleted, store.jobs[1].Status)
	require.NotNil(t, store.jobs[1].Result)
	assert.Equal(t, 59, store.jobs[1].Result.Size.Width)
}

func TestHandleDeliveryFailure(t *testing.T) {
	store := newFakeStore()
	q := newTestQueue(t, store)
	ack := &fakeAck{}

	q.handleDelivery(context.Background(), []byte(`{"id":"job-10","request":{"storage_path":"missing.png"}}`), ack, 1)

	assert.True(t, ack.acked, "failed jobs are settled, not redelivered")
	require.Len(t, store.jobs, 2)
	assert.Equal(t, models.StatusFailed, store.jobs[1].Status)
	assert.Contains(t, store.jobs[1].Error, "object not found")
}

func TestHandleDeliveryMalformed(t *testing.T) {
	store := newFakeStore()
	q := newTestQueue(t, store)

	for _, body := range []string{"{not json", `{"request":{}}`} {
		ack := &fakeAck{}
		q.handleDelivery(context.Background(), []byte(body), ack, 1)

		assert.True(t, ack.nacked, body)
		assert.False(t, ack.requeued, body)
		assert.False(t, ack.acked, body)
	}
	assert.Empty(t, store.jobs)
}

// ctxStore fails every call made with a done context.
type ctxStore struct {
	*fakeStore
}

func (s ctxStore) Download(ctx context.Context, path string, maxSize int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.fakeStore.Download(ctx, path, maxSize)
}

func (s ctxStore) SaveJob(ctx context.Context, job *models.ProcessingJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.fakeStore.SaveJob(ctx, job)
}

func TestHandleDeliveryRequeuesOnShutdown(t *testing.T) {
	store := newFakeStore()
	store.files["in.png"] = redPNG(t, 60)
	q := newTestQueue(t, ctxStore{store})
	ack := &fakeAck{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q.handleDelivery(ctx, []byte(`{"id":"job-11","request":{"storage_path":"in.png"},"status":"pending"}`), ack, 1)

	assert.False(t, ack.acked)
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeued)
	require.Len(t, store.jobs, 2)
	assert.Equal(t, models.StatusProcessing, store.jobs[0].Status)
	assert.Equal(t, models.StatusPending, store.jobs[1].Status)
	assert.Empty(t, store.jobs[1].Error)
}
