package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Storage keeps statement files in a Supabase Storage bucket.
// Transient failures are retried by go-retryablehttp.
type Storage struct {
	client     *retryablehttp.Client
	baseURL    string
	serviceKey string
	bucket     string
	logger     *zap.Logger
}

// NewStorage creates a bucket client.
func NewStorage(httpClient *http.Client, baseURL, serviceKey, bucket string, maxRetries int, logger *zap.Logger) *Storage {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.RetryMax = maxRetries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = &retryLogger{logger: logger.Sugar()}

	return &Storage{
		client:     rc,
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		logger:     logger,
	}
}

func (s *Storage) objectURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, strings.TrimLeft(path, "/"))
}

// Put uploads data, replacing any existing object at path.
func (s *Storage) Put(ctx context.Context, path, contentType string, data []byte) error {
	ctx, span := tracer.Start(ctx, "Supabase.Storage.Put")
	defer span.End()
	span.SetAttributes(attribute.String("storage.path", path), attribute.Int("storage.size", len(data)))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(path), data)
	if err != nil {
		return err
	}
	s.authorize(req)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/storage", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		s.logger.Warn("supabase storage: upload failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return &domain.ErrExternalService{
			Service: "supabase/storage",
			Err:     fmt.Errorf("upload returned %d", resp.StatusCode),
		}
	}
	return nil
}

// Get downloads the object at path.
func (s *Storage) Get(ctx context.Context, path string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Supabase.Storage.Get")
	defer span.End()
	span.SetAttributes(attribute.String("storage.path", path))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(path), nil)
	if err != nil {
		return nil, err
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/storage", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		// Storage answers 400 "Object not found" for missing keys.
		return nil, &domain.ErrNotFound{Resource: "statement file", ID: path}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.ErrExternalService{
			Service: "supabase/storage",
			Err:     fmt.Errorf("download returned %d", resp.StatusCode),
		}
	}
	return io.ReadAll(resp.Body)
}

func (s *Storage) authorize(req *retryablehttp.Request) {
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
}

// retryLogger adapts zap to retryablehttp.LeveledLogger.
type retryLogger struct {
	logger *zap.SugaredLogger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warnw(msg, keysAndValues...)
}
