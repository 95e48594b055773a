// File: internal/imagehost/service.go
package imagehost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/config"
)

// UploadResult carries the hosted location of an uploaded image.
type UploadResult struct {
	URL string `json:"url"`
}

// Service pushes browser-selected images to the external image host and
// hands back the public URL the task form embeds. Uploads use the host's
// own API key, never the user's credentials.
type Service struct {
	uploadURL  string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewService creates an image upload service.
func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if cfg.ImageHostUploadURL == "" {
		return nil, fmt.Errorf("image host upload URL cannot be empty")
	}
	return &Service{
		uploadURL:  cfg.ImageHostUploadURL,
		apiKey:     cfg.ImageHostAPIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.Named("ImageHostService"),
	}, nil
}

// Upload streams a multipart file to the image host and returns the hosted
// URL. Only common image types are accepted.
func (s *Service) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*UploadResult, error) {
	if fileHeader == nil {
		return nil, common.ErrBadRequest.WithDetails("No image file in the request.")
	}
	if err := checkImageType(fileHeader); err != nil {
		return nil, err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := writer.CreateFormFile("image", filepath.Base(fileHeader.Filename))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	target := fmt.Sprintf("%s?key=%s", s.uploadURL, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to build image host request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("Image host request failed to send", zap.Error(err))
		return nil, common.ErrUpstreamDown.WithDetails("Image host is unreachable.")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image host response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("Image host rejected upload",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(raw)),
		)
		return nil, common.ErrUpstreamDown.WithDetails("Image host rejected the upload.")
	}

	// imgbb-style envelope: {"data": {"url": "..."}}
	var envelope struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Data.URL == "" {
		return nil, fmt.Errorf("image host returned an unexpected payload")
	}

	s.logger.Info("Image uploaded", zap.String("url", envelope.Data.URL))
	return &UploadResult{URL: envelope.Data.URL}, nil
}

func checkImageType(fileHeader *multipart.FileHeader) error {
	contentType := fileHeader.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "image/jpeg"),
		strings.HasPrefix(contentType, "image/png"),
		strings.HasPrefix(contentType, "image/gif"),
		strings.HasPrefix(contentType, "image/webp"):
		return nil
	}
	return common.ErrBadRequest.WithDetails(
		fmt.Sprintf("Unsupported image type: %s", contentType))
}
