package artwork

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/contre95/musevault/src/features/config"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// maxDownloadBytes bounds a single cover download.
const maxDownloadBytes = 20 << 20

var (
	// ErrNoArtwork is returned for an empty cover URL.
	ErrNoArtwork = errors.New("no artwork available")
	// ErrDisabled is returned when cover thumbnails are turned off.
	ErrDisabled = errors.New("artwork thumbnails disabled")
)

// Service downloads cover art, scales it down and keeps the result on disk.
type Service struct {
	config *config.Manager
	client *http.Client
}

// NewService creates a new artwork service. A nil client means http.DefaultClient.
func NewService(config *config.Manager, client *http.Client) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	return &Service{
		config: config,
		client: client,
	}
}

// Thumbnail returns a JPEG of the image at url that fits in a size x size box.
// Results are cached under the configured cache dir for the configured TTL.
func (s *Service) Thumbnail(ctx context.Context, url string, size int) ([]byte, error) {
	cfg := s.config.Get()
	if !cfg.Artwork.Enabled {
		return nil, ErrDisabled
	}
	if url == "" {
		return nil, ErrNoArtwork
	}
	if size <= 0 {
		size = cfg.Artwork.DefaultSize
	}
	size = min(size, cfg.Artwork.MaxSize)

	cachePath := filepath.Join(cfg.Artwork.CacheDir, cacheKey(url, size)+".jpg")
	if info, err := os.Stat(cachePath); err == nil {
		if time.Since(info.ModTime()) < cfg.Artwork.CacheTTL {
			slog.Debug("Using cached artwork", "path", cachePath)
			return os.ReadFile(cachePath)
		}
		os.Remove(cachePath)
	}

	original, err := s.download(ctx, url, cfg.Discogs.UserAgent)
	if err != nil {
		return nil, err
	}
	thumb, err := resizeImage(original, size, cfg.Artwork.Quality)
	if err != nil {
		return nil, err
	}
	if err := writeCache(cachePath, thumb); err != nil {
		slog.Warn("Failed to cache artwork", "path", cachePath, "error", err)
	}
	return thumb, nil
}

func (s *Service) download(ctx context.Context, url, userAgent string) ([]byte, error) {
	slog.Debug("Downloading artwork", "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork download failed with status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork: %w", err)
	}
	return data, nil
}

// resizeImage scales image data down to fit maxSize, never enlarging it.
func resizeImage(imgData []byte, maxSize, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork image: %w", err)
	}
	resized := resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode artwork: %w", err)
	}
	return buf.Bytes(), nil
}

func writeCache(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func cacheKey(url string, size int) string {
	return fmt.Sprintf("%x-%d", md5.Sum([]byte(url)), size)
}
