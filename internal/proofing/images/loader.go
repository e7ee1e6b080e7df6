// Package images downloads and decrypts the document images referenced by a
// document-flow request. Images are AES-256-GCM encrypted with the request's
// key and a per-image 12-byte IV; the ciphertext is followed by the tag.
package images

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"idproof/internal/proofing"
	"idproof/internal/proofing/ports"
	"idproof/internal/vendors/vendorhttp"
)

const (
	keySize = 32
	ivSize  = 12
)

// Loader implements ports.ImageLoader.
type Loader struct {
	client *http.Client
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		l.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

func New(opts ...Option) *Loader {
	l := &Loader{
		client: vendorhttp.NewClient(30 * time.Second),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches front, back and selfie in that order. Transport failures are
// retryable; a non-2xx answer or bad key material is not.
func (l *Loader) Load(ctx context.Context, req proofing.DocumentRequest) (ports.Images, error) {
	key, err := decodeSecret(req.EncryptionKey, keySize)
	if err != nil {
		return ports.Images{}, proofing.NewError(proofing.CategoryInvalidRequest, "load images", "invalid encryption key", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return ports.Images{}, proofing.NewError(proofing.CategoryInvalidRequest, "load images", "invalid encryption key", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return ports.Images{}, fmt.Errorf("init gcm: %w", err)
	}

	var out ports.Images
	for _, img := range []struct {
		name string
		src  proofing.EncryptedImage
		dst  *[]byte
	}{
		{"front", req.Front, &out.Front},
		{"back", req.Back, &out.Back},
		{"selfie", req.Selfie, &out.Selfie},
	} {
		data, err := l.fetch(ctx, aead, img.name, img.src)
		if err != nil {
			return ports.Images{}, err
		}
		*img.dst = data
	}
	l.logger.DebugContext(ctx, "document images loaded",
		"front_bytes", len(out.Front),
		"back_bytes", len(out.Back),
		"selfie_bytes", len(out.Selfie),
	)
	return out, nil
}

func (l *Loader) fetch(ctx context.Context, aead cipher.AEAD, name string, src proofing.EncryptedImage) ([]byte, error) {
	op := "load " + name + " image"
	iv, err := decodeSecret(src.IV, ivSize)
	if err != nil {
		return nil, proofing.NewError(proofing.CategoryInvalidRequest, op, "invalid iv", err)
	}

	resp, err := vendorhttp.Do(ctx, l.client, op, vendorhttp.Request{Method: http.MethodGet, URL: src.URL})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, proofing.NewError(proofing.CategoryVendorProtocol, op, fmt.Sprintf("image host responded with status %d", resp.StatusCode), nil)
	}

	plain, err := aead.Open(nil, iv, resp.Body, nil)
	if err != nil {
		return nil, proofing.NewError(proofing.CategoryInvalidRequest, op, "decrypt image", err)
	}
	return plain, nil
}

// decodeSecret accepts the raw bytes or their standard base64 encoding.
func decodeSecret(s string, size int) ([]byte, error) {
	if len(s) == size {
		return []byte(s), nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("expected %d raw bytes or base64: %w", size, err)
	}
	if len(b) != size {
		return nil, fmt.Errorf("expected %d bytes, got %d", size, len(b))
	}
	return b, nil
}
