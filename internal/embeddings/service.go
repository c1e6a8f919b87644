// Package embeddings produces fixed-length vectors for product images and
// text through a joint image/text encoder served over HTTP. Vectors that
// fail the dimensionality or finiteness contract are never returned.
package embeddings

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Generator is the embedding capability consumed by the scraper. A nil
// vector means the embedding could not be produced; the product persists
// without it.
type Generator interface {
	EmbedImage(ctx context.Context, imageURL string) []float32
	EmbedText(ctx context.Context, text string) []float32
}

// Cache stores computed image vectors keyed by model and image URL.
// Implemented on redis by VectorCache; a nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, model, imageURL string) ([]float32, bool)
	Set(ctx context.Context, model, imageURL string, vec []float32)
}

// Options configure the inference backend and its output contract.
type Options struct {
	BaseURL     string
	Model       string
	Dimension   int
	ChunkSize   int
	MaxDocChars int
	Timeout     time.Duration
	UserAgent   string
}

// Service talks to the inference backend. The HTTP session is built
// lazily on first use; initialization is guarded so concurrent callers
// see one session.
type Service struct {
	opts  Options
	cache Cache
	log   zerolog.Logger

	mu      sync.Mutex
	session *http.Client
}

func NewService(opts Options, cache Cache, log zerolog.Logger) *Service {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 8
	}
	if opts.MaxDocChars <= 0 {
		opts.MaxDocChars = 2000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Service{opts: opts, cache: cache, log: log}
}

func (s *Service) client() *http.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		s.log.Info().Str("model", s.opts.Model).Msg("initializing embedding session")
		s.session = &http.Client{Timeout: s.opts.Timeout}
	}
	return s.session
}

// EmbedImage downloads the image, runs it through the vision encoder and
// returns the validated vector. Any failure along the way degrades to nil;
// nothing propagates to the caller.
func (s *Service) EmbedImage(ctx context.Context, imageURL string) []float32 {
	if vec, ok := s.cacheGet(ctx, imageURL); ok {
		return vec
	}

	data, err := s.downloadImage(ctx, imageURL)
	if err != nil {
		s.log.Warn().Err(err).Str("url", imageURL).Msg("failed to download image")
		return nil
	}

	vec, err := s.infer(ctx, inferRequest{
		Model:    s.opts.Model,
		ImageB64: base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		s.log.Error().Err(err).Str("url", imageURL).Msg("failed to generate image embedding")
		return nil
	}

	if err := s.validate(vec); err != nil {
		s.log.Error().Err(err).Str("url", imageURL).Msg("image embedding rejected")
		return nil
	}

	s.cacheSet(ctx, imageURL, vec)
	return vec
}

func (s *Service) cacheGet(ctx context.Context, imageURL string) ([]float32, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, s.opts.Model, imageURL)
}

func (s *Service) cacheSet(ctx context.Context, imageURL string, vec []float32) {
	if s.cache == nil {
		return
	}
	s.cache.Set(ctx, s.opts.Model, imageURL, vec)
}

// EmbedText encodes a text document with the text branch of the same
// joint model, so image and text vectors share a comparable space.
func (s *Service) EmbedText(ctx context.Context, text string) []float32 {
	if text == "" {
		return nil
	}
	if len(text) > s.opts.MaxDocChars {
		// Back up to a rune boundary so a multi-byte character is never
		// split mid-sequence.
		cut := s.opts.MaxDocChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	vec, err := s.infer(ctx, inferRequest{Model: s.opts.Model, Text: text})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to generate text embedding")
		return nil
	}

	if err := s.validate(vec); err != nil {
		s.log.Error().Err(err).Msg("text embedding rejected")
		return nil
	}

	return vec
}

// EmbedImageBatch embeds many images in fixed-size chunks. Output order
// matches input order, with nil placeholders for failed downloads. A
// chunk-level inference failure degrades only that chunk to all-nil.
func (s *Service) EmbedImageBatch(ctx context.Context, imageURLs []string) [][]float32 {
	out := make([][]float32, 0, len(imageURLs))

	for start := 0; start < len(imageURLs); start += s.opts.ChunkSize {
		end := start + s.opts.ChunkSize
		if end > len(imageURLs) {
			end = len(imageURLs)
		}
		out = append(out, s.embedChunk(ctx, imageURLs[start:end])...)
	}

	return out
}

func (s *Service) embedChunk(ctx context.Context, urls []string) [][]float32 {
	results := make([][]float32, len(urls))

	payloads := make([]string, 0, len(urls))
	positions := make([]int, 0, len(urls))
	for i, u := range urls {
		if vec, ok := s.cacheGet(ctx, u); ok {
			results[i] = vec
			continue
		}
		data, err := s.downloadImage(ctx, u)
		if err != nil {
			s.log.Warn().Err(err).Str("url", u).Msg("failed to download image")
			continue
		}
		payloads = append(payloads, base64.StdEncoding.EncodeToString(data))
		positions = append(positions, i)
	}

	if len(payloads) == 0 {
		return results
	}

	vecs, err := s.inferBatch(ctx, batchRequest{Model: s.opts.Model, ImagesB64: payloads})
	if err != nil || len(vecs) != len(payloads) {
		s.log.Error().Err(err).Int("chunk", len(payloads)).Msg("failed to embed image chunk")
		return results
	}

	for j, vec := range vecs {
		if err := s.validate(vec); err != nil {
			s.log.Error().Err(err).Str("url", urls[positions[j]]).Msg("batch embedding rejected")
			continue
		}
		results[positions[j]] = vec
		s.cacheSet(ctx, urls[positions[j]], vec)
	}

	return results
}

// validate enforces the persistence contract: exact dimensionality and
// only finite components.
func (s *Service) validate(vec []float32) error {
	if len(vec) != s.opts.Dimension {
		return fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(vec), s.opts.Dimension)
	}
	for _, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("embedding contains non-finite values")
		}
	}
	return nil
}

func (s *Service) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

type inferRequest struct {
	Model    string `json:"model"`
	ImageB64 string `json:"image,omitempty"`
	Text     string `json:"text,omitempty"`
}

type inferResponse struct {
	Embedding []float32 `json:"embedding"`
}

type batchRequest struct {
	Model     string   `json:"model"`
	ImagesB64 []string `json:"images"`
}

type batchResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (s *Service) infer(ctx context.Context, reqBody inferRequest) ([]float32, error) {
	var resp inferResponse
	if err := s.post(ctx, "/embed", reqBody, &resp); err != nil {
		return nil, err
	}
	return resp.Embedding, nil
}

func (s *Service) inferBatch(ctx context.Context, reqBody batchRequest) ([][]float32, error) {
	var resp batchResponse
	if err := s.post(ctx, "/embed/batch", reqBody, &resp); err != nil {
		return nil, err
	}
	return resp.Embeddings, nil
}

func (s *Service) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference backend status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
