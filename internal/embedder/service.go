package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultServiceModel is used when no model_ref is configured.
	DefaultServiceModel = "nomic-embed-text"

	// serviceCallTimeout bounds every vectorize call. A timeout is a
	// failure for that one call, never a hang.
	serviceCallTimeout = 30 * time.Second

	// serviceProbeTimeout bounds the one-time reachability probe at
	// startup.
	serviceProbeTimeout = 5 * time.Second

	// serviceBatchSize caps the number of texts per HTTP request.
	serviceBatchSize = 64

	defaultCacheSize = 10000
)

// ServiceBackend is a dense neural embedding service reached over HTTP,
// speaking the common /v1/embeddings JSON shape. It is the most-preferred
// variant; initialization probes the service and fails fast when it is
// unreachable so the chain can fall back.
type ServiceBackend struct {
	baseURL    string
	model      string
	httpClient *http.Client
	cache      *Cache
}

// NewServiceBackend probes the embedding service at baseURL and returns a
// backend bound to it.
func NewServiceBackend(ctx context.Context, baseURL, modelRef string) (*ServiceBackend, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: no service URL configured", ErrBackendUnavailable)
	}
	if modelRef == "" {
		modelRef = DefaultServiceModel
	}

	s := &ServiceBackend{
		baseURL: baseURL,
		model:   modelRef,
		httpClient: &http.Client{
			Timeout: serviceCallTimeout,
		},
		cache: NewCache(defaultCacheSize),
	}

	probeCtx, cancel := context.WithTimeout(ctx, serviceProbeTimeout)
	defer cancel()

	if _, err := s.callAPI(probeCtx, []string{"probe"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return s, nil
}

func (s *ServiceBackend) Kind() Kind { return KindService }

func (s *ServiceBackend) Fingerprint() string {
	return fmt.Sprintf("service/%s/v1", s.model)
}

func (s *ServiceBackend) Vectorize(ctx context.Context, texts []string) (Matrix, error) {
	matrix := make(Matrix, len(texts))

	// Resolve cached rows first, then batch the misses.
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))
	for i, t := range texts {
		if v, ok := s.cache.Get(ComputeHash(t)); ok {
			matrix[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	for start := 0; start < len(missTexts); start += serviceBatchSize {
		end := min(start+serviceBatchSize, len(missTexts))

		rows, err := s.callAPI(ctx, missTexts[start:end])
		if err != nil {
			return nil, err
		}
		if len(rows) != end-start {
			return nil, fmt.Errorf("%w: got %d rows for %d texts", ErrBackendUnavailable, len(rows), end-start)
		}

		for j, row := range rows {
			matrix[missIdx[start+j]] = row
			s.cache.Set(ComputeHash(missTexts[start+j]), row)
		}
	}

	return matrix, nil
}

func (s *ServiceBackend) VectorizeQuery(ctx context.Context, text string) (Vector, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if v, ok := s.cache.Get(hash); ok {
		return v, nil
	}

	rows, err := s.callAPI(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrBackendUnavailable)
	}

	s.cache.Set(hash, rows[0])
	return rows[0], nil
}

func (s *ServiceBackend) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *ServiceBackend) callAPI(ctx context.Context, texts []string) (Matrix, error) {
	reqBody := map[string]interface{}{
		"input": texts,
		"model": s.model,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	rows := make(Matrix, len(apiResp.Data))
	for i, data := range apiResp.Data {
		rows[i] = data.Embedding
	}
	return rows, nil
}
