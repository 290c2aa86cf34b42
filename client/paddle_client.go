package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrPaddleDisabled is returned when no PaddleOCR endpoint is configured.
var ErrPaddleDisabled = errors.New("PaddleOCR API URL not configured")

// PaddleClient calls a PaddleOCR serving endpoint over HTTP.
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
}

// NewPaddleClient creates a PaddleOCR client. An empty apiURL disables it.
func NewPaddleClient(apiURL string) *PaddleClient {
	if apiURL != "" {
		log.Printf("PaddleOCR enabled at %s", apiURL)
	}
	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *PaddleClient) Name() string {
	return "paddleocr"
}

// Enabled reports whether an endpoint is configured.
func (p *PaddleClient) Enabled() bool {
	return p != nil && p.apiURL != ""
}

// ExtractTextAndQuality reads an image file and sends it to PaddleOCR.
func (p *PaddleClient) ExtractTextAndQuality(filePath string) (string, float64, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read image: %w", err)
	}
	return p.ExtractTextFromBytes(context.Background(), data)
}

// ExtractTextFromBytes posts base64 image bytes to the PaddleOCR API and
// returns the recognized lines with the mean confidence scaled to 0..100.
func (p *PaddleClient) ExtractTextFromBytes(ctx context.Context, data []byte) (string, float64, error) {
	if !p.Enabled() {
		return "", 0, ErrPaddleDisabled
	}

	payload := map[string]interface{}{
		"images": []string{base64.StdEncoding.EncodeToString(data)},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build PaddleOCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to call PaddleOCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("PaddleOCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Results [][]struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("failed to decode PaddleOCR response: %w", err)
	}

	var textBuilder strings.Builder
	var totalConf float64
	var count int
	for _, page := range result.Results {
		for _, line := range page {
			if strings.TrimSpace(line.Text) == "" {
				continue
			}
			textBuilder.WriteString(line.Text)
			textBuilder.WriteString("\n")
			totalConf += line.Confidence
			count++
		}
	}

	if count == 0 {
		return "", 0, fmt.Errorf("PaddleOCR extracted no text from image")
	}

	log.Printf("PaddleOCR HTTP API extracted %d lines", count)
	return textBuilder.String(), totalConf / float64(count) * 100, nil
}
