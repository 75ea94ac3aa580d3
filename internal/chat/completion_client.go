package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
)

//go:generate mockgen -source=completion_client.go -destination=mocks/completion_client.go -package=mocks

type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionClient interface {
	Complete(ctx context.Context, messages []CompletionMessage) (string, error)
}

// CompletionAPI is a narrow client for an OpenAI-style chat completions
// endpoint.
type CompletionAPI struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewCompletionAPI(baseURL, model, apiKey string, httpClient *http.Client) *CompletionAPI {
	return &CompletionAPI{
		endpoint:   baseURL + "/chat/completions",
		model:      model,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []CompletionMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message CompletionMessage `json:"message"`
	} `json:"choices"`
}

func (api *CompletionAPI) Complete(ctx context.Context, messages []CompletionMessage) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "completionApi.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	reqBytes, err := json.Marshal(completionRequest{
		Model:       api.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+api.apiKey)

	resp, err := api.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = closeErr
		}
	}()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion api status %d: %s", resp.StatusCode, respBytes)
	}

	var completionResp completionResponse
	if err = json.Unmarshal(respBytes, &completionResp); err != nil {
		return "", fmt.Errorf("unmarshal completion response: %w", err)
	}
	if len(completionResp.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	return completionResp.Choices[0].Message.Content, nil
}
