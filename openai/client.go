package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

var (
	// ErrUnavailable means the classifier could not be reached or returned
	// an unusable response envelope.
	ErrUnavailable = errors.New("classifier unavailable")

	// ErrTimeout means the classifier call exceeded its time budget.
	ErrTimeout = errors.New("classifier timeout")
)

const analyzePrompt = `You are a litter site inspector. Analyze the photo of a reported trash site.

Judge how dirty the site is and how much effort cleaning it would take,
then decide a reward between 0 and 100 points for reporting it.

Output a single flat JSON object and nothing else, no markdown, no nesting:
{
  "status": "<clean | dirty | hazardous>",
  "description": "<1-2 sentences describing the site>",
  "reward": <integer 0-100>
}`

type Message struct {
	Role    string        `json:"role"`
	Content []ContentItem `json:"content"`
}

type ContentItem struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client represents an OpenAI API client
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates a new OpenAI client
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: openAIEndpoint,
		client:   &http.Client{},
	}
}

// Analyze sends the report image to the vision model together with a
// coordinate hint and returns the raw assistant text. The caller bounds the
// call with its context; no retries happen here.
func (c *Client) Analyze(ctx context.Context, image []byte, latitude, longitude float64) (string, error) {
	base64Image := base64.StdEncoding.EncodeToString(image)
	dataURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64Image)

	hint := fmt.Sprintf("The photo was taken at latitude %f, longitude %f.", latitude, longitude)

	reqBody := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{
				Role: "user",
				Content: []ContentItem{
					{
						Type: "text",
						Text: analyzePrompt + "\n\n" + hint,
					},
					{
						Type: "image_url",
						ImageURL: &ImageURL{
							URL: dataURL,
						},
					},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API error (status %d): %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", ErrUnavailable, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrUnavailable)
	}

	return chatResp.Choices[0].Message.Content, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
