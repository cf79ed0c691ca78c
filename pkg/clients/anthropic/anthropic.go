package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultAPIURL = "https://api.anthropic.com/v1/messages"
	apiVersion    = "2023-06-01"
	model         = "claude-3-haiku-20240307"
	maxTokens     = 256
)

const systemPrompt = `You convert short messages from a fish processing business owner into exactly one command line.
Supported commands:
/batch                                  start a new batch
/set <batchID> <field> <value>          fields: date, purchaseCost, outputKg, pricePerKg, discountPercent, electricity, water, fuel, packaging
/sale <batchID> <grams> <totalPrice>    record a sale
/unsale <batchID> <saleID>              remove a sale
/drop <batchID>                         delete a batch
/profit                                 list batches with profit
/month [rent|ads|other <value>]         monthly costs and net profit
/price <batchID> [marginPercent]        minimum price per kg for a margin
Reply with the command line only. If the message matches no command, reply with an empty line.`

// Client defines the interface for AI text processing.
type Client interface {
	TranslateToCommand(ctx context.Context, input string) (string, error)
}

type anthropicClient struct {
	httpClient *resty.Client
	apiURL     string
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string) Client {
	return newClient(apiKey, defaultAPIURL)
}

func newClient(apiKey, apiURL string) *anthropicClient {
	client := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &anthropicClient{httpClient: client, apiURL: apiURL}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []Message `json:"messages"`
}

// Message is one turn of the Messages API conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// TranslateToCommand asks the model for the slash command matching input.
// An empty result means the message is not a command.
func (c *anthropicClient) TranslateToCommand(ctx context.Context, input string) (string, error) {
	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  []Message{{Role: "user", Content: input}},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(c.apiURL)
	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return "", fmt.Errorf("empty response from ai")
	}

	line := strings.TrimSpace(respBody.Content[0].Text)
	line = strings.Trim(line, "`")
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return "", nil
	}
	return line, nil
}
