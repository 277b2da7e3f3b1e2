// Package responses is the model-service collaborator: a typed domain model of
// the computer-use slice of the OpenAI Responses API, carried over the official
// SDK. The domain types keep the agent decoupled from SDK unions; translation
// in both directions lives in params.go.
package responses

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// ClientOptions configures a Client. The zero value is usable: the API key
// falls back to OPENAI_API_KEY and everything else to SDK defaults.
type ClientOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the Responses API. Safe for concurrent use.
type Client struct {
	api    openai.Client
	apiKey string
	logger *zap.Logger
}

// NewClient returns a client using the options, with defaults applied.
func NewClient(opts ClientOptions) *Client {
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	reqOpts := []ooption.RequestOption{
		ooption.WithAPIKey(opts.APIKey),
		// The agent owns retry policy: a failed turn is surfaced to the
		// caller, never replayed by the transport.
		ooption.WithMaxRetries(0),
		ooption.WithRequestTimeout(120 * time.Second),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, ooption.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, ooption.WithHTTPClient(opts.HTTPClient))
	}

	return &Client{
		api:    openai.NewClient(reqOpts...),
		apiKey: opts.APIKey,
		logger: opts.Logger.With(zap.String("component", "responses_client")),
	}
}

// CreateTurn creates or continues one turn. It blocks until the service
// replies; there is no automatic retry. Service failures come back as the
// SDK's *openai.Error.
func (c *Client) CreateTurn(ctx context.Context, req Request) (*Response, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("responses: missing API key; set OPENAI_API_KEY or pass one in ClientOptions")
	}

	c.logger.Debug("creating turn",
		zap.String("model", req.Model),
		zap.String("previous_response_id", req.PreviousResponseID),
		zap.Int("input_items", len(req.Input)),
	)

	resp, err := c.api.Responses.New(ctx, req.newParams())
	if err != nil {
		return nil, fmt.Errorf("responses: create turn: %w", err)
	}
	return fromSDK(resp), nil
}
