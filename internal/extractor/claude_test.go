package extractor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/shipment-cli/internal/config"
	"github.com/sells-group/shipment-cli/internal/model"
	"github.com/sells-group/shipment-cli/pkg/anthropic"
)

// stubClient implements anthropic.Client with a canned response.
type stubClient struct {
	response string
	lastReq  anthropic.MessageRequest
	err      error
}

func (s *stubClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &anthropic.MessageResponse{
		ID:      "stub-msg-001",
		Model:   req.Model,
		Content: []anthropic.ContentBlock{{Type: "text", Text: s.response}},
		Usage:   anthropic.TokenUsage{InputTokens: 120, OutputTokens: 60},
	}, nil
}

func testAnthropicConfig() config.AnthropicConfig {
	return config.AnthropicConfig{Model: "claude-haiku-4-5-20251001", MaxTokens: 1024}
}

func TestClaudeExtractor_Extract(t *testing.T) {
	stub := &stubClient{response: `{
		"subject": {"incoterm": "CIF"},
		"body": {
			"origin_port": "Shanghai",
			"destination_port": "Rotterdam",
			"incoterm": "fob",
			"dangerous_goods_mentions": "non-hazardous",
			"cargo_weight_kg": 1250.5
		}
	}`}
	e := NewClaudeExtractor(stub, testAnthropicConfig())

	subject, body, err := e.Extract(context.Background(), model.Email{ID: "em-1", Subject: "RE: Shipment", Body: "..."})
	require.NoError(t, err)

	assert.Equal(t, model.SourceSubject, subject.Source)
	assert.Equal(t, "CIF", subject.Incoterm)
	assert.Empty(t, subject.OriginPort)

	assert.Equal(t, model.SourceBody, body.Source)
	assert.Equal(t, "Shanghai", body.OriginPort)
	assert.Equal(t, "Rotterdam", body.DestinationPort)
	assert.Equal(t, "fob", body.Incoterm)
	assert.Equal(t, "non-hazardous", body.DangerousGoods)
	assert.Equal(t, "1250.5", body.CargoWeightKG)

	// System prompt is sent with a cache breakpoint.
	require.Len(t, stub.lastReq.System, 1)
	assert.NotNil(t, stub.lastReq.System[0].CacheControl)
}

func TestClaudeExtractor_FencedOutput(t *testing.T) {
	stub := &stubClient{response: "```json\n{\"subject\": {}, \"body\": {\"incoterm\": \"EXW\"}}\n```"}
	e := NewClaudeExtractor(stub, testAnthropicConfig())

	_, body, err := e.Extract(context.Background(), model.Email{ID: "em-2"})
	require.NoError(t, err)
	assert.Equal(t, "EXW", body.Incoterm)
}

func TestClaudeExtractor_BadJSON(t *testing.T) {
	stub := &stubClient{response: "sorry, I cannot help with that"}
	e := NewClaudeExtractor(stub, testAnthropicConfig())

	_, _, err := e.Extract(context.Background(), model.Email{ID: "em-3"})
	require.Error(t, err)
}

// flakyClient fails with a transient error until failures is exhausted.
type flakyClient struct {
	inner    stubClient
	failures int
	calls    int
}

func (f *flakyClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("api error: overloaded_error")
	}
	return f.inner.CreateMessage(ctx, req)
}

func TestClaudeExtractor_RetriesTransientErrors(t *testing.T) {
	flaky := &flakyClient{
		inner:    stubClient{response: `{"subject": {}, "body": {"incoterm": "FOB"}}`},
		failures: 2,
	}
	e := NewClaudeExtractor(flaky, testAnthropicConfig())
	e.retry.InitialBackoff = time.Millisecond
	e.retry.MaxBackoff = 5 * time.Millisecond

	_, body, err := e.Extract(context.Background(), model.Email{ID: "em-4"})
	require.NoError(t, err)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, "FOB", body.Incoterm)
}

func TestCoerceString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"  FOB ", "FOB"},
		{1250.5, "1250.5"},
		{float64(500), "500"},
		{true, "true"},
		{map[string]any{"x": 1}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, coerceString(tt.in))
	}
}
