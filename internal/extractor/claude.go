package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/shipment-cli/internal/config"
	"github.com/sells-group/shipment-cli/internal/model"
	"github.com/sells-group/shipment-cli/internal/resilience"
	"github.com/sells-group/shipment-cli/pkg/anthropic"
)

// systemText primes the model once per batch; it is cached server-side so
// only the email itself costs input tokens on subsequent calls.
const systemText = `You are an expert freight forwarding assistant. You extract raw shipment details from enquiry emails.

Rules:
- Extract from the subject line and the body INDEPENDENTLY: report what each part says, even when they disagree.
- Ports: report the text as written (name or UN/LOCODE). Do not resolve or correct it.
- Incoterm: report the token as written (e.g. FOB, cif). Do not guess a default.
- dangerous_goods_mentions: quote any phrase about hazardous/DG status, including negations like "non-hazardous".
- cargo_weight_kg / cargo_cbm: numbers only, converted to kg and cbm. Omit if absent.
- Use null for anything a part does not mention. If multiple shipments appear, take the first.
- Return valid JSON only, no commentary.`

const userPromptTemplate = `Extract candidates from this email.

Output schema:
{
  "subject": {"origin_port": string|null, "destination_port": string|null, "incoterm": string|null, "dangerous_goods_mentions": string|null, "product_line_hint": string|null, "cargo_weight_kg": number|null, "cargo_cbm": number|null},
  "body": {"origin_port": string|null, "destination_port": string|null, "incoterm": string|null, "dangerous_goods_mentions": string|null, "product_line_hint": string|null, "cargo_weight_kg": number|null, "cargo_cbm": number|null}
}

Subject: %s
Body: %s

JSON response:`

// ClaudeExtractor calls the Messages API once per email and parses the
// returned candidate JSON. Calls are rate-limited; the model's output is
// treated as noise to be verified downstream, so parse failures degrade to
// empty candidate sets at the caller, never to a batch abort.
type ClaudeExtractor struct {
	client  anthropic.Client
	model   string
	maxTok  int64
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClaudeExtractor creates the live extractor variant.
func NewClaudeExtractor(client anthropic.Client, cfg config.AnthropicConfig) *ClaudeExtractor {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	return &ClaudeExtractor{
		client:  client,
		model:   cfg.Model,
		maxTok:  cfg.MaxTokens,
		limiter: rate.NewLimiter(limit, 1),
		retry:   resilience.DefaultRetryConfig(),
	}
}

// Name implements Extractor.
func (e *ClaudeExtractor) Name() string { return "claude" }

// Extract implements Extractor.
func (e *ClaudeExtractor) Extract(ctx context.Context, email model.Email) (model.CandidateSet, model.CandidateSet, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return model.CandidateSet{}, model.CandidateSet{}, eris.Wrap(err, "extractor: rate limit wait")
	}

	temperature := 0.0
	req := anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   e.maxTok,
		System:      anthropic.BuildCachedSystemBlocks(systemText),
		Messages:    []anthropic.Message{{Role: "user", Content: fmt.Sprintf(userPromptTemplate, email.Subject, email.Body)}},
		Temperature: &temperature,
	}
	var resp *anthropic.MessageResponse
	err := resilience.Do(ctx, e.retry, "extract", func(ctx context.Context) error {
		r, err := e.client.CreateMessage(ctx, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return model.CandidateSet{}, model.CandidateSet{}, eris.Wrapf(err, "extractor: message for %s", email.ID)
	}
	resp.Usage.LogCost(e.model, "extract")

	subject, body, err := parseCandidateJSON(resp.Text())
	if err != nil {
		zap.L().Warn("extractor: unparsable model output",
			zap.String("email_id", email.ID),
			zap.Error(err),
		)
		return model.CandidateSet{}, model.CandidateSet{}, eris.Wrapf(err, "extractor: parse response for %s", email.ID)
	}
	return subject, body, nil
}

// wireSet tolerates the model returning numbers, strings, or nulls for any
// field; everything is coerced to the string candidates the core expects.
type wireSet struct {
	OriginPort      any `json:"origin_port"`
	DestinationPort any `json:"destination_port"`
	Incoterm        any `json:"incoterm"`
	DangerousGoods  any `json:"dangerous_goods_mentions"`
	ProductLineHint any `json:"product_line_hint"`
	CargoWeightKG   any `json:"cargo_weight_kg"`
	CargoCBM        any `json:"cargo_cbm"`
}

func (w wireSet) toCandidateSet(source model.Source) model.CandidateSet {
	return model.CandidateSet{
		Source:          source,
		OriginPort:      coerceString(w.OriginPort),
		DestinationPort: coerceString(w.DestinationPort),
		Incoterm:        coerceString(w.Incoterm),
		DangerousGoods:  coerceString(w.DangerousGoods),
		ProductLineHint: coerceString(w.ProductLineHint),
		CargoWeightKG:   coerceString(w.CargoWeightKG),
		CargoCBM:        coerceString(w.CargoCBM),
	}
}

func parseCandidateJSON(raw string) (model.CandidateSet, model.CandidateSet, error) {
	var wire struct {
		Subject wireSet `json:"subject"`
		Body    wireSet `json:"body"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &wire); err != nil {
		return model.CandidateSet{}, model.CandidateSet{}, eris.Wrap(err, "extractor: unmarshal candidates")
	}
	return wire.Subject.toCandidateSet(model.SourceSubject),
		wire.Body.toCandidateSet(model.SourceBody), nil
}

// stripFences removes a markdown code fence the model sometimes wraps
// around its JSON despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// coerceString renders a JSON scalar as candidate text. Nulls and unknown
// shapes become the empty string (absent).
func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
