package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lumenkart/shopassist/internal/domain"
	"github.com/lumenkart/shopassist/internal/domain/search/result"
	"github.com/lumenkart/shopassist/internal/metrics"
)

const (
	generateSystemPrompt = "You are a helpful product assistant. Recommend products from the provided context and explain briefly why they fit the customer's request. If the context is empty, say that nothing in the catalog matches."

	expandSystemPrompt = "Rewrite the customer's product request as a short search phrase naming concrete product attributes. Reply with the phrase only."

	generateTemperature = 0.3
	expandTemperature   = 0.2
)

// Generator produces natural-language answers through the OpenAI-compatible
// chat completions API.
type Generator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// GeneratorConfig holds the chat completion provider settings.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Generate answers the query grounded on the retrieved results.
func (g *Generator) Generate(ctx context.Context, query string, results []result.Result) (string, error) {
	user := fmt.Sprintf("Context:\n%s\nCustomer request: %s", contextBlock(results), query)
	return g.complete(ctx, generateSystemPrompt, user, generateTemperature)
}

// ExpandQuery rewrites the query into a retrieval-friendly phrase.
func (g *Generator) ExpandQuery(ctx context.Context, query string) (string, error) {
	out, err := g.complete(ctx, expandSystemPrompt, query, expandTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Generator) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("chat completion: %v: %w", err, domain.ErrGenerationFailed)
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationFailed)
	}

	metrics.GenerationRequestsTotal.WithLabelValues("success").Inc()
	g.logger.Debug("Chat completion finished",
		zap.String("model", g.model),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.Choices[0].Message.Content, nil
}

// contextBlock renders the retrieved results for the prompt, one product per
// stanza in rank order.
func contextBlock(results []result.Result) string {
	if len(results) == 0 {
		return "(no matching products)\n"
	}

	var b strings.Builder
	for _, r := range results {
		rec := r.Record()
		fmt.Fprintf(&b, "Product: %s\nDescription: %s\nSimilarity: %.2f\n\n",
			rec.StringAttr("name"), rec.StringAttr("description"), r.Similarity())
	}
	return b.String()
}
