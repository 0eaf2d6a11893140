package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/avallon-labs/avallon/internal/interfaces"
	"github.com/avallon-labs/avallon/internal/pages"
	"github.com/avallon-labs/avallon/internal/sanitize"
)

const systemPrompt = `You are a website generator. You produce complete, self-contained HTML5 documents with inline CSS. Respond with a single JSON object mapping filenames (ending in .html) to full HTML documents, each starting with <!DOCTYPE html>. When an existing page map is provided, return only the pages you changed or added. Do not include any text outside the JSON object.`

// OpenAIProvider generates pages with a chat-completion model.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	logger interfaces.Logger
}

// NewOpenAIProvider requires an API key; model defaults to gpt-4o.
func NewOpenAIProvider(apiKey, model string, logger interfaces.Logger) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("generate: openai api key is required")
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIProvider{client: openai.NewClient(apiKey), model: model, logger: logger}, nil
}

// Generate implements Provider.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (map[string]string, string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	for _, m := range req.History {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: buildUserPrompt(req),
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return nil, "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, "", ErrNoContent
	}

	content, err := parseModelOutput(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, "", err
	}

	p.logger.Info("model generation complete",
		interfaces.Field{Key: "site_id", Value: req.SiteID},
		interfaces.Field{Key: "model", Value: p.model},
		interfaces.Field{Key: "pages", Value: len(content)})
	return content, "I've updated your website.", nil
}

func buildUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Site name: %s\n\nRequest: %s\n", req.Name, req.Description)
	if len(req.CurrentPages) > 0 {
		current, _ := json.Marshal(req.CurrentPages)
		fmt.Fprintf(&b, "\nCurrent pages (JSON):\n%s\n", current)
	}
	return b.String()
}

// parseModelOutput accepts either a JSON filename-to-HTML object or, as a
// fallback, a bare HTML document which becomes index.html.
func parseModelOutput(raw string) (map[string]string, error) {
	raw = sanitize.StripCodeFences(raw)

	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err == nil && len(m) > 0 {
		return m, nil
	}
	if pages.IsDocument(raw) {
		return map[string]string{"index.html": raw}, nil
	}
	return nil, fmt.Errorf("unparseable model output: %w", ErrNoContent)
}
