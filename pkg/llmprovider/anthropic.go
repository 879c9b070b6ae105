package llmprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/cenkalti/backoff/v4"
)

// AnthropicProvider is the default concrete Provider adapter. It retries
// transient failures with exponential backoff and strips markdown code
// fences from JSON-mode responses before parsing, per spec.md §6.
type AnthropicProvider struct {
	client  anthropic.Client
	retries uint64
}

// NewAnthropicProvider wraps an already-configured Anthropic client.
func NewAnthropicProvider(client anthropic.Client) *AnthropicProvider {
	return &AnthropicProvider{client: client, retries: 3}
}

func toAnthropicMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		switch m.Role {
		case RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(block))
		default:
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

func toAnthropicTools(tools []Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		props, _ := t.InputSchema["properties"].(map[string]any)
		required, _ := t.InputSchema["required"].([]string)
		tool := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.Opt(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Type:       "object",
				Properties: props,
				Required:   required,
			},
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return out
}

func (p *AnthropicProvider) withRetry(ctx context.Context, fn func() (*anthropic.Message, error)) (*anthropic.Message, error) {
	op := func() (*anthropic.Message, error) {
		resp, err := fn()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.retries), ctx)
	return backoff.RetryWithData(op, policy)
}

// Call implements Provider.
func (p *AnthropicProvider) Call(ctx context.Context, system string, messages []Message, tools []Tool, model string, maxTokens int) (CallResult, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  toAnthropicMessages(messages),
	}
	if len(tools) > 0 {
		params.Tools = toAnthropicTools(tools)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system, CacheControl: anthropic.NewCacheControlEphemeralParam()}}
	}

	resp, err := p.withRetry(ctx, func() (*anthropic.Message, error) {
		return p.client.Messages.New(ctx, params)
	})
	if err != nil {
		return CallResult{}, fmt.Errorf("anthropic call: %w", err)
	}

	result := CallResult{Usage: Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens}}
	for _, block := range resp.Content {
		if text := block.AsText(); text.Text != "" {
			result.Type = "text"
			result.Content += text.Text
			continue
		}
		if tu := block.AsToolUse(); tu.ID != "" && tu.Name != "" {
			result.Type = "tool_use"
			result.ToolName = tu.Name
			var input map[string]any
			if err := json.Unmarshal(tu.Input, &input); err == nil {
				result.ToolInput = input
			}
		}
	}
	return result, nil
}

// CallJSON implements Provider: requests a text response and parses it as
// JSON, stripping markdown fences the model commonly wraps it in.
func (p *AnthropicProvider) CallJSON(ctx context.Context, system string, messages []Message, model string) (JSONResult, error) {
	result, err := p.Call(ctx, system, messages, nil, model, 4096)
	if err != nil {
		return JSONResult{}, err
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(stripJSONFence(result.Content)), &parsed); err != nil {
		return JSONResult{}, fmt.Errorf("parse json-mode response: %w", err)
	}
	return JSONResult{Content: parsed, InputTokens: result.Usage.InputTokens, OutputTokens: result.Usage.OutputTokens}, nil
}

// CallStream implements Provider, yielding text chunks then a terminal usage
// chunk (spec.md §6).
func (p *AnthropicProvider) CallStream(ctx context.Context, system string, messages []Message, model string, maxTokens int) (<-chan StreamChunk, <-chan error) {
	chunks := make(chan StreamChunk, 32)
	errs := make(chan error, 1)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  toAnthropicMessages(messages),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: system}}
	}

	go func() {
		defer close(chunks)
		defer close(errs)

		stream := p.client.Messages.NewStreaming(ctx, params)
		var usage Usage
		for stream.Next() {
			event := stream.Current()
			if event.Type == "content_block_delta" {
				delta := event.AsContentBlockDelta()
				if delta.Delta.Type == "text_delta" && delta.Delta.Text != "" {
					chunks <- StreamChunk{Text: delta.Delta.Text}
				}
			}
			if event.Type == "message_delta" {
				md := event.AsMessageDelta()
				if md.Usage.OutputTokens > 0 {
					usage.OutputTokens = md.Usage.OutputTokens
				}
			}
		}
		if err := stream.Err(); err != nil {
			errs <- fmt.Errorf("anthropic stream: %w", err)
			return
		}
		chunks <- StreamChunk{Usage: &usage}
	}()

	return chunks, errs
}

// stripJSONFence removes a leading/trailing ```json or ``` fence, per
// spec.md §6: "JSON-mode responses may be wrapped in markdown fences; the
// client strips them before parsing."
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
