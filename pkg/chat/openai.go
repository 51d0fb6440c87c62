package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// maxToolRounds bounds the tool-call loop within one turn.
const maxToolRounds = 8

// OpenAIProvider streams turns through the OpenAI chat-completions API (or
// any OpenAI-compatible endpoint via BaseURL).
type OpenAIProvider struct {
	client *openai.Client
	model  string
	runner ToolRunner
}

// NewOpenAIProvider creates the provider. An empty model falls back to a
// cheap default.
func NewOpenAIProvider(apiKey, baseURL, model string, runner ToolRunner) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		runner: runner,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return "openai" }

// StreamTurn streams one assistant turn, executing tool calls between
// completion rounds until the model produces a final message.
func (p *OpenAIProvider) StreamTurn(ctx context.Context, req TurnRequest, emit func(Event) error) error {
	model := req.Model
	if model == "" {
		model = p.model
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: DeveloperPrompt(time.Now()),
	})
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	specs := Tools()
	tools := make([]openai.Tool, 0, len(specs))
	for _, t := range specs {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	for round := 0; round < maxToolRounds; round++ {
		stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:             model,
			Messages:          msgs,
			Tools:             tools,
			ParallelToolCalls: false,
		})
		if err != nil {
			return fmt.Errorf("chat stream: %w", err)
		}

		var content strings.Builder
		var calls []openai.ToolCall
		var finish openai.FinishReason

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				stream.Close()
				return fmt.Errorf("chat stream: %w", err)
			}
			if len(resp.Choices) == 0 {
				continue
			}
			choice := resp.Choices[0]
			if choice.FinishReason != "" {
				finish = choice.FinishReason
			}
			if choice.Delta.Content != "" {
				content.WriteString(choice.Delta.Content)
				if err := emit(Event{Event: EventMessageDelta, Data: map[string]any{
					"content": choice.Delta.Content,
				}}); err != nil {
					stream.Close()
					return err
				}
			}
			for _, tc := range choice.Delta.ToolCalls {
				calls = accumulateToolCall(calls, tc)
			}
		}
		stream.Close()

		if len(calls) == 0 || finish != openai.FinishReasonToolCalls {
			return emit(Event{Event: EventTurnCompleted, Data: map[string]any{
				"finish_reason": string(finish),
			}})
		}

		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:      openai.ChatMessageRoleAssistant,
			Content:   content.String(),
			ToolCalls: calls,
		})
		for _, call := range calls {
			if err := emit(Event{Event: EventToolCallStart, Data: map[string]any{
				"id": call.ID, "name": call.Function.Name, "arguments": call.Function.Arguments,
			}}); err != nil {
				return err
			}

			result, err := p.runner.Run(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				result = "tool error: " + err.Error()
			}

			if err := emit(Event{Event: EventToolCallResult, Data: map[string]any{
				"id": call.ID, "name": call.Function.Name, "result": result,
			}}); err != nil {
				return err
			}
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}
	return fmt.Errorf("turn exceeded %d tool-call rounds", maxToolRounds)
}

// accumulateToolCall merges a streamed fragment into the call list. The API
// announces a call's id and name first, then streams argument chunks on the
// same index.
func accumulateToolCall(calls []openai.ToolCall, tc openai.ToolCall) []openai.ToolCall {
	idx := 0
	if tc.Index != nil {
		idx = *tc.Index
	}
	for len(calls) <= idx {
		calls = append(calls, openai.ToolCall{Type: openai.ToolTypeFunction})
	}
	c := &calls[idx]
	if tc.ID != "" {
		c.ID = tc.ID
	}
	if tc.Function.Name != "" {
		c.Function.Name = tc.Function.Name
	}
	c.Function.Arguments += tc.Function.Arguments
	return calls
}
