package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider streams turns through the Gemini API with function calling.
type GeminiProvider struct {
	client *genai.Client
	model  string
	runner ToolRunner
}

// NewGeminiProvider creates the provider against the hosted Gemini backend.
func NewGeminiProvider(ctx context.Context, apiKey, model string, runner ToolRunner) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{client: client, model: model, runner: runner}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string { return "gemini" }

// StreamTurn streams one assistant turn, answering function calls until the
// model produces a final message.
func (p *GeminiProvider) StreamTurn(ctx context.Context, req TurnRequest, emit func(Event) error) error {
	model := req.Model
	if model == "" {
		model = p.model
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(DeveloperPrompt(time.Now()), genai.RoleUser),
		Tools:             []*genai.Tool{{FunctionDeclarations: geminiDeclarations()}},
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == "assistant" || m.Role == string(genai.RoleModel) {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	for round := 0; round < maxToolRounds; round++ {
		var calls []*genai.FunctionCall
		var modelParts []*genai.Part

		for resp, err := range p.client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				return fmt.Errorf("gemini stream: %w", err)
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			for _, part := range resp.Candidates[0].Content.Parts {
				if part.Text != "" {
					modelParts = append(modelParts, &genai.Part{Text: part.Text})
					if err := emit(Event{Event: EventMessageDelta, Data: map[string]any{
						"content": part.Text,
					}}); err != nil {
						return err
					}
				}
				if part.FunctionCall != nil {
					calls = append(calls, part.FunctionCall)
					modelParts = append(modelParts, &genai.Part{FunctionCall: part.FunctionCall})
				}
			}
		}

		if len(calls) == 0 {
			return emit(Event{Event: EventTurnCompleted, Data: map[string]any{
				"finish_reason": "stop",
			}})
		}

		contents = append(contents, &genai.Content{Role: string(genai.RoleModel), Parts: modelParts})

		responseParts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			args, err := json.Marshal(call.Args)
			if err != nil {
				return fmt.Errorf("marshal function args: %w", err)
			}
			if err := emit(Event{Event: EventToolCallStart, Data: map[string]any{
				"id": call.ID, "name": call.Name, "arguments": string(args),
			}}); err != nil {
				return err
			}

			result, err := p.runner.Run(ctx, call.Name, string(args))
			if err != nil {
				result = "tool error: " + err.Error()
			}

			if err := emit(Event{Event: EventToolCallResult, Data: map[string]any{
				"id": call.ID, "name": call.Name, "result": result,
			}}); err != nil {
				return err
			}
			responseParts = append(responseParts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       call.ID,
				Name:     call.Name,
				Response: map[string]any{"output": result},
			}})
		}
		contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: responseParts})
	}
	return fmt.Errorf("turn exceeded %d tool-call rounds", maxToolRounds)
}

// geminiDeclarations mirrors Tools() in the Gemini schema dialect.
func geminiDeclarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "roll_dice",
			Description: "Roll a dice of the given amount of sides.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"sides": {Type: genai.TypeNumber, Description: "The number of sides on the dice"},
				},
			},
		},
		{
			Name: "value_fetch",
			Description: "Fetch the value of one or more financial metrics from the local databook. " +
				"Always call this when the user asks for numeric results.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"values": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeString},
						Description: "One or more metrics to fetch (e.g. 'Net Sales', 'Adjusted EBITDA %')",
					},
					"source": {
						Type:        genai.TypeString,
						Description: "Optional sheet or source hint (e.g. 'P&L Statement')",
					},
					"periods": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeString},
						Description: "Periods in YYYY or YYYY-MM-DD format",
					},
					"unit": {
						Type:        genai.TypeString,
						Description: "Unit of measure, either 'USD' or '%'",
					},
				},
				Required: []string{"values"},
			},
		},
	}
}
