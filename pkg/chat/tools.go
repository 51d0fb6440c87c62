package chat

// ToolSpec describes one callable tool in provider-neutral form. Each
// provider translates the JSON-schema parameters into its own wire shape.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Tools returns the tool surface offered to the model.
func Tools() []ToolSpec {
	return []ToolSpec{
		{
			Name:        "roll_dice",
			Description: "Roll a dice of the given amount of sides.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sides": map[string]any{
						"type":        "number",
						"description": "The number of sides on the dice",
					},
				},
			},
		},
		{
			Name: "value_fetch",
			Description: "Fetch the value of one or more financial metrics, assume the total value, " +
				"unless given a period of time. A source document or report can be provided. " +
				"Fetch KPI values such as (Reported/Adjusted EBITDA, margins, revenue, working capital, " +
				"QoE adjustments, etc.) from the local SQLite databook. Always call this when the user " +
				"asks for numeric results. The database is already available—do not ask for documents.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"values": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
						"description": "One or more metrics mentioned by the user to fetch " +
							"(e.g., 'Net Sales', 'Adjusted EBITDA %').",
					},
					"source": map[string]any{
						"type": "string",
						"description": "Optional sheet or source hint to narrow the search " +
							"(e.g., 'P&L Statement', 'Quality of Earnings'). Include only if explicitly given by user",
					},
					"periods": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
						"description": "Periods to fetch for, in 'YYYY' or 'YYYY-MM-DD' format " +
							"(e.g., ['2022'] or ['2022-12-31']). Could be a range of years eg (['2022', '2023']). " +
							"Include only if explicitly given or inferred by user",
					},
					"unit": map[string]any{
						"type": "string",
						"description": "The unit of measure for the data points. Either 'USD' or '%' " +
							"based on what the user asks for",
					},
				},
				"required": []string{"values"},
			},
		},
	}
}
