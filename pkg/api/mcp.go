package api

import (
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quarrylabs/databook/pkg/databook"
	"github.com/quarrylabs/databook/pkg/kit"
)

// NewMCPServer builds the MCP server exposing the databook tools to
// tool-calling assistants.
func NewMCPServer(res *databook.Resolver, logger *slog.Logger) *server.MCPServer {
	srv := server.NewMCPServer("databook", "1.0.0", server.WithToolCapabilities(false))
	registerValueFetch(srv, res, logger)
	registerRollDice(srv, logger)
	return srv
}

func registerValueFetch(srv *server.MCPServer, res *databook.Resolver, logger *slog.Logger) {
	tool := mcp.NewTool("value_fetch",
		mcp.WithDescription("Fetch the value of one or more financial metrics from the local databook. "+
			"Assume the total value unless given a period of time. Fetches KPI values such as "+
			"Reported/Adjusted EBITDA, margins, revenue, working capital and QoE adjustments. "+
			"Always call this when the user asks for numeric results; the databook is already available."),
		mcp.WithString("values", mcp.Required(),
			mcp.Description("Comma-separated metrics to fetch (e.g. 'Net Sales, Adjusted EBITDA %')")),
		mcp.WithString("source",
			mcp.Description("Optional sheet or source hint (e.g. 'P&L Statement'); include only if given by the user")),
		mcp.WithString("periods",
			mcp.Description("Comma-separated periods in YYYY or YYYY-MM-DD format (e.g. '2022,2023')")),
		mcp.WithString("unit",
			mcp.Description("Unit of measure, either 'USD' or '%'")),
	)

	endpoint := kit.Chain(kit.Recover(), kit.Logging(logger, "value_fetch"))(valueFetchEndpoint(res))

	kit.RegisterMCPTool(srv, tool, endpoint, func(req mcp.CallToolRequest) (any, error) {
		args := req.GetArguments()
		values, _ := args["values"].(string)
		source, _ := args["source"].(string)
		periods, _ := args["periods"].(string)
		unit, _ := args["unit"].(string)
		return &databook.Request{
			Values:  splitCSV(values),
			Source:  source,
			Periods: splitCSV(periods),
			Unit:    unit,
		}, nil
	})
}

func registerRollDice(srv *server.MCPServer, logger *slog.Logger) {
	tool := mcp.NewTool("roll_dice",
		mcp.WithDescription("Roll a dice of the given amount of sides."),
		mcp.WithNumber("sides", mcp.Description("The number of sides on the dice")),
	)

	endpoint := kit.Chain(kit.Recover(), kit.Logging(logger, "roll_dice"))(rollDiceEndpoint())

	kit.RegisterMCPTool(srv, tool, endpoint, func(req mcp.CallToolRequest) (any, error) {
		sides, _ := req.GetArguments()["sides"].(float64)
		return &diceRequest{Sides: int(sides)}, nil
	})
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
