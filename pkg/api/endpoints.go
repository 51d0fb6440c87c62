package api

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/quarrylabs/databook/pkg/databook"
	"github.com/quarrylabs/databook/pkg/kit"
	"github.com/quarrylabs/databook/pkg/metric"
)

// Shared request/response types used by both HTTP and MCP transports.

type resultsResponse struct {
	Results []databook.ResolvedRow `json:"results"`
}

type diceRequest struct {
	Sides int
}

type diceResponse struct {
	Result int `json:"result"`
}

type metricsResponse struct {
	Threshold float64         `json:"threshold"`
	Metrics   []metric.Metric `json:"metrics"`
}

func valueFetchEndpoint(res *databook.Resolver) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*databook.Request)
		rows, err := res.ResolveBatch(ctx, *req)
		if err != nil {
			return nil, fmt.Errorf("resolve batch: %w", err)
		}
		return resultsResponse{Results: rows}, nil
	}
}

func rollDiceEndpoint() kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*diceRequest)
		sides := req.Sides
		if sides <= 0 {
			sides = 6
		}
		return diceResponse{Result: 1 + rand.IntN(sides)}, nil
	}
}

func listMetricsEndpoint(cat *metric.Catalog) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return metricsResponse{Threshold: cat.Threshold(), Metrics: cat.List()}, nil
	}
}
