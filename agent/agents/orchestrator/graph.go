package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/task-maistro/agent/nodes/orchestrator"
)

const (
	nodePrepare   = "prepare"
	nodeCallModel = "call_model"
)

func (o *Orchestrator) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode(nodePrepare,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodePrepare, err)
	}

	if err := graph.AddLambdaNode(nodeCallModel,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CallModel(ctx, in, o.store, o.models.Decider())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeCallModel, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeUpdateProfile,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.UpdateProfile(ctx, in, o.store, o.models.Extractor())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeUpdateProfile, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeFetchTaskCount,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.FetchTaskCount(ctx, in, o.backend)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeFetchTaskCount, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeCreateShiftSummary,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CreateShiftSummary(ctx, in, o.backend)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeCreateShiftSummary, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeFinalize,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeFinalize, err)
	}

	edges := [][2]string{
		{compose.START, nodePrepare},
		{nodePrepare, nodeCallModel},
		{nodex.NodeUpdateProfile, nodeCallModel},
		{nodex.NodeFetchTaskCount, nodeCallModel},
		{nodex.NodeCreateShiftSummary, nodeCallModel},
		{nodex.NodeFinalize, compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.RouteState(in)
		},
		map[string]bool{
			nodex.NodeFinalize:           true,
			nodex.NodeUpdateProfile:      true,
			nodex.NodeFetchTaskCount:     true,
			nodex.NodeCreateShiftSummary: true,
		},
	)
	if err := graph.AddBranch(nodeCallModel, branch); err != nil {
		return nil, fmt.Errorf("add branch %s: %w", nodeCallModel, err)
	}

	// prepare + (call_model + handler) per cycle + final call_model + finalize.
	maxSteps := 2*o.maxCycles + 4

	runner, err := graph.Compile(ctx,
		compose.WithGraphName("orchestrator.handle_turn"),
		compose.WithMaxRunSteps(maxSteps),
	)
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
