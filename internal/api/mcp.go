package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Alexsovich5/DAPP-sub000/internal/engine"
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
	"github.com/Alexsovich5/DAPP-sub000/internal/storage"
)

// MCPDeps holds dependencies for the MCP server. Store is optional; when
// nil, results are not persisted and history lookups report an error.
type MCPDeps struct {
	Engine *engine.Engine
	Store  *storage.Store
}

// NewMCPServer creates an MCP server with the compatibility tools and
// resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"compat",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("compat — compatibility scoring engine for dating profiles: pairwise scores, batch matching, corpus training."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("score_compatibility",
			mcp.WithDescription("Score one pair of dating profiles. Returns the overall score, per-dimension breakdown, confidence, and generated insights."),
			mcp.WithString("user_a", mcp.Description("First profile as a JSON object"), mcp.Required()),
			mcp.WithString("user_b", mcp.Description("Second profile as a JSON object"), mcp.Required()),
		),
		mcpScoreCompatibility(deps),
	)

	s.AddTool(
		mcp.NewTool("find_matches",
			mcp.WithDescription("Score one target profile against many candidates and return them ranked by overall score."),
			mcp.WithString("target", mcp.Description("Target profile as a JSON object"), mcp.Required()),
			mcp.WithString("candidates", mcp.Description("JSON array of candidate profiles"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of matches to return (default 10)")),
		),
		mcpFindMatches(deps),
	)

	s.AddTool(
		mcp.NewTool("train_corpus",
			mcp.WithDescription("Fit the corpus model (term weighting and topics) over a set of profiles to improve semantic comparison."),
			mcp.WithString("profiles", mcp.Description("JSON array of profiles"), mcp.Required()),
		),
		mcpTrainCorpus(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"compat://weights",
			"Dimension Weights",
			mcp.WithResourceDescription("Current dimension weight configuration as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceWeights(deps),
	)

	return s
}

func decodeProfile(raw string) (*profile.UserProfile, error) {
	var p profile.UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("invalid profile JSON: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func decodeProfiles(raw string) ([]*profile.UserProfile, error) {
	var ps []*profile.UserProfile
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		return nil, fmt.Errorf("invalid profiles JSON: %w", err)
	}
	return ps, nil
}

func mcpScoreCompatibility(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawA, err := req.RequireString("user_a")
		if err != nil {
			return mcpError("user_a is required"), nil
		}
		rawB, err := req.RequireString("user_b")
		if err != nil {
			return mcpError("user_b is required"), nil
		}

		a, err := decodeProfile(rawA)
		if err != nil {
			return mcpError(fmt.Sprintf("user_a: %v", err)), nil
		}
		b, err := decodeProfile(rawB)
		if err != nil {
			return mcpError(fmt.Sprintf("user_b: %v", err)), nil
		}

		result := deps.Engine.Score(ctx, a, b)
		if deps.Store != nil && !result.Degraded() {
			// Best effort; the score is the answer either way.
			_ = deps.Store.SaveResult(result)
		}

		out, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(out)), nil
	}
}

func mcpFindMatches(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawTarget, err := req.RequireString("target")
		if err != nil {
			return mcpError("target is required"), nil
		}
		rawCandidates, err := req.RequireString("candidates")
		if err != nil {
			return mcpError("candidates is required"), nil
		}

		target, err := decodeProfile(rawTarget)
		if err != nil {
			return mcpError(fmt.Sprintf("target: %v", err)), nil
		}
		candidates, err := decodeProfiles(rawCandidates)
		if err != nil {
			return mcpError(fmt.Sprintf("candidates: %v", err)), nil
		}
		if len(candidates) == 0 {
			return mcpError("at least one candidate is required"), nil
		}

		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}

		batch, err := deps.Engine.ScoreBatch(ctx, target, candidates)
		if err != nil {
			return mcpError(fmt.Sprintf("batch scoring failed: %v", err)), nil
		}

		sort.SliceStable(batch.Results, func(i, j int) bool {
			return batch.Results[i].Overall > batch.Results[j].Overall
		})
		if len(batch.Results) > limit {
			batch.Results = batch.Results[:limit]
		}

		out, err := json.Marshal(batch)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal matches: %v", err)), nil
		}
		return mcpText(string(out)), nil
	}
}

func mcpTrainCorpus(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("profiles")
		if err != nil {
			return mcpError("profiles is required"), nil
		}

		profiles, err := decodeProfiles(raw)
		if err != nil {
			return mcpError(fmt.Sprintf("profiles: %v", err)), nil
		}
		if len(profiles) == 0 {
			return mcpError("at least one profile is required"), nil
		}

		deps.Engine.Train(ctx, profiles)

		return mcpText(fmt.Sprintf("Trained corpus model over %d profiles (usable: %v)",
			len(profiles), deps.Engine.Corpus().Trained())), nil
	}
}

func mcpResourceWeights(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Engine.Weights())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal weights: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
