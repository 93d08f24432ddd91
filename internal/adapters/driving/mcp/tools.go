package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// TurnInput is one prior conversation turn.
type TurnInput struct {
	Role    string `json:"role" jsonschema:"user or assistant"`
	Content string `json:"content" jsonschema:"the turn text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string      `json:"question" jsonschema:"the medical question to answer"`
	History  []TurnInput `json:"history,omitempty" jsonschema:"earlier turns of the conversation, oldest first"`
	Language string      `json:"language,omitempty" jsonschema:"answer language, detected from the question when empty"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer          string   `json:"answer"`
	StandaloneQuery string   `json:"standalone_query"`
	Sources         []string `json:"sources"`
	NoContext       bool     `json:"no_context"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query     string   `json:"query" jsonschema:"text to look up in the FAQ index"`
	K         int      `json:"k,omitempty" jsonschema:"maximum number of passages (default from settings)"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"maximum squared distance; 0 disables filtering"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput is a single retrieved passage.
type PassageOutput struct {
	SourceID string  `json:"source_id"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a medical question from the indexed FAQ corpus, citing sources as [FAQ-n]",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the FAQ passages nearest to a query",
	}, s.handleRetrieve)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, domain.ErrInvalidInput
	}

	history := make([]domain.ConversationTurn, 0, len(input.History))
	for _, turn := range input.History {
		role := domain.RoleUser
		if strings.EqualFold(turn.Role, string(domain.RoleAssistant)) {
			role = domain.RoleAssistant
		}
		history = append(history, domain.ConversationTurn{Role: role, Content: turn.Content})
	}

	answer := s.ports.Assistant.Ask(ctx, domain.AskRequest{
		Question: input.Question,
		History:  history,
		Language: input.Language,
	})

	return nil, AskOutput{
		Answer:          answer.Text,
		StandaloneQuery: answer.StandaloneQuery,
		Sources:         answer.SourceIDs(),
		NoContext:       answer.NoContext,
	}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = s.ports.Retrieval.TopK
	}
	if k <= 0 {
		k = domain.DefaultTopK
	}

	threshold := s.ports.Retrieval.Threshold
	if input.Threshold != nil {
		threshold = *input.Threshold
	}

	passages := s.ports.Retriever.Retrieve(ctx, input.Query, k, threshold)

	output := RetrieveOutput{
		Passages: make([]PassageOutput, len(passages)),
		Count:    len(passages),
	}
	for i, p := range passages {
		output.Passages[i] = PassageOutput{
			SourceID: p.SourceID,
			Text:     p.Text,
			Distance: p.Distance,
		}
	}

	return nil, output, nil
}
