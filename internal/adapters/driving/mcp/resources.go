package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

const (
	uriScheme = "faqrag://"
	indexURI  = uriScheme + "index"
)

// IndexStatus is the JSON body of the index resource.
type IndexStatus struct {
	Built      bool      `json:"built"`
	Collection string    `json:"collection,omitempty"`
	ModelID    string    `json:"model_id,omitempty"`
	Dimensions int       `json:"dimensions,omitempty"`
	Count      int       `json:"count"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         indexURI,
		Name:        "index",
		Description: "Status of the FAQ vector index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	status := IndexStatus{}

	if s.ports.Index != nil {
		coll, err := s.ports.Index.Status(ctx)
		switch {
		case err == nil:
			status = IndexStatus{
				Built:      true,
				Collection: coll.Name,
				ModelID:    coll.ModelID,
				Dimensions: coll.Dimensions,
				Count:      coll.Count,
				CreatedAt:  coll.CreatedAt,
			}
		case errors.Is(err, domain.ErrCollectionNotFound):
		default:
			return nil, fmt.Errorf("reading index status: %w", err)
		}
	}

	body, err := json.Marshal(status)
	if err != nil {
		return nil, fmt.Errorf("marshalling index status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
