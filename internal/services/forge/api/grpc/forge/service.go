package forge

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/errors"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/app"
)

// GetGenerationRequest names a stored generation.
type GetGenerationRequest struct {
	GenerationID string `json:"generation_id"`
}

// ListGenerationsRequest pages through stored generations.
type ListGenerationsRequest struct {
	PageSize  int    `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

// Service implements the forge relay over the app service.
type Service struct {
	app *app.Service
}

// NewService creates the relay.
func NewService(svc *app.Service) *Service {
	return &Service{app: svc}
}

// GenerateLoot relays a loot generation.
func (s *Service) GenerateLoot(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req app.LootRequest
	if err := decodeStruct(in, &req, true); err != nil {
		return nil, invalidRequest(err)
	}
	return respond(s.app.GenerateLoot(ctx, req))
}

// GenerateStock relays a stock generation.
func (s *Service) GenerateStock(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req app.StockRequest
	if err := decodeStruct(in, &req, true); err != nil {
		return nil, invalidRequest(err)
	}
	return respond(s.app.GenerateStock(ctx, req))
}

// GetGeneration relays a generation lookup.
func (s *Service) GetGeneration(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req GetGenerationRequest
	if err := decodeStruct(in, &req, true); err != nil {
		return nil, invalidRequest(err)
	}
	return respond(s.app.GetGeneration(ctx, req.GenerationID))
}

// ListGenerations relays a generation listing.
func (s *Service) ListGenerations(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ListGenerationsRequest
	if err := decodeStruct(in, &req, true); err != nil {
		return nil, invalidRequest(err)
	}
	return respond(s.app.ListGenerations(ctx, req.PageSize, req.PageToken))
}

func respond[T any](resp T, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, apperrors.ToGRPC(err)
	}
	out, err := encodeStruct(resp)
	if err != nil {
		return nil, apperrors.ToGRPC(err)
	}
	return out, nil
}

func invalidRequest(err error) error {
	return apperrors.ToGRPC(apperrors.Wrap(apperrors.CodeRequestInvalid, "invalid request", err))
}

var _ ForgeServiceServer = (*Service)(nil)
