package forge

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/errors"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/app"
)

// Client calls a remote forge relay. Domain errors are restored from the
// status details, so apperrors.CodeOf works on returned errors.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient creates a relay client over conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// GenerateLoot requests a loot generation.
func (c *Client) GenerateLoot(ctx context.Context, req app.LootRequest) (app.LootResponse, error) {
	var resp app.LootResponse
	err := c.invoke(ctx, methodGenerateLoot, req, &resp)
	return resp, err
}

// GenerateStock requests a stock generation.
func (c *Client) GenerateStock(ctx context.Context, req app.StockRequest) (app.StockResponse, error) {
	var resp app.StockResponse
	err := c.invoke(ctx, methodGenerateStock, req, &resp)
	return resp, err
}

// GetGeneration fetches a stored generation.
func (c *Client) GetGeneration(ctx context.Context, generationID string) (app.Generation, error) {
	var resp app.Generation
	err := c.invoke(ctx, methodGetGeneration, GetGenerationRequest{GenerationID: generationID}, &resp)
	return resp, err
}

// ListGenerations pages through stored generations.
func (c *Client) ListGenerations(ctx context.Context, pageSize int, pageToken string) (app.GenerationPage, error) {
	var resp app.GenerationPage
	err := c.invoke(ctx, methodListGenerations, ListGenerationsRequest{PageSize: pageSize, PageToken: pageToken}, &resp)
	return resp, err
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	in, err := encodeStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod(method), in, out); err != nil {
		return apperrors.FromGRPC(err)
	}
	return decodeStruct(out, resp, false)
}
