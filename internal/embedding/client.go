// Package embedding implements the Embedding Port (§6): a gRPC client
// bounded to a fixed number of outstanding calls, grounded on the
// teacher's core/ai.go gRPC + zap idiom (AIStubClient, grpc.Dial, TFRequest
// stub types), generalized from the teacher's fraud/fee/volume stubs to a
// single Embed RPC.
package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// EmbedRequest/EmbedResponse mirror the teacher's TFRequest/TFResponse
// minimal stub shape: the real wire format is a compiled protobuf message
// owned by the embedding service, not this module.
type EmbedRequest struct {
	Texts []string
}

type EmbedResponse struct {
	Vectors [][]float64
}

// Client is the minimal RPC surface the embedding service exposes.
type Client interface {
	Embed(ctx context.Context, req *EmbedRequest) (*EmbedResponse, error)
}

// GRPCEmbedder adapts a gRPC-backed Client to core.Embedder, bounding
// outstanding calls with a buffered-channel semaphore (§5 "embedding
// client (bounded outstanding calls)").
type GRPCEmbedder struct {
	client Client
	conn   *grpc.ClientConn
	sem    chan struct{}
	logger *zap.Logger
}

// Dial connects to endpoint and wraps client with a semaphore of size
// maxOutstanding.
func Dial(endpoint string, client Client, maxOutstanding int, logger *zap.Logger) (*GRPCEmbedder, error) {
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("embedding: dial %s: %w", endpoint, err)
	}
	if maxOutstanding <= 0 {
		maxOutstanding = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCEmbedder{client: client, conn: conn, sem: make(chan struct{}, maxOutstanding), logger: logger}, nil
}

// Embed acquires a semaphore slot, issues the batched RPC, and releases
// the slot on return. Callers are expected to wrap ctx with the tEmbed
// timeout (core.Engine does this); Embed itself adds no additional
// deadline.
func (e *GRPCEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-e.sem }()

	resp, err := e.client.Embed(ctx, &EmbedRequest{Texts: texts})
	if err != nil {
		e.logger.Warn("embedding rpc failed", zap.Error(err), zap.Int("batch_size", len(texts)))
		return nil, fmt.Errorf("embedding: rpc: %w", err)
	}
	return resp.Vectors, nil
}

func (e *GRPCEmbedder) Close() error {
	return e.conn.Close()
}
