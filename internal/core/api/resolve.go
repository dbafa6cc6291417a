package api

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Resolve renders one template against one context.
//
// Request: {template | template_name, context | record(+columns|schema) | record_id(+columns|schema)}
// Response: {result}
func (s *WeaveService) Resolve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := req.AsMap()

	tmpl, err := s.templateFor(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	wctx, err := s.contextFor(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}

	result := s.processor.Replace(tmpl, wctx)
	return toStatusStruct(newStruct(map[string]any{"result": result}))
}

// BatchResolve renders one template against many inline contexts.
// Batches above the configured maximum are rejected as a whole.
//
// Request: {template | template_name, contexts: [...]}
// Response: {results: [...]}
func (s *WeaveService) BatchResolve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := req.AsMap()

	contexts, ok := in[fieldContexts].([]any)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("%s must be a list", fieldContexts))
	}
	// Prevents memory exhaustion from unbounded batches
	if len(contexts) > s.cfg.MaxBatchSize {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("batch size exceeds maximum of %d contexts", s.cfg.MaxBatchSize))
	}

	tmpl, err := s.templateFor(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}

	results := make([]any, len(contexts))
	for i, raw := range contexts {
		if err := ctx.Err(); err != nil {
			return nil, toStatus(err)
		}
		wctx, err := s.contextFor(ctx, map[string]any{fieldContext: raw})
		if err != nil {
			return nil, toStatus(fmt.Errorf("contexts[%d]: %w", i, err))
		}
		results[i] = s.processor.Replace(tmpl, wctx)
	}

	s.logger.Debug("batch resolved", zap.Int("contexts", len(contexts)))
	return toStatusStruct(newStruct(map[string]any{"results": results}))
}

func toStatusStruct(out *structpb.Struct, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
