package api

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Extract returns the flattened context of an inline or stored record.
//
// Request: {record(+columns|schema) | record_id(+columns|schema)}
// Response: {context}
func (s *WeaveService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := req.AsMap()

	_, inline := in[fieldRecord]
	_, stored := in[fieldRecordID]
	if !inline && !stored {
		return nil, toStatus(invalidf("one of %s or %s is required", fieldRecord, fieldRecordID))
	}
	// An inline context is not a record
	delete(in, fieldContext)

	wctx, err := s.contextFor(ctx, in)
	if err != nil {
		return nil, toStatus(fmt.Errorf("extract: %w", err))
	}
	return toStatusStruct(newStruct(map[string]any{"context": map[string]any(wctx)}))
}
