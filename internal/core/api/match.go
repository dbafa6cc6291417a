package api

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
)

// Match evaluates a rule set against a context.
//
// Request: {rules | rule_set, context | record(+columns|schema) | record_id(+columns|schema)}
// Response: {matched}
func (s *WeaveService) Match(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := req.AsMap()

	set, err := s.rulesFor(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	wctx, err := s.contextFor(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}

	matched := s.processor.Match(set, wctx, nil)
	return toStatusStruct(newStruct(map[string]any{"matched": matched}))
}

// MatchPaths lists the flattened keys satisfying each condition.
//
// Request: same as Match
// Response: {matches: [{path, value, rule}]}
func (s *WeaveService) MatchPaths(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := req.AsMap()

	set, err := s.rulesFor(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	wctx, err := s.contextFor(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}

	matches := s.processor.MatchPaths(set, wctx, nil)
	return toStatusStruct(newStruct(map[string]any{"matches": pathMatchesToWire(matches)}))
}
