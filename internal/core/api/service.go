// Package api provides the gRPC implementation of the Weave service.
package api

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/solatis/weavereplace/internal/core/config"
	"github.com/solatis/weavereplace/internal/core/db"
	"github.com/solatis/weavereplace/internal/weave"
)

// WeaveService implements WeaveServer.
// Thin orchestration layer delegating to the processor and the store.
type WeaveService struct {
	processor *weave.Processor
	store     *db.Store
	cfg       *config.ServerConfig
	logger    *zap.Logger
}

// NewWeaveService creates service instance with dependencies.
// store may be nil, in which case requests must carry templates, rules and
// contexts inline.
func NewWeaveService(processor *weave.Processor, store *db.Store, cfg *config.ServerConfig, logger *zap.Logger) (*WeaveService, error) {
	if processor == nil {
		return nil, fmt.Errorf("processor cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WeaveService{
		processor: processor,
		store:     store,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

var _ WeaveServer = (*WeaveService)(nil)
