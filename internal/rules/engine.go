package rules

import (
	"go.uber.org/zap"

	"github.com/solatis/weavereplace/internal/types"
)

// Engine evaluates rule sets and logs skipped conditions.
type Engine struct {
	logger *zap.Logger
}

var defaultEngine = NewEngine(nil)

// NewEngine creates a rules engine. A nil logger disables logging.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Matches evaluates set against ctx.
func (e *Engine) Matches(set types.RuleSet, ctx types.Context) bool {
	compiled := e.compile(set)
	if len(compiled) == 0 {
		return false
	}
	return matches(compiled, ctx)
}

// MatchPaths lists the flattened keys that satisfied each condition.
func (e *Engine) MatchPaths(set types.RuleSet, ctx types.Context) []PathMatch {
	return matchPaths(e.compile(set), ctx)
}

func (e *Engine) compile(set types.RuleSet) []CompiledCondition {
	return Compile(set, func(index int, c types.Condition) {
		e.logger.Debug("skipping rule condition",
			zap.Int("index", index),
			zap.Any("value", c.Value),
			zap.Error(types.ErrMalformedCondition),
		)
	})
}
