package reactive

import (
	"github.com/on-the-ground/transform_ive_go/internal/logging"
	"go.uber.org/zap"
)

// DefaultMaxReactionIterations bounds how many rounds of reactions may trigger each other
// before the runtime gives up with ErrReactionLoop.
const DefaultMaxReactionIterations = 100

type Config struct {
	MaxReactionIterations int         // default: DefaultMaxReactionIterations
	Logger                *zap.Logger // default: zap production logger
}

func NewConfig(maxReactionIterations int, logger *zap.Logger) Config {
	if maxReactionIterations <= 0 {
		maxReactionIterations = DefaultMaxReactionIterations
	}
	return Config{
		MaxReactionIterations: maxReactionIterations,
		Logger:                logging.OrDefault(logger),
	}
}
