package logger

import (
	"go.uber.org/zap"
)

// New builds a production zap logger writing to stderr at the given level.
func New(verbosity string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(verbosity)
	if err != nil {
		return nil, err
	}
	config.Level = level
	config.OutputPaths = []string{"stderr"}
	return config.Build()
}
