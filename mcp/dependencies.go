package mcp

import (
	"go.uber.org/zap"

	"github.com/ludo-technologies/clumpscn/app"
	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	logger       *zap.Logger
	configPath   string
	configLoader domain.DataClumpConfigurationLoader
	formatter    domain.DataClumpOutputFormatter
}

// NewDependencies constructs the dependency set. An empty configPath makes
// every call discover .clumpscn.toml from the requested path.
func NewDependencies(logger *zap.Logger, configPath string) *Dependencies {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dependencies{
		logger:       logger,
		configPath:   configPath,
		configLoader: service.NewDataClumpConfigurationLoader(),
		formatter:    service.NewPlainDataClumpFormatter(),
	}
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// Logger returns the server logger.
func (d *Dependencies) Logger() *zap.Logger {
	return d.logger
}

// Formatter renders responses for tool results. Text output is never colored.
func (d *Dependencies) Formatter() domain.DataClumpOutputFormatter {
	return d.formatter
}

// BuildDataClumpUseCase assembles a fresh use case per call. Progress bars
// are never attached because stdout carries JSON-RPC.
func (d *Dependencies) BuildDataClumpUseCase() (*app.DataClumpUseCase, error) {
	return app.NewDataClumpUseCaseBuilder().
		WithService(service.NewDataClumpService(d.logger)).
		WithFormatter(d.formatter).
		WithConfigLoader(d.configLoader).
		Build()
}
