// Package config holds the synthesis-time configuration for the stack
// declarations. Values come from the environment so CI can synthesize
// templates for different deployments without editing source.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// Synth configures the values baked into the synthesized template.
type Synth struct {
	// StageName is the API Gateway stage the deployment targets.
	StageName string `env:"STAGE_NAME" envDefault:"prod"`

	// KnowledgeBaseID is the Bedrock knowledge base the handler queries.
	KnowledgeBaseID string `env:"KNOWLEDGE_BASE_ID" envDefault:"BYASZZZFRM"`

	// LogLevel is passed to the handler through its environment.
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`

	// LogRetentionDays bounds how long access logs are kept.
	LogRetentionDays int `env:"LOG_RETENTION_DAYS" envDefault:"30"`

	// HandlerTimeout is the Lambda timeout in seconds. Generous on
	// purpose: document analysis calls out to Bedrock and the handler
	// raises its own timeout error before the platform kills it.
	HandlerTimeout int `env:"HANDLER_TIMEOUT" envDefault:"300"`

	// HandlerMemoryMB is the Lambda memory allocation.
	HandlerMemoryMB int `env:"HANDLER_MEMORY_MB" envDefault:"1024"`
}

// Load reads the synthesis configuration from the environment.
func Load() (Synth, error) {
	var cfg Synth
	if err := env.Parse(&cfg); err != nil {
		return Synth{}, fmt.Errorf("parsing synth config: %w", err)
	}
	return cfg, nil
}

// MustLoad is Load for package-level initialization; it panics on a
// malformed environment, which surfaces immediately at synth time.
func MustLoad() Synth {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
