// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package memo

import (
	"errors"
	"strings"
)

// Config holds configuration for an OpenAI-compatible completion service.
type Config struct {
	// Host is the base URL of the service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	Host string

	// Model is the model identifier used for completions.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	Model string

	// Token is the API token. Local servers accept any value.
	Token string

	// Generation tags cached completions. Raise it to invalidate them.
	// Default: 1
	Generation int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithGeneration sets the cache generation.
func WithGeneration(generation int) ConfigOption {
	return func(c *Config) {
		c.Generation = generation
	}
}

// DefaultConfig returns a Config for a local OpenAI-compatible service.
func DefaultConfig() *Config {
	return &Config{
		Host:       "http://localhost:11434/v1",
		Model:      "qwen2.5:3b",
		Token:      "none",
		Generation: 1,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize adds the /v1 suffix OpenAI-compatible APIs expect.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	if c.Token == "" {
		c.Token = "none"
	}
}

// Validate normalizes the configuration and checks that it is complete.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("memo config: Host is required")
	}
	if c.Model == "" {
		return errors.New("memo config: Model is required")
	}
	if c.Generation < 0 {
		return errors.New("memo config: Generation cannot be negative")
	}
	return nil
}
