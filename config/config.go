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


// Package config reads agentstore settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/poiesic/agentstore/core"
)

// Config holds every setting agentstore reads at start-up.
type Config struct {
	// StoreURI locates the store: "badger:///abs/dir" or "memory://".
	StoreURI string `env:"AGENTSTORE_STORE_URI,required,notEmpty"`

	// Database names the logical database within the store.
	Database string `env:"AGENTSTORE_DATABASE" envDefault:"agentstore"`

	PublicHost   string `env:"AGENTSTORE_PUBLIC_HOST" envDefault:"localhost"`
	PublicPort   int    `env:"AGENTSTORE_PUBLIC_PORT" envDefault:"8080"`
	InternalHost string `env:"AGENTSTORE_INTERNAL_HOST" envDefault:"localhost"`
	InternalPort int    `env:"AGENTSTORE_INTERNAL_PORT" envDefault:"8081"`

	TelegramToken   string `env:"AGENTSTORE_TELEGRAM_TOKEN"`
	MessengerToken  string `env:"AGENTSTORE_MESSENGER_TOKEN"`
	CustomChatToken string `env:"AGENTSTORE_CUSTOM_CHAT_TOKEN"`

	// LocalCacheSize bounds the in-process cache in front of the cache
	// collection. Zero disables it.
	LocalCacheSize int64 `env:"AGENTSTORE_LOCAL_CACHE_SIZE" envDefault:"0"`

	// LLMHost and LLMModel override the completion service defaults.
	LLMHost  string `env:"AGENTSTORE_LLM_HOST"`
	LLMModel string `env:"AGENTSTORE_LLM_MODEL"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(env.ToMap(os.Environ()))
}

// LoadFrom reads the configuration from vars instead of the process
// environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		if missing(err) {
			return nil, fmt.Errorf("%w: %w", core.ErrMissingConfiguration, err)
		}
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.StoreURI) == "" {
		return fmt.Errorf("%w: store URI", core.ErrMissingConfiguration)
	}
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("%w: database name", core.ErrMissingConfiguration)
	}
	for name, port := range map[string]int{"public": c.PublicPort, "internal": c.InternalPort} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s port %d", name, port)
		}
	}
	if c.LocalCacheSize < 0 {
		return fmt.Errorf("invalid local cache size %d", c.LocalCacheSize)
	}
	return nil
}

// PublicAddr is the host:port of the public endpoint.
func (c *Config) PublicAddr() string {
	return net.JoinHostPort(c.PublicHost, strconv.Itoa(c.PublicPort))
}

// InternalAddr is the host:port of the internal chat service.
func (c *Config) InternalAddr() string {
	return net.JoinHostPort(c.InternalHost, strconv.Itoa(c.InternalPort))
}

// PlatformToken returns the configured token for a platform, or "".
func (c *Config) PlatformToken(platform core.ChatPlatform) string {
	switch platform {
	case core.Telegram:
		return c.TelegramToken
	case core.FacebookMessenger:
		return c.MessengerToken
	case core.CustomChat:
		return c.CustomChatToken
	}
	return ""
}

func missing(err error) bool {
	var notSet env.VarIsNotSetError
	var empty env.EmptyVarError
	return errors.As(err, &notSet) || errors.As(err, &empty) ||
		errors.Is(err, env.VarIsNotSetError{}) || errors.Is(err, env.EmptyVarError{})
}
