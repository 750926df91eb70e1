package config

import (
	"testing"

	"github.com/poiesic/agentstore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"AGENTSTORE_STORE_URI": "memory://"})
	require.NoError(t, err)

	assert.Equal(t, "memory://", cfg.StoreURI)
	assert.Equal(t, "agentstore", cfg.Database)
	assert.Equal(t, "localhost:8080", cfg.PublicAddr())
	assert.Equal(t, "localhost:8081", cfg.InternalAddr())
	assert.Zero(t, cfg.LocalCacheSize)
	assert.Empty(t, cfg.TelegramToken)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"AGENTSTORE_STORE_URI":         "badger:///var/lib/agentstore",
		"AGENTSTORE_DATABASE":          "bots",
		"AGENTSTORE_PUBLIC_HOST":       "0.0.0.0",
		"AGENTSTORE_PUBLIC_PORT":       "9000",
		"AGENTSTORE_INTERNAL_PORT":     "9001",
		"AGENTSTORE_TELEGRAM_TOKEN":    "tg",
		"AGENTSTORE_MESSENGER_TOKEN":   "fb",
		"AGENTSTORE_CUSTOM_CHAT_TOKEN": "cc",
		"AGENTSTORE_LOCAL_CACHE_SIZE":  "128",
		"AGENTSTORE_LLM_MODEL":         "gpt-4o-mini",
	})
	require.NoError(t, err)

	assert.Equal(t, "bots", cfg.Database)
	assert.Equal(t, "0.0.0.0:9000", cfg.PublicAddr())
	assert.Equal(t, "localhost:9001", cfg.InternalAddr())
	assert.Equal(t, int64(128), cfg.LocalCacheSize)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, "tg", cfg.PlatformToken(core.Telegram))
	assert.Equal(t, "fb", cfg.PlatformToken(core.FacebookMessenger))
	assert.Equal(t, "cc", cfg.PlatformToken(core.CustomChat))
	assert.Empty(t, cfg.PlatformToken(core.ChatPlatform("irc")))
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		missing bool
	}{
		{"store uri unset", map[string]string{}, true},
		{"store uri empty", map[string]string{"AGENTSTORE_STORE_URI": ""}, true},
		{"blank database", map[string]string{"AGENTSTORE_STORE_URI": "memory://", "AGENTSTORE_DATABASE": " "}, true},
		{"bad port", map[string]string{"AGENTSTORE_STORE_URI": "memory://", "AGENTSTORE_PUBLIC_PORT": "http"}, false},
		{"port out of range", map[string]string{"AGENTSTORE_STORE_URI": "memory://", "AGENTSTORE_INTERNAL_PORT": "70000"}, false},
		{"negative cache", map[string]string{"AGENTSTORE_STORE_URI": "memory://", "AGENTSTORE_LOCAL_CACHE_SIZE": "-1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.vars)
			require.Error(t, err)
			assert.Nil(t, cfg)
			if tt.missing {
				assert.ErrorIs(t, err, core.ErrMissingConfiguration)
			} else {
				assert.NotErrorIs(t, err, core.ErrMissingConfiguration)
			}
		})
	}
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("AGENTSTORE_STORE_URI", "memory://")
	t.Setenv("AGENTSTORE_DATABASE", "from-env")
	t.Setenv("AGENTSTORE_LLM_HOST", "http://llm.local/v1?key=a=b")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database)
	assert.Equal(t, "http://llm.local/v1?key=a=b", cfg.LLMHost)
}
