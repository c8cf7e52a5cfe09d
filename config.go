package mimekit

import (
	"strings"

	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Provider backing the database (definitions)
	Provider string `env:"MIMEKIT_PROVIDER,default:definitions"`

	// Definition sources
	DefinitionDirs    string `env:"MIMEKIT_DEFINITION_DIRS"`  // comma-separated
	DefinitionFiles   string `env:"MIMEKIT_DEFINITION_FILES"` // comma-separated
	SystemDefinitions bool   `env:"MIMEKIT_SYSTEM_DEFINITIONS,default:false"`
	DisableBuiltin    bool   `env:"MIMEKIT_DISABLE_BUILTIN,default:false"`

	// Matching
	ContentWindow   int `env:"MIMEKIT_CONTENT_WINDOW,default:16384"`
	ResultCacheSize int `env:"MIMEKIT_RESULT_CACHE_SIZE,default:0"`

	// User overrides written by SaveCustomizations
	CustomizationFile string `env:"MIMEKIT_CUSTOMIZATION_FILE"`

	// Logging
	LogLevel string `env:"MIMEKIT_LOG_LEVEL,default:warn"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList splits a comma-separated setting, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
