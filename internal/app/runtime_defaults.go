package app

import (
	"fmt"
	"strings"

	"github.com/charlesng35/soiree/internal/auth"
)

// ApplyRuntimeDefaults fills values that depend on other settings. It returns
// the keys it generated so callers can log the event.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	generated := make(map[string]bool)

	if strings.TrimSpace(cfg.Server.BaseURL) == "" {
		port := cfg.Server.Port
		if port == 0 {
			port = 8000
		}
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", port)
		generated["server.base_url"] = true
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	admin := &cfg.Auth.BootstrapAdmin
	if admin.Enabled && strings.TrimSpace(admin.Code) == "" {
		code, err := auth.GenerateCode()
		if err != nil {
			return nil, fmt.Errorf("generate bootstrap admin code: %w", err)
		}
		admin.Code = code
		generated["auth.bootstrap_admin.code"] = true
	}

	return generated, nil
}
