// Package config loads scope.toml (project scope root) and config.toml
// (global scope root) via github.com/BurntSushi/toml. Missing files are not
// an error: every field has a default, mirroring the teacher's tolerant
// settings loader.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/adagradschool/scope/internal/constants"
)

// ProjectConfig is the parsed content of scope.toml at a project's scope
// root.
type ProjectConfig struct {
	LRUCap          int               `toml:"lru_cap"`
	CheckerTimeout  int               `toml:"checker_timeout_seconds"`
	DefaultModel    string            `toml:"default_model"`
	CostTier        string            `toml:"cost_tier"`
	RoleModels      map[string]string `toml:"role_models"`
	EvictionMinutes int               `toml:"eviction_interval_minutes"`
}

// GlobalConfig is the parsed content of config.toml at the user's global
// scope root. It supplies fallback values a project does not override.
type GlobalConfig struct {
	LRUCap         int    `toml:"lru_cap"`
	CheckerTimeout int    `toml:"checker_timeout_seconds"`
	DefaultModel   string `toml:"default_model"`
	CostTier       string `toml:"cost_tier"`
}

func defaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		LRUCap:          constants.DefaultLRUCap,
		CheckerTimeout:  int(constants.GateTimeout.Seconds()),
		DefaultModel:    "",
		CostTier:        string(TierStandard),
		RoleModels:      map[string]string{},
		EvictionMinutes: int(constants.DefaultEvictionInterval.Minutes()),
	}
}

func defaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LRUCap:         constants.DefaultLRUCap,
		CheckerTimeout: int(constants.GateTimeout.Seconds()),
		DefaultModel:   "",
		CostTier:       string(TierStandard),
	}
}

// LoadProjectConfig reads scope.toml at path (typically
// "<scope-root>/scope.toml"). A missing file yields defaults, not an error.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	cfg := defaultProjectConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if cfg.RoleModels == nil {
		cfg.RoleModels = map[string]string{}
	}
	return cfg, nil
}

// LoadGlobalConfig reads config.toml at path. A missing file yields
// defaults, not an error.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	cfg := defaultGlobalConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge layers cfg's zero-valued fields with fallback's values: a project
// config that does not set a field inherits the global default.
func (cfg *ProjectConfig) Merge(fallback *GlobalConfig) {
	if fallback == nil {
		return
	}
	if cfg.LRUCap == 0 {
		cfg.LRUCap = fallback.LRUCap
	}
	if cfg.CheckerTimeout == 0 {
		cfg.CheckerTimeout = fallback.CheckerTimeout
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = fallback.DefaultModel
	}
	if cfg.CostTier == "" {
		cfg.CostTier = fallback.CostTier
	}
}

// ModelFor returns the model alias configured for role ("do" or "check"),
// falling back to cfg.DefaultModel when no tier or explicit override names
// one.
func (cfg *ProjectConfig) ModelFor(role string) string {
	if m, ok := cfg.RoleModels[role]; ok && m != "" {
		return m
	}
	return cfg.DefaultModel
}
