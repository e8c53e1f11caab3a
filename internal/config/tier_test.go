package config

import "testing"

func TestIsValidTier(t *testing.T) {
	cases := map[string]bool{
		"standard": true,
		"economy":  true,
		"budget":   true,
		"deluxe":   false,
		"":         false,
	}
	for tier, want := range cases {
		if got := IsValidTier(tier); got != want {
			t.Errorf("IsValidTier(%q) = %v, want %v", tier, got, want)
		}
	}
}

func TestApplyCostTierStandardClearsOverrides(t *testing.T) {
	cfg := &ProjectConfig{RoleModels: map[string]string{"do": "sonnet", "check": "haiku"}}
	if err := ApplyCostTier(cfg, TierStandard); err != nil {
		t.Fatalf("ApplyCostTier: %v", err)
	}
	if len(cfg.RoleModels) != 0 {
		t.Fatalf("RoleModels = %v, want empty after standard tier", cfg.RoleModels)
	}
	if cfg.CostTier != "standard" {
		t.Fatalf("CostTier = %q, want standard", cfg.CostTier)
	}
}

func TestApplyCostTierBudget(t *testing.T) {
	cfg := &ProjectConfig{}
	if err := ApplyCostTier(cfg, TierBudget); err != nil {
		t.Fatalf("ApplyCostTier: %v", err)
	}
	if cfg.RoleModels["do"] != "sonnet" || cfg.RoleModels["check"] != "haiku" {
		t.Fatalf("RoleModels = %v, want do=sonnet check=haiku", cfg.RoleModels)
	}
}

func TestApplyCostTierInvalid(t *testing.T) {
	cfg := &ProjectConfig{}
	if err := ApplyCostTier(cfg, CostTier("nonsense")); err == nil {
		t.Fatal("expected error for invalid tier")
	}
}

func TestApplyCostTierPreservesNonManagedRole(t *testing.T) {
	cfg := &ProjectConfig{RoleModels: map[string]string{"custom": "opus"}}
	if err := ApplyCostTier(cfg, TierEconomy); err != nil {
		t.Fatalf("ApplyCostTier: %v", err)
	}
	if cfg.RoleModels["custom"] != "opus" {
		t.Fatalf("RoleModels[custom] = %q, want opus preserved", cfg.RoleModels["custom"])
	}
	if cfg.RoleModels["check"] != "sonnet" {
		t.Fatalf("RoleModels[check] = %q, want sonnet", cfg.RoleModels["check"])
	}
}

func TestCurrentTierInfersFromRoleModels(t *testing.T) {
	cfg := &ProjectConfig{RoleModels: map[string]string{"do": "sonnet", "check": "haiku"}}
	if got := CurrentTier(cfg); got != "budget" {
		t.Fatalf("CurrentTier = %q, want budget", got)
	}
}

func TestCurrentTierCustomConfigReturnsEmpty(t *testing.T) {
	cfg := &ProjectConfig{RoleModels: map[string]string{"do": "haiku", "check": "opus"}}
	if got := CurrentTier(cfg); got != "" {
		t.Fatalf("CurrentTier = %q, want empty for a non-matching mapping", got)
	}
}
