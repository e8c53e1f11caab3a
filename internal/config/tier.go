package config

import (
	"fmt"
	"strings"
)

// CostTier is a predefined model-selection preset for the two roles a loop
// spawns: doer and checker.
type CostTier string

const (
	// TierStandard uses the default model for both roles (highest quality).
	TierStandard CostTier = "standard"
	// TierEconomy keeps the default model for the doer, downgrades the
	// checker to sonnet.
	TierEconomy CostTier = "economy"
	// TierBudget downgrades both roles, sonnet for the doer and haiku for
	// the checker.
	TierBudget CostTier = "budget"
)

// ValidCostTiers returns all valid tier names.
func ValidCostTiers() []string {
	return []string{string(TierStandard), string(TierEconomy), string(TierBudget)}
}

// IsValidTier reports whether tier names a known cost tier.
func IsValidTier(tier string) bool {
	switch CostTier(tier) {
	case TierStandard, TierEconomy, TierBudget:
		return true
	default:
		return false
	}
}

// TierManagedRoles is the set of roles whose model selection a cost tier
// controls. Any other RoleModels entry a user sets directly is left alone.
var TierManagedRoles = []string{"do", "check"}

// CostTierRoleModels returns the role→model-alias mapping for tier. An empty
// value means "use the default model". Returns nil for an invalid tier.
func CostTierRoleModels(tier CostTier) map[string]string {
	switch tier {
	case TierStandard:
		return map[string]string{"do": "", "check": ""}
	case TierEconomy:
		return map[string]string{"do": "", "check": "sonnet"}
	case TierBudget:
		return map[string]string{"do": "sonnet", "check": "haiku"}
	default:
		return nil
	}
}

// ApplyCostTier writes tier's role→model mapping into cfg, preserving any
// RoleModels entry for a role the tier does not manage.
func ApplyCostTier(cfg *ProjectConfig, tier CostTier) error {
	roleModels := CostTierRoleModels(tier)
	if roleModels == nil {
		return fmt.Errorf("invalid cost tier: %q (valid: %s)", tier, strings.Join(ValidCostTiers(), ", "))
	}
	if cfg.RoleModels == nil {
		cfg.RoleModels = make(map[string]string)
	}
	for _, role := range TierManagedRoles {
		model := roleModels[role]
		if model == "" {
			delete(cfg.RoleModels, role)
		} else {
			cfg.RoleModels[role] = model
		}
	}
	cfg.CostTier = string(tier)
	return nil
}

// CurrentTier infers cfg's cost tier from its RoleModels, or "" if the
// mapping does not match any known tier exactly (a custom configuration).
func CurrentTier(cfg *ProjectConfig) string {
	if cfg.CostTier != "" && IsValidTier(cfg.CostTier) {
		if tierRolesMatch(cfg.RoleModels, CostTierRoleModels(CostTier(cfg.CostTier))) {
			return cfg.CostTier
		}
	}
	for _, name := range ValidCostTiers() {
		if tierRolesMatch(cfg.RoleModels, CostTierRoleModels(CostTier(name))) {
			return name
		}
	}
	return ""
}

func tierRolesMatch(actual, expected map[string]string) bool {
	for _, role := range TierManagedRoles {
		if actual[role] != expected[role] {
			return false
		}
	}
	return true
}

// TierDescription is a one-line human-readable summary of a tier's model
// assignments.
func TierDescription(tier CostTier) string {
	switch tier {
	case TierStandard:
		return "doer and checker both use the default model"
	case TierEconomy:
		return "doer uses the default model, checker downgrades to sonnet"
	case TierBudget:
		return "doer uses sonnet, checker downgrades to haiku"
	default:
		return "unknown tier"
	}
}

// FormatTierRoleTable renders tier's role→model assignments, one per line.
func FormatTierRoleTable(tier CostTier) string {
	roleModels := CostTierRoleModels(tier)
	if roleModels == nil {
		return ""
	}
	var lines []string
	for _, role := range []string{"do", "check"} {
		model := roleModels[role]
		if model == "" {
			model = "(default)"
		}
		lines = append(lines, fmt.Sprintf("  %-7s %s", role+":", model))
	}
	return strings.Join(lines, "\n")
}
