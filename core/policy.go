package core

import "strings"

// ConnectionPolicy turns a resolution outcome into a connection decision.
// Rules are evaluated top to bottom and the first one that applies wins.
type ConnectionPolicy struct{}

func NewConnectionPolicy() ConnectionPolicy {
	return ConnectionPolicy{}
}

func (ConnectionPolicy) Decide(
	outcome ResolutionOutcome,
	signals IdentitySignals,
	override *OverrideConfig,
	autoSwitchDisabled bool,
) ConnectionDecision {
	if autoSwitchDisabled {
		return Disabled()
	}
	if override != nil {
		return ExplicitOverride(*override)
	}
	signals = signals.Normalize()
	if outcome.Matched {
		if trustsEnvironment(signals) {
			return AutoMatched(outcome.Core)
		}
		return ReadOnlyFallback(signals.NetworkID, ReasonProductionFlagMissing)
	}
	return ReadOnlyFallback(signals.NetworkID, ReasonNoMatch)
}

// A match in an environment named prod is only trusted when the platform
// asserted production independently.
func trustsEnvironment(signals IdentitySignals) bool {
	if strings.TrimSpace(signals.EnvironmentName) != ProductionEnvironment {
		return true
	}
	return signals.ProductionFlag
}
