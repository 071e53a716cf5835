package core

import "testing"

func TestConnectionPolicy_AutoMatchedOutsideProd(t *testing.T) {
	core := v3Core("WXYZ-12345.dev.site", "dev.example")
	decision := NewConnectionPolicy().Decide(
		Matched(core, CandidateSiteFolder),
		IdentitySignals{NetworkID: "WXYZ-12345", EnvironmentName: "dev"},
		nil,
		false,
	)
	if decision.Kind != DecisionAutoMatched || decision.Core != core {
		t.Fatalf("expected auto matched decision, got %#v", decision)
	}
	if decision.ReadOnly() {
		t.Fatalf("auto matched must not be read-only")
	}
}

func TestConnectionPolicy_ProdWithoutFlagFallsBack(t *testing.T) {
	decision := NewConnectionPolicy().Decide(
		Matched(v3Core("WXYZ-12345.prod.site", "prod.example"), CandidateSiteFolder),
		IdentitySignals{NetworkID: "WXYZ-12345", EnvironmentName: "prod"},
		nil,
		false,
	)
	if decision.Kind != DecisionReadOnlyFallback {
		t.Fatalf("expected read-only fallback, got %q", decision.Kind)
	}
	if decision.FallbackCoreID != "WXYZ-12345" {
		t.Fatalf("expected network id fallback, got %q", decision.FallbackCoreID)
	}
	if decision.Reason != ReasonProductionFlagMissing {
		t.Fatalf("expected production flag reason, got %q", decision.Reason)
	}
}

func TestConnectionPolicy_ProdWithFlagMatches(t *testing.T) {
	decision := NewConnectionPolicy().Decide(
		Matched(v3Core("WXYZ-12345.prod.site", "prod.example"), CandidateSiteFolder),
		IdentitySignals{NetworkID: "WXYZ-12345", EnvironmentName: "prod", ProductionFlag: true},
		nil,
		false,
	)
	if decision.Kind != DecisionAutoMatched {
		t.Fatalf("expected auto matched, got %q", decision.Kind)
	}
}

func TestConnectionPolicy_NoMatchFallsBack(t *testing.T) {
	decision := NewConnectionPolicy().Decide(
		NoMatch(),
		IdentitySignals{NetworkID: "WXYZ-12345", EnvironmentName: "test"},
		nil,
		false,
	)
	if decision.Kind != DecisionReadOnlyFallback || decision.FallbackCoreID != "WXYZ-12345" {
		t.Fatalf("expected read-only fallback on network id, got %#v", decision)
	}
	if decision.Reason != ReasonNoMatch {
		t.Fatalf("expected no_match reason, got %q", decision.Reason)
	}
}

func TestConnectionPolicy_OverrideAlwaysWins(t *testing.T) {
	override := &OverrideConfig{Host: "override.example", IndexID: "CUSTOM-1"}
	outcomes := []ResolutionOutcome{
		NoMatch(),
		Matched(v3Core("WXYZ-12345", "a.example"), CandidateNetwork),
	}
	for _, outcome := range outcomes {
		for _, env := range []string{"", "dev", "prod"} {
			decision := NewConnectionPolicy().Decide(outcome, IdentitySignals{NetworkID: "WXYZ-12345", EnvironmentName: env}, override, false)
			if decision.Kind != DecisionExplicitOverride {
				t.Fatalf("expected explicit override for env %q, got %q", env, decision.Kind)
			}
			if decision.Override == nil || decision.Override.IndexID != "CUSTOM-1" {
				t.Fatalf("expected override payload, got %#v", decision.Override)
			}
		}
	}
}

func TestConnectionPolicy_OverrideIsCopied(t *testing.T) {
	override := &OverrideConfig{Host: "a.example", Options: map[string]string{"k": "v"}}
	decision := NewConnectionPolicy().Decide(NoMatch(), IdentitySignals{NetworkID: "N"}, override, false)
	override.Options["k"] = "changed"
	if decision.Override.Options["k"] != "v" {
		t.Fatalf("expected decision to hold its own copy of the override")
	}
}

func TestConnectionPolicy_DisabledBeatsOverride(t *testing.T) {
	decision := NewConnectionPolicy().Decide(
		Matched(v3Core("WXYZ-12345", "a.example"), CandidateNetwork),
		IdentitySignals{NetworkID: "WXYZ-12345"},
		&OverrideConfig{Host: "override.example"},
		true,
	)
	if decision.Kind != DecisionDisabled {
		t.Fatalf("expected disabled, got %q", decision.Kind)
	}
	if decision.ReadOnly() {
		t.Fatalf("disabled must not be read-only")
	}
}

func TestConnectionPolicy_EndToEndScenarios(t *testing.T) {
	directory := []CoreDescriptor{
		v3Core("WXYZ-12345.dev.testsite1dev", "dev.example"),
		v3Core("WXYZ-12345", "shared.example"),
	}
	resolver := NewCoreResolver()
	policy := NewConnectionPolicy()

	devSignals := IdentitySignals{NetworkID: "WXYZ-12345", EnvironmentName: "dev", SiteFolder: "testsite1dev"}
	outcome := resolver.Resolve(directory, devSignals)
	if !outcome.Matched || outcome.Core.CoreID != "WXYZ-12345.dev.testsite1dev" {
		t.Fatalf("expected dev core match, got %#v", outcome)
	}
	if decision := policy.Decide(outcome, devSignals, nil, false); decision.Kind != DecisionAutoMatched {
		t.Fatalf("expected auto matched, got %q", decision.Kind)
	}

	devOnly := []CoreDescriptor{v3Core("WXYZ-12345.dev.testsite1dev", "dev.example")}
	testSignals := IdentitySignals{NetworkID: "WXYZ-12345", EnvironmentName: "test", SiteFolder: "testsite1dev"}
	outcome = resolver.Resolve(devOnly, testSignals)
	if outcome.Matched {
		t.Fatalf("expected no match for test environment, got %#v", outcome)
	}
	decision := policy.Decide(outcome, testSignals, nil, false)
	if decision.Kind != DecisionReadOnlyFallback || decision.FallbackCoreID != "WXYZ-12345" {
		t.Fatalf("expected read-only fallback on WXYZ-12345, got %#v", decision)
	}
}
