package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAPIVersion     = errors.New("core: invalid api version")
	ErrInvalidDecisionKind   = errors.New("core: invalid decision kind")
	ErrInvalidMutationKind   = errors.New("core: invalid mutation kind")
	ErrNetworkIDRequired     = errors.New("core: network id is required")
	ErrMutationRejected      = errors.New("core: mutation rejected, search core is read-only")
	ErrDirectoryUnavailable  = errors.New("core: search directory unavailable")
	ErrSignalsReaderRequired = errors.New("core: identity signals reader is required")
)

// ProductionEnvironment is the environment name that requires an independent
// production flag before writes are allowed.
const ProductionEnvironment = "prod"

type APIVersion string

const (
	APIVersionV2 APIVersion = "v2"
	APIVersionV3 APIVersion = "v3"
)

func (v APIVersion) Validate() error {
	switch v {
	case APIVersionV2, APIVersionV3:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAPIVersion, string(v))
	}
}

// CoreDescriptor is one search core reachable for a subscription.
type CoreDescriptor struct {
	CoreID     string     `json:"core_id"`
	Hostname   string     `json:"hostname"`
	APIVersion APIVersion `json:"api_version"`
}

func (d CoreDescriptor) IsZero() bool {
	return strings.TrimSpace(d.CoreID) == ""
}

// KeySet is the opaque key material the directory returns for one core.
type KeySet struct {
	Raw json.RawMessage `json:"raw,omitempty"`
}

func (k KeySet) Empty() bool {
	trimmed := strings.TrimSpace(string(k.Raw))
	switch trimmed {
	case "", "null", "{}", "[]", "false", `""`:
		return true
	default:
		return false
	}
}

func (k KeySet) Decode(target any) error {
	if k.Empty() {
		return fmt.Errorf("core: key set is empty")
	}
	return json.Unmarshal(k.Raw, target)
}

// IdentitySignals bundles the comparison keys of the running deployment.
// An empty EnvironmentName means the environment is absent.
type IdentitySignals struct {
	NetworkID       string
	EnvironmentName string
	SiteFolder      string
	DatabaseName    string
	ProductionFlag  bool
}

func (s IdentitySignals) Normalize() IdentitySignals {
	return IdentitySignals{
		NetworkID:       strings.TrimSpace(s.NetworkID),
		EnvironmentName: strings.TrimSpace(s.EnvironmentName),
		SiteFolder:      strings.TrimSpace(s.SiteFolder),
		DatabaseName:    strings.TrimSpace(s.DatabaseName),
		ProductionFlag:  s.ProductionFlag,
	}
}

func (s IdentitySignals) Validate() error {
	if strings.TrimSpace(s.NetworkID) == "" {
		return ErrNetworkIDRequired
	}
	return nil
}

func (s IdentitySignals) Map() map[string]any {
	return map[string]any{
		"network_id":      s.NetworkID,
		"environment":     s.EnvironmentName,
		"site_folder":     s.SiteFolder,
		"database_name":   s.DatabaseName,
		"production_flag": s.ProductionFlag,
	}
}

type CandidateKind string

const (
	CandidateSiteFolder CandidateKind = "site_folder"
	CandidateDatabase   CandidateKind = "database"
	CandidateNetwork    CandidateKind = "network"
)

type Candidate struct {
	Kind   CandidateKind
	CoreID string
}

// ResolutionOutcome is either Matched(Core) or NoMatch.
type ResolutionOutcome struct {
	Matched   bool
	Core      CoreDescriptor
	MatchedBy CandidateKind
}

func Matched(core CoreDescriptor, by CandidateKind) ResolutionOutcome {
	return ResolutionOutcome{Matched: true, Core: core, MatchedBy: by}
}

func NoMatch() ResolutionOutcome {
	return ResolutionOutcome{}
}

// OverrideConfig is operator-declared connection configuration. Empty fields
// are filled from the resolved defaults when the endpoint is built.
type OverrideConfig struct {
	Host    string            `json:"host,omitempty"`
	Path    string            `json:"path,omitempty"`
	Port    int               `json:"port,omitempty"`
	Scheme  string            `json:"scheme,omitempty"`
	IndexID string            `json:"index_id,omitempty"`
	Options map[string]string `json:"options,omitempty"`
}

func (o OverrideConfig) IsZero() bool {
	return strings.TrimSpace(o.Host) == "" &&
		strings.TrimSpace(o.Path) == "" &&
		strings.TrimSpace(o.Scheme) == "" &&
		strings.TrimSpace(o.IndexID) == "" &&
		o.Port == 0 &&
		len(o.Options) == 0
}

func (o OverrideConfig) Validate() error {
	if o.IsZero() {
		return fmt.Errorf("core: override requires at least one field")
	}
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("core: override port %d is invalid", o.Port)
	}
	if scheme := strings.TrimSpace(strings.ToLower(o.Scheme)); scheme != "" && scheme != "http" && scheme != "https" {
		return fmt.Errorf("core: override scheme %q is invalid", o.Scheme)
	}
	return nil
}

func (o OverrideConfig) Clone() OverrideConfig {
	cloned := o
	cloned.Options = copyStringMap(o.Options)
	return cloned
}

type DecisionKind string

const (
	DecisionExplicitOverride DecisionKind = "explicit_override"
	DecisionAutoMatched      DecisionKind = "auto_matched"
	DecisionReadOnlyFallback DecisionKind = "read_only_fallback"
	DecisionDisabled         DecisionKind = "disabled"
)

func (k DecisionKind) Validate() error {
	switch k {
	case DecisionExplicitOverride, DecisionAutoMatched, DecisionReadOnlyFallback, DecisionDisabled:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDecisionKind, string(k))
	}
}

const (
	ReasonAutoSwitchDisabled    = "auto_switch_disabled"
	ReasonOperatorOverride      = "operator_override"
	ReasonMatched               = "matched"
	ReasonNoMatch               = "no_match"
	ReasonProductionFlagMissing = "production_flag_missing"
)

// ConnectionDecision is the value consumed by the query engine to build its
// endpoint and by the read-only gate. Only read_only_fallback blocks mutations.
type ConnectionDecision struct {
	Kind           DecisionKind
	Override       *OverrideConfig
	Core           CoreDescriptor
	FallbackCoreID string
	Reason         string
}

func ExplicitOverride(override OverrideConfig) ConnectionDecision {
	cloned := override.Clone()
	return ConnectionDecision{Kind: DecisionExplicitOverride, Override: &cloned, Reason: ReasonOperatorOverride}
}

func AutoMatched(core CoreDescriptor) ConnectionDecision {
	return ConnectionDecision{Kind: DecisionAutoMatched, Core: core, Reason: ReasonMatched}
}

func ReadOnlyFallback(fallbackCoreID string, reason string) ConnectionDecision {
	return ConnectionDecision{Kind: DecisionReadOnlyFallback, FallbackCoreID: fallbackCoreID, Reason: reason}
}

func Disabled() ConnectionDecision {
	return ConnectionDecision{Kind: DecisionDisabled, Reason: ReasonAutoSwitchDisabled}
}

func (d ConnectionDecision) ReadOnly() bool {
	return d.Kind == DecisionReadOnlyFallback
}

// TargetCoreID returns the core the query engine should address, if any.
func (d ConnectionDecision) TargetCoreID() string {
	switch d.Kind {
	case DecisionAutoMatched:
		return d.Core.CoreID
	case DecisionReadOnlyFallback:
		return d.FallbackCoreID
	case DecisionExplicitOverride:
		if d.Override != nil {
			return strings.TrimSpace(d.Override.IndexID)
		}
	}
	return ""
}

func (d ConnectionDecision) Map() map[string]any {
	out := map[string]any{
		"decision":  string(d.Kind),
		"reason":    d.Reason,
		"read_only": d.ReadOnly(),
	}
	if target := d.TargetCoreID(); target != "" {
		out["core_id"] = target
	}
	if d.Kind == DecisionAutoMatched && d.Core.Hostname != "" {
		out["hostname"] = d.Core.Hostname
	}
	return out
}

type MutationKind string

const (
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
	MutationCommit MutationKind = "commit"
)

func (k MutationKind) Validate() error {
	switch k {
	case MutationUpdate, MutationDelete, MutationCommit:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMutationKind, string(k))
	}
}

// Endpoint is the connection target handed to the query engine.
type Endpoint struct {
	Scheme   string
	Host     string
	Port     int
	Path     string
	CoreID   string
	PingPath string
	ReadOnly bool
	Options  map[string]string
}

func (e Endpoint) BaseURL() string {
	if strings.TrimSpace(e.Host) == "" {
		return ""
	}
	scheme := e.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, e.Host, e.Port, e.Path)
}

// Resolution bundles everything computed by one resolution call.
type Resolution struct {
	Signals  IdentitySignals
	Outcome  ResolutionOutcome
	Decision ConnectionDecision
	Endpoint Endpoint
	// HasEndpoint is false when the decision leaves external configuration untouched.
	HasEndpoint bool
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
