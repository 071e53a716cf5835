package core

// CoreResolver picks the single core matching the running deployment.
type CoreResolver struct{}

func NewCoreResolver() CoreResolver {
	return CoreResolver{}
}

// Candidates returns the core ids to look for, most specific first:
// {net}.{env}.{folder}, {net}.{env}.{db}, {net}. Candidates with an empty
// component are skipped, so an absent environment leaves only {net}.
func Candidates(signals IdentitySignals) []Candidate {
	signals = signals.Normalize()
	if signals.NetworkID == "" {
		return nil
	}
	out := make([]Candidate, 0, 3)
	if signals.EnvironmentName != "" {
		prefix := signals.NetworkID + "." + signals.EnvironmentName + "."
		if signals.SiteFolder != "" {
			out = append(out, Candidate{Kind: CandidateSiteFolder, CoreID: prefix + signals.SiteFolder})
		}
		if signals.DatabaseName != "" {
			out = append(out, Candidate{Kind: CandidateDatabase, CoreID: prefix + signals.DatabaseName})
		}
	}
	return append(out, Candidate{Kind: CandidateNetwork, CoreID: signals.NetworkID})
}

// Resolve compares core ids with exact, case-sensitive equality; ids are
// matched as listed.
func (CoreResolver) Resolve(directory []CoreDescriptor, signals IdentitySignals) ResolutionOutcome {
	if len(directory) == 0 {
		return NoMatch()
	}
	byID := make(map[string]CoreDescriptor, len(directory))
	for _, descriptor := range directory {
		id := descriptor.CoreID
		if id == "" {
			continue
		}
		// first listing wins when the directory repeats an id
		if _, seen := byID[id]; !seen {
			byID[id] = descriptor
		}
	}
	for _, candidate := range Candidates(signals) {
		if descriptor, ok := byID[candidate.CoreID]; ok {
			return Matched(descriptor, candidate.Kind)
		}
	}
	return NoMatch()
}
