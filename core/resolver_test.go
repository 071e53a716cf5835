package core

import "testing"

func TestCandidates_Order(t *testing.T) {
	got := Candidates(IdentitySignals{
		NetworkID:       "WXYZ-12345",
		EnvironmentName: "dev",
		SiteFolder:      "testsite1dev",
		DatabaseName:    "testsite1db",
	})
	want := []Candidate{
		{Kind: CandidateSiteFolder, CoreID: "WXYZ-12345.dev.testsite1dev"},
		{Kind: CandidateDatabase, CoreID: "WXYZ-12345.dev.testsite1db"},
		{Kind: CandidateNetwork, CoreID: "WXYZ-12345"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %#v", len(want), got)
	}
	for index := range want {
		if got[index] != want[index] {
			t.Fatalf("candidate %d: expected %#v, got %#v", index, want[index], got[index])
		}
	}
}

func TestCandidates_AbsentEnvironmentLeavesNetworkOnly(t *testing.T) {
	got := Candidates(IdentitySignals{NetworkID: "WXYZ-12345", SiteFolder: "site", DatabaseName: "db"})
	if len(got) != 1 || got[0].CoreID != "WXYZ-12345" {
		t.Fatalf("expected bare network candidate only, got %#v", got)
	}
}

func TestCandidates_EmptyNetwork(t *testing.T) {
	if got := Candidates(IdentitySignals{EnvironmentName: "dev"}); len(got) != 0 {
		t.Fatalf("expected no candidates without network id, got %#v", got)
	}
}

func TestCoreResolver_FolderBeatsDatabase(t *testing.T) {
	directory := []CoreDescriptor{
		v3Core("WXYZ-12345", "shared.example"),
		v3Core("WXYZ-12345.dev.db1", "db.example"),
		v3Core("WXYZ-12345.dev.folder1", "folder.example"),
	}
	outcome := NewCoreResolver().Resolve(directory, IdentitySignals{
		NetworkID:       "WXYZ-12345",
		EnvironmentName: "dev",
		SiteFolder:      "folder1",
		DatabaseName:    "db1",
	})
	if !outcome.Matched {
		t.Fatalf("expected match")
	}
	if outcome.Core.CoreID != "WXYZ-12345.dev.folder1" || outcome.MatchedBy != CandidateSiteFolder {
		t.Fatalf("expected folder-qualified core, got %#v", outcome)
	}
}

func TestCoreResolver_DatabaseBeatsNetwork(t *testing.T) {
	directory := []CoreDescriptor{
		v3Core("WXYZ-12345", "shared.example"),
		v3Core("WXYZ-12345.dev.db1", "db.example"),
	}
	outcome := NewCoreResolver().Resolve(directory, IdentitySignals{
		NetworkID:       "WXYZ-12345",
		EnvironmentName: "dev",
		SiteFolder:      "folder1",
		DatabaseName:    "db1",
	})
	if !outcome.Matched || outcome.Core.CoreID != "WXYZ-12345.dev.db1" {
		t.Fatalf("expected db-qualified core, got %#v", outcome)
	}
	if outcome.MatchedBy != CandidateDatabase {
		t.Fatalf("expected database candidate, got %q", outcome.MatchedBy)
	}
}

func TestCoreResolver_FolderOnly(t *testing.T) {
	directory := []CoreDescriptor{v3Core("WXYZ-12345.dev.folder1", "folder.example")}
	outcome := NewCoreResolver().Resolve(directory, IdentitySignals{
		NetworkID:       "WXYZ-12345",
		EnvironmentName: "dev",
		SiteFolder:      "folder1",
		DatabaseName:    "db1",
	})
	if !outcome.Matched || outcome.MatchedBy != CandidateSiteFolder {
		t.Fatalf("expected folder match, got %#v", outcome)
	}
}

func TestCoreResolver_NoCandidatePresent(t *testing.T) {
	directory := []CoreDescriptor{
		v3Core("WXYZ-12345.dev.other", "a.example"),
		v3Core("ABCD-99999", "b.example"),
	}
	outcome := NewCoreResolver().Resolve(directory, IdentitySignals{
		NetworkID:       "WXYZ-12345",
		EnvironmentName: "test",
		SiteFolder:      "folder1",
	})
	if outcome.Matched {
		t.Fatalf("expected no match, got %#v", outcome)
	}
}

func TestCoreResolver_EmptyDirectory(t *testing.T) {
	if outcome := NewCoreResolver().Resolve(nil, IdentitySignals{NetworkID: "WXYZ-12345"}); outcome.Matched {
		t.Fatalf("expected no match for empty directory")
	}
}

func TestCoreResolver_CaseSensitive(t *testing.T) {
	directory := []CoreDescriptor{v3Core("wxyz-12345", "a.example")}
	if outcome := NewCoreResolver().Resolve(directory, IdentitySignals{NetworkID: "WXYZ-12345"}); outcome.Matched {
		t.Fatalf("expected exact-case comparison, got %#v", outcome)
	}
}

func TestCoreResolver_DuplicateIDFirstListingWins(t *testing.T) {
	directory := []CoreDescriptor{
		v3Core("WXYZ-12345", "first.example"),
		v3Core("WXYZ-12345", "second.example"),
	}
	outcome := NewCoreResolver().Resolve(directory, IdentitySignals{NetworkID: "WXYZ-12345"})
	if outcome.Core.Hostname != "first.example" {
		t.Fatalf("expected first listing, got %q", outcome.Core.Hostname)
	}
}

func TestCoreResolver_PaddedIDIsNotAMatch(t *testing.T) {
	directory := []CoreDescriptor{v3Core(" WXYZ-12345 ", "padded.example")}
	if outcome := NewCoreResolver().Resolve(directory, IdentitySignals{NetworkID: "WXYZ-12345"}); outcome.Matched {
		t.Fatalf("expected exact comparison of listed ids, got %#v", outcome)
	}
}
