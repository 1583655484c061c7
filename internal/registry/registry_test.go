package registry

import "testing"

func TestContainsBuiltinSeed(t *testing.T) {
	r := New()
	if !r.Contains(FirstName, "rahul") {
		t.Error("expected builtin seed to contain 'rahul' as FIRST_NAME")
	}
	if r.Contains(FirstName, "zzznotaname") {
		t.Error("did not expect unseeded token to match")
	}
}

func TestLearnTokenAcceptsNameCategories(t *testing.T) {
	r := New()
	if !r.LearnToken("chiranjeevi", FirstName) {
		t.Fatal("expected LearnToken to accept a new first name")
	}
	if !r.Contains(FirstName, "chiranjeevi") {
		t.Error("learned token not visible via Contains")
	}
}

func TestLearnTokenRejectsShortToken(t *testing.T) {
	r := New()
	if r.LearnToken("a", FirstName) {
		t.Error("expected single-rune token to be rejected")
	}
}

func TestLearnTokenRejectsNonNameCategory(t *testing.T) {
	r := New()
	if r.LearnToken("xyzplumber", Descriptor) {
		t.Error("expected DESCRIPTOR category to be rejected by LearnToken")
	}
	if r.LearnToken("xyzrelation", Relationship) {
		t.Error("expected RELATIONSHIP category to be rejected by LearnToken")
	}
}

func TestGetCounts(t *testing.T) {
	r := New()
	counts := r.GetCounts()
	if counts[FirstName] == 0 {
		t.Error("expected non-zero FIRST_NAME seed count")
	}
	before := counts[LastName]
	r.LearnToken("newlastname", LastName)
	after := r.GetCounts()[LastName]
	if after != before+1 {
		t.Errorf("LAST_NAME count = %d, want %d", after, before+1)
	}
}

func TestLoadFromDatabaseAugments(t *testing.T) {
	r := New()
	r.LoadFromDatabase([]SeedEntry{
		{Token: "gopichand", Category: FirstName},
		{Token: "bhaiyya", Category: Relationship},
	})
	if !r.Contains(FirstName, "gopichand") {
		t.Error("expected loaded FIRST_NAME entry to be present")
	}
	if !r.Contains(Relationship, "bhaiyya") {
		t.Error("expected loaded RELATIONSHIP entry to be present")
	}
	if !r.Contains(FirstName, "rahul") {
		t.Error("expected builtin seed to survive a database load")
	}
}

func TestGetSeedEntriesRoundTrip(t *testing.T) {
	r := New()
	entries := r.GetSeedEntries()
	if len(entries) == 0 {
		t.Fatal("expected non-empty seed entries")
	}
	found := false
	for _, e := range entries {
		if e.Category == FirstName && e.Token == "rahul" {
			found = true
		}
	}
	if !found {
		t.Error("expected 'rahul'/FIRST_NAME in flattened seed entries")
	}
}
