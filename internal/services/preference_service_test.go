package services

import "testing"

func TestPreferenceDefaultsAllow(t *testing.T) {
	service := NewPreferenceService(setupTestDB(t))

	pref, err := service.GetPreference("alice")
	if err != nil {
		t.Fatalf("GetPreference failed: %v", err)
	}
	if pref != nil {
		t.Fatal("expected no preference row for an unseen user")
	}

	allowed, err := service.AllowsMarriage("alice")
	if err != nil {
		t.Fatalf("AllowsMarriage failed: %v", err)
	}
	if !allowed {
		t.Error("expected marriage allowed by default")
	}

	allowed, err = service.AllowsBaby("alice")
	if err != nil {
		t.Fatalf("AllowsBaby failed: %v", err)
	}
	if !allowed {
		t.Error("expected babies allowed by default")
	}
}

func TestSetAllowMarriagePersistsFalse(t *testing.T) {
	service := NewPreferenceService(setupTestDB(t))

	if err := service.SetAllowMarriage("alice", "Alice", "g1", false); err != nil {
		t.Fatalf("SetAllowMarriage failed: %v", err)
	}

	allowed, err := service.AllowsMarriage("alice")
	if err != nil {
		t.Fatalf("AllowsMarriage failed: %v", err)
	}
	if allowed {
		t.Error("expected marriage opt-out to persist")
	}

	// The other toggle keeps its default.
	allowed, err = service.AllowsBaby("alice")
	if err != nil {
		t.Fatalf("AllowsBaby failed: %v", err)
	}
	if !allowed {
		t.Error("expected baby toggle to stay allowed")
	}
}

func TestResetPreferenceRestoresDefaults(t *testing.T) {
	service := NewPreferenceService(setupTestDB(t))

	if err := service.SetAllowMarriage("alice", "Alice", "g1", false); err != nil {
		t.Fatalf("SetAllowMarriage failed: %v", err)
	}
	if err := service.SetAllowBaby("alice", "Alice", "g1", false); err != nil {
		t.Fatalf("SetAllowBaby failed: %v", err)
	}

	if err := service.ResetPreference("alice", "Alice", "g1"); err != nil {
		t.Fatalf("ResetPreference failed: %v", err)
	}

	pref, err := service.GetPreference("alice")
	if err != nil {
		t.Fatalf("GetPreference failed: %v", err)
	}
	if pref == nil {
		t.Fatal("expected a preference row after reset")
	}
	if !pref.AllowMarriage || !pref.AllowBaby {
		t.Errorf("expected both toggles allowed after reset, got marriage=%v baby=%v", pref.AllowMarriage, pref.AllowBaby)
	}
}
