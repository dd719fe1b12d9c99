package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"marriage-bot/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// A plain :memory: DSN gives every test its own isolated database.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Proposal{},
		&models.Marriage{},
		&models.BabyRecord{},
		&models.UserPreference{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func newTestService(t *testing.T) *MarriageService {
	return NewMarriageService(setupTestDB(t), 120*time.Second)
}

// marry is a test helper that walks a pair through propose and accept.
func marry(t *testing.T, service *MarriageService, proposerID, targetID, groupID string) {
	t.Helper()

	requestID, err := service.CreateProposal(proposerID, proposerID+"-name", targetID, targetID+"-name", groupID)
	if err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}

	accepted, err := service.AcceptProposal(requestID)
	if err != nil {
		t.Fatalf("AcceptProposal failed: %v", err)
	}
	if !accepted {
		t.Fatal("expected proposal to be accepted")
	}
}

func TestCreateProposalOncePerDay(t *testing.T) {
	service := newTestService(t)

	if _, err := service.CreateProposal("alice", "Alice", "bob", "Bob", "g1"); err != nil {
		t.Fatalf("first proposal failed: %v", err)
	}

	_, err := service.CreateProposal("alice", "Alice", "carol", "Carol", "g1")
	if !errors.Is(err, ErrAlreadyProposedToday) {
		t.Errorf("expected ErrAlreadyProposedToday, got %v", err)
	}

	// A different proposer is unaffected by alice's quota.
	if _, err := service.CreateProposal("dave", "Dave", "bob", "Bob", "g1"); err != nil {
		t.Errorf("unrelated proposer blocked: %v", err)
	}
}

func TestRejectedProposalDoesNotBlockRetry(t *testing.T) {
	service := newTestService(t)

	requestID, err := service.CreateProposal("alice", "Alice", "bob", "Bob", "g1")
	if err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}

	rejected, err := service.RejectProposal(requestID)
	if err != nil {
		t.Fatalf("RejectProposal failed: %v", err)
	}
	if !rejected {
		t.Fatal("expected rejection to succeed")
	}

	// Rejected proposals do not count against the daily quota.
	if _, err := service.CreateProposal("alice", "Alice", "carol", "Carol", "g1"); err != nil {
		t.Errorf("retry after rejection blocked: %v", err)
	}
}

func TestAcceptProposalCreatesMarriage(t *testing.T) {
	service := newTestService(t)

	requestID, err := service.CreateProposal("alice", "Alice", "bob", "Bob", "g1")
	if err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}

	accepted, err := service.AcceptProposal(requestID)
	if err != nil {
		t.Fatalf("AcceptProposal failed: %v", err)
	}
	if !accepted {
		t.Fatal("expected acceptance to succeed")
	}

	marriage, err := service.GetMarriage("bob")
	if err != nil {
		t.Fatalf("GetMarriage failed: %v", err)
	}
	if marriage == nil {
		t.Fatal("expected a marriage for bob")
	}
	if marriage.ProposerID != "alice" || marriage.TargetID != "bob" {
		t.Errorf("unexpected marriage parties: %s & %s", marriage.ProposerID, marriage.TargetID)
	}

	spouseID, spouseName := marriage.SpouseOf("bob")
	if spouseID != "alice" || spouseName != "Alice" {
		t.Errorf("expected spouse alice/Alice, got %s/%s", spouseID, spouseName)
	}

	// An accepted proposal is no longer rejectable.
	rejected, err := service.RejectProposal(requestID)
	if err != nil {
		t.Fatalf("RejectProposal failed: %v", err)
	}
	if rejected {
		t.Error("expected rejection of an accepted proposal to report false")
	}
}

func TestAcceptProposalUnknownID(t *testing.T) {
	service := newTestService(t)

	accepted, err := service.AcceptProposal("no-such-request")
	if err != nil {
		t.Fatalf("AcceptProposal failed: %v", err)
	}
	if accepted {
		t.Error("expected acceptance of unknown request to report false")
	}
}

func TestAcceptProposalRejectsOtherSuitors(t *testing.T) {
	service := newTestService(t)

	winner, err := service.CreateProposal("alice", "Alice", "carol", "Carol", "g1")
	if err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}
	loser, err := service.CreateProposal("bob", "Bob", "carol", "Carol", "g1")
	if err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}
	// A proposal to a different target in the same group must survive.
	bystander, err := service.CreateProposal("dave", "Dave", "erin", "Erin", "g1")
	if err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}

	if _, err := service.AcceptProposal(winner); err != nil {
		t.Fatalf("AcceptProposal failed: %v", err)
	}

	loserProposal, err := service.GetPendingProposalByID(loser)
	if err != nil {
		t.Fatalf("GetPendingProposalByID failed: %v", err)
	}
	if loserProposal != nil {
		t.Error("expected losing suitor's proposal to be rejected")
	}

	bystanderProposal, err := service.GetPendingProposalByID(bystander)
	if err != nil {
		t.Fatalf("GetPendingProposalByID failed: %v", err)
	}
	if bystanderProposal == nil {
		t.Error("expected unrelated proposal to stay pending")
	}
}

func TestGetPendingProposalsDedupesProposer(t *testing.T) {
	db := setupTestDB(t)
	service := NewMarriageService(db, 120*time.Second)

	// Two proposals from the same proposer can only exist across days, so
	// seed the older one directly.
	old := models.Proposal{
		RequestID:    "req-old",
		ProposerID:   "alice",
		ProposerName: "Alice",
		TargetID:     "bob",
		TargetName:   "Bob",
		GroupID:      "g1",
		Status:       models.ProposalStatusPending,
		CreatedAt:    time.Now().Add(-48 * time.Hour),
	}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("failed to seed proposal: %v", err)
	}

	if _, err := service.CreateProposal("alice", "Alice", "bob", "Bob", "g1"); err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}
	if _, err := service.CreateProposal("carol", "Carol", "bob", "Bob", "g1"); err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}

	proposals, err := service.GetPendingProposals("bob", "g1")
	if err != nil {
		t.Fatalf("GetPendingProposals failed: %v", err)
	}
	if len(proposals) != 2 {
		t.Fatalf("expected 2 deduplicated proposals, got %d", len(proposals))
	}
	for _, p := range proposals {
		if p.ProposerID == "alice" && p.RequestID == "req-old" {
			t.Error("expected alice's newest proposal, got the stale one")
		}
	}
}

func TestDivorce(t *testing.T) {
	service := newTestService(t)
	marry(t, service, "alice", "bob", "g1")

	divorced, err := service.Divorce("bob")
	if err != nil {
		t.Fatalf("Divorce failed: %v", err)
	}
	if !divorced {
		t.Fatal("expected divorce to succeed")
	}

	marriage, err := service.GetMarriage("alice")
	if err != nil {
		t.Fatalf("GetMarriage failed: %v", err)
	}
	if marriage != nil {
		t.Error("expected no current marriage after divorce")
	}

	divorced, err = service.Divorce("bob")
	if err != nil {
		t.Fatalf("Divorce failed: %v", err)
	}
	if divorced {
		t.Error("expected second divorce to report false")
	}
}

func TestDivorceWithSpouseTargetsOnePair(t *testing.T) {
	service := newTestService(t)
	marry(t, service, "alice", "bob", "g1")
	marry(t, service, "carol", "bob", "g1")

	divorced, err := service.DivorceWithSpouse("bob", "alice")
	if err != nil {
		t.Fatalf("DivorceWithSpouse failed: %v", err)
	}
	if !divorced {
		t.Fatal("expected divorce to succeed")
	}

	marriages, err := service.GetMarriages("bob")
	if err != nil {
		t.Fatalf("GetMarriages failed: %v", err)
	}
	if len(marriages) != 1 {
		t.Fatalf("expected 1 remaining marriage, got %d", len(marriages))
	}
	if !marriages[0].Involves("carol") {
		t.Error("expected the marriage with carol to survive")
	}
}

func TestCleanupExpiredProposals(t *testing.T) {
	db := setupTestDB(t)
	service := NewMarriageService(db, 120*time.Second)

	stale := models.Proposal{
		RequestID:  "req-stale",
		ProposerID: "alice",
		TargetID:   "bob",
		GroupID:    "g1",
		Status:     models.ProposalStatusPending,
		CreatedAt:  time.Now().Add(-3 * time.Minute),
	}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("failed to seed proposal: %v", err)
	}

	if _, err := service.CreateProposal("carol", "Carol", "dave", "Dave", "g1"); err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}

	swept, err := service.CleanupExpiredProposals()
	if err != nil {
		t.Fatalf("CleanupExpiredProposals failed: %v", err)
	}
	if swept != 1 {
		t.Errorf("expected 1 swept proposal, got %d", swept)
	}

	expired, err := service.GetPendingProposalByID("req-stale")
	if err != nil {
		t.Fatalf("GetPendingProposalByID failed: %v", err)
	}
	if expired != nil {
		t.Error("expected stale proposal to no longer be pending")
	}

	fresh, err := service.GetPendingProposal("dave", "g1")
	if err != nil {
		t.Fatalf("GetPendingProposal failed: %v", err)
	}
	if fresh == nil {
		t.Error("expected fresh proposal to stay pending")
	}
}

func TestDailyResetKeepsBabyRecords(t *testing.T) {
	service := newTestService(t)
	marry(t, service, "alice", "bob", "g1")

	if _, err := service.HaveBabyWithSpouse("alice", "bob", "g1", 2); err != nil {
		t.Fatalf("HaveBabyWithSpouse failed: %v", err)
	}

	if err := service.DailyResetAll(); err != nil {
		t.Fatalf("DailyResetAll failed: %v", err)
	}

	marriage, err := service.GetMarriage("alice")
	if err != nil {
		t.Fatalf("GetMarriage failed: %v", err)
	}
	if marriage != nil {
		t.Error("expected marriages to be cleared by reset")
	}

	records, err := service.BabyRecords("alice")
	if err != nil {
		t.Fatalf("BabyRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected baby records to survive reset, got %d", len(records))
	}

	total, err := service.TotalBabies("alice")
	if err != nil {
		t.Fatalf("TotalBabies failed: %v", err)
	}
	if total != 2 {
		t.Errorf("expected total 2 after reset, got %d", total)
	}
}

func TestHaveBabyRequiresMarriage(t *testing.T) {
	service := newTestService(t)

	_, err := service.HaveBaby("alice", "g1", 1)
	if !errors.Is(err, ErrNotMarried) {
		t.Errorf("expected ErrNotMarried, got %v", err)
	}

	marry(t, service, "alice", "bob", "g1")

	_, err = service.HaveBabyWithSpouse("alice", "carol", "g1", 1)
	if !errors.Is(err, ErrNotMarried) {
		t.Errorf("expected ErrNotMarried for wrong spouse, got %v", err)
	}
}

func TestHaveBabyZeroCountPersists(t *testing.T) {
	db := setupTestDB(t)
	service := NewMarriageService(db, 120*time.Second)
	marry(t, service, "alice", "bob", "g1")

	result, err := service.HaveBabyWithSpouse("alice", "bob", "g1", 0)
	if err != nil {
		t.Fatalf("HaveBabyWithSpouse failed: %v", err)
	}
	if result.BabyCount != 0 || result.TotalBabies != 0 {
		t.Errorf("expected count 0 total 0, got count %d total %d", result.BabyCount, result.TotalBabies)
	}

	// The stored row must read 0 too, not a column default.
	var record models.BabyRecord
	if err := db.Where("parent1_id = ?", "alice").First(&record).Error; err != nil {
		t.Fatalf("failed to load record: %v", err)
	}
	if record.BabyCount != 0 {
		t.Errorf("expected persisted count 0, got %d", record.BabyCount)
	}

	total, err := service.TotalBabies("alice")
	if err != nil {
		t.Fatalf("TotalBabies failed: %v", err)
	}
	if total != 0 {
		t.Errorf("expected total 0 after a no-baby attempt, got %d", total)
	}
}

func TestHaveBabyAccumulatesTotals(t *testing.T) {
	service := newTestService(t)
	marry(t, service, "alice", "bob", "g1")
	marry(t, service, "carol", "bob", "g1")

	result, err := service.HaveBabyWithSpouse("bob", "alice", "g1", 2)
	if err != nil {
		t.Fatalf("HaveBabyWithSpouse failed: %v", err)
	}
	if result.Parent1Name != "bob-name" || result.Parent2Name != "alice-name" {
		t.Errorf("unexpected parents: %s & %s", result.Parent1Name, result.Parent2Name)
	}
	if result.BabyCount != 2 || result.TotalBabies != 2 {
		t.Errorf("expected count 2 total 2, got count %d total %d", result.BabyCount, result.TotalBabies)
	}

	// The spouse order in the record must not matter for the pair total.
	result, err = service.HaveBabyWithSpouse("alice", "bob", "g1", 3)
	if err != nil {
		t.Fatalf("HaveBabyWithSpouse failed: %v", err)
	}
	if result.TotalBabies != 5 {
		t.Errorf("expected pair total 5, got %d", result.TotalBabies)
	}

	if _, err := service.HaveBabyWithSpouse("bob", "carol", "g1", 4); err != nil {
		t.Fatalf("HaveBabyWithSpouse failed: %v", err)
	}

	pairTotal, err := service.TotalBabies("bob", "alice")
	if err != nil {
		t.Fatalf("TotalBabies failed: %v", err)
	}
	if pairTotal != 5 {
		t.Errorf("expected pair total 5, got %d", pairTotal)
	}

	globalTotal, err := service.TotalBabies("bob")
	if err != nil {
		t.Fatalf("TotalBabies failed: %v", err)
	}
	if globalTotal != 9 {
		t.Errorf("expected global total 9, got %d", globalTotal)
	}
}

func TestBabyRecordsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	service := NewMarriageService(db, 120*time.Second)

	older := models.BabyRecord{
		MarriageID: "m1", Parent1ID: "alice", Parent2ID: "bob",
		BabyCount: 1, GroupID: "g1", CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	newer := models.BabyRecord{
		MarriageID: "m1", Parent1ID: "alice", Parent2ID: "bob",
		BabyCount: 3, GroupID: "g1", CreatedAt: time.Now().Add(-1 * time.Hour),
	}
	if err := db.Create(&older).Error; err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}
	if err := db.Create(&newer).Error; err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}

	records, err := service.BabyRecords("alice")
	if err != nil {
		t.Fatalf("BabyRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].BabyCount != 3 {
		t.Errorf("expected newest record first, got count %d", records[0].BabyCount)
	}
}
