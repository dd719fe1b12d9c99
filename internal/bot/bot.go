package bot

import (
	"log"
	"strings"
	"sync"
	"time"

	"marriage-bot/internal/config"
	"marriage-bot/internal/services"
	"marriage-bot/internal/transport"
)

// Bot is the command dispatch layer: it parses group-chat commands and calls
// into the marriage service, the baby tracker and the chat transport.
type Bot struct {
	client    *transport.Client
	marriages *services.MarriageService
	prefs     *services.PreferenceService
	tracker   *services.BabyTracker
	game      config.GameConfig

	// One-shot expiry announcements, keyed by proposal request id so
	// accept/reject can cancel the pending timer deterministically.
	timerMu      sync.Mutex
	expiryTimers map[string]*time.Timer
}

func New(
	client *transport.Client,
	marriages *services.MarriageService,
	prefs *services.PreferenceService,
	tracker *services.BabyTracker,
	game config.GameConfig,
) *Bot {
	return &Bot{
		client:       client,
		marriages:    marriages,
		prefs:        prefs,
		tracker:      tracker,
		game:         game,
		expiryTimers: make(map[string]*time.Timer),
	}
}

// HandleEvent routes one incoming group message to its command handler.
func (b *Bot) HandleEvent(ev transport.Event) {
	if !ev.IsGroupMessage() {
		return
	}

	fields := strings.Fields(strings.TrimSpace(ev.PlainText()))
	if len(fields) == 0 {
		return
	}

	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "marry", "propose":
		b.handleMarry(ev)
	case "accept", "agree", "yes":
		b.handleAccept(ev)
	case "reject", "refuse", "no":
		b.handleReject(ev)
	case "marriage", "marriages", "mymarriage":
		b.handleMarriageStatus(ev)
	case "divorce", "breakup":
		b.handleDivorce(ev)
	case "baby", "makebaby":
		b.handleBaby(ev)
	case "babies", "mybabies":
		b.handleBabies(ev, args)
	case "preference", "prefs":
		b.handlePreference(ev, args)
	}
}

// Shutdown cancels every outstanding proposal expiry timer.
func (b *Bot) Shutdown() {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()

	for requestID, timer := range b.expiryTimers {
		timer.Stop()
		delete(b.expiryTimers, requestID)
	}

	log.Println("Bot shut down, proposal timers cancelled")
}

// scheduleProposalExpiry arms the one-shot timeout announcement for a
// proposal. The timer is kept so acceptance or rejection can cancel it.
func (b *Bot) scheduleProposalExpiry(requestID, groupID, proposerName, targetName string) {
	ttl := time.Duration(b.game.ProposalTTLSeconds) * time.Second

	b.timerMu.Lock()
	defer b.timerMu.Unlock()

	b.expiryTimers[requestID] = time.AfterFunc(ttl, func() {
		b.expireProposal(requestID, groupID, proposerName, targetName)
	})
}

// cancelProposalExpiry stops the pending timer for a proposal, if any.
func (b *Bot) cancelProposalExpiry(requestID string) {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()

	if timer, ok := b.expiryTimers[requestID]; ok {
		timer.Stop()
		delete(b.expiryTimers, requestID)
	}
}

func (b *Bot) expireProposal(requestID, groupID, proposerName, targetName string) {
	b.timerMu.Lock()
	delete(b.expiryTimers, requestID)
	b.timerMu.Unlock()

	// Only announce if the proposal is still pending; the sweep job may
	// have expired it already, and accept/reject resolve it entirely.
	proposal, err := b.marriages.GetPendingProposalByID(requestID)
	if err != nil {
		log.Printf("Proposal expiry check failed for %s: %v", requestID, err)
		return
	}
	if proposal == nil {
		return
	}

	// The proposal can be accepted between the pending check and the
	// rejection; only announce when the rejection actually landed.
	ok, err := b.marriages.RejectProposal(requestID)
	if err != nil {
		log.Printf("Proposal expiry rejection failed for %s: %v", requestID, err)
		return
	}
	if !ok {
		return
	}

	b.reply(groupID, "💔 "+proposerName+"'s proposal to "+targetName+" timed out and was withdrawn.")
}

// reply sends a plain-text message to a group.
func (b *Bot) reply(groupID, text string) {
	b.client.SendGroupMessage(groupID, transport.Text(text))
}
