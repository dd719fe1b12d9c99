package bot

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"marriage-bot/internal/models"
	"marriage-bot/internal/services"
	"marriage-bot/internal/transport"
)

func (b *Bot) handleMarry(ev transport.Event) {
	userID := ev.UserIDString()
	groupID := ev.GroupIDString()

	mentions := ev.Mentions()
	if len(mentions) == 0 {
		b.reply(groupID, "Mention the member you want to marry!")
		return
	}
	if len(mentions) > 1 {
		b.reply(groupID, "One proposal at a time!")
		return
	}

	targetID := mentions[0]
	if targetID == userID {
		b.reply(groupID, "You cannot marry yourself!")
		return
	}

	allowed, err := b.prefs.AllowsMarriage(targetID)
	if err != nil {
		log.Printf("Preference lookup failed for %s: %v", targetID, err)
	} else if !allowed {
		b.reply(groupID, "That member has turned off marriage proposals.")
		return
	}

	member, err := b.client.GetGroupMemberInfo(groupID, targetID)
	if err != nil {
		log.Printf("Member lookup failed for %s in group %s: %v", targetID, groupID, err)
		b.reply(groupID, "Could not find that member in this group. Make sure you mentioned a group member.")
		return
	}

	proposerName := ev.Sender.DisplayName()
	targetName := member.DisplayName()

	requestID, err := b.marriages.CreateProposal(userID, proposerName, targetID, targetName, groupID)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyProposedToday) {
			b.reply(groupID, "You already proposed today. Try again tomorrow!")
			return
		}
		log.Printf("CreateProposal failed for %s: %v", userID, err)
		b.reply(groupID, "Could not create the proposal, please try again later.")
		return
	}

	segments := []transport.Segment{
		transport.Text(fmt.Sprintf(
			"💌 Marriage proposal\n%s has proposed to %s!\nID: %s\nNickname: %s\n",
			proposerName, targetName, targetID, targetName,
		)),
	}

	// Avatar failures degrade to a text-only proposal.
	if avatar := b.fetchAvatar(targetID); avatar != nil {
		segments = append(segments, transport.ImageBytes(avatar))
	}

	segments = append(segments,
		transport.Text(fmt.Sprintf(
			"\nReply within %d seconds:\n'accept' - accept the proposal\n'reject' - decline the proposal\n\n",
			b.game.ProposalTTLSeconds,
		)),
		transport.At(targetID),
		transport.Text(" will you accept?"),
	)

	b.client.SendGroupMessage(groupID, segments...)
	b.scheduleProposalExpiry(requestID, groupID, proposerName, targetName)
}

func (b *Bot) handleAccept(ev transport.Event) {
	userID := ev.UserIDString()
	groupID := ev.GroupIDString()

	pending, err := b.marriages.GetPendingProposals(userID, groupID)
	if err != nil {
		log.Printf("GetPendingProposals failed for %s: %v", userID, err)
		return
	}
	if len(pending) == 0 {
		return
	}

	var selected *models.Proposal
	if mentions := ev.Mentions(); len(mentions) > 0 {
		for i := range pending {
			if pending[i].ProposerID == mentions[0] {
				selected = &pending[i]
				break
			}
		}
		if selected == nil {
			b.reply(groupID, "❌ No proposal from that member was found!")
			return
		}
	} else {
		// No explicit choice: the newest proposal wins.
		selected = &pending[0]
	}

	ok, err := b.marriages.AcceptProposal(selected.RequestID)
	if err != nil {
		log.Printf("AcceptProposal failed for %s: %v", selected.RequestID, err)
		b.reply(groupID, "❌ Something went wrong while processing the proposal.")
		return
	}
	if !ok {
		b.reply(groupID, "❌ That proposal is no longer pending.")
		return
	}

	// Every proposal addressed to this user is resolved now, one way or
	// the other; none of their timers should fire.
	for i := range pending {
		b.cancelProposalExpiry(pending[i].RequestID)
	}

	b.client.SendGroupMessage(groupID,
		transport.Text(fmt.Sprintf("🎉 Congratulations %s and %s, you are now married! 💕",
			selected.ProposerName, ev.Sender.DisplayName())),
	)
}

func (b *Bot) handleReject(ev transport.Event) {
	userID := ev.UserIDString()
	groupID := ev.GroupIDString()

	pending, err := b.marriages.GetPendingProposal(userID, groupID)
	if err != nil {
		log.Printf("GetPendingProposal failed for %s: %v", userID, err)
		return
	}
	if pending == nil {
		return
	}

	ok, err := b.marriages.RejectProposal(pending.RequestID)
	if err != nil {
		log.Printf("RejectProposal failed for %s: %v", pending.RequestID, err)
		return
	}
	if ok {
		b.cancelProposalExpiry(pending.RequestID)
		b.reply(groupID, "💔 The proposal has been declined.")
	}
}

func (b *Bot) handleMarriageStatus(ev transport.Event) {
	userID := ev.UserIDString()
	groupID := ev.GroupIDString()

	marriages, err := b.marriages.GetMarriages(userID)
	if err != nil {
		log.Printf("GetMarriages failed for %s: %v", userID, err)
		return
	}

	if len(marriages) == 0 {
		b.reply(groupID, "💔 You are currently single.")
		return
	}

	lines := []string{fmt.Sprintf("💑 Your marriages (%d):", len(marriages))}
	for i, m := range marriages {
		_, partnerName := m.SpouseOf(userID)
		role := "💍 proposed to you"
		if m.ProposerID == userID {
			role = "👰 you proposed"
		}
		lines = append(lines, fmt.Sprintf("%d. %s (%s) - %s",
			i+1, partnerName, role, m.MarriedAt.Format("01-02 15:04")))
	}

	b.reply(groupID, strings.Join(lines, "\n"))
}

func (b *Bot) handleDivorce(ev transport.Event) {
	userID := ev.UserIDString()
	groupID := ev.GroupIDString()

	mentions := ev.Mentions()
	if len(mentions) == 0 {
		b.reply(groupID, "Mention the member you want to divorce!")
		return
	}

	targetID := mentions[0]
	if targetID == userID {
		return
	}

	userName := ev.Sender.DisplayName()
	targetName := targetID
	if member, err := b.client.GetGroupMemberInfo(groupID, targetID); err == nil {
		targetName = member.DisplayName()
	}

	ok, err := b.marriages.DivorceWithSpouse(userID, targetID)
	if err != nil {
		log.Printf("DivorceWithSpouse failed for %s/%s: %v", userID, targetID, err)
		b.reply(groupID, "Divorce failed, please try again later!")
		return
	}
	if !ok {
		b.reply(groupID, "Divorce failed, please try again later!")
		return
	}

	b.reply(groupID, divorceMessage(userName, targetName))
}

func (b *Bot) handleBaby(ev transport.Event) {
	userID := ev.UserIDString()
	groupID := ev.GroupIDString()

	allowedNow, tip := b.checkNightWindow()
	if !allowedNow {
		b.reply(groupID, tip)
		return
	}

	marriages, err := b.marriages.GetMarriages(userID)
	if err != nil {
		log.Printf("GetMarriages failed for %s: %v", userID, err)
		return
	}

	var spouseID, spouseName string
	if mentions := ev.Mentions(); len(mentions) > 0 && mentions[0] != userID {
		for _, m := range marriages {
			if m.Involves(mentions[0]) {
				spouseID, spouseName = m.SpouseOf(userID)
				break
			}
		}
		if spouseID == "" {
			b.reply(groupID, "❌ You are not married to that member!")
			return
		}
	} else {
		if len(marriages) == 0 {
			b.reply(groupID, "❌ You are not married yet!")
			return
		}
		spouseID, spouseName = marriages[0].SpouseOf(userID)
	}

	allowed, err := b.prefs.AllowsBaby(spouseID)
	if err != nil {
		log.Printf("Preference lookup failed for %s: %v", spouseID, err)
	} else if !allowed {
		b.reply(groupID, fmt.Sprintf("%s has turned off baby requests.", spouseName))
		return
	}

	if b.tracker.IsActive(userID, spouseID) {
		remaining := b.tracker.RemainingSeconds(userID, spouseID)
		minutes := int(remaining / 60)
		if minutes < 1 {
			minutes = 1
		}
		b.reply(groupID, fmt.Sprintf("❌ You two are already at it. Wait %d more minutes!", minutes))
		return
	}

	span := b.game.BabyMaxDurationSecs - b.game.BabyMinDurationSecs + 1
	duration := time.Duration(b.game.BabyMinDurationSecs+rand.Intn(span)) * time.Second

	started := b.tracker.Start(userID, spouseID, groupID, duration, b.announceBirth)
	if !started {
		b.reply(groupID, "❌ The process has already started, no need to repeat it!")
		return
	}

	b.reply(groupID, fmt.Sprintf("Working on a baby... check back in %d minutes...\nPartner: %s",
		int(duration.Minutes()), spouseName))
}

// announceBirth is the gestation completion callback: it materializes the
// baby record and posts the outcome. Errors are logged, never propagated.
func (b *Bot) announceBirth(user1ID, user2ID, groupID string, babyCount int) {
	result, err := b.marriages.HaveBabyWithSpouse(user1ID, user2ID, groupID, babyCount)
	if err != nil {
		log.Printf("Birth recording failed for %s & %s: %v", user1ID, user2ID, err)
		return
	}

	msg := birthMessage(babyCount)
	if babyCount > 0 {
		msg += fmt.Sprintf("\n🏠 You now have %s babies together!",
			services.FormatBabyCountSymbols(result.TotalBabies))
	}

	b.client.SendGroupMessage(groupID,
		transport.Text(msg),
		transport.At(user1ID),
		transport.At(user2ID),
	)
}

func (b *Bot) handleBabies(ev transport.Event, args []string) {
	userID := ev.UserIDString()
	groupID := ev.GroupIDString()

	page := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			b.reply(groupID, "The page number must be a positive number!")
			return
		}
		page = n
	}

	records, err := b.marriages.BabyRecords(userID)
	if err != nil {
		log.Printf("BabyRecords failed for %s: %v", userID, err)
		return
	}
	if len(records) == 0 {
		b.reply(groupID, "You have no babies yet!")
		return
	}

	total, err := b.marriages.TotalBabies(userID)
	if err != nil {
		log.Printf("TotalBabies failed for %s: %v", userID, err)
		return
	}

	merged := mergeBabyRecords(records)

	pageSize := b.game.BabiesPageSize
	totalPages := (len(merged) + pageSize - 1) / pageSize
	if page > totalPages {
		b.reply(groupID, fmt.Sprintf("Page %d is out of range, there are only %d pages.", page, totalPages))
		return
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(merged) {
		end = len(merged)
	}

	lines := []string{fmt.Sprintf("👶 Your babies (%s total):", services.FormatBabyCountSymbols(total))}
	for i, group := range merged[start:end] {
		lines = append(lines, services.FormatBabyDisplay(
			group.Parent1Name, group.Parent2Name, group.BabyCount,
			group.LatestDate.Format("2006-01-02"), start+i+1))
	}

	if totalPages > 1 {
		lines = append(lines,
			fmt.Sprintf("\nPage %d/%d (%d pairs)", page, totalPages, len(merged)))
		if page < totalPages {
			lines = append(lines, fmt.Sprintf("Send 'babies %d' for the next page", page+1))
		}
	}

	b.reply(groupID, strings.Join(lines, "\n"))
}

func (b *Bot) handlePreference(ev transport.Event, args []string) {
	userID := ev.UserIDString()
	groupID := ev.GroupIDString()
	userName := ev.Sender.DisplayName()

	if len(args) == 0 {
		b.reply(groupID, "Specify a preference: nomarry / nobaby / reset / status")
		return
	}

	var err error
	switch strings.ToLower(args[0]) {
	case "nomarry":
		if err = b.prefs.SetAllowMarriage(userID, userName, groupID, false); err == nil {
			b.reply(groupID, "Done: all marriage proposals will be declined.")
		}
	case "nobaby":
		if err = b.prefs.SetAllowBaby(userID, userName, groupID, false); err == nil {
			b.reply(groupID, "Done: all baby requests will be declined.")
		}
	case "reset":
		if err = b.prefs.ResetPreference(userID, userName, groupID); err == nil {
			b.reply(groupID, "Done: marriage and babies are allowed again.")
		}
	case "status":
		var pref *models.UserPreference
		pref, err = b.prefs.GetPreference(userID)
		if err == nil {
			if pref == nil {
				b.reply(groupID, "Current preferences: defaults (marriage and babies allowed)")
			} else {
				b.reply(groupID, fmt.Sprintf("Current preferences:\nMarriage: %s\nBabies: %s",
					allowWord(pref.AllowMarriage), allowWord(pref.AllowBaby)))
			}
		}
	default:
		b.reply(groupID, "Unknown option, use: nomarry / nobaby / reset / status")
		return
	}

	if err != nil {
		log.Printf("Preference update failed for %s: %v", userID, err)
		b.reply(groupID, "Could not update your preferences, please try again later.")
	}
}

func allowWord(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "declined"
}

// mergedBabyGroup aggregates the records of one parent pair.
type mergedBabyGroup struct {
	Parent1Name string
	Parent2Name string
	BabyCount   int
	LatestDate  time.Time
}

// mergeBabyRecords folds records into one group per unordered parent pair,
// preserving the input ordering of first appearance (newest pair first when
// the input is newest-first).
func mergeBabyRecords(records []models.BabyRecord) []mergedBabyGroup {
	index := make(map[[2]string]int)
	var merged []mergedBabyGroup

	for _, record := range records {
		key := [2]string{record.Parent1ID, record.Parent2ID}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}

		i, ok := index[key]
		if !ok {
			index[key] = len(merged)
			merged = append(merged, mergedBabyGroup{
				Parent1Name: record.Parent1Name,
				Parent2Name: record.Parent2Name,
				LatestDate:  record.CreatedAt,
			})
			i = index[key]
		}

		merged[i].BabyCount += record.BabyCount
		if record.CreatedAt.After(merged[i].LatestDate) {
			merged[i].LatestDate = record.CreatedAt
		}
	}

	return merged
}
