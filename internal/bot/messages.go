package bot

import (
	"fmt"
	"math/rand"
)

var noBabyMessages = []string{
	"😔 Sadly, no baby this time.",
	"💔 No luck this time, keep trying!",
	"🌙 No baby yet. A few more tries might do it.",
}

var babyMessages = []string{
	"🎉 Congratulations! %d babies arrived! 👶",
	"💕 Wonderful news! Love brought %d babies into the world!",
	"👶 Great news! The family grew by %d!",
	"🎊 %d babies have joined the world!",
	"💖 A testament to love: %d adorable babies!",
}

var divorceMessages = []string{
	"Love did not survive the test of time. %s and %s are divorced.",
	"Perhaps parting is best for both. %s and %s have finalized their divorce.",
	"At the end of the story, %s and %s still said goodbye.",
	"Let the good memories stay where they are. %s and %s are divorced.",
	"Not out of lost love, just diverging roads. %s and %s have parted ways.",
	"Some people are only meant to walk part of the road with you. %s and %s are divorced.",
	"The feelings ran their course. %s and %s parted on good terms.",
	"From now on, %s and %s are the most familiar of strangers.",
	"Sometimes letting go is the kindest choice. %s and %s are divorced.",
	"Love is like sand: the tighter the grip, the faster it slips. %s and %s are divorced.",
	"No one is to blame; %s and %s simply ran out of fate.",
	"Thank you for walking this stretch together. %s said goodbye to %s.",
}

var nightTips = []string{
	"Babies are made when the night is quiet~",
	"This is not the moment. Come back after nightfall~",
	"Maybe next time luck will be on your side~ try again tonight",
	"Nighttime is the right time~ wait for the sun to set",
	"Private matters belong under the covers. Come back tonight~",
	"Rest up first~ stamina matters, come back tonight",
}

// nightTip picks a gentle refusal, sometimes spelling out the window.
func nightTip(startHour, endHour int) string {
	if rand.Intn(3) == 0 {
		return fmt.Sprintf("Come back between %d:00 in the evening and %d:00 in the morning~ the night is for romance", startHour, endHour)
	}
	return nightTips[rand.Intn(len(nightTips))]
}

// birthMessage picks an announcement line for the given baby count.
func birthMessage(babyCount int) string {
	if babyCount == 0 {
		return noBabyMessages[rand.Intn(len(noBabyMessages))]
	}
	return fmt.Sprintf(babyMessages[rand.Intn(len(babyMessages))], babyCount)
}

// divorceMessage picks a farewell line for a finalized divorce.
func divorceMessage(userName, targetName string) string {
	return fmt.Sprintf(divorceMessages[rand.Intn(len(divorceMessages))], userName, targetName)
}
