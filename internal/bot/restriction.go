package bot

import (
	"math/rand"
	"time"
)

// checkNightWindow gates the baby command to the configured night hours,
// with a small chance of slipping through outside them. Returns whether the
// attempt may proceed and, if not, the tip to reply with.
func (b *Bot) checkNightWindow() (bool, string) {
	if inNightWindow(time.Now().Hour(), b.game.NightStartHour, b.game.NightEndHour) {
		return true, ""
	}

	if rand.Float64() <= b.game.NightBypassChance {
		return true, ""
	}

	return false, nightTip(b.game.NightStartHour, b.game.NightEndHour)
}

// inNightWindow reports whether the hour falls inside [startHour, endHour),
// handling windows that wrap past midnight.
func inNightWindow(hour, startHour, endHour int) bool {
	if startHour <= endHour {
		return hour >= startHour && hour < endHour
	}
	return hour >= startHour || hour < endHour
}
