package services

import (
	"fmt"
	"strings"
)

// FormatBabyCountSymbols renders a baby count as a glyph run with one symbol
// per decimal place: 👑 thousands, ☀️ hundreds, 🌙 tens, 🌟 units. Places
// with a zero digit are omitted; a count of 0 renders as 🌟x0.
func FormatBabyCountSymbols(babyCount int) string {
	crowns := babyCount / 1000
	suns := (babyCount % 1000) / 100
	moons := (babyCount % 100) / 10
	stars := babyCount % 10

	var parts []string
	if crowns > 0 {
		parts = append(parts, fmt.Sprintf("👑x%d", crowns))
	}
	if suns > 0 {
		parts = append(parts, fmt.Sprintf("☀️x%d", suns))
	}
	if moons > 0 {
		parts = append(parts, fmt.Sprintf("🌙x%d", moons))
	}
	if stars > 0 {
		parts = append(parts, fmt.Sprintf("🌟x%d", stars))
	}

	if len(parts) == 0 {
		parts = append(parts, "🌟x0")
	}

	return strings.Join(parts, "")
}

// FormatBabyDisplay renders one baby-record line for a listing. A positive
// index prefixes the line with its position.
func FormatBabyDisplay(parent1Name, parent2Name string, babyCount int, date string, index int) string {
	countDisplay := FormatBabyCountSymbols(babyCount)
	if index > 0 {
		return fmt.Sprintf("%d. %s & %s's babies %s - %s", index, parent1Name, parent2Name, countDisplay, date)
	}
	return fmt.Sprintf("%s & %s's babies %s - %s", parent1Name, parent2Name, countDisplay, date)
}
