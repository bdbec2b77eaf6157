package game

import (
	"fmt"
	"math/rand/v2"
)

// NameGenerator produces a cosmetic nickname for a new player.
type NameGenerator func(r *rand.Rand) string

var (
	namePrefixes = []string{"Tank", "Storm", "Sniper", "Commander", "Captain", "General", "Sergeant", "Ranger", "Trooper", "Scout"}
	nameSuffixes = []string{"Fire", "Strike", "Thunder", "Hammer", "Blade", "Shield", "Fury", "Tempest", "Steel", "Hail"}
)

// MilitaryNames builds names like "StormHammer42".
func MilitaryNames(r *rand.Rand) string {
	return fmt.Sprintf("%s%s%d",
		namePrefixes[r.IntN(len(namePrefixes))],
		nameSuffixes[r.IntN(len(nameSuffixes))],
		10+r.IntN(90),
	)
}
