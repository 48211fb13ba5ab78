package game

import "math/rand"

// DefaultHitChance is the per-bullet probability of striking the target.
const DefaultHitChance = 0.8

// Dice is the battle's single source of randomness. Every hit roll in a
// battle goes through one Dice so a seed reproduces the whole fight.
type Dice struct {
	rng       *rand.Rand
	hitChance float64
}

// NewDice creates a Dice with its own seeded RNG.
func NewDice(seed int64, hitChance float64) *Dice {
	return &Dice{
		rng:       rand.New(rand.NewSource(seed)), // #nosec G404 -- game only
		hitChance: clamp01(hitChance),
	}
}

// HitChance returns the configured per-bullet hit probability.
func (d *Dice) HitChance() float64 {
	return d.hitChance
}

// RollHit rolls one bullet. Each call is independent of the previous ones.
func (d *Dice) RollHit() bool {
	return d.rng.Float64() < d.hitChance
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
