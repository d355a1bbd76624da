package game

// Combatant is a roster member. ID is its roster index and is the only
// identity used for comparisons.
type Combatant struct {
	ID        int
	Name      string
	MaxHP     int
	CurrentHP int
	MinDamage int
	MaxDamage int
	Team      Team
}

// NewCombatant returns a combatant at full health.
func NewCombatant(name string, team Team, maxHP, minDamage, maxDamage int) Combatant {
	return Combatant{
		Name:      name,
		MaxHP:     maxHP,
		CurrentHP: maxHP,
		MinDamage: minDamage,
		MaxDamage: maxDamage,
		Team:      team,
	}
}

// IsAlive reports whether the combatant has any HP left.
func (c Combatant) IsAlive() bool { return c.CurrentHP > 0 }

// applyDamage subtracts dmg and clamps the result into [0, MaxHP].
func (c *Combatant) applyDamage(dmg int) {
	c.CurrentHP = clamp(c.CurrentHP-dmg, 0, c.MaxHP)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
