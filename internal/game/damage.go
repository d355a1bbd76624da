package game

import "github.com/pefman/squad-combat/internal/engine"

// CriticalSides is the die rolled for critical hits; only the top face crits.
const CriticalSides = 20

// DamageRoll is the outcome of one damage resolution.
type DamageRoll struct {
	Base     int
	Critical bool
	Amount   int
}

// DamageResolver computes attack damage from a shared random source.
type DamageResolver struct {
	src engine.Source
}

// NewDamageResolver returns a resolver drawing from src.
func NewDamageResolver(src engine.Source) DamageResolver {
	return DamageResolver{src: src}
}

// Roll draws the base damage in [MinDamage, MaxDamage], then a d20 for the
// critical check. A critical doubles the base. Attackers are expected to
// have passed ValidateRoster, which keeps the doubled value within int.
func (r DamageResolver) Roll(attacker Combatant) DamageRoll {
	base := engine.Between(r.src, attacker.MinDamage, attacker.MaxDamage)
	crit := engine.RollDie(r.src, CriticalSides) == CriticalSides
	amount := base
	if crit {
		amount *= 2
	}
	return DamageRoll{Base: base, Critical: crit, Amount: amount}
}

// ResolveDamage returns only the damage value of Roll.
func (r DamageResolver) ResolveDamage(attacker Combatant) int {
	return r.Roll(attacker).Amount
}
