package game

import "github.com/pefman/squad-combat/internal/engine"

// EligibleTargets returns, in roster order, the IDs of living combatants on
// the attacker's opposing team. The attacker is excluded by ID.
func EligibleTargets(roster []Combatant, attacker Combatant) []int {
	var out []int
	for _, c := range roster {
		if c.ID == attacker.ID {
			continue
		}
		if c.Team == attacker.Team {
			continue
		}
		if !c.IsAlive() {
			continue
		}
		out = append(out, c.ID)
	}
	return out
}

// ChooseTarget draws one ID uniformly from targets. ok is false when there
// is nothing to choose; no entropy is consumed in that case.
func ChooseTarget(src engine.Source, targets []int) (id int, ok bool) {
	if len(targets) == 0 {
		return 0, false
	}
	return targets[src.Intn(len(targets))], true
}
