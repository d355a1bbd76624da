package game

import (
	"errors"
	"fmt"
	"math"
)

// MaxStat bounds MaxHP and MaxDamage so that damage ranges and critical
// doubling stay within int.
const MaxStat = math.MaxInt32

// ErrEmptyRoster indicates a roster with no combatants.
var ErrEmptyRoster = errors.New("roster must contain at least one combatant")

// ErrInvalidMaxHP indicates a max HP outside [1, MaxStat].
var ErrInvalidMaxHP = errors.New("max hp must be between 1 and 2147483647")

// ErrInvalidHP indicates current HP outside [0, max HP].
var ErrInvalidHP = errors.New("current hp must be between 0 and max hp")

// ErrInvalidDamageRange indicates a negative, inverted or oversized damage
// range.
var ErrInvalidDamageRange = errors.New("damage range must satisfy 0 <= min <= max <= 2147483647")

// ErrUnknownTeam indicates a team outside Players/Enemies.
var ErrUnknownTeam = errors.New("unknown team")

// ErrMissingTeam indicates one side has no members at all.
var ErrMissingTeam = errors.New("each team needs at least one member")

// ValidateRoster checks the construction invariants of a roster. A team
// whose members are all dead is valid.
func ValidateRoster(roster []Combatant) error {
	if len(roster) == 0 {
		return ErrEmptyRoster
	}
	counts := map[Team]int{}
	for i, c := range roster {
		if err := validateCombatant(c); err != nil {
			return fmt.Errorf("combatant %d (%q): %w", i, c.Name, err)
		}
		counts[c.Team]++
	}
	for _, team := range []Team{TeamPlayers, TeamEnemies} {
		if counts[team] == 0 {
			return fmt.Errorf("%w: %s has none", ErrMissingTeam, team)
		}
	}
	return nil
}

func validateCombatant(c Combatant) error {
	if c.Team != TeamPlayers && c.Team != TeamEnemies {
		return fmt.Errorf("%w: %d", ErrUnknownTeam, int(c.Team))
	}
	if c.MaxHP <= 0 || c.MaxHP > MaxStat {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxHP, c.MaxHP)
	}
	if c.CurrentHP < 0 || c.CurrentHP > c.MaxHP {
		return fmt.Errorf("%w: got %d/%d", ErrInvalidHP, c.CurrentHP, c.MaxHP)
	}
	if c.MinDamage < 0 || c.MinDamage > c.MaxDamage || c.MaxDamage > MaxStat {
		return fmt.Errorf("%w: got %d-%d", ErrInvalidDamageRange, c.MinDamage, c.MaxDamage)
	}
	return nil
}
