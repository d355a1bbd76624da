// Package roster builds combat rosters from the built-in fixture, JSON
// files and Lua scripts.
package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pefman/squad-combat/internal/game"
	"github.com/pefman/squad-combat/internal/models"
)

// ErrUnsupportedFormat indicates a roster file with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported roster format (want .json or .lua)")

// DefaultSpecs is the canonical eight-combatant roster: four players and
// four enemies, alternating.
func DefaultSpecs() []models.CombatantSpec {
	specs := make([]models.CombatantSpec, 0, 8)
	for i := 1; i <= 4; i++ {
		specs = append(specs,
			models.CombatantSpec{Name: fmt.Sprintf("Player%d", i), Team: game.TeamPlayers.String(), MaxHP: 100, MinDamage: 8, MaxDamage: 15},
			models.CombatantSpec{Name: fmt.Sprintf("Enemy%d", i), Team: game.TeamEnemies.String(), MaxHP: 120, MinDamage: 10, MaxDamage: 18},
		)
	}
	return specs
}

// Default returns DefaultSpecs as combatants.
func Default() []game.Combatant {
	out, err := FromSpecs(DefaultSpecs())
	if err != nil {
		// The fixture is static and always valid.
		panic(err)
	}
	return out
}

// FromSpecs converts and validates caller-supplied specs.
func FromSpecs(specs []models.CombatantSpec) ([]game.Combatant, error) {
	out := make([]game.Combatant, 0, len(specs))
	for i, s := range specs {
		team, err := game.ParseTeam(s.Team)
		if err != nil {
			return nil, fmt.Errorf("combatant %d (%q): %w", i, s.Name, err)
		}
		c := game.NewCombatant(strings.TrimSpace(s.Name), team, s.MaxHP, s.MinDamage, s.MaxDamage)
		if s.CurrentHP != nil {
			c.CurrentHP = *s.CurrentHP
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("%s%d", team, i+1)
		}
		out = append(out, c)
	}
	if err := game.ValidateRoster(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToSpecs is the inverse of FromSpecs. CurrentHP is only set for
// combatants that are not at full health.
func ToSpecs(roster []game.Combatant) []models.CombatantSpec {
	out := make([]models.CombatantSpec, 0, len(roster))
	for _, c := range roster {
		spec := models.CombatantSpec{
			Name:      c.Name,
			Team:      c.Team.String(),
			MaxHP:     c.MaxHP,
			MinDamage: c.MinDamage,
			MaxDamage: c.MaxDamage,
		}
		if c.CurrentHP != c.MaxHP {
			hp := c.CurrentHP
			spec.CurrentHP = &hp
		}
		out = append(out, spec)
	}
	return out
}

// Load reads a roster file, choosing the format by extension.
func Load(path string) ([]game.Combatant, error) {
	var (
		specs []models.CombatantSpec
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		specs, err = loadJSONFile(path)
	case ".lua":
		specs, err = loadLuaFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}
	out, err := FromSpecs(specs)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return out, nil
}

func loadJSONFile(path string) ([]models.CombatantSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return DecodeJSON(f)
}

// DecodeJSON accepts either a bare array of combatants or an object with a
// "combatants" field.
func DecodeJSON(r io.Reader) ([]models.CombatantSpec, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var specs []models.CombatantSpec
		if err := json.Unmarshal(raw, &specs); err != nil {
			return nil, fmt.Errorf("decode roster: %w", err)
		}
		return specs, nil
	}
	var file models.RosterFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return file.Combatants, nil
}
