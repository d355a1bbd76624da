package game

import (
	"fmt"
	"strings"
)

// Team identifies which side a combatant fights for.
type Team int

const (
	TeamPlayers Team = iota + 1
	TeamEnemies
)

func (t Team) String() string {
	switch t {
	case TeamPlayers:
		return "Players"
	case TeamEnemies:
		return "Enemies"
	default:
		return "Unknown"
	}
}

// Opponent returns the opposing team.
func (t Team) Opponent() Team {
	if t == TeamPlayers {
		return TeamEnemies
	}
	return TeamPlayers
}

// ParseTeam accepts "players"/"enemies" in any case, plus the singular forms.
func ParseTeam(s string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "players", "player":
		return TeamPlayers, nil
	case "enemies", "enemy":
		return TeamEnemies, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTeam, s)
}

// State is the combat lifecycle state.
type State int

const (
	StateInProgress State = iota
	StatePlayersWin
	StateEnemiesWin
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "InProgress"
	case StatePlayersWin:
		return "PlayersWin"
	case StateEnemiesWin:
		return "EnemiesWin"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no more turns will be issued.
func (s State) Terminal() bool { return s == StatePlayersWin || s == StateEnemiesWin }

// Winner returns the winning team for a terminal state.
func (s State) Winner() (Team, bool) {
	switch s {
	case StatePlayersWin:
		return TeamPlayers, true
	case StateEnemiesWin:
		return TeamEnemies, true
	}
	return 0, false
}

// TurnEvent describes a single resolved attack.
type TurnEvent struct {
	Round    int
	Attacker string
	Target   string
	Damage   int
	Critical bool
	TargetHP int // target HP after the hit
	Killed   bool
}

// StatusEntry is one combatant's line in a round snapshot.
type StatusEntry struct {
	Name      string
	Team      Team
	CurrentHP int
	MaxHP     int
}

// Snapshot is the full roster status emitted after every round.
type Snapshot struct {
	Round   int
	Entries []StatusEntry
}

// Result summarises a finished run.
type Result struct {
	State  State
	Rounds int
	Turns  int
}
