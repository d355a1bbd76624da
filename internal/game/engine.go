package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/pefman/squad-combat/internal/engine"
)

// ErrRoundLimit is returned by Run when a configured round limit is reached
// before either team is eliminated.
var ErrRoundLimit = errors.New("round limit reached")

// ErrNilSource indicates an engine built without a random source.
var ErrNilSource = errors.New("random source is required")

// Option configures an Engine.
type Option func(*Engine)

// WithReporter sets the sink for turn events and snapshots.
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithMaxRounds bounds Run. Zero means unbounded.
func WithMaxRounds(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRounds = n
		}
	}
}

// Engine runs one combat over a fixed roster. It is single-threaded and
// is the only mutator of the roster's HP.
type Engine struct {
	roster    []Combatant
	src       engine.Source
	damage    DamageResolver
	reporter  Reporter
	maxRounds int

	state State
	round int
	turns int
}

// NewEngine validates and copies the roster, assigning each combatant its
// roster index as ID. A roster in which one team has no living member is
// terminal from the start.
func NewEngine(roster []Combatant, src engine.Source, opts ...Option) (*Engine, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if err := ValidateRoster(roster); err != nil {
		return nil, err
	}
	owned := make([]Combatant, len(roster))
	copy(owned, roster)
	for i := range owned {
		owned[i].ID = i
	}
	e := &Engine{
		roster:   owned,
		src:      src,
		damage:   NewDamageResolver(src),
		reporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.evaluate()
	return e, nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Round returns the number of rounds started so far.
func (e *Engine) Round() int { return e.round }

// Turns returns the number of attacks resolved so far.
func (e *Engine) Turns() int { return e.turns }

// Roster returns a copy of the roster.
func (e *Engine) Roster() []Combatant {
	out := make([]Combatant, len(e.roster))
	copy(out, e.roster)
	return out
}

// Result returns the run summary so far.
func (e *Engine) Result() Result {
	return Result{State: e.state, Rounds: e.round, Turns: e.turns}
}

// Run plays rounds until a team is eliminated.
func (e *Engine) Run() (Result, error) {
	return e.RunContext(context.Background())
}

// RunContext is Run with cancellation checked between rounds. A cancelled
// run returns the partial result and ctx.Err().
func (e *Engine) RunContext(ctx context.Context) (Result, error) {
	for !e.state.Terminal() {
		if err := ctx.Err(); err != nil {
			return e.Result(), err
		}
		if e.maxRounds > 0 && e.round >= e.maxRounds {
			return e.Result(), fmt.Errorf("%w: %d rounds", ErrRoundLimit, e.maxRounds)
		}
		e.PlayRound()
	}
	return e.Result(), nil
}

// PlayRound plays one pass over the roster and emits a snapshot. The pass
// stops early once a team is eliminated; the snapshot is still emitted.
// It does nothing when the combat is already over.
func (e *Engine) PlayRound() State {
	if e.state.Terminal() {
		return e.state
	}
	e.round++
	for i := range e.roster {
		if !e.roster[i].IsAlive() {
			continue
		}
		e.takeTurn(i)
		if e.evaluate().Terminal() {
			break
		}
	}
	e.reporter.Snapshot(e.Snapshot())
	return e.evaluate()
}

// Snapshot returns the status of every combatant in roster order.
func (e *Engine) Snapshot() Snapshot {
	entries := make([]StatusEntry, 0, len(e.roster))
	for _, c := range e.roster {
		entries = append(entries, StatusEntry{
			Name:      c.Name,
			Team:      c.Team,
			CurrentHP: c.CurrentHP,
			MaxHP:     c.MaxHP,
		})
	}
	return Snapshot{Round: e.round, Entries: entries}
}

func (e *Engine) takeTurn(i int) {
	attacker := e.roster[i]
	targets := EligibleTargets(e.roster, attacker)
	if len(targets) == 0 {
		return
	}

	roll := e.damage.Roll(attacker)
	id, _ := ChooseTarget(e.src, targets)
	target := &e.roster[id]
	target.applyDamage(roll.Amount)
	e.turns++

	e.reporter.Turn(TurnEvent{
		Round:    e.round,
		Attacker: attacker.Name,
		Target:   target.Name,
		Damage:   roll.Amount,
		Critical: roll.Critical,
		TargetHP: target.CurrentHP,
		Killed:   !target.IsAlive(),
	})
}

func (e *Engine) evaluate() State {
	switch {
	case !e.teamAlive(TeamEnemies):
		e.state = StatePlayersWin
	case !e.teamAlive(TeamPlayers):
		e.state = StateEnemiesWin
	default:
		e.state = StateInProgress
	}
	return e.state
}

func (e *Engine) teamAlive(team Team) bool {
	for _, c := range e.roster {
		if c.Team == team && c.IsAlive() {
			return true
		}
	}
	return false
}
