package game

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/pefman/squad-combat/internal/engine"
)

// fixedSource returns the same offset for every draw, clamped to n-1.
type fixedSource struct{ v int }

func (s fixedSource) Intn(n int) int {
	if s.v >= n {
		return n - 1
	}
	return s.v
}

// recorder keeps everything the engine reports.
type recorder struct {
	turns     []TurnEvent
	snapshots []Snapshot
}

func (r *recorder) Turn(ev TurnEvent)    { r.turns = append(r.turns, ev) }
func (r *recorder) Snapshot(s Snapshot) { r.snapshots = append(r.snapshots, s) }

func defaultRoster() []Combatant {
	var out []Combatant
	for i := 1; i <= 4; i++ {
		out = append(out,
			NewCombatant("Player"+string(rune('0'+i)), TeamPlayers, 100, 8, 15),
			NewCombatant("Enemy"+string(rune('0'+i)), TeamEnemies, 120, 10, 18),
		)
	}
	return out
}

func TestCombatantIsAliveTracksHP(t *testing.T) {
	c := NewCombatant("a", TeamPlayers, 10, 1, 2)
	if !c.IsAlive() {
		t.Fatal("expected fresh combatant to be alive")
	}
	c.applyDamage(4)
	if c.CurrentHP != 6 || !c.IsAlive() {
		t.Fatalf("hp = %d alive=%v, want 6 alive", c.CurrentHP, c.IsAlive())
	}
	c.applyDamage(100)
	if c.CurrentHP != 0 || c.IsAlive() {
		t.Fatalf("hp = %d alive=%v, want 0 dead", c.CurrentHP, c.IsAlive())
	}
	c.CurrentHP = 5
	c.applyDamage(-50)
	if c.CurrentHP != 10 {
		t.Fatalf("negative damage healed to %d, want clamp at 10", c.CurrentHP)
	}
}

func TestDamageBounds(t *testing.T) {
	resolver := NewDamageResolver(engine.MustDice(20240601))
	attacker := NewCombatant("p", TeamPlayers, 100, 8, 15)

	const samples = 10000
	crits := 0
	for i := 0; i < samples; i++ {
		roll := resolver.Roll(attacker)
		if roll.Critical {
			crits++
			if roll.Amount < 16 || roll.Amount > 30 || roll.Amount != roll.Base*2 {
				t.Fatalf("critical roll %+v outside [16,30]", roll)
			}
			continue
		}
		if roll.Amount < 8 || roll.Amount > 15 {
			t.Fatalf("roll %+v outside [8,15]", roll)
		}
	}
	freq := float64(crits) / samples
	if freq < 0.04 || freq > 0.06 {
		t.Fatalf("critical frequency = %.4f, want about 0.05", freq)
	}
}

func TestDamageCriticalOnlyOnTopFace(t *testing.T) {
	attacker := NewCombatant("p", TeamPlayers, 100, 8, 15)

	low := NewDamageResolver(fixedSource{v: 0}).Roll(attacker)
	if low.Critical || low.Amount != 8 {
		t.Fatalf("low roll = %+v, want 8 without critical", low)
	}
	nearTop := NewDamageResolver(fixedSource{v: 18}).Roll(attacker)
	if nearTop.Critical {
		t.Fatalf("face 19 must not crit: %+v", nearTop)
	}
	top := NewDamageResolver(fixedSource{v: 19}).Roll(attacker)
	if !top.Critical || top.Amount != 30 {
		t.Fatalf("top roll = %+v, want 30 critical", top)
	}
	if got := NewDamageResolver(fixedSource{v: 0}).ResolveDamage(attacker); got != 8 {
		t.Fatalf("ResolveDamage = %d, want 8", got)
	}
}

func TestDamageAtStatBound(t *testing.T) {
	attacker := NewCombatant("p", TeamPlayers, MaxStat, 0, MaxStat)
	if err := ValidateRoster([]Combatant{attacker, NewCombatant("e", TeamEnemies, 1, 0, 0)}); err != nil {
		t.Fatalf("ValidateRoster: %v", err)
	}

	crit := NewDamageResolver(fixedSource{v: math.MaxInt}).Roll(attacker)
	if !crit.Critical || crit.Base != MaxStat || crit.Amount != 2*MaxStat {
		t.Fatalf("critical at bound = %+v, want base %d doubled", crit, MaxStat)
	}

	// Full-range draws on a real source must not panic.
	resolver := NewDamageResolver(engine.MustDice(1))
	for i := 0; i < 100; i++ {
		if roll := resolver.Roll(attacker); roll.Amount < 0 || roll.Amount > 2*MaxStat {
			t.Fatalf("roll %+v outside [0,%d]", roll, 2*MaxStat)
		}
	}
}

func TestEngineRunsBoundedRoster(t *testing.T) {
	roster := []Combatant{
		NewCombatant("giant", TeamPlayers, MaxStat, 0, MaxStat),
		NewCombatant("titan", TeamEnemies, MaxStat, MaxStat, MaxStat),
	}
	e, err := NewEngine(roster, engine.MustDice(1))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	res, err := e.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.State.Terminal() {
		t.Fatalf("state = %v, want terminal", res.State)
	}
}

func TestEligibleTargets(t *testing.T) {
	roster := []Combatant{
		{ID: 0, Name: "hero", Team: TeamPlayers, MaxHP: 10, CurrentHP: 10},
		{ID: 1, Name: "ally", Team: TeamPlayers, MaxHP: 10, CurrentHP: 10},
		{ID: 2, Name: "orc", Team: TeamEnemies, MaxHP: 10, CurrentHP: 10},
		{ID: 3, Name: "ghost", Team: TeamEnemies, MaxHP: 10, CurrentHP: 0},
		{ID: 4, Name: "goblin", Team: TeamEnemies, MaxHP: 10, CurrentHP: 3},
	}
	got := EligibleTargets(roster, roster[0])
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Fatalf("targets = %v, want [2 4]", got)
	}

	// Identical stats do not make two combatants the same one.
	twins := []Combatant{
		{ID: 0, Name: "x", Team: TeamEnemies, MaxHP: 5, CurrentHP: 5},
		{ID: 1, Name: "x", Team: TeamPlayers, MaxHP: 5, CurrentHP: 5},
	}
	if got := EligibleTargets(twins, twins[1]); len(got) != 1 || got[0] != 0 {
		t.Fatalf("twin targets = %v, want [0]", got)
	}
}

func TestChooseTargetEmpty(t *testing.T) {
	if _, ok := ChooseTarget(fixedSource{}, nil); ok {
		t.Fatal("expected no target from empty set")
	}
	id, ok := ChooseTarget(fixedSource{v: 5}, []int{3, 7})
	if !ok || id != 7 {
		t.Fatalf("ChooseTarget = %d,%v want 7,true", id, ok)
	}
}

func TestSingleAttackerScenario(t *testing.T) {
	rec := &recorder{}
	roster := []Combatant{
		NewCombatant("striker", TeamPlayers, 50, 10, 10),
		NewCombatant("dummy", TeamEnemies, 25, 0, 0),
	}
	e, err := NewEngine(roster, fixedSource{v: 0}, WithReporter(rec))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	want := []int{15, 5, 0}
	for round, hp := range want {
		e.PlayRound()
		dummy := e.Roster()[1]
		if dummy.CurrentHP != hp {
			t.Fatalf("round %d: dummy hp = %d, want %d", round+1, dummy.CurrentHP, hp)
		}
	}
	if e.Roster()[1].IsAlive() {
		t.Fatal("expected dummy to be dead")
	}
	if e.State() != StatePlayersWin {
		t.Fatalf("state = %v, want PlayersWin", e.State())
	}
	last := rec.turns[len(rec.turns)-1]
	if last.Attacker != "striker" || last.Target != "dummy" || last.Damage != 10 || !last.Killed {
		t.Fatalf("last turn = %+v", last)
	}
	if len(rec.snapshots) != 3 {
		t.Fatalf("snapshots = %d, want 3", len(rec.snapshots))
	}
}

func TestEngineTerminalAtStart(t *testing.T) {
	rec := &recorder{}
	roster := []Combatant{
		NewCombatant("lone", TeamPlayers, 10, 1, 1),
		{Name: "corpse", Team: TeamEnemies, MaxHP: 10, CurrentHP: 0, MinDamage: 1, MaxDamage: 1},
	}
	e, err := NewEngine(roster, fixedSource{}, WithReporter(rec))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if e.State() != StatePlayersWin {
		t.Fatalf("state = %v, want PlayersWin", e.State())
	}
	res, err := e.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Turns != 0 || res.Rounds != 0 || len(rec.turns) != 0 || len(rec.snapshots) != 0 {
		t.Fatalf("expected no activity, got %+v turns=%d snaps=%d", res, len(rec.turns), len(rec.snapshots))
	}
}

func TestEngineAbortsRoundOnElimination(t *testing.T) {
	rec := &recorder{}
	roster := []Combatant{
		NewCombatant("first", TeamPlayers, 10, 10, 10),
		NewCombatant("weak", TeamEnemies, 5, 1, 1),
		NewCombatant("second", TeamPlayers, 10, 10, 10),
	}
	e, err := NewEngine(roster, fixedSource{v: 0}, WithReporter(rec))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	res, err := e.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StatePlayersWin || res.Turns != 1 || res.Rounds != 1 {
		t.Fatalf("result = %+v, want PlayersWin after 1 turn in 1 round", res)
	}
	if len(rec.snapshots) != 1 {
		t.Fatalf("snapshots = %d, want 1 for the aborted round", len(rec.snapshots))
	}
	snap := rec.snapshots[0]
	if len(snap.Entries) != 3 || snap.Entries[1].CurrentHP != 0 || snap.Entries[1].Team != TeamEnemies {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestEngineRunsDefaultRosterToCompletion(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		inv := &invariantReporter{t: t}
		e, err := NewEngine(defaultRoster(), engine.MustDice(seed), WithReporter(inv))
		if err != nil {
			t.Fatalf("seed %d: NewEngine: %v", seed, err)
		}
		res, err := e.Run()
		if err != nil {
			t.Fatalf("seed %d: Run: %v", seed, err)
		}
		if !res.State.Terminal() {
			t.Fatalf("seed %d: state %v not terminal", seed, res.State)
		}
		winner, ok := res.State.Winner()
		if !ok {
			t.Fatalf("seed %d: no winner", seed)
		}
		for _, c := range e.Roster() {
			if c.Team == winner.Opponent() && c.IsAlive() {
				t.Fatalf("seed %d: %s still alive on losing team", seed, c.Name)
			}
		}
		if inv.turns != res.Turns {
			t.Fatalf("seed %d: reported %d turns, result has %d", seed, inv.turns, res.Turns)
		}
	}
}

func TestEngineIsReproducible(t *testing.T) {
	run := func() []TurnEvent {
		rec := &recorder{}
		e, err := NewEngine(defaultRoster(), engine.MustDice(99), WithReporter(rec))
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		if _, err := e.Run(); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return rec.turns
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("turn counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("turn %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestEngineRoundLimit(t *testing.T) {
	roster := []Combatant{
		NewCombatant("pacifist", TeamPlayers, 10, 0, 0),
		NewCombatant("bystander", TeamEnemies, 10, 0, 0),
	}
	e, err := NewEngine(roster, fixedSource{}, WithMaxRounds(3))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	res, err := e.Run()
	if !errors.Is(err, ErrRoundLimit) {
		t.Fatalf("Run error = %v, want %v", err, ErrRoundLimit)
	}
	if res.Rounds != 3 || res.State != StateInProgress {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunContextStopsOnCancel(t *testing.T) {
	roster := []Combatant{
		NewCombatant("pacifist", TeamPlayers, 10, 0, 0),
		NewCombatant("bystander", TeamEnemies, 10, 0, 0),
	}
	rec := &recorder{}
	e, err := NewEngine(roster, fixedSource{}, WithReporter(rec))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := e.RunContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunContext error = %v, want context.Canceled", err)
	}
	if res.State != StateInProgress || res.Rounds != 0 || len(rec.snapshots) != 0 {
		t.Fatalf("result = %+v snapshots=%d, want no rounds played", res, len(rec.snapshots))
	}
}

func TestRunContextStopsMidCombat(t *testing.T) {
	roster := []Combatant{
		NewCombatant("pacifist", TeamPlayers, 10, 0, 0),
		NewCombatant("bystander", TeamEnemies, 10, 0, 0),
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := &cancelAfter{rounds: 5, cancel: cancel}
	e, err := NewEngine(roster, fixedSource{}, WithReporter(stop))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	res, err := e.RunContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunContext error = %v, want context.Canceled", err)
	}
	if res.Rounds != 5 {
		t.Fatalf("rounds = %d, want 5", res.Rounds)
	}
}

// cancelAfter cancels its context once the given number of rounds ends.
type cancelAfter struct {
	rounds int
	cancel context.CancelFunc
}

func (c *cancelAfter) Turn(TurnEvent) {}

func (c *cancelAfter) Snapshot(s Snapshot) {
	if s.Round >= c.rounds {
		c.cancel()
	}
}

func TestEngineCopiesRoster(t *testing.T) {
	roster := defaultRoster()
	e, err := NewEngine(roster, engine.MustDice(5))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if _, err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, c := range roster {
		if c.CurrentHP != c.MaxHP {
			t.Fatalf("caller roster mutated: %+v", c)
		}
	}
	for i, c := range e.Roster() {
		if c.ID != i {
			t.Fatalf("combatant %d has id %d", i, c.ID)
		}
	}
}

func TestNewEngineRejectsInvalidRosters(t *testing.T) {
	ok := NewCombatant("p", TeamPlayers, 10, 1, 2)
	foe := NewCombatant("e", TeamEnemies, 10, 1, 2)

	tcs := []struct {
		name   string
		roster []Combatant
		want   error
	}{
		{"empty", nil, ErrEmptyRoster},
		{"max hp", []Combatant{ok, {Name: "e", Team: TeamEnemies, MaxHP: 0, MinDamage: 1, MaxDamage: 2}}, ErrInvalidMaxHP},
		{"current hp", []Combatant{ok, {Name: "e", Team: TeamEnemies, MaxHP: 5, CurrentHP: 6, MinDamage: 1, MaxDamage: 2}}, ErrInvalidHP},
		{"inverted damage", []Combatant{ok, NewCombatant("e", TeamEnemies, 10, 5, 2)}, ErrInvalidDamageRange},
		{"negative damage", []Combatant{ok, NewCombatant("e", TeamEnemies, 10, -1, 2)}, ErrInvalidDamageRange},
		{"damage above bound", []Combatant{ok, NewCombatant("e", TeamEnemies, 10, 0, math.MaxInt)}, ErrInvalidDamageRange},
		{"damage just above bound", []Combatant{ok, NewCombatant("e", TeamEnemies, 10, 1, MaxStat+1)}, ErrInvalidDamageRange},
		{"max hp above bound", []Combatant{ok, NewCombatant("e", TeamEnemies, MaxStat+1, 1, 2)}, ErrInvalidMaxHP},
		{"unknown team", []Combatant{ok, foe, NewCombatant("x", Team(9), 10, 1, 2)}, ErrUnknownTeam},
		{"missing team", []Combatant{ok, ok}, ErrMissingTeam},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEngine(tc.roster, fixedSource{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("NewEngine error = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := NewEngine([]Combatant{ok, foe}, nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("nil source error = %v", err)
	}
}

func TestParseTeam(t *testing.T) {
	for in, want := range map[string]Team{"Players": TeamPlayers, "enemy": TeamEnemies, " ENEMIES ": TeamEnemies} {
		got, err := ParseTeam(in)
		if err != nil || got != want {
			t.Fatalf("ParseTeam(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseTeam("neutral"); !errors.Is(err, ErrUnknownTeam) {
		t.Fatalf("ParseTeam(neutral) error = %v", err)
	}
}

// invariantReporter checks HP bounds on every snapshot.
type invariantReporter struct {
	t     *testing.T
	turns int
}

func (r *invariantReporter) Turn(ev TurnEvent) {
	r.turns++
	if ev.Damage < 0 {
		r.t.Fatalf("negative damage in %+v", ev)
	}
	if ev.Killed != (ev.TargetHP == 0) {
		r.t.Fatalf("killed flag disagrees with hp in %+v", ev)
	}
}

func (r *invariantReporter) Snapshot(s Snapshot) {
	for _, entry := range s.Entries {
		if entry.CurrentHP < 0 || entry.CurrentHP > entry.MaxHP {
			r.t.Fatalf("round %d: %s hp %d outside [0,%d]", s.Round, entry.Name, entry.CurrentHP, entry.MaxHP)
		}
	}
}
