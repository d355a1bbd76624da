package stats

import (
	"sync"
	"time"

	"github.com/pefman/squad-combat/internal/game"
	"github.com/pefman/squad-combat/internal/models"
	"github.com/pefman/squad-combat/internal/report"
)

// Collector tallies a single run. It is a game.Reporter and, like the
// engine it listens to, is used from one goroutine.
type Collector struct {
	run models.RunStats
}

func (c *Collector) Turn(ev game.TurnEvent) {
	c.run.Turns++
	c.run.TotalDamage += ev.Damage
	if ev.Critical {
		c.run.Criticals++
	}
	if ev.Killed {
		c.run.Kills++
	}
	if c.run.BiggestHit.Attacker == "" || ev.Damage > c.run.BiggestHit.Damage {
		c.run.BiggestHit = report.ToTurnRecord(ev)
	}
}

func (c *Collector) Snapshot(game.Snapshot) {}

// Stats returns the tally so far.
func (c *Collector) Stats() models.RunStats { return c.run }

// Store aggregates finished runs for the whole process (in-memory).
type Store struct {
	mu         sync.Mutex
	now        func() time.Time
	combats    int
	wins       map[game.Team]int
	unfinished int
	turns      int
	crits      int
	// biggest hit per UTC date (YYYY-MM-DD)
	dailyMax map[string]models.TurnRecord
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		now:      time.Now,
		wins:     map[game.Team]int{},
		dailyMax: map[string]models.TurnRecord{},
	}
}

// Record adds one run. Ties on today's biggest hit keep the earlier one.
func (s *Store) Record(res game.Result, run models.RunStats) {
	dateKey := s.dateKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combats++
	s.turns += run.Turns
	s.crits += run.Criticals
	if team, ok := res.State.Winner(); ok {
		s.wins[team]++
	} else {
		s.unfinished++
	}
	if run.Turns == 0 {
		return
	}
	cur, ok := s.dailyMax[dateKey]
	if !ok || run.BiggestHit.Damage > cur.Damage {
		s.dailyMax[dateKey] = run.BiggestHit
	}
}

// Summary returns the aggregate for today's date.
func (s *Store) Summary() models.StatsSummary {
	dateKey := s.dateKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.StatsSummary{
		Combats:         s.combats,
		PlayersWins:     s.wins[game.TeamPlayers],
		EnemiesWins:     s.wins[game.TeamEnemies],
		Unfinished:      s.unfinished,
		TotalTurns:      s.turns,
		Criticals:       s.crits,
		BiggestHitToday: s.dailyMax[dateKey],
		Date:            dateKey,
	}
}

func (s *Store) dateKey() string {
	return s.now().UTC().Format("2006-01-02")
}
