// Package report renders combat events to text sinks.
package report

import (
	"fmt"
	"io"
	"log"

	"github.com/pefman/squad-combat/internal/game"
)

// TextReporter writes the console format: one line per attack and a block
// of status lines after every round.
type TextReporter struct {
	w io.Writer
}

// NewTextReporter returns a TextReporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	if w == nil {
		w = io.Discard
	}
	return &TextReporter{w: w}
}

func (r *TextReporter) Turn(ev game.TurnEvent) {
	fmt.Fprintln(r.w, FormatTurn(ev))
}

func (r *TextReporter) Snapshot(s game.Snapshot) {
	for _, e := range s.Entries {
		fmt.Fprintln(r.w, FormatStatus(e))
	}
	fmt.Fprintln(r.w)
}

// FormatTurn renders "A attacks B for N damage!".
func FormatTurn(ev game.TurnEvent) string {
	line := fmt.Sprintf("%s attacks %s for %d damage!", ev.Attacker, ev.Target, ev.Damage)
	if ev.Critical {
		line += " CRITICAL!"
	}
	if ev.Killed {
		line += fmt.Sprintf(" %s falls.", ev.Target)
	}
	return line
}

// FormatStatus renders "Name in Team - cur/max".
func FormatStatus(e game.StatusEntry) string {
	return fmt.Sprintf("%s in %s - %d/%d", e.Name, e.Team, e.CurrentHP, e.MaxHP)
}

// Announce writes the winner line for a terminal state and nothing
// otherwise.
func Announce(w io.Writer, state game.State) {
	team, ok := state.Winner()
	if !ok {
		return
	}
	fmt.Fprintf(w, "%s win!\n", team)
}

// LogReporter sends events through a logger, one line each.
type LogReporter struct {
	logger *log.Logger
}

// NewLogReporter returns a LogReporter; a nil logger uses the standard one.
func NewLogReporter(logger *log.Logger) *LogReporter {
	if logger == nil {
		logger = log.Default()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Turn(ev game.TurnEvent) {
	r.logger.Printf("combat: round=%d attacker=%q target=%q damage=%d crit=%v target_hp=%d", ev.Round, ev.Attacker, ev.Target, ev.Damage, ev.Critical, ev.TargetHP)
}

func (r *LogReporter) Snapshot(s game.Snapshot) {
	alive := map[game.Team]int{}
	for _, e := range s.Entries {
		if e.CurrentHP > 0 {
			alive[e.Team]++
		}
	}
	r.logger.Printf("combat: round=%d done players_alive=%d enemies_alive=%d", s.Round, alive[game.TeamPlayers], alive[game.TeamEnemies])
}

// Multi fans every event out to each reporter in order.
type Multi []game.Reporter

func (m Multi) Turn(ev game.TurnEvent) {
	for _, r := range m {
		if r != nil {
			r.Turn(ev)
		}
	}
}

func (m Multi) Snapshot(s game.Snapshot) {
	for _, r := range m {
		if r != nil {
			r.Snapshot(s)
		}
	}
}
