package report

import (
	"github.com/pefman/squad-combat/internal/game"
	"github.com/pefman/squad-combat/internal/models"
)

// ToTurnRecord maps an engine event to its JSON shape.
func ToTurnRecord(ev game.TurnEvent) models.TurnRecord {
	return models.TurnRecord{
		Round:    ev.Round,
		Attacker: ev.Attacker,
		Target:   ev.Target,
		Damage:   ev.Damage,
		Critical: ev.Critical,
		TargetHP: ev.TargetHP,
		Killed:   ev.Killed,
	}
}

// FromTurnRecord is the inverse of ToTurnRecord.
func FromTurnRecord(r models.TurnRecord) game.TurnEvent {
	return game.TurnEvent{
		Round:    r.Round,
		Attacker: r.Attacker,
		Target:   r.Target,
		Damage:   r.Damage,
		Critical: r.Critical,
		TargetHP: r.TargetHP,
		Killed:   r.Killed,
	}
}

// ToSnapshotRecord maps a snapshot to its JSON shape.
func ToSnapshotRecord(s game.Snapshot) models.SnapshotRecord {
	out := models.SnapshotRecord{Round: s.Round, Entries: make([]models.StatusRecord, 0, len(s.Entries))}
	for _, e := range s.Entries {
		out.Entries = append(out.Entries, models.StatusRecord{
			Name:      e.Name,
			Team:      e.Team.String(),
			CurrentHP: e.CurrentHP,
			MaxHP:     e.MaxHP,
		})
	}
	return out
}

// FromSnapshotRecord is the inverse of ToSnapshotRecord. Unknown team
// names map to the zero Team.
func FromSnapshotRecord(r models.SnapshotRecord) game.Snapshot {
	out := game.Snapshot{Round: r.Round, Entries: make([]game.StatusEntry, 0, len(r.Entries))}
	for _, e := range r.Entries {
		team, _ := game.ParseTeam(e.Team)
		out.Entries = append(out.Entries, game.StatusEntry{
			Name:      e.Name,
			Team:      team,
			CurrentHP: e.CurrentHP,
			MaxHP:     e.MaxHP,
		})
	}
	return out
}

// ReplayResponse sends the events of a finished combat to dst.
func ReplayResponse(resp models.CombatResponse, dst game.Reporter) {
	turns := make([]game.TurnEvent, 0, len(resp.Events))
	for _, ev := range resp.Events {
		turns = append(turns, FromTurnRecord(ev))
	}
	snaps := make([]game.Snapshot, 0, len(resp.Snapshots))
	for _, s := range resp.Snapshots {
		snaps = append(snaps, FromSnapshotRecord(s))
	}
	Interleave(turns, snaps).Replay(dst)
}
