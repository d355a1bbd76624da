package report

import "github.com/pefman/squad-combat/internal/game"

// Recorder keeps every event in arrival order so a run can be replayed.
type Recorder struct {
	Turns     []game.TurnEvent
	Snapshots []game.Snapshot

	// order interleaves both streams: true for a turn, false for a snapshot.
	order []bool
}

func (r *Recorder) Turn(ev game.TurnEvent) {
	r.Turns = append(r.Turns, ev)
	r.order = append(r.order, true)
}

func (r *Recorder) Snapshot(s game.Snapshot) {
	r.Snapshots = append(r.Snapshots, s)
	r.order = append(r.order, false)
}

// Replay sends the recorded events to dst in their original order.
func (r *Recorder) Replay(dst game.Reporter) {
	ti, si := 0, 0
	for _, isTurn := range r.order {
		if isTurn {
			dst.Turn(r.Turns[ti])
			ti++
			continue
		}
		dst.Snapshot(r.Snapshots[si])
		si++
	}
}

// Interleave rebuilds a Recorder from per-round streams, placing each
// round's turns before that round's snapshot.
func Interleave(turns []game.TurnEvent, snapshots []game.Snapshot) *Recorder {
	rec := &Recorder{}
	ti := 0
	for _, s := range snapshots {
		for ti < len(turns) && turns[ti].Round <= s.Round {
			rec.Turn(turns[ti])
			ti++
		}
		rec.Snapshot(s)
	}
	for ; ti < len(turns); ti++ {
		rec.Turn(turns[ti])
	}
	return rec
}
