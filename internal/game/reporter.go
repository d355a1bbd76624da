package game

// Reporter receives the engine's output: one event per resolved turn and a
// roster snapshot after every round.
type Reporter interface {
	Turn(TurnEvent)
	Snapshot(Snapshot)
}

type nopReporter struct{}

func (nopReporter) Turn(TurnEvent)    {}
func (nopReporter) Snapshot(Snapshot) {}
