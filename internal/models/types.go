package models

// ========================= Wire Models =========================
// JSON shapes shared by the HTTP API, the WebSocket stream and the client.

// CombatantSpec is a roster entry as supplied by callers. CurrentHP is
// optional; when nil the combatant starts at MaxHP.
type CombatantSpec struct {
	Name      string `json:"name"`
	Team      string `json:"team"` // "Players" or "Enemies"
	MaxHP     int    `json:"max_hp"`
	CurrentHP *int   `json:"current_hp,omitempty"`
	MinDamage int    `json:"min_damage"`
	MaxDamage int    `json:"max_damage"`
}

// RosterFile is the object form of a JSON roster file.
type RosterFile struct {
	Name       string          `json:"name,omitempty"`
	Combatants []CombatantSpec `json:"combatants"`
}

// CombatRequest starts a simulated combat. Empty Roster means the default
// roster; zero Seed means a random one.
type CombatRequest struct {
	Seed      int64           `json:"seed,omitempty"`
	Roster    []CombatantSpec `json:"roster,omitempty"`
	MaxRounds int             `json:"max_rounds,omitempty"`
}

type TurnRecord struct {
	Round    int    `json:"round"`
	Attacker string `json:"attacker"`
	Target   string `json:"target"`
	Damage   int    `json:"damage"`
	Critical bool   `json:"critical,omitempty"`
	TargetHP int    `json:"target_hp"`
	Killed   bool   `json:"killed,omitempty"`
}

type StatusRecord struct {
	Name      string `json:"name"`
	Team      string `json:"team"`
	CurrentHP int    `json:"current_hp"`
	MaxHP     int    `json:"max_hp"`
}

type SnapshotRecord struct {
	Round   int            `json:"round"`
	Entries []StatusRecord `json:"entries"`
}

// RunStats is the per-run summary computed while the combat plays out.
type RunStats struct {
	Turns       int        `json:"turns"`
	Criticals   int        `json:"criticals"`
	TotalDamage int        `json:"total_damage"`
	Kills       int        `json:"kills"`
	BiggestHit  TurnRecord `json:"biggest_hit"`
}

// CombatResponse is the full outcome of one combat.
type CombatResponse struct {
	Seed      int64            `json:"seed"`
	State     string           `json:"state"`
	Winner    string           `json:"winner,omitempty"`
	Rounds    int              `json:"rounds"`
	Turns     int              `json:"turns"`
	Events    []TurnRecord     `json:"events,omitempty"`
	Snapshots []SnapshotRecord `json:"snapshots,omitempty"`
	Stats     RunStats         `json:"stats"`
}

// StatsSummary aggregates every combat this process has run.
type StatsSummary struct {
	Combats         int        `json:"combats"`
	PlayersWins     int        `json:"players_wins"`
	EnemiesWins     int        `json:"enemies_wins"`
	Unfinished      int        `json:"unfinished"`
	TotalTurns      int        `json:"total_turns"`
	Criticals       int        `json:"criticals"`
	BiggestHitToday TurnRecord `json:"biggest_hit_today"`
	Date            string     `json:"date"`
}

// WebSocket message structure
type WsMsg struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
