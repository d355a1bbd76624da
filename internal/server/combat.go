package server

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pefman/squad-combat/internal/engine"
	"github.com/pefman/squad-combat/internal/game"
	"github.com/pefman/squad-combat/internal/models"
	"github.com/pefman/squad-combat/internal/report"
	"github.com/pefman/squad-combat/internal/roster"
	"github.com/pefman/squad-combat/internal/stats"
)

// errBadRequest marks failures caused by the request body.
var errBadRequest = errors.New("bad request")

// runCombat plays one combat for req. live, when set, receives events as
// they happen. A run stopped by the round limit is not an error: it comes
// back with state InProgress.
func (s *Server) runCombat(ctx context.Context, req models.CombatRequest, live game.Reporter) (models.CombatResponse, error) {
	ctx, span := s.tracer.Start(ctx, "combat.run")
	defer span.End()

	members := roster.Default()
	if len(req.Roster) > 0 {
		var err error
		members, err = roster.FromSpecs(req.Roster)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid roster")
			return models.CombatResponse{}, fmt.Errorf("%w: %w", errBadRequest, err)
		}
	}
	if req.MaxRounds < 0 {
		return models.CombatResponse{}, fmt.Errorf("%w: max_rounds must not be negative", errBadRequest)
	}

	dice, err := engine.NewDice(req.Seed)
	if err != nil {
		span.RecordError(err)
		return models.CombatResponse{}, err
	}

	rec := &report.Recorder{}
	col := &stats.Collector{}
	e, err := game.NewEngine(members, dice,
		game.WithReporter(report.Multi{rec, col, live}),
		game.WithMaxRounds(s.maxRounds(req.MaxRounds)),
	)
	if err != nil {
		span.RecordError(err)
		return models.CombatResponse{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}

	res, err := e.RunContext(ctx)
	if err != nil && !errors.Is(err, game.ErrRoundLimit) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "combat failed")
		return models.CombatResponse{}, err
	}
	if err != nil {
		s.logger.Printf("combat: seed=%d stopped: %v", dice.Seed(), err)
	}

	run := col.Stats()
	s.stats.Record(res, run)

	resp := models.CombatResponse{
		Seed:      dice.Seed(),
		State:     res.State.String(),
		Rounds:    res.Rounds,
		Turns:     res.Turns,
		Events:    make([]models.TurnRecord, 0, len(rec.Turns)),
		Snapshots: make([]models.SnapshotRecord, 0, len(rec.Snapshots)),
		Stats:     run,
	}
	if team, ok := res.State.Winner(); ok {
		resp.Winner = team.String()
	}
	for _, ev := range rec.Turns {
		resp.Events = append(resp.Events, report.ToTurnRecord(ev))
	}
	for _, snap := range rec.Snapshots {
		resp.Snapshots = append(resp.Snapshots, report.ToSnapshotRecord(snap))
	}

	span.SetAttributes(
		attribute.Int64("combat.seed", resp.Seed),
		attribute.Int("combat.roster_size", len(members)),
		attribute.Int("combat.rounds", resp.Rounds),
		attribute.Int("combat.turns", resp.Turns),
		attribute.String("combat.state", resp.State),
	)
	s.logger.Printf("combat: seed=%d state=%s rounds=%d turns=%d crits=%d", resp.Seed, resp.State, resp.Rounds, resp.Turns, run.Criticals)
	return resp, nil
}

// maxRounds clamps a requested limit to the server's.
func (s *Server) maxRounds(requested int) int {
	limit := s.cfg.MaxRounds
	if requested > 0 && (limit <= 0 || requested < limit) {
		return requested
	}
	return limit
}
