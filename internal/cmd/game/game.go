// Package game runs a combat from the command line, locally or against a
// combat server.
package game

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/pefman/squad-combat/internal/api"
	"github.com/pefman/squad-combat/internal/config"
	"github.com/pefman/squad-combat/internal/engine"
	combat "github.com/pefman/squad-combat/internal/game"
	"github.com/pefman/squad-combat/internal/models"
	"github.com/pefman/squad-combat/internal/report"
	"github.com/pefman/squad-combat/internal/roster"
)

// Config holds CLI configuration.
type Config struct {
	Seed      int64         `env:"SQUAD_COMBAT_SEED"`
	Roster    string        `env:"SQUAD_COMBAT_ROSTER"`
	Server    string        `env:"SQUAD_COMBAT_SERVER"`
	Timeout   time.Duration `env:"SQUAD_COMBAT_TIMEOUT"    envDefault:"10s"`
	MaxRounds int           `env:"SQUAD_COMBAT_MAX_ROUNDS"`
	Quiet     bool          `env:"SQUAD_COMBAT_QUIET"`
	Verbose   bool          `env:"SQUAD_COMBAT_VERBOSE"`

	PrintRoster bool `env:"SQUAD_COMBAT_PRINT_ROSTER"`
	ShowStats   bool `env:"SQUAD_COMBAT_SHOW_STATS"`
}

// ParseConfig parses env then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (0 picks one)")
	fs.StringVar(&cfg.Roster, "roster", cfg.Roster, "roster file (.json or .lua); empty uses the default roster")
	fs.StringVar(&cfg.Server, "server", cfg.Server, "combat server base URL; empty runs locally")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout in server mode")
	fs.IntVar(&cfg.MaxRounds, "max-rounds", cfg.MaxRounds, "stop after this many rounds (0 for no limit)")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "print only the winner")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every event to stderr")
	fs.BoolVar(&cfg.PrintRoster, "print-roster", cfg.PrintRoster, "print the roster as JSON and exit")
	fs.BoolVar(&cfg.ShowStats, "stats", cfg.ShowStats, "print the server's aggregate stats after the combat (server mode)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.MaxRounds < 0 {
		return Config{}, errors.New("max-rounds must not be negative")
	}
	return cfg, nil
}

// Run executes one combat and writes the report to out.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logger := log.New(errOut, "", 0)

	var sinks report.Multi
	if !cfg.Quiet {
		sinks = append(sinks, report.NewTextReporter(out))
	}
	if cfg.Verbose {
		sinks = append(sinks, report.NewLogReporter(logger))
	}

	if cfg.Server != "" {
		return runRemote(ctx, cfg, sinks, out, logger)
	}
	return runLocal(ctx, cfg, sinks, out, logger)
}

func runLocal(ctx context.Context, cfg Config, sinks report.Multi, out io.Writer, logger *log.Logger) error {
	members := roster.Default()
	if cfg.Roster != "" {
		var err error
		members, err = roster.Load(cfg.Roster)
		if err != nil {
			return err
		}
	}
	if cfg.PrintRoster {
		return writeRoster(out, roster.ToSpecs(members))
	}

	dice, err := engine.NewDice(cfg.Seed)
	if err != nil {
		return err
	}
	logger.Printf("combat: seed=%d combatants=%d", dice.Seed(), len(members))

	e, err := combat.NewEngine(members, dice,
		combat.WithReporter(sinks),
		combat.WithMaxRounds(cfg.MaxRounds),
	)
	if err != nil {
		return fmt.Errorf("build combat: %w", err)
	}
	res, err := e.RunContext(ctx)
	if err != nil {
		return err
	}
	report.Announce(out, res.State)
	return nil
}

func runRemote(ctx context.Context, cfg Config, sinks report.Multi, out io.Writer, logger *log.Logger) error {
	client := api.NewClientWithConfig(api.Config{BaseURL: cfg.Server, Timeout: cfg.Timeout})
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("server %s unavailable: %w", cfg.Server, err)
	}

	req := models.CombatRequest{Seed: cfg.Seed, MaxRounds: cfg.MaxRounds}
	if cfg.Roster != "" {
		members, err := roster.Load(cfg.Roster)
		if err != nil {
			return err
		}
		req.Roster = roster.ToSpecs(members)
	}
	if cfg.PrintRoster {
		if req.Roster != nil {
			return writeRoster(out, req.Roster)
		}
		specs, err := client.DefaultRoster(ctx)
		if err != nil {
			return fmt.Errorf("fetch default roster: %w", err)
		}
		return writeRoster(out, specs)
	}

	resp, err := client.RunCombat(ctx, req)
	if err != nil {
		return fmt.Errorf("run combat on %s: %w", cfg.Server, err)
	}
	logger.Printf("combat: seed=%d server=%s", resp.Seed, cfg.Server)

	report.ReplayResponse(resp, sinks)
	if resp.Winner == "" {
		return fmt.Errorf("%w after %d rounds", combat.ErrRoundLimit, resp.Rounds)
	}
	fmt.Fprintf(out, "%s win!\n", resp.Winner)

	if cfg.ShowStats {
		sum, err := client.Stats(ctx)
		if err != nil {
			return fmt.Errorf("fetch stats: %w", err)
		}
		writeStats(out, sum)
	}
	return nil
}

func writeRoster(out io.Writer, specs []models.CombatantSpec) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(specs)
}

func writeStats(out io.Writer, sum models.StatsSummary) {
	fmt.Fprintf(out, "Server stats (%s): %d combats, Players %d, Enemies %d, unfinished %d, %d turns, %d criticals\n",
		sum.Date, sum.Combats, sum.PlayersWins, sum.EnemiesWins, sum.Unfinished, sum.TotalTurns, sum.Criticals)
	if hit := sum.BiggestHitToday; hit.Attacker != "" {
		fmt.Fprintf(out, "Biggest hit today: %s\n", report.FormatTurn(report.FromTurnRecord(hit)))
	}
}
