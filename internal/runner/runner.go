// Package runner drives complete episodes: agents choose actions, the
// environment resolves turns, and every configured sink (replay
// backend, event dispatcher, metrics) observes the results.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gridcombat/engine/internal/agent"
	"github.com/gridcombat/engine/internal/dispatcher"
	"github.com/gridcombat/engine/internal/influx"
	"github.com/gridcombat/engine/internal/replay"
	"github.com/gridcombat/engine/internal/sim"
	"github.com/gridcombat/engine/internal/snapshot"
	"github.com/gridcombat/engine/pkg/core"
)

// hardTurnCap bounds episodes whose scenario sets no turn limit, so a
// runaway policy pair cannot loop forever.
const hardTurnCap = 10_000

// Dependencies holds the sinks a runner reports to. Only Log is
// required; nil sinks are skipped.
type Dependencies struct {
	Log        *slog.Logger
	Replay     replay.Backend
	Dispatcher *dispatcher.Dispatcher
	Influx     *influx.Manager
}

// EpisodeSummary is what RunEpisode hands back to the caller.
type EpisodeSummary struct {
	EpisodeID string
	Scenario  string
	Turns     int
	Winner    sim.Team
	Draw      bool
	Reason    string
	Rewards   map[sim.Team]float64
	Duration  time.Duration
}

// Runner executes episodes over a single environment instance. It is
// not safe for concurrent use; run parallel episodes on separate
// runners.
type Runner struct {
	deps Dependencies
	env  *sim.Environment

	// episode and turn feed the dynamic log attributes while an
	// episode is in flight.
	episodeID string
	turn      int
}

// New creates a runner. A nil logger falls back to slog.Default.
func New(deps Dependencies) *Runner {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	r := &Runner{deps: deps}
	r.env = sim.NewEnvironment(deps.Log)
	return r
}

// LogAttrs exposes the in-flight episode position for a
// logging.ContextHandler provider.
func (r *Runner) LogAttrs() []slog.Attr {
	if r.episodeID == "" {
		return nil
	}
	return []slog.Attr{
		slog.String("episode", r.episodeID),
		slog.Int("turn", r.turn),
	}
}

// RunEpisode plays one full episode of the scenario with the given
// per-team agents and reports it to every configured sink.
func (r *Runner) RunEpisode(ctx context.Context, name string, sc *sim.Scenario, agents map[sim.Team]agent.Agent) (*EpisodeSummary, error) {
	world, err := r.env.Reset(sc)
	if err != nil {
		return nil, err
	}

	start := time.Now().UTC()
	r.episodeID = newEpisodeID(name, sc.Seed, start)
	r.turn = 0
	defer func() { r.episodeID = "" }()

	meta := &core.EpisodeMeta{
		EpisodeID:  r.episodeID,
		Scenario:   name,
		Seed:       sc.Seed,
		GridWidth:  sc.GridWidth,
		GridHeight: sc.GridHeight,
		StartTime:  start,
	}
	roster := rosterRecords(world)

	if r.deps.Replay != nil {
		if err := r.deps.Replay.StartEpisode(meta, roster); err != nil {
			return nil, fmt.Errorf("replay start failed: %w", err)
		}
	}
	r.publish(dispatcher.Event{Name: dispatcher.EventEpisodeStart, Episode: r.episodeID, Payload: meta})

	r.deps.Log.Info("Episode started",
		"scenario", name, "seed", sc.Seed, "entities", len(roster))

	maxTurns := sc.MaxTurns
	if maxTurns <= 0 || maxTurns > hardTurnCap {
		maxTurns = hardTurnCap
	}

	var res sim.StepResult
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("episode aborted: %w", err)
		}

		actions := make(map[int]sim.Action)
		for team, a := range agents {
			for id, act := range a.Act(agent.NewView(world, team)) {
				if e := world.Entity(id); e != nil && e.Team == team {
					actions[id] = act
				}
			}
		}

		res, err = r.env.Step(actions)
		if err != nil {
			return nil, err
		}
		r.turn = world.Turn

		turnRec := turnRecord(world, res)
		if r.deps.Replay != nil {
			if err := r.deps.Replay.RecordTurn(turnRec); err != nil {
				r.deps.Log.Error("Replay turn write failed", "error", err)
			}
		}
		r.publishTurn(world, turnRec)
		if r.deps.Influx != nil {
			point := influx.TurnPoint(meta, turnRec)
			if err := r.deps.Influx.WritePoint(ctx, influx.BucketTurns, point); err != nil {
				r.deps.Log.Debug("Influx turn write skipped", "error", err)
			}
		}

		if res.Done || world.Turn >= maxTurns {
			break
		}
	}

	end := time.Now().UTC()
	result := &core.EpisodeResult{
		Turns:   world.Turn,
		Winner:  string(world.Winner),
		Draw:    res.Done && world.Winner == "",
		Reason:  world.EndReason,
		Rewards: rewardRecords(res.Rewards),
		EndTime: end,
	}

	if r.deps.Replay != nil {
		if err := r.deps.Replay.EndEpisode(result); err != nil {
			return nil, fmt.Errorf("replay end failed: %w", err)
		}
	}
	r.publish(dispatcher.Event{Name: dispatcher.EventEpisodeEnd, Episode: r.episodeID, Turn: world.Turn, Payload: result})
	if r.deps.Influx != nil {
		point := influx.EpisodePoint(meta, result)
		if err := r.deps.Influx.WritePoint(ctx, influx.BucketEpisodes, point); err != nil {
			r.deps.Log.Debug("Influx episode write skipped", "error", err)
		}
	}

	summary := &EpisodeSummary{
		EpisodeID: r.episodeID,
		Scenario:  name,
		Turns:     world.Turn,
		Winner:    world.Winner,
		Draw:      result.Draw,
		Reason:    world.EndReason,
		Rewards:   res.Rewards,
		Duration:  end.Sub(start),
	}
	r.deps.Log.Info("Episode finished",
		"turns", summary.Turns, "winner", string(summary.Winner),
		"reason", summary.Reason, "duration", summary.Duration)
	return summary, nil
}

// RunBatch plays the scenario repeatedly, bumping the seed each episode
// so runs differ while staying reproducible from the first seed.
func (r *Runner) RunBatch(ctx context.Context, name string, sc *sim.Scenario, agents map[sim.Team]agent.Agent, episodes int) ([]*EpisodeSummary, error) {
	if episodes <= 0 {
		return nil, fmt.Errorf("episodes must be positive, got %d", episodes)
	}

	summaries := make([]*EpisodeSummary, 0, episodes)
	for i := 0; i < episodes; i++ {
		episodeScenario := *sc
		episodeScenario.Seed = sc.Seed + int64(i)

		summary, err := r.RunEpisode(ctx, name, &episodeScenario, agents)
		if err != nil {
			return summaries, fmt.Errorf("episode %d/%d failed: %w", i+1, episodes, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (r *Runner) publish(e dispatcher.Event) {
	if r.deps.Dispatcher == nil {
		return
	}
	if err := r.deps.Dispatcher.Publish(e); err != nil {
		r.deps.Log.Error("Event publish failed", "event", e.Name, "error", err)
	}
}

// publishTurn emits the turn event plus one event per valid shot and
// per kill, so combat subscribers need not unpack turn payloads.
func (r *Runner) publishTurn(w *sim.WorldState, t *core.TurnRecord) {
	if r.deps.Dispatcher == nil {
		return
	}

	// Viewers get a frozen world picture; fall back to the bare record
	// when cloning fails.
	var payload any
	if snap, err := snapshot.Build(w, t); err == nil {
		payload = snap
	} else {
		r.deps.Log.Error("Turn snapshot failed", "error", err)
		payload = t
	}
	r.publish(dispatcher.Event{Name: dispatcher.EventTurn, Episode: r.episodeID, Turn: t.Turn, Payload: payload})
	for i := range t.Shots {
		shot := t.Shots[i]
		if !shot.Valid {
			continue
		}
		r.publish(dispatcher.Event{Name: dispatcher.EventShot, Episode: r.episodeID, Turn: t.Turn, Payload: &shot})
		if shot.Killed {
			r.publish(dispatcher.Event{Name: dispatcher.EventKill, Episode: r.episodeID, Turn: t.Turn, Payload: &shot})
		}
	}
}

func newEpisodeID(name string, seed int64, start time.Time) string {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	if slug == "" {
		slug = "episode"
	}
	return fmt.Sprintf("%s-%d-%s", slug, seed, start.Format("20060102T150405.000000000"))
}
