package main

import (
	"fmt"
	"math/rand"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/ecs/system"
	"github.com/milk9111/nightwatch/prefabs"
)

const navCellSize = 32.0

// Level is a built world: the ECS world, its physics space, the nav grid,
// and bookkeeping for live prefab reloads.
type Level struct {
	Spec  *prefabs.LevelSpec
	World *ecs.World
	Grid  *system.NavGrid
	Walls []ecs.Wall

	Player ecs.Entity
	Agents *system.AgentSystem

	// agentsByPrefab lets a spec reload re-tune every spawned instance.
	agentsByPrefab map[string][]ecs.Entity
}

// BuildLevel loads a level spec and populates a fresh world from it.
func BuildLevel(name string) (*Level, error) {
	spec, err := prefabs.LoadLevelSpec(name)
	if err != nil {
		return nil, err
	}

	w := ecs.NewWorld()

	walls := make([]ecs.Wall, 0, len(spec.Walls))
	for _, wallSpec := range spec.Walls {
		walls = append(walls, ecs.Wall{X: wallSpec.X, Y: wallSpec.Y, W: wallSpec.W, H: wallSpec.H})
	}
	w.SetPhysicsWorld(ecs.NewPhysicsWorld(walls))

	grid := system.NewNavGrid(spec.Width, spec.Height, navCellSize, walls)
	lvl := &Level{
		Spec:           spec,
		World:          w,
		Grid:           grid,
		Walls:          walls,
		Agents:         system.NewAgentSystem(grid),
		agentsByPrefab: map[string][]ecs.Entity{},
	}

	lvl.Player = spawnPlayer(w, spec.PlayerSpawn.X, spec.PlayerSpawn.Y)

	for i, marker := range spec.PatrolMarkers {
		spawnPatrolMarker(w, i, marker.X, marker.Y)
	}

	for _, placement := range spec.Agents {
		agentSpec, err := prefabs.LoadAgentSpec(placement.Prefab)
		if err != nil {
			return nil, err
		}
		if err := registerAgentFSM(lvl.Agents, agentSpec); err != nil {
			return nil, err
		}
		e := spawnAgent(w, agentSpec, placement.Spawn.X, placement.Spawn.Y)
		lvl.agentsByPrefab[placement.Prefab] = append(lvl.agentsByPrefab[placement.Prefab], e)
	}

	return lvl, nil
}

// registerAgentFSM compiles a named FSM from its yaml spec the first time a
// prefab refers to it.
func registerAgentFSM(agents *system.AgentSystem, spec *prefabs.AgentSpec) error {
	if agents == nil || spec.FSM == "" || spec.FSM == component.DefaultAgentFSMName {
		return nil
	}
	raw, err := prefabs.LoadSpec[prefabs.RawFSM](spec.FSM + ".yaml")
	if err != nil {
		return fmt.Errorf("level: agent %q: %w", spec.Name, err)
	}
	if err := agents.RegisterFSM(spec.FSM, raw.Spec()); err != nil {
		return fmt.Errorf("level: agent %q: %w", spec.Name, err)
	}
	return nil
}

func spawnPlayer(w *ecs.World, x, y float64) ecs.Entity {
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y})
	_ = ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Radius: 10, Mass: 1})
	_ = ecs.Add(w, e, component.HealthComponent.Kind(), &component.Health{Current: 100, Max: 100})
	_ = ecs.Add(w, e, component.MoveIntentComponent.Kind(), &component.MoveIntent{})
	return e
}

func spawnPatrolMarker(w *ecs.World, order int, x, y float64) ecs.Entity {
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.PatrolPointTagComponent.Kind(), &component.PatrolPointTag{Order: order})
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y})
	return e
}

func spawnAgent(w *ecs.World, spec *prefabs.AgentSpec, x, y float64) ecs.Entity {
	e := ecs.CreateEntity(w)

	agent := spec.Agent()
	route := spec.Route()

	_ = ecs.Add(w, e, component.AgentComponent.Kind(), &agent)
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y})
	_ = ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Radius: spec.Radius, Mass: 1})
	_ = ecs.Add(w, e, component.MoveIntentComponent.Kind(), &component.MoveIntent{})
	_ = ecs.Add(w, e, component.TargetComponent.Kind(), &component.Target{})
	_ = ecs.Add(w, e, component.PatrolRouteComponent.Kind(), &route)
	_ = ecs.Add(w, e, component.NavigationComponent.Kind(), &component.Navigation{})

	if spec.Sentry {
		_ = ecs.Add(w, e, component.SentryTagComponent.Kind(), &component.SentryTag{})
		_ = ecs.Add(w, e, component.TargetMemoryComponent.Kind(), &component.TargetMemory{})
		return e
	}

	_ = ecs.Add(w, e, component.AgentStateComponent.Kind(), &component.AgentState{})
	_ = ecs.Add(w, e, component.AgentContextComponent.Kind(), &component.AgentContext{})
	_ = ecs.Add(w, e, component.AttackClockComponent.Kind(), &component.AttackClock{})
	_ = ecs.Add(w, e, component.HealthComponent.Kind(), &component.Health{Current: spec.Health, Max: spec.Health})
	if spec.Script != "" {
		_ = ecs.Add(w, e, component.AgentFSMSpecComponent.Kind(), &component.AgentFSMSpec{
			ScriptLifecycle: true,
			ScriptPath:      spec.Script,
		})
	} else if spec.FSM != "" {
		_ = ecs.Add(w, e, component.AgentFSMConfigComponent.Kind(), &component.AgentFSMConfig{FSM: spec.FSM})
	}
	return e
}

// ApplyAgentSpec re-tunes every live instance spawned from the prefab.
// Used by the hot-reload path; route points and state are left alone so
// agents do not teleport or reset mid-patrol.
func (l *Level) ApplyAgentSpec(prefab string, spec *prefabs.AgentSpec) {
	if l == nil || spec == nil {
		return
	}
	for _, e := range l.agentsByPrefab[prefab] {
		if agent, ok := ecs.Get(l.World, e, component.AgentComponent.Kind()); ok {
			*agent = spec.Agent()
		}
		if route, ok := ecs.Get(l.World, e, component.PatrolRouteComponent.Kind()); ok && spec.PatrolMode != "" {
			route.Mode = component.PatrolMode(spec.PatrolMode)
			route.WarnedUnknownMode = false
		}
	}
}

// NewSchedulerForLevel wires the simulation systems in tick order.
func NewSchedulerForLevel(lvl *Level, rng *rand.Rand) *ecs.Scheduler {
	return ecs.NewScheduler(
		system.NewPerceptionSystem(),
		system.NewMemorySystem(),
		system.NewPatrolSystem(rng),
		system.NewSentrySystem(lvl.Grid),
		lvl.Agents,
		system.NewAttackClockSystem(),
		system.NewPhysicsSystem(),
		system.NewDespawnSystem(),
	)
}
