package system

import (
	"log"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

// AgentSystem runs the guard finite state machine for every entity with an
// AgentState. Each tick it drains the entity's FSM event queue, evaluates
// event edges then polled checkers, and runs the current state's actions to
// produce a movement intent and facing.
type AgentSystem struct {
	grid        *NavGrid
	fsmCache    map[string]*FSMDef
	scriptCache map[ecs.Entity]*agentScriptRuntime
}

func NewAgentSystem(grid *NavGrid) *AgentSystem {
	return &AgentSystem{
		grid: grid,
		fsmCache: map[string]*FSMDef{
			component.DefaultAgentFSMName: DefaultGuardFSM(),
		},
	}
}

// RegisterFSM compiles and caches a named FSM spec so prefabs can refer to
// it. Replacing an existing name takes effect for all entities using it.
func (s *AgentSystem) RegisterFSM(name string, spec component.AgentFSMSpec) error {
	def, err := CompileFSM(spec)
	if err != nil {
		return err
	}
	s.fsmCache[name] = def
	return nil
}

// ReloadScripts drops every compiled script runtime so the next tick
// recompiles from disk. Entities keep their current state.
func (s *AgentSystem) ReloadScripts() {
	if s == nil {
		return
	}
	s.scriptCache = nil
}

func (s *AgentSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach3(w, component.AgentStateComponent.Kind(), component.AgentComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, state *component.AgentState, agent *component.Agent, t *component.Transform) {
		ctx := s.buildContext(w, e, state, agent, t)

		// FSM events queued by other systems since the last tick.
		var events []component.EventID
		if q, ok := ecs.Get(w, e, component.AgentEventQueueComponent.Kind()); ok {
			events = q.Events
			ecs.Remove(w, e, component.AgentEventQueueComponent.Kind())
		}

		if spec, ok := ecs.Get(w, e, component.AgentFSMSpecComponent.Kind()); ok && spec.ScriptLifecycle {
			s.updateFromScript(ctx, spec, events)
			return
		}

		fsm := s.resolveFSM(w, e)
		if fsm == nil {
			return
		}

		if state.Current == "" {
			state.Current = fsm.Initial
			s.runActions(ctx, fsm.States[state.Current].OnEnter)
		}

		// Death interrupts everything and is idempotent: once dead, no
		// event or checker re-runs the entry effects.
		if ctx.Health != nil && ctx.Health.Dead() {
			if state.Current != component.StateDead {
				s.transition(ctx, fsm, component.StateDead)
				w.Events().Push(ecs.Event{Type: ecs.EventAgentDied, Data: ecs.AgentDiedEvent{Agent: e}})
			}
			s.runActions(ctx, fsm.States[state.Current].While)
			return
		}

		if !s.applyEvents(ctx, fsm, events) {
			s.applyCheckers(ctx, fsm)
		}
		s.runActions(ctx, fsm.States[state.Current].While)
	})
}

func (s *AgentSystem) buildContext(w *ecs.World, e ecs.Entity, state *component.AgentState, agent *component.Agent, t *component.Transform) *AgentActionContext {
	ctx := &AgentActionContext{
		World:     w,
		Entity:    e,
		Grid:      s.grid,
		Agent:     agent,
		State:     state,
		Transform: t,
	}
	ctx.Context, _ = ecs.Get(w, e, component.AgentContextComponent.Kind())
	ctx.Route, _ = ecs.Get(w, e, component.PatrolRouteComponent.Kind())
	ctx.Nav, _ = ecs.Get(w, e, component.NavigationComponent.Kind())
	ctx.Perception, _ = ecs.Get(w, e, component.PerceptionComponent.Kind())
	ctx.Target, _ = ecs.Get(w, e, component.TargetComponent.Kind())
	ctx.Clock, _ = ecs.Get(w, e, component.AttackClockComponent.Kind())
	ctx.Health, _ = ecs.Get(w, e, component.HealthComponent.Kind())

	if ctx.Target != nil && ctx.Target.Held() {
		held := targetEntity(*ctx.Target)
		if ecs.IsAlive(w, held) {
			if x, y, ok := entityPosition(w, held); ok {
				ctx.TargetAlive = true
				ctx.TargetX = x
				ctx.TargetY = y
			}
		}
	}

	ctx.SetIntent = func(x, y float64) { setIntent(w, e, x, y) }
	ctx.EnqueueEvent = func(ev component.EventID) { enqueueAgentEvent(w, e, ev) }
	return ctx
}

func (s *AgentSystem) resolveFSM(w *ecs.World, e ecs.Entity) *FSMDef {
	name := component.DefaultAgentFSMName
	if cfg, ok := ecs.Get(w, e, component.AgentFSMConfigComponent.Kind()); ok && cfg.FSM != "" {
		name = cfg.FSM
	}
	fsm, ok := s.fsmCache[name]
	if !ok {
		log.Printf("agent: entity=%v unknown FSM %q, using default", e, name)
		fsm = s.fsmCache[component.DefaultAgentFSMName]
		s.fsmCache[name] = fsm
	}
	return fsm
}

// applyEvents consumes queued FSM events in order; the first one with an
// edge out of the current state wins.
func (s *AgentSystem) applyEvents(ctx *AgentActionContext, fsm *FSMDef, events []component.EventID) bool {
	for _, ev := range events {
		edges, ok := fsm.Transitions[ctx.State.Current]
		if !ok {
			continue
		}
		if to, ok := edges[ev]; ok {
			s.transition(ctx, fsm, to)
			return true
		}
	}
	return false
}

func (s *AgentSystem) applyCheckers(ctx *AgentActionContext, fsm *FSMDef) {
	for _, def := range fsm.Checkers {
		if def.From != ctx.State.Current || def.Check == nil {
			continue
		}
		if def.Check(ctx) {
			s.transition(ctx, fsm, def.To)
			return
		}
	}
}

func (s *AgentSystem) transition(ctx *AgentActionContext, fsm *FSMDef, to component.StateID) {
	if ctx.State.Current == to {
		return
	}
	s.runActions(ctx, fsm.States[ctx.State.Current].OnExit)
	ctx.State.Current = to
	s.runActions(ctx, fsm.States[to].OnEnter)
}

func (s *AgentSystem) runActions(ctx *AgentActionContext, actions []Action) {
	for _, action := range actions {
		if action != nil {
			action(ctx)
		}
	}
}
