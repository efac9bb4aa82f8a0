package system

import (
	"fmt"
	"math"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

const (
	// chaseSpeedFactor scales move speed while chasing.
	chaseSpeedFactor = 1.5
	// chaseDropFactor is the hysteresis on detection range: a chase only
	// breaks once the target is this far beyond it.
	chaseDropFactor = 1.5
	// sightDropFactor applies on the tick line-of-sight is lost.
	sightDropFactor = 1.2
	// deadWindDownSeconds is how long a corpse lingers before removal.
	deadWindDownSeconds = 3.0
)

type Action func(ctx *AgentActionContext)

// AgentActionContext carries everything an FSM action or transition checker
// may touch for one entity during one tick.
type AgentActionContext struct {
	World      *ecs.World
	Entity     ecs.Entity
	Grid       *NavGrid
	Agent      *component.Agent
	State      *component.AgentState
	Context    *component.AgentContext
	Transform  *component.Transform
	Route      *component.PatrolRoute
	Nav        *component.Navigation
	Perception *component.Perception
	Target     *component.Target
	Clock      *component.AttackClock
	Health     *component.Health

	TargetAlive bool
	TargetX     float64
	TargetY     float64

	SetIntent    func(x, y float64)
	EnqueueEvent func(ev component.EventID)
}

type StateDef struct {
	OnEnter []Action
	While   []Action
	OnExit  []Action
}

type FSMDef struct {
	Initial     component.StateID
	States      map[component.StateID]StateDef
	Transitions map[component.StateID]map[component.EventID]component.StateID
	Checkers    []TransitionCheckerDef
}

type TransitionChecker func(ctx *AgentActionContext) bool

type TransitionCheckerDef struct {
	From  component.StateID
	To    component.StateID
	Check TransitionChecker
}

// moveAlongPath steers toward the next navigation waypoint toward the goal
// and turns the agent into its direction of travel.
func moveAlongPath(ctx *AgentActionContext, goalX, goalY, speed float64) {
	if ctx == nil || ctx.Transform == nil || ctx.SetIntent == nil {
		return
	}
	fromX := ctx.Transform.X
	fromY := ctx.Transform.Y

	wx, wy := goalX, goalY
	if ctx.Grid != nil && ctx.Nav != nil {
		ctx.Grid.SetGoal(ctx.Nav, fromX, fromY, goalX, goalY)
		wx, wy = ctx.Grid.NextWaypoint(ctx.Nav, fromX, fromY)
	}

	vx, vy := steerToward(fromX, fromY, wx, wy, speed)
	ctx.SetIntent(vx, vy)
	if ctx.Agent != nil {
		rotateToward(ctx.Transform, vx, vy, ctx.Agent.RotationSpeed*TickSeconds)
	}
}

var actionRegistry = map[string]func(any) Action{
	"stop": func(_ any) Action {
		return func(ctx *AgentActionContext) {
			if ctx == nil || ctx.SetIntent == nil {
				return
			}
			ctx.SetIntent(0, 0)
		}
	},
	"patrol_move": func(_ any) Action {
		return func(ctx *AgentActionContext) {
			if ctx == nil || ctx.SetIntent == nil {
				return
			}
			if ctx.Route == nil || len(ctx.Route.Points) == 0 || ctx.Route.WaitTimer > 0 {
				ctx.SetIntent(0, 0)
				return
			}
			point := ctx.Route.Points[ctx.Route.Index]
			moveAlongPath(ctx, point.X, point.Y, ctx.Agent.MoveSpeed)
		}
	},
	"chase_target": func(_ any) Action {
		return func(ctx *AgentActionContext) {
			if ctx == nil || ctx.SetIntent == nil {
				return
			}
			if !ctx.TargetAlive {
				ctx.SetIntent(0, 0)
				return
			}
			moveAlongPath(ctx, ctx.TargetX, ctx.TargetY, ctx.Agent.MoveSpeed*chaseSpeedFactor)
		}
	},
	"face_target": func(_ any) Action {
		return func(ctx *AgentActionContext) {
			if ctx == nil || ctx.Transform == nil || !ctx.TargetAlive || ctx.Agent == nil {
				return
			}
			rotateToward(ctx.Transform, ctx.TargetX-ctx.Transform.X, ctx.TargetY-ctx.Transform.Y, ctx.Agent.RotationSpeed*TickSeconds)
		}
	},
	"attack_target": func(_ any) Action {
		return func(ctx *AgentActionContext) {
			if ctx == nil || ctx.Agent == nil || ctx.Clock == nil || !ctx.TargetAlive || ctx.Target == nil {
				return
			}
			if ctx.Clock.Remaining > 0 {
				return
			}
			TakeDamage(ctx.World, targetEntity(*ctx.Target), ctx.Agent.AttackDamage)
			ctx.Clock.Remaining = ctx.Agent.AttackCooldown
		}
	},
	"drop_target": func(_ any) Action {
		return func(ctx *AgentActionContext) {
			if ctx == nil || ctx.Target == nil || !ctx.Target.Held() {
				return
			}
			dropped := targetEntity(*ctx.Target)
			ctx.Target.ID = 0
			ctx.Target.Gen = 0
			if ctx.World != nil {
				ctx.World.Events().Push(ecs.Event{
					Type: ecs.EventTargetLost,
					Data: ecs.TargetLostEvent{Agent: ctx.Entity, Target: dropped},
				})
			}
		}
	},
	"disable_collision": func(_ any) Action {
		return func(ctx *AgentActionContext) {
			if ctx == nil || ctx.World == nil {
				return
			}
			pw := ctx.World.PhysicsWorld()
			if pw == nil {
				return
			}
			if pb, ok := ecs.Get(ctx.World, ctx.Entity, component.PhysicsBodyComponent.Kind()); ok {
				pw.DisableCollision(pb)
			}
		}
	},
	"schedule_despawn": func(arg any) Action {
		seconds := asFloat(arg)
		if seconds <= 0 {
			seconds = deadWindDownSeconds
		}
		return func(ctx *AgentActionContext) {
			if ctx == nil || ctx.World == nil {
				return
			}
			if ecs.Has(ctx.World, ctx.Entity, component.DespawnComponent.Kind()) {
				return
			}
			_ = ecs.Add(ctx.World, ctx.Entity, component.DespawnComponent.Kind(), &component.Despawn{Seconds: seconds})
		}
	},
	"start_timer": func(arg any) Action {
		seconds := asFloat(arg)
		return func(ctx *AgentActionContext) {
			if ctx == nil || ctx.Context == nil {
				return
			}
			ctx.Context.Timer = seconds
		}
	},
	"tick_timer": func(_ any) Action {
		return func(ctx *AgentActionContext) {
			if ctx == nil || ctx.Context == nil || ctx.EnqueueEvent == nil {
				return
			}
			ctx.Context.Timer -= TickSeconds
			if ctx.Context.Timer <= 0 {
				ctx.EnqueueEvent("timer_expired")
			}
		}
	},
	"emit_event": func(arg any) Action {
		name := fmt.Sprint(arg)
		return func(ctx *AgentActionContext) {
			if ctx == nil || ctx.EnqueueEvent == nil {
				return
			}
			ctx.EnqueueEvent(component.EventID(name))
		}
	},
}

var transitionRegistry = map[string]func(any) TransitionChecker{
	"always": func(_ any) TransitionChecker {
		return func(ctx *AgentActionContext) bool { return true }
	},
	"has_route": func(_ any) TransitionChecker {
		return func(ctx *AgentActionContext) bool {
			return ctx != nil && ctx.Route != nil && len(ctx.Route.Points) > 0
		}
	},
	"in_attack_range": func(_ any) TransitionChecker {
		return func(ctx *AgentActionContext) bool {
			if ctx == nil || ctx.Agent == nil || !ctx.TargetAlive || ctx.Transform == nil {
				return false
			}
			return targetDistance(ctx) <= ctx.Agent.AttackRange
		}
	},
	"out_of_attack_range": func(_ any) TransitionChecker {
		return func(ctx *AgentActionContext) bool {
			if ctx == nil || ctx.Agent == nil || !ctx.TargetAlive || ctx.Transform == nil {
				return false
			}
			return targetDistance(ctx) > ctx.Agent.AttackRange
		}
	},
	"target_invalid": func(_ any) TransitionChecker {
		return func(ctx *AgentActionContext) bool {
			return ctx != nil && !ctx.TargetAlive
		}
	},
	"lost_target": func(_ any) TransitionChecker {
		return func(ctx *AgentActionContext) bool {
			if ctx == nil {
				return false
			}
			if !ctx.TargetAlive {
				return true
			}
			if ctx.Agent == nil || ctx.Agent.DetectionRange <= 0 {
				return false
			}
			dist := targetDistance(ctx)
			if dist > ctx.Agent.DetectionRange*chaseDropFactor {
				return true
			}
			// Sight just broke: use the tighter drop threshold.
			return ctx.Perception != nil && ctx.Perception.LostSight && dist > ctx.Agent.DetectionRange*sightDropFactor
		}
	},
	"timer_expired": func(_ any) TransitionChecker {
		return func(ctx *AgentActionContext) bool {
			return ctx != nil && ctx.Context != nil && ctx.Context.Timer <= 0
		}
	},
}

func targetDistance(ctx *AgentActionContext) float64 {
	return math.Hypot(ctx.TargetX-ctx.Transform.X, ctx.TargetY-ctx.Transform.Y)
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float64:
		return t
	case float32:
		return float64(t)
	default:
		return 0
	}
}

// CompileFSM turns a YAML-shaped FSM spec into an executable definition.
// Transition entries take the form {"to": state, "on": event} for
// event-driven edges or {"to": state, "when": checker, "arg": any} for
// polled checkers.
func CompileFSM(spec component.AgentFSMSpec) (*FSMDef, error) {
	if spec.Initial == "" {
		return nil, fmt.Errorf("fsm: missing initial state")
	}

	build := func(list []map[string]any) ([]Action, error) {
		if len(list) == 0 {
			return nil, nil
		}
		out := make([]Action, 0, len(list))
		for _, entry := range list {
			for name, arg := range entry {
				factory, ok := actionRegistry[name]
				if !ok {
					return nil, fmt.Errorf("fsm: unknown action %q", name)
				}
				out = append(out, factory(arg))
			}
		}
		return out, nil
	}

	states := map[component.StateID]StateDef{}
	for name, raw := range spec.States {
		onEnter, err := build(raw.OnEnter)
		if err != nil {
			return nil, err
		}
		while, err := build(raw.While)
		if err != nil {
			return nil, err
		}
		onExit, err := build(raw.OnExit)
		if err != nil {
			return nil, err
		}
		states[component.StateID(name)] = StateDef{OnEnter: onEnter, While: while, OnExit: onExit}
	}

	if _, ok := states[component.StateID(spec.Initial)]; !ok {
		return nil, fmt.Errorf("fsm: initial state %q not defined", spec.Initial)
	}

	def := &FSMDef{
		Initial:     component.StateID(spec.Initial),
		States:      states,
		Transitions: map[component.StateID]map[component.EventID]component.StateID{},
	}

	for from, entries := range spec.Transitions {
		fromID := component.StateID(from)
		if _, ok := states[fromID]; !ok {
			return nil, fmt.Errorf("fsm: transition from unknown state %q", from)
		}
		for _, entry := range entries {
			to, _ := entry["to"].(string)
			toID := component.StateID(to)
			if _, ok := states[toID]; !ok {
				return nil, fmt.Errorf("fsm: transition from %q to unknown state %q", from, to)
			}
			if on, ok := entry["on"].(string); ok && on != "" {
				if def.Transitions[fromID] == nil {
					def.Transitions[fromID] = map[component.EventID]component.StateID{}
				}
				def.Transitions[fromID][component.EventID(on)] = toID
				continue
			}
			when, _ := entry["when"].(string)
			factory, ok := transitionRegistry[when]
			if !ok {
				return nil, fmt.Errorf("fsm: unknown transition checker %q", when)
			}
			def.Checkers = append(def.Checkers, TransitionCheckerDef{
				From:  fromID,
				To:    toID,
				Check: factory(entry["arg"]),
			})
		}
	}

	return def, nil
}

// DefaultGuardFSM is the built-in idle/patrol/chase/attack/dead machine
// used when a prefab names no custom FSM.
func DefaultGuardFSM() *FSMDef {
	return &FSMDef{
		Initial: component.StateIdle,
		States: map[component.StateID]StateDef{
			component.StateIdle: {
				While: []Action{actionRegistry["stop"](nil)},
			},
			component.StatePatrol: {
				OnEnter: []Action{actionRegistry["drop_target"](nil)},
				While:   []Action{actionRegistry["patrol_move"](nil)},
			},
			component.StateChase: {
				While: []Action{actionRegistry["chase_target"](nil)},
			},
			component.StateAttack: {
				While: []Action{
					actionRegistry["stop"](nil),
					actionRegistry["face_target"](nil),
					actionRegistry["attack_target"](nil),
				},
			},
			component.StateDead: {
				OnEnter: []Action{
					actionRegistry["stop"](nil),
					actionRegistry["disable_collision"](nil),
					actionRegistry["schedule_despawn"](deadWindDownSeconds),
				},
			},
		},
		Transitions: map[component.StateID]map[component.EventID]component.StateID{
			component.StateIdle:   {"sees_target": component.StateChase},
			component.StatePatrol: {"sees_target": component.StateChase},
		},
		Checkers: []TransitionCheckerDef{
			{From: component.StateIdle, To: component.StatePatrol, Check: transitionRegistry["has_route"](nil)},
			{From: component.StateChase, To: component.StateAttack, Check: transitionRegistry["in_attack_range"](nil)},
			{From: component.StateChase, To: component.StatePatrol, Check: transitionRegistry["lost_target"](nil)},
			{From: component.StateAttack, To: component.StateChase, Check: transitionRegistry["out_of_attack_range"](nil)},
			{From: component.StateAttack, To: component.StatePatrol, Check: transitionRegistry["target_invalid"](nil)},
		},
	}
}
