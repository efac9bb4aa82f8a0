package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/prefabs"
)

// agentScriptRuntime runs a tengo-scripted FSM lifecycle for one entity.
// The script defines onEnter/update/onExit functions plus an optional
// initial_state global; the dispatch shim below routes phases into them.
type agentScriptRuntime struct {
	scriptPath  string
	compiled    *tengo.Compiled
	stateData   *tengo.Map
	initial     component.StateID
	initialized bool
	pending     component.StateID
}

const agentLifecycleDispatchScript = `
if __phase == "enter" {
	onEnter(__engine, __state, __current_state)
} else if __phase == "update" {
	update(__engine, __state, __current_state)
} else if __phase == "exit" {
	onExit(__engine, __state, __current_state)
}
`

func (s *AgentSystem) updateFromScript(ctx *AgentActionContext, spec *component.AgentFSMSpec, events []component.EventID) {
	if s == nil || ctx == nil || ctx.State == nil || spec == nil {
		return
	}

	rt, err := s.getScriptRuntime(ctx.Entity, spec)
	if err != nil {
		fmt.Printf("agent: entity=%v load scripted FSM error: %v\n", ctx.Entity, err)
		return
	}

	if ctx.State.Current == "" {
		ctx.State.Current = rt.initial
	}

	eventSet := make(map[string]bool, len(events))
	for _, ev := range events {
		if ev == "" {
			continue
		}
		eventSet[string(ev)] = true
	}

	engine := buildAgentScriptEngine(ctx, rt, eventSet)
	if !rt.initialized {
		if err := rt.runPhase("enter", ctx.State.Current, engine); err != nil {
			fmt.Printf("agent: entity=%v script onEnter error: %v\n", ctx.Entity, err)
			return
		}
		rt.initialized = true
	}

	if err := rt.runPhase("update", ctx.State.Current, engine); err != nil {
		fmt.Printf("agent: entity=%v script update error: %v\n", ctx.Entity, err)
		return
	}

	if rt.pending == "" || rt.pending == ctx.State.Current {
		rt.pending = ""
		return
	}

	prev := ctx.State.Current
	if err := rt.runPhase("exit", prev, engine); err != nil {
		fmt.Printf("agent: entity=%v script onExit error: %v\n", ctx.Entity, err)
		return
	}

	ctx.State.Current = rt.pending
	rt.pending = ""

	if err := rt.runPhase("enter", ctx.State.Current, engine); err != nil {
		fmt.Printf("agent: entity=%v script onEnter error: %v\n", ctx.Entity, err)
	}
}

func (s *AgentSystem) getScriptRuntime(ent ecs.Entity, spec *component.AgentFSMSpec) (*agentScriptRuntime, error) {
	if s == nil || spec == nil || !spec.ScriptLifecycle || strings.TrimSpace(spec.ScriptPath) == "" {
		return nil, fmt.Errorf("invalid scripted FSM spec")
	}
	if s.scriptCache == nil {
		s.scriptCache = map[ecs.Entity]*agentScriptRuntime{}
	}

	if rt, ok := s.scriptCache[ent]; ok && rt != nil && rt.scriptPath == spec.ScriptPath {
		return rt, nil
	}

	scriptBytes, err := prefabs.LoadScript(spec.ScriptPath)
	if err != nil {
		return nil, err
	}

	src := string(scriptBytes) + "\n" + agentLifecycleDispatchScript
	script := tengo.NewScript([]byte(src))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__current_state", "")

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	rt := &agentScriptRuntime{
		scriptPath: spec.ScriptPath,
		compiled:   compiled,
		stateData:  &tengo.Map{Value: map[string]tengo.Object{}},
		initial:    component.StateIdle,
	}

	// Resolve optional initial state from script global `initial_state`.
	noop := &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	if err := rt.runPhase("noop", rt.initial, noop); err != nil {
		return nil, err
	}
	if compiled.IsDefined("initial_state") {
		initial := strings.TrimSpace(compiled.Get("initial_state").String())
		if initial != "" {
			rt.initial = component.StateID(initial)
		}
	}

	s.scriptCache[ent] = rt
	return rt, nil
}

func (rt *agentScriptRuntime) runPhase(phase string, current component.StateID, engine *tengo.ImmutableMap) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if engine == nil {
		engine = &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	}
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	if err := rt.compiled.Set("__current_state", string(current)); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func buildAgentScriptEngine(ctx *AgentActionContext, rt *agentScriptRuntime, eventSet map[string]bool) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["transition"] = &tengo.UserFunction{Name: "transition", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if rt == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if name == "" {
			return tengo.FalseValue, nil
		}
		rt.pending = component.StateID(name)
		return tengo.TrueValue, nil
	}}

	values["emit"] = &tengo.UserFunction{Name: "emit", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || ctx.EnqueueEvent == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if name == "" {
			return tengo.FalseValue, nil
		}
		ctx.EnqueueEvent(component.EventID(name))
		return tengo.TrueValue, nil
	}}

	values["event"] = &tengo.UserFunction{Name: "event", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if name != "" && eventSet[name] {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["consume_event"] = &tengo.UserFunction{Name: "consume_event", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if name != "" && eventSet[name] {
			delete(eventSet, name)
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["get_position"] = &tengo.UserFunction{Name: "get_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || ctx.Transform == nil {
			return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: 0}, &tengo.Float{Value: 0}}}, nil
		}
		return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: ctx.Transform.X}, &tengo.Float{Value: ctx.Transform.Y}}}, nil
	}}

	values["get_target_position"] = &tengo.UserFunction{Name: "get_target_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || !ctx.TargetAlive {
			return tengo.UndefinedValue, nil
		}
		return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: ctx.TargetX}, &tengo.Float{Value: ctx.TargetY}}}, nil
	}}

	values["target_visible"] = &tengo.UserFunction{Name: "target_visible", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx != nil && ctx.Perception != nil && ctx.Perception.TargetVisible {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["set_intent"] = &tengo.UserFunction{Name: "set_intent", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || ctx.SetIntent == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		x, okX := tengo.ToFloat64(args[0])
		y, okY := tengo.ToFloat64(args[1])
		if !okX || !okY {
			return tengo.FalseValue, nil
		}
		ctx.SetIntent(x, y)
		return tengo.TrueValue, nil
	}}

	for name, maker := range actionRegistry {
		actionName := name
		makeAction := maker
		values[actionName] = &tengo.UserFunction{Name: actionName, Value: func(args ...tengo.Object) (tengo.Object, error) {
			if ctx == nil {
				return tengo.FalseValue, nil
			}
			var arg any
			if len(args) > 0 {
				arg = objectToAny(args[0])
			}
			makeAction(arg)(ctx)
			return tengo.TrueValue, nil
		}}
	}

	for name, maker := range transitionRegistry {
		transitionName := name
		makeTransition := maker
		values[transitionName] = &tengo.UserFunction{Name: transitionName, Value: func(args ...tengo.Object) (tengo.Object, error) {
			if ctx == nil {
				return tengo.FalseValue, nil
			}
			var arg any
			if len(args) > 0 {
				arg = objectToAny(args[0])
			}
			if makeTransition(arg)(ctx) {
				return tengo.TrueValue, nil
			}
			return tengo.FalseValue, nil
		}}
	}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
