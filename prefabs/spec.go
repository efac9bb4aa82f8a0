package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/nightwatch/ecs/component"
)

type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// AgentSpec is the authored tuning for one agent prefab.
type AgentSpec struct {
	Name           string  `yaml:"name"`
	MoveSpeed      float64 `yaml:"move_speed"`
	RunSpeed       float64 `yaml:"run_speed"`
	RotationSpeed  float64 `yaml:"rotation_speed"`
	DetectionRange float64 `yaml:"detection_range"`
	AttackRange    float64 `yaml:"attack_range"`
	AttackCooldown float64 `yaml:"attack_cooldown"`
	AttackDamage   float64 `yaml:"attack_damage"`
	MemoryTime     float64 `yaml:"memory_time"`
	EyeOffsetY     float64 `yaml:"eye_offset_y"`
	PatrolDwell    float64 `yaml:"patrol_dwell"`

	Health float64 `yaml:"health"`
	Radius float64 `yaml:"radius"`

	// Sentry selects the perception-with-memory branch behavior instead of
	// the guard FSM.
	Sentry bool `yaml:"sentry"`

	// FSM names a registered state machine; Script points at a tengo
	// lifecycle script instead. Both empty means the built-in guard FSM.
	FSM    string `yaml:"fsm"`
	Script string `yaml:"script"`

	PatrolMode   string      `yaml:"patrol_mode"`
	PatrolPoints []PointSpec `yaml:"patrol_points"`
}

// Validate rejects specs the runtime would silently misbehave on. An
// unrecognized patrol mode is an authoring error, not a loop.
func (s *AgentSpec) Validate() error {
	if s == nil {
		return fmt.Errorf("prefabs: nil agent spec")
	}
	if s.Name == "" {
		return fmt.Errorf("prefabs: agent spec missing name")
	}
	if s.PatrolMode != "" && !component.KnownPatrolMode(component.PatrolMode(s.PatrolMode)) {
		return fmt.Errorf("prefabs: agent %q has unknown patrol mode %q (want loop, ping_pong, or random)", s.Name, s.PatrolMode)
	}
	if s.MoveSpeed < 0 || s.RunSpeed < 0 || s.DetectionRange < 0 || s.AttackRange < 0 {
		return fmt.Errorf("prefabs: agent %q has negative tuning values", s.Name)
	}
	return nil
}

// Agent converts the spec into the runtime tuning component.
func (s *AgentSpec) Agent() component.Agent {
	return component.Agent{
		MoveSpeed:      s.MoveSpeed,
		RunSpeed:       s.RunSpeed,
		RotationSpeed:  s.RotationSpeed,
		DetectionRange: s.DetectionRange,
		AttackRange:    s.AttackRange,
		AttackCooldown: s.AttackCooldown,
		AttackDamage:   s.AttackDamage,
		MemoryTime:     s.MemoryTime,
		EyeOffsetY:     s.EyeOffsetY,
		PatrolDwell:    s.PatrolDwell,
	}
}

// Route converts the authored patrol settings into a route component. The
// point list may be empty; the patrol system then seeds it from markers or
// the fallback circle.
func (s *AgentSpec) Route() component.PatrolRoute {
	mode := component.PatrolLoop
	if s.PatrolMode != "" {
		mode = component.PatrolMode(s.PatrolMode)
	}
	route := component.PatrolRoute{Mode: mode, Direction: 1}
	for _, p := range s.PatrolPoints {
		route.Points = append(route.Points, component.PathNode{X: p.X, Y: p.Y})
	}
	if len(route.Points) > 0 {
		route.Seeded = true
	}
	return route
}

type WallSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

type LevelAgentSpec struct {
	Prefab string    `yaml:"prefab"`
	Spawn  PointSpec `yaml:"spawn"`
}

// LevelSpec lays out a playable level: bounds, static walls, the player
// spawn, patrol markers, and which agent prefabs spawn where.
type LevelSpec struct {
	Name          string           `yaml:"name"`
	Width         float64          `yaml:"width"`
	Height        float64          `yaml:"height"`
	PlayerSpawn   PointSpec        `yaml:"player_spawn"`
	Walls         []WallSpec       `yaml:"walls"`
	PatrolMarkers []PointSpec      `yaml:"patrol_markers"`
	Agents        []LevelAgentSpec `yaml:"agents"`
}

// RawFSM mirrors the YAML shape of an authored finite state machine.
// Transition entries are {"to": state, "on": event} or
// {"to": state, "when": checker}.
type RawFSM struct {
	Initial     string                      `yaml:"initial"`
	States      map[string]RawState         `yaml:"states"`
	Transitions map[string][]map[string]any `yaml:"transitions"`
}

type RawState struct {
	OnEnter []map[string]any `yaml:"on_enter"`
	While   []map[string]any `yaml:"while"`
	OnExit  []map[string]any `yaml:"on_exit"`
}

// Spec converts the raw YAML FSM into the runtime-facing representation.
func (r RawFSM) Spec() component.AgentFSMSpec {
	spec := component.AgentFSMSpec{
		Initial:     r.Initial,
		States:      map[string]component.AgentFSMStateSpec{},
		Transitions: r.Transitions,
	}
	for name, raw := range r.States {
		spec.States[name] = component.AgentFSMStateSpec{
			OnEnter: raw.OnEnter,
			While:   raw.While,
			OnExit:  raw.OnExit,
		}
	}
	return spec
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadAgentSpec loads and validates an agent prefab.
func LoadAgentSpec(filename string) (*AgentSpec, error) {
	spec, err := LoadSpec[AgentSpec](filename)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// LoadLevelSpec loads a level layout.
func LoadLevelSpec(filename string) (*LevelSpec, error) {
	spec, err := LoadSpec[LevelSpec](filename)
	if err != nil {
		return nil, err
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("prefabs: level %s has no bounds", filename)
	}
	return &spec, nil
}
