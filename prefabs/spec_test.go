package prefabs

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/nightwatch/ecs/component"
)

func TestLoadEmbeddedAgentSpecs(t *testing.T) {
	cases := []struct {
		file   string
		name   string
		sentry bool
		mode   component.PatrolMode
		points int
	}{
		{"guard.yaml", "guard", false, component.PatrolLoop, 0},
		{"sentry.yaml", "sentry", true, component.PatrolPingPong, 3},
		{"skirmisher.yaml", "skirmisher", false, component.PatrolRandom, 0},
	}

	for _, c := range cases {
		t.Run(c.file, func(t *testing.T) {
			spec, err := LoadAgentSpec(c.file)
			if err != nil {
				t.Fatalf("LoadAgentSpec(%s): %v", c.file, err)
			}
			if spec.Name != c.name {
				t.Fatalf("expected name %q, got %q", c.name, spec.Name)
			}
			if spec.Sentry != c.sentry {
				t.Fatalf("expected sentry=%v", c.sentry)
			}

			route := spec.Route()
			if route.Mode != c.mode {
				t.Fatalf("expected mode %q, got %q", c.mode, route.Mode)
			}
			if len(route.Points) != c.points {
				t.Fatalf("expected %d authored points, got %d", c.points, len(route.Points))
			}
			if c.points > 0 && !route.Seeded {
				t.Fatalf("authored points should mark the route seeded")
			}
			if c.points == 0 && route.Seeded {
				t.Fatalf("an empty route must be seeded at runtime, not at load")
			}
		})
	}
}

func TestAgentSpecValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*AgentSpec)
		wantErr string
	}{
		{"valid", func(s *AgentSpec) {}, ""},
		{"missing_name", func(s *AgentSpec) { s.Name = "" }, "missing name"},
		{"unknown_patrol_mode", func(s *AgentSpec) { s.PatrolMode = "zigzag" }, "unknown patrol mode"},
		{"negative_speed", func(s *AgentSpec) { s.MoveSpeed = -1 }, "negative"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec := &AgentSpec{Name: "x", MoveSpeed: 10, PatrolMode: "loop"}
			c.mutate(spec)
			err := spec.Validate()
			if c.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), c.wantErr) {
				t.Fatalf("expected error containing %q, got %v", c.wantErr, err)
			}
		})
	}
}

func TestAgentSpecConversion(t *testing.T) {
	spec, err := LoadAgentSpec("guard.yaml")
	if err != nil {
		t.Fatalf("LoadAgentSpec: %v", err)
	}

	agent := spec.Agent()
	if agent.MoveSpeed != 80 || agent.DetectionRange != 160 || agent.AttackCooldown != 1.2 {
		t.Fatalf("tuning did not carry over: %+v", agent)
	}
	if agent.MemoryTime != 5 || agent.PatrolDwell != 1.0 {
		t.Fatalf("timers did not carry over: %+v", agent)
	}
}

func TestLoadLevelSpec(t *testing.T) {
	level, err := LoadLevelSpec("courtyard.yaml")
	if err != nil {
		t.Fatalf("LoadLevelSpec: %v", err)
	}
	if level.Width != 1280 || level.Height != 720 {
		t.Fatalf("unexpected bounds %vx%v", level.Width, level.Height)
	}
	if len(level.Walls) == 0 || len(level.PatrolMarkers) != 4 || len(level.Agents) != 3 {
		t.Fatalf("unexpected layout: %d walls, %d markers, %d agents",
			len(level.Walls), len(level.PatrolMarkers), len(level.Agents))
	}
	for _, a := range level.Agents {
		if a.Prefab == "" {
			t.Fatalf("agent placement missing prefab")
		}
	}
}

func TestLoadLevelSpecRejectsMissingBounds(t *testing.T) {
	if _, err := LoadLevelSpec("guard.yaml"); err == nil {
		t.Fatalf("agent spec is not a level, expected an error")
	}
}

func TestRawFSMSpecRoundTrip(t *testing.T) {
	src := `
initial: idle
states:
  idle:
    while:
      - stop:
  hunt:
    on_enter:
      - start_timer: 2.5
    while:
      - chase_target:
transitions:
  idle:
    - to: hunt
      on: sees_target
  hunt:
    - to: idle
      when: lost_target
`
	var raw RawFSM
	if err := yaml.Unmarshal([]byte(src), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	spec := raw.Spec()
	if spec.Initial != "idle" {
		t.Fatalf("expected initial idle, got %q", spec.Initial)
	}
	if len(spec.States) != 2 {
		t.Fatalf("expected 2 states, got %d", len(spec.States))
	}
	if len(spec.States["hunt"].OnEnter) != 1 {
		t.Fatalf("hunt on_enter lost: %+v", spec.States["hunt"])
	}
	edges := spec.Transitions["idle"]
	if len(edges) != 1 || edges[0]["to"] != "hunt" || edges[0]["on"] != "sees_target" {
		t.Fatalf("idle transitions lost: %+v", edges)
	}
}

func TestLoadScriptEmbedded(t *testing.T) {
	for _, name := range []string{"skirmisher.tengo", "scripts/skirmisher.tengo", "prefabs/scripts/skirmisher.tengo"} {
		data, err := LoadScript(name)
		if err != nil {
			t.Fatalf("LoadScript(%s): %v", name, err)
		}
		if !strings.Contains(string(data), "initial_state") {
			t.Fatalf("script content looks wrong for %s", name)
		}
	}
}
