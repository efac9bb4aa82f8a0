package system

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

var stateColors = map[component.StateID]color.RGBA{
	component.StateIdle:   {R: 0x88, G: 0x88, B: 0x88, A: 0xff},
	component.StatePatrol: {R: 0x4c, G: 0xaf, B: 0x50, A: 0xff},
	component.StateChase:  {R: 0xff, G: 0x98, B: 0x00, A: 0xff},
	component.StateAttack: {R: 0xf4, G: 0x43, B: 0x36, A: 0xff},
	component.StateDead:   {R: 0x37, G: 0x47, B: 0x4f, A: 0xff},
}

var (
	playerColor = color.RGBA{R: 0x42, G: 0xa5, B: 0xf5, A: 0xff}
	sentryColor = color.RGBA{R: 0xab, G: 0x47, B: 0xbc, A: 0xff}
	wallColor   = color.RGBA{R: 0x26, G: 0x32, B: 0x38, A: 0xff}
	routeColor  = color.RGBA{R: 0x4c, G: 0xaf, B: 0x50, A: 0x60}
	sightColor  = color.RGBA{R: 0xff, G: 0xeb, B: 0x3b, A: 0x80}
)

// RenderSystem draws the debug view: walls, patrol routes, agents colored
// by state, facing ticks, and vision rays. It is not part of the scheduler
// since drawing needs the screen.
type RenderSystem struct {
	walls []ecs.Wall
}

func NewRenderSystem(walls []ecs.Wall) *RenderSystem {
	return &RenderSystem{walls: walls}
}

func (s *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if s == nil || w == nil || screen == nil {
		return
	}

	for _, wall := range s.walls {
		vector.DrawFilledRect(screen, float32(wall.X), float32(wall.Y), float32(wall.W), float32(wall.H), wallColor, false)
	}

	ecs.ForEach2(w, component.PatrolRouteComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, route *component.PatrolRoute, _ *component.Transform) {
		for _, p := range route.Points {
			vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), 3, routeColor, true)
		}
	})

	ecs.ForEach2(w, component.AgentComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, agent *component.Agent, t *component.Transform) {
		radius := 12.0
		if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok && pb.Radius > 0 {
			radius = pb.Radius
		}

		fill := sentryColor
		if st, ok := ecs.Get(w, e, component.AgentStateComponent.Kind()); ok {
			if c, ok := stateColors[st.Current]; ok {
				fill = c
			}
		}
		vector.DrawFilledCircle(screen, float32(t.X), float32(t.Y), float32(radius), fill, true)

		// facing tick
		fx := t.X + math.Cos(t.Rotation)*(radius+6)
		fy := t.Y + math.Sin(t.Rotation)*(radius+6)
		vector.StrokeLine(screen, float32(t.X), float32(t.Y), float32(fx), float32(fy), 2, color.White, true)

		if p, ok := ecs.Get(w, e, component.PerceptionComponent.Kind()); ok && p.TargetVisible {
			vector.StrokeLine(screen, float32(t.X), float32(t.Y), float32(p.TargetX), float32(p.TargetY), 1, sightColor, true)
		}

		if h, ok := ecs.Get(w, e, component.HealthComponent.Kind()); ok && h.Max > 0 {
			frac := h.Current / h.Max
			barW := radius * 2
			vector.DrawFilledRect(screen, float32(t.X-radius), float32(t.Y-radius-8), float32(barW), 3, color.RGBA{A: 0xaa}, false)
			vector.DrawFilledRect(screen, float32(t.X-radius), float32(t.Y-radius-8), float32(barW*frac), 3, color.RGBA{R: 0xe5, G: 0x39, B: 0x35, A: 0xff}, false)
		}
	})

	ecs.ForEach2(w, component.PlayerTagComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.PlayerTag, t *component.Transform) {
		vector.DrawFilledCircle(screen, float32(t.X), float32(t.Y), 10, playerColor, true)
	})
}
