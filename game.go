package main

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/ecs/system"
	"github.com/milk9111/nightwatch/prefabs"
)

const (
	playerMoveSpeed     = 140.0
	playerAttackRange   = 48.0
	playerAttackDamage  = 10.0
	playerAttackRecover = 0.4
)

type Game struct {
	level     *Level
	scheduler *ecs.Scheduler
	render    *system.RenderSystem
	watcher   *prefabs.Watcher
	debug     bool

	attackRecover float64
}

func NewGame(levelName string, seed int64, debug, watch bool) (*Game, error) {
	lvl, err := BuildLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("game: build level %q: %w", levelName, err)
	}

	g := &Game{
		level:     lvl,
		scheduler: NewSchedulerForLevel(lvl, rand.New(rand.NewSource(seed))),
		render:    system.NewRenderSystem(lvl.Walls),
		debug:     debug,
	}

	if watch {
		w, err := prefabs.NewWatcher("prefabs", "prefabs/scripts")
		if err != nil {
			log.Printf("game: prefab watcher disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) Update() error {
	g.applyReloads()
	g.readPlayerInput()
	g.scheduler.Update(g.level.World)
	g.drainWorldEvents()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render.Draw(g.level.World, screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.level.Spec.Width), int(g.level.Spec.Height)
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) readPlayerInput() {
	w := g.level.World
	player := g.level.Player
	if !ecs.IsAlive(w, player) {
		return
	}

	var dx, dy float64
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy += 1
	}

	if mag := math.Hypot(dx, dy); mag > 0 {
		dx = dx / mag * playerMoveSpeed
		dy = dy / mag * playerMoveSpeed
	}
	if intent, ok := ecs.Get(w, player, component.MoveIntentComponent.Kind()); ok {
		intent.X = dx
		intent.Y = dy
	}

	if g.attackRecover > 0 {
		g.attackRecover -= system.TickSeconds
	}
	if ebiten.IsKeyPressed(ebiten.KeySpace) && g.attackRecover <= 0 {
		g.playerAttack()
		g.attackRecover = playerAttackRecover
	}
}

// playerAttack strikes the nearest agent inside melee range.
func (g *Game) playerAttack() {
	w := g.level.World
	pt, ok := ecs.Get(w, g.level.Player, component.TransformComponent.Kind())
	if !ok {
		return
	}

	var nearest ecs.Entity
	nearestDist := playerAttackRange
	found := false
	ecs.ForEach2(w, component.AgentComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.Agent, t *component.Transform) {
		d := math.Hypot(t.X-pt.X, t.Y-pt.Y)
		if d <= nearestDist {
			nearest = e
			nearestDist = d
			found = true
		}
	})
	if found {
		system.TakeDamage(w, nearest, playerAttackDamage)
	}
}

func (g *Game) drainWorldEvents() {
	for _, ev := range g.level.World.Events().Drain() {
		if g.debug {
			log.Printf("event: %s %+v", ev.Type, ev.Data)
		}
	}
}

// applyReloads consumes watcher notifications: yaml edits re-tune live
// agents spawned from that prefab, tengo edits recompile scripted FSMs.
func (g *Game) applyReloads() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.applyReload(path)
		case err, ok := <-g.watcher.Errors:
			if ok && err != nil {
				log.Printf("game: prefab watcher: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) applyReload(path string) {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".tengo") {
		log.Printf("game: script %s changed, recompiling scripted agents", base)
		g.level.Agents.ReloadScripts()
		return
	}

	if _, tracked := g.level.agentsByPrefab[base]; !tracked {
		return
	}
	spec, err := prefabs.LoadAgentSpec(base)
	if err != nil {
		log.Printf("game: reload %s: %v", base, err)
		return
	}
	log.Printf("game: prefab %s changed, re-tuning %d agent(s)", base, len(g.level.agentsByPrefab[base]))
	g.level.ApplyAgentSpec(base, spec)
}
