package main

import (
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	levelName := flag.String("level", "courtyard.yaml", "level spec in prefabs/ (yaml)")
	seed := flag.Int64("seed", 0, "patrol RNG seed (0 uses the clock)")
	debug := flag.Bool("debug", false, "log world events")
	watch := flag.Bool("watch", false, "hot-reload prefab specs and scripts on edit")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	game, err := NewGame(*levelName, *seed, *debug, *watch)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(int(game.level.Spec.Width), int(game.level.Spec.Height))
	ebiten.SetWindowTitle("nightwatch")
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
