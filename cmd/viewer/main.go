// Command viewer is a terminal client. It logs in, rebuilds the map from the
// replicated seed and lets the player walk around with the arrow keys.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"shiftgrove/server/client"
	"shiftgrove/server/config"
	"shiftgrove/server/network"
)

var keyDirections = map[tcell.Key]string{
	tcell.KeyUp:    "north",
	tcell.KeyDown:  "south",
	tcell.KeyLeft:  "west",
	tcell.KeyRight: "east",
}

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "server websocket URL")
	username := flag.String("name", "Survivor", "player name")
	mapConfig := flag.String("map", "", "map config YAML; must match the server")
	logFile := flag.String("log", "", "log file (default: discard)")
	flag.Parse()

	// The terminal is owned by tcell, so logs go to a file or nowhere
	log.SetOutput(io.Discard)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if err := run(*url, *username, *mapConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(url, username, mapConfig string) error {
	cfg, err := config.LoadMapConfig(mapConfig)
	if err != nil {
		return err
	}

	conn, err := network.Dial(url)
	if err != nil {
		return fmt.Errorf("connect %s: %w", url, err)
	}
	defer conn.Close()

	session := client.NewSession(cfg)
	session.Attach(conn)
	go conn.WritePump()
	go conn.ReadPump(session)

	if err := session.Login(username); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	current, err := session.WaitForMap(ctx)
	cancel()
	if err != nil {
		if serr := session.Err(); serr != nil {
			return serr
		}
		return fmt.Errorf("no map from server: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if m, ok := session.Map().Get(); ok {
			current = m
		}
		status := fmt.Sprintf(" %s seed=%d players=%d", current.Seed.World, current.Seed.Seed, len(session.Players()))
		if session.BossActive() {
			status += "  BOSS!"
		}
		draw(screen, current.Grid, cfg, session.Players(), session.PlayerID(), status)

		select {
		case <-conn.Done():
			return fmt.Errorf("disconnected")
		case <-ticker.C:
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
				if dir, ok := keyDirections[ev.Key()]; ok {
					session.Move(dir)
				}
			}
		}
	}
}
