package main

import (
	"github.com/gdamore/tcell/v2"

	"shiftgrove/server/mapgen"
	"shiftgrove/server/messages"
)

var (
	styleDirt   = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleGrass  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleSmall  = tcell.StyleDefault.Foreground(tcell.ColorLightGreen)
	styleMedium = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleLarge  = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen).Bold(true)
	styleSelf   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleOther  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleStatus = tcell.StyleDefault.Reverse(true)
)

// cell picks the glyph for one map tile
func cell(grid *mapgen.Grid, cfg *mapgen.Config, x, y int) (rune, tcell.Style) {
	if !grid.Contains(x, y) {
		return ' ', tcell.StyleDefault
	}
	if deco := grid.Decoration.Get(x, y); deco != "" {
		switch cfg.TierOf(deco) {
		case mapgen.TierLarge:
			return '♣', styleLarge
		case mapgen.TierMedium:
			return '*', styleMedium
		default:
			return ',', styleSmall
		}
	}
	if grid.Ground.Get(x, y) == cfg.DirtFill {
		return '.', styleDirt
	}
	return '"', styleGrass
}

// view is a screen-sized window onto the map centered on a tile. North is up.
type view struct {
	width, height int
	centerX       int
	centerY       int
}

func (v view) toMap(sx, sy int) (int, int) {
	return v.centerX + sx - v.width/2, v.centerY - (sy - v.height/2)
}

func (v view) toScreen(x, y int) (int, int, bool) {
	sx := x - v.centerX + v.width/2
	sy := v.height/2 - (y - v.centerY)
	return sx, sy, sx >= 0 && sx < v.width && sy >= 0 && sy < v.height
}

// draw renders the map and players. The last screen row is the status line.
func draw(screen tcell.Screen, grid *mapgen.Grid, cfg *mapgen.Config, players []messages.PlayerView, self string, status string) {
	screen.Clear()
	w, h := screen.Size()
	if h < 2 {
		return
	}

	v := view{width: w, height: h - 1}
	for _, p := range players {
		if p.ID == self {
			v.centerX, v.centerY = p.X, p.Y
		}
	}

	for sy := 0; sy < v.height; sy++ {
		for sx := 0; sx < v.width; sx++ {
			x, y := v.toMap(sx, sy)
			r, style := cell(grid, cfg, x, y)
			screen.SetContent(sx, sy, r, nil, style)
		}
	}

	for _, p := range players {
		sx, sy, ok := v.toScreen(p.X, p.Y)
		if !ok {
			continue
		}
		if p.ID == self {
			screen.SetContent(sx, sy, '@', nil, styleSelf)
		} else {
			screen.SetContent(sx, sy, '&', nil, styleOther)
		}
	}

	for i, r := range []rune(status) {
		if i >= w {
			break
		}
		screen.SetContent(i, h-1, r, nil, styleStatus)
	}
	screen.Show()
}
