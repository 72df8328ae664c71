package shape

import (
	"fmt"

	"goshapes/internal/domain/board"
)

const (
	LabelPass    = "Pass"
	LabelAtari   = "Atari"
	LabelFill    = "Fill"
	LabelConnect = "Connect"
	LabelTengen  = "Tengen"
	LabelHoshi   = "Hoshi"
)

// Interpret называет только что сыгранный в v ход. Пустая строка означает ход без названия.
func (l *Library) Interpret(b *board.Board, v board.Vertex) string {
	if !b.Has(v) {
		return LabelPass
	}

	sign := b.Get(v)
	neighbors := b.Neighbors(v)

	for _, n := range neighbors {
		if b.Get(n) == -sign && len(b.Liberties(n)) == 1 {
			return LabelAtari
		}
	}

	friendly := 0
	for _, n := range neighbors {
		if b.Get(n) == sign {
			friendly++
		}
	}
	if friendly == len(neighbors) {
		return LabelFill
	}
	if friendly >= 2 {
		return LabelConnect
	}

	for _, s := range l.Shapes() {
		if _, ok := ShapeMatch(s, b, v); ok {
			return s.Name
		}
	}

	if b.IsTengen(v) {
		return LabelTengen
	}

	// расстояние до краёв в привычной нумерации с единицы
	canonical := b.CanonicalVertex(v)
	d1, d2 := canonical.X+1, canonical.Y+1

	if !(d1 == 4 && d2 == 4) {
		for _, h := range b.HandicapPlacement(9) {
			if h == v {
				return LabelHoshi
			}
		}
	}

	if d2 <= 6 {
		return fmt.Sprintf("%d-%d Point", d1, d2)
	}

	return ""
}
