package shape

import (
	"goshapes/internal/domain/board"
)

// Match: номер симметрии (0..7) и признак обращённых цветов.
type Match struct {
	Symmetry int  `json:"symmetry"`
	Inverted bool `json:"inverted"`
}

// Symmetries: восемь образов смещения под группой симметрий квадрата.
func Symmetries(v board.Vertex) [8]board.Vertex {
	x, y := v.X, v.Y
	return [8]board.Vertex{
		{X: x, Y: y}, {X: -x, Y: y}, {X: x, Y: -y}, {X: -x, Y: -y},
		{X: y, Y: x}, {X: -y, Y: x}, {X: y, Y: -x}, {X: -y, Y: -x},
	}
}

// BoardSymmetries: образы вершины на доске, отражённые по модулю width-1 и height-1.
func BoardSymmetries(b *board.Board, v board.Vertex) [8]board.Vertex {
	mx, my := b.Width()-1, b.Height()-1
	result := Symmetries(v)
	for i, s := range result {
		result[i] = board.Vertex{X: mod(s.X, mx), Y: mod(s.Y, my)}
	}
	return result
}

func mod(x, m int) int {
	if m == 0 {
		return 0
	}
	return (x%m + m) % m
}

// CornerMatch проверяет список точек против всех восьми образов доски, прямо
// и с обращёнными цветами. Возвращает первую уцелевшую гипотезу.
func CornerMatch(points []Point, b *board.Board) (Match, bool) {
	var hypotheses, inverted [8]bool
	for i := range hypotheses {
		hypotheses[i], inverted[i] = true, true
	}

	for _, p := range points {
		representatives := BoardSymmetries(b, board.Vertex{X: p.X, Y: p.Y})
		alive := false

		for i, r := range representatives {
			s := b.Get(r)
			if hypotheses[i] && s != board.Sign(p.Sign) {
				hypotheses[i] = false
			}
			if inverted[i] && s != board.Sign(-p.Sign) {
				inverted[i] = false
			}
			alive = alive || hypotheses[i] || inverted[i]
		}

		if !alive {
			return Match{}, false
		}
	}

	for i := range hypotheses {
		if hypotheses[i] {
			return Match{Symmetry: i}, true
		}
	}
	for i := range inverted {
		if inverted[i] {
			return Match{Symmetry: i, Inverted: true}, true
		}
	}
	return Match{}, false
}

// ShapeMatch пробует форму в предположении, что v является одним из её якорей.
func ShapeMatch(s Shape, b *board.Board, v board.Vertex) (Match, bool) {
	if !b.Has(v) {
		return Match{}, false
	}
	sign := b.Get(v)
	if sign == board.Empty {
		return Match{}, false
	}

	if s.Size > 0 && (!b.IsSquare() || b.Width() != s.Size) {
		return Match{}, false
	}

	for _, anchor := range s.Anchors {
		if s.Type == TypeCorner && !isBoardImage(b, board.Vertex{X: anchor.X, Y: anchor.Y}, v) {
			continue
		}

		var hypotheses [8]bool
		for k := range hypotheses {
			hypotheses[k] = true
		}
		found := 0

		for _, p := range s.Vertices {
			diff := board.Vertex{X: p.X - anchor.X, Y: p.Y - anchor.Y}
			want := board.Sign(p.Sign * int(sign) * anchor.Sign)

			for k, d := range Symmetries(diff) {
				if !hypotheses[k] {
					continue
				}
				w := board.Vertex{X: v.X + d.X, Y: v.Y + d.Y}
				if !b.Has(w) || b.Get(w) != want {
					hypotheses[k] = false
				}
			}

			found = firstTrue(hypotheses)
			if found < 0 {
				break
			}
		}

		if found >= 0 {
			return Match{Symmetry: found, Inverted: int(sign) != anchor.Sign}, true
		}
	}

	return Match{}, false
}

func isBoardImage(b *board.Board, anchor, v board.Vertex) bool {
	for _, w := range BoardSymmetries(b, anchor) {
		if w == v {
			return true
		}
	}
	return false
}

func firstTrue(hypotheses [8]bool) int {
	for i, h := range hypotheses {
		if h {
			return i
		}
	}
	return -1
}
