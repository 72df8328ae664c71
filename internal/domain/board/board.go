package board

import (
	"fmt"
	"strconv"
	"strings"

	"goshapes/internal/errors"
)

// Sign описывает пересечение: пусто, чёрный или белый камень.
type Sign int8

const (
	White Sign = -1
	Empty Sign = 0
	Black Sign = 1
)

// SignOf приводит любое положительное число к Black, отрицательное к White.
func SignOf(n int) Sign {
	switch {
	case n > 0:
		return Black
	case n < 0:
		return White
	}
	return Empty
}

func (s Sign) Opponent() Sign {
	return -s
}

func (s Sign) String() string {
	switch s {
	case Black:
		return "B"
	case White:
		return "W"
	}
	return "."
}

// index возвращает номер счётчика пленных для цвета: 0 чёрные, 1 белые.
func (s Sign) index() int {
	if s > 0 {
		return 0
	}
	return 1
}

type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pass: вершина вне доски, так кодируется пас.
var Pass = Vertex{X: -1, Y: -1}

const alpha = "ABCDEFGHJKLMNOPQRSTUVWXYZ"

// Board: неизменяемая позиция. Все ходы возвращают новую доску.
type Board struct {
	width    int
	height   int
	grid     []Sign
	captures [2]int
}

func New(width, height int) (*Board, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", errors.ErrBoardSize, width, height)
	}
	return &Board{
		width:  width,
		height: height,
		grid:   make([]Sign, width*height),
	}, nil
}

func NewSquare(size int) (*Board, error) {
	return New(size, size)
}

// Setup расставляет камни без снятия пленных (форы, тестовые позиции).
func (b *Board) Setup(stones map[Vertex]Sign) *Board {
	result := b.Clone()
	for v, s := range stones {
		if result.Has(v) {
			result.set(v, SignOf(int(s)))
		}
	}
	return result
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

func (b *Board) IsSquare() bool {
	return b.width == b.height
}

func (b *Board) Has(v Vertex) bool {
	return 0 <= v.X && v.X < b.width && 0 <= v.Y && v.Y < b.height
}

// Get возвращает Empty для вершин вне доски.
func (b *Board) Get(v Vertex) Sign {
	if !b.Has(v) {
		return Empty
	}
	return b.grid[v.Y*b.width+v.X]
}

func (b *Board) set(v Vertex, s Sign) {
	b.grid[v.Y*b.width+v.X] = s
}

// Captures: сколько камней снял игрок sign.
func (b *Board) Captures(sign Sign) int {
	if sign == Empty {
		return 0
	}
	return b.captures[sign.index()]
}

func (b *Board) Clone() *Board {
	grid := make([]Sign, len(b.grid))
	copy(grid, b.grid)
	return &Board{
		width:    b.width,
		height:   b.height,
		grid:     grid,
		captures: b.captures,
	}
}

// Diff возвращает вершины, в которых позиции отличаются.
func (b *Board) Diff(other *Board) []Vertex {
	result := make([]Vertex, 0)
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			v := Vertex{x, y}
			if b.Get(v) != other.Get(v) {
				result = append(result, v)
			}
		}
	}
	return result
}

// Neighbors возвращает до четырёх соседей внутри доски.
func (b *Board) Neighbors(v Vertex) []Vertex {
	if !b.Has(v) {
		return []Vertex{}
	}
	result := make([]Vertex, 0, 4)
	for _, n := range allNeighbors(v) {
		if b.Has(n) {
			result = append(result, n)
		}
	}
	return result
}

func allNeighbors(v Vertex) [4]Vertex {
	return [4]Vertex{{v.X - 1, v.Y}, {v.X + 1, v.Y}, {v.X, v.Y - 1}, {v.X, v.Y + 1}}
}

func (b *Board) Distance(v, w Vertex) int {
	return abs(v.X-w.X) + abs(v.Y-w.Y)
}

// CanonicalVertex: расстояния до ближайших краёв, по возрастанию.
func (b *Board) CanonicalVertex(v Vertex) Vertex {
	if !b.Has(v) {
		return Vertex{-1, -1}
	}
	dx := min(v.X, b.width-v.X-1)
	dy := min(v.Y, b.height-v.Y-1)
	return Vertex{min(dx, dy), max(dx, dy)}
}

func (b *Board) DistanceToGround(v Vertex) int {
	return b.CanonicalVertex(v).X
}

// VertexToCoord переводит вершину в нотацию вида "D4" (без буквы I, ряды сверху вниз).
func (b *Board) VertexToCoord(v Vertex) (string, bool) {
	if !b.Has(v) || v.X >= len(alpha) {
		return "", false
	}
	return string(alpha[v.X]) + strconv.Itoa(b.height-v.Y), true
}

func (b *Board) CoordToVertex(coord string) (Vertex, error) {
	coord = strings.TrimSpace(coord)
	if len(coord) < 2 {
		return Pass, fmt.Errorf("%w: %q", errors.ErrInvalidCoordinate, coord)
	}
	x := strings.IndexByte(alpha, strings.ToUpper(coord[:1])[0])
	row, err := strconv.Atoi(coord[1:])
	if x < 0 || err != nil {
		return Pass, fmt.Errorf("%w: %q", errors.ErrInvalidCoordinate, coord)
	}
	v := Vertex{X: x, Y: b.height - row}
	if !b.Has(v) {
		return Pass, fmt.Errorf("%w: %q is off the %dx%d board", errors.ErrInvalidCoordinate, coord, b.width, b.height)
	}
	return v, nil
}

// String печатает доску в ASCII, строки сверху вниз.
func (b *Board) String() string {
	var builder strings.Builder
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if x > 0 {
				builder.WriteByte(' ')
			}
			builder.WriteString(b.Get(Vertex{x, y}).String())
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
