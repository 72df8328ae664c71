package sgf

import (
	"fmt"

	"goshapes/internal/errors"
)

// GameTree представляет одно дерево в SGF (узел + варианты)
type GameTree struct {
	Nodes    []Node      // Последовательность узлов (основная линия)
	Children []*GameTree // Варианты (вариативные линии)
}

// Node представляет один узел SGF (набор свойств, таких как B[pd], W[dd], C[...])
type Node struct {
	Properties map[string][]string // Свойства могут повторяться (например, AB[aa][bb])
}

// SGF представляет корневой элемент SGF-файла
type SGF struct {
	Root *GameTree
}

// Get возвращает первое значение свойства или пустую строку.
func (n Node) Get(key string) string {
	if values := n.Properties[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func (n Node) Has(key string) bool {
	_, ok := n.Properties[key]
	return ok
}

// PointToVertex переводит точку SGF ("pd") в координаты x, y от верхнего левого угла.
func PointToVertex(point string) (x, y int, ok bool) {
	if len(point) != 2 {
		return -1, -1, false
	}
	x, okX := letterIndex(point[0])
	y, okY := letterIndex(point[1])
	if !okX || !okY {
		return -1, -1, false
	}
	return x, y, true
}

// ExpandPoints раскрывает сжатые списки точек вида "aa:cc" в прямоугольник.
// Пустое значение пропускается, любая другая нераспознанная точка даёт ошибку.
func ExpandPoints(values []string) ([][2]int, error) {
	result := make([][2]int, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		from, to := value, value
		if len(value) == 5 && value[2] == ':' {
			from, to = value[:2], value[3:]
		}

		x1, y1, ok1 := PointToVertex(from)
		x2, y2, ok2 := PointToVertex(to)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: sgf point %q", errors.ErrInvalidCoordinate, value)
		}
		for x := min(x1, x2); x <= max(x1, x2); x++ {
			for y := min(y1, y2); y <= max(y1, y2); y++ {
				result = append(result, [2]int{x, y})
			}
		}
	}
	return result, nil
}

// letterIndex: a..z дают 0..25, A..Z дают 26..51.
func letterIndex(c byte) (int, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 26, true
	}
	return -1, false
}
