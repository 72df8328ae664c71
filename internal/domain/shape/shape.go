// Package shape распознаёт известные местные и угловые формы по позиции.
package shape

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"goshapes/internal/domain/sgf"
	"goshapes/internal/errors"
)

// TypeCorner: форма привязана к угловым пунктам самой доски.
const TypeCorner = "corner"

//go:embed shapes.json
var defaultShapes []byte

// Point: вершина формы. Sign: -1 камень соперника, 0 пусто, 1 свой камень.
type Point struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Sign int `json:"sign"`
}

type Shape struct {
	Name     string  `json:"name"`
	Size     int     `json:"size,omitempty"` // 0: любой размер
	Type     string  `json:"type,omitempty"`
	Anchors  []Point `json:"anchors"`
	Vertices []Point `json:"vertices"`
}

// Library: упорядоченный каталог форм. Порядок важен: побеждает первое совпадение.
// После загрузки не меняется.
type Library struct {
	shapes []Shape
}

func NewLibrary(shapes []Shape) (*Library, error) {
	for i := range shapes {
		if err := shapes[i].validate(); err != nil {
			return nil, fmt.Errorf("shape #%d: %w", i, err)
		}
	}
	copied := make([]Shape, len(shapes))
	copy(copied, shapes)
	return &Library{shapes: copied}, nil
}

// Default: встроенный каталог.
func Default() (*Library, error) {
	return ParseJSON(defaultShapes)
}

// Load читает каталог из файла; .sgf разбирается как SGF, остальное как JSON.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".sgf") {
		return ParseSGF(string(data))
	}
	return ParseJSON(data)
}

func (l *Library) Shapes() []Shape {
	if l == nil {
		return nil
	}
	return l.shapes
}

func (l *Library) Len() int {
	return len(l.Shapes())
}

func (l *Library) Find(name string) (Shape, bool) {
	for _, s := range l.Shapes() {
		if s.Name == name {
			return s, true
		}
	}
	return Shape{}, false
}

type shapeRecord struct {
	Name     string   `json:"name"`
	Size     string   `json:"size,omitempty"`
	Type     string   `json:"type,omitempty"`
	Anchors  [][3]int `json:"anchors"`
	Vertices [][3]int `json:"vertices"`
}

// ParseJSON разбирает каталог в формате [{"name", "anchors": [[x,y,s]], "vertices": [...]}].
func ParseJSON(data []byte) (*Library, error) {
	var records []shapeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedShape, err)
	}

	shapes := make([]Shape, 0, len(records))
	for i, r := range records {
		if r.Anchors == nil || r.Vertices == nil {
			return nil, fmt.Errorf("%w: shape #%d %q lacks anchors or vertices", errors.ErrMalformedShape, i, r.Name)
		}
		s := Shape{
			Name:     r.Name,
			Type:     r.Type,
			Anchors:  toPoints(r.Anchors),
			Vertices: toPoints(r.Vertices),
		}
		if r.Size != "" {
			size, err := strconv.Atoi(r.Size)
			if err != nil {
				return nil, fmt.Errorf("%w: shape #%d %q has size %q", errors.ErrMalformedShape, i, r.Name, r.Size)
			}
			s.Size = size
		}
		shapes = append(shapes, s)
	}

	return NewLibrary(shapes)
}

// ParseSGF читает каталог форм из SGF: каждая вариация корня задаёт одну форму.
// MA задаёт якоря, AB/AW/CR свои, чужие и пустые пункты, N название,
// C хранит дополнительные поля вида "size: 19, type: corner".
func ParseSGF(text string) (*Library, error) {
	collection, err := sgf.Parse(text)
	if err != nil {
		return nil, err
	}

	shapes := make([]Shape, 0, len(collection.Root.Children))
	for i, tree := range collection.Root.Children {
		node := tree.Nodes[0]
		s, err := shapeFromNode(node)
		if err != nil {
			return nil, fmt.Errorf("shape #%d: %w", i, err)
		}
		shapes = append(shapes, s)
	}

	return NewLibrary(shapes)
}

func shapeFromNode(node sgf.Node) (Shape, error) {
	if !node.Has("N") || !node.Has("MA") {
		return Shape{}, fmt.Errorf("%w: N and MA are required", errors.ErrMalformedShape)
	}

	points := make(map[string][][2]int, 4)
	for _, key := range []string{"MA", "AB", "AW", "CR"} {
		expanded, err := sgf.ExpandPoints(node.Properties[key])
		if err != nil {
			return Shape{}, fmt.Errorf("%w: %q %s: %w", errors.ErrMalformedShape, node.Get("N"), key, err)
		}
		points[key] = expanded
	}

	black := make(map[[2]int]bool)
	for _, p := range points["AB"] {
		black[p] = true
	}

	s := Shape{Name: node.Get("N")}
	for _, p := range points["MA"] {
		sign := -1
		if black[p] {
			sign = 1
		}
		s.Anchors = append(s.Anchors, Point{X: p[0], Y: p[1], Sign: sign})
	}

	s.Vertices = make([]Point, 0)
	for i, key := range []string{"AW", "CR", "AB"} {
		for _, p := range points[key] {
			s.Vertices = append(s.Vertices, Point{X: p[0], Y: p[1], Sign: i - 1})
		}
	}

	if comment := strings.TrimSpace(node.Get("C")); comment != "" {
		for _, field := range strings.Split(comment, ", ") {
			key, value, ok := strings.Cut(field, ": ")
			if !ok {
				continue
			}
			switch key {
			case "size":
				size, err := strconv.Atoi(value)
				if err != nil {
					return Shape{}, fmt.Errorf("%w: %q has size %q", errors.ErrMalformedShape, s.Name, value)
				}
				s.Size = size
			case "type":
				s.Type = value
			}
		}
	}

	return s, nil
}

func (s *Shape) validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("%w: empty name", errors.ErrMalformedShape)
	case len(s.Anchors) == 0:
		return fmt.Errorf("%w: %q has no anchors", errors.ErrMalformedShape, s.Name)
	case s.Vertices == nil:
		return fmt.Errorf("%w: %q has no vertices", errors.ErrMalformedShape, s.Name)
	case s.Type != "" && s.Type != TypeCorner:
		return fmt.Errorf("%w: %q has unknown type %q", errors.ErrMalformedShape, s.Name, s.Type)
	case s.Size < 0:
		return fmt.Errorf("%w: %q has negative size", errors.ErrMalformedShape, s.Name)
	}

	for _, a := range s.Anchors {
		if a.Sign != 1 && a.Sign != -1 {
			return fmt.Errorf("%w: %q anchor (%d, %d) must hold a stone", errors.ErrMalformedShape, s.Name, a.X, a.Y)
		}
	}
	for _, p := range s.Vertices {
		if p.Sign < -1 || p.Sign > 1 {
			return fmt.Errorf("%w: %q has sign %d at (%d, %d)", errors.ErrMalformedShape, s.Name, p.Sign, p.X, p.Y)
		}
	}
	return nil
}

func toPoints(raw [][3]int) []Point {
	points := make([]Point, 0, len(raw))
	for _, r := range raw {
		points = append(points, Point{X: r[0], Y: r[1], Sign: r[2]})
	}
	return points
}
