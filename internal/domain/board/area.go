package board

import (
	"math"
)

// Unreachable: расстояние, когда путь до камня закрыт.
const Unreachable = math.MaxInt32

const influenceRadius = 6

// SignMap индексируется как [y][x].
type SignMap [][]Sign

func (m SignMap) Get(v Vertex) Sign {
	if v.Y < 0 || v.Y >= len(m) || v.X < 0 || v.X >= len(m[v.Y]) {
		return Empty
	}
	return m[v.Y][v.X]
}

func (b *Board) newSignMap() SignMap {
	m := make(SignMap, b.height)
	for y := range m {
		m[y] = make([]Sign, b.width)
	}
	return m
}

// AreaMap: точная принадлежность: пустая область достаётся цвету, только
// если её границу составляют камни одного цвета, иначе это дамэ.
func (b *Board) AreaMap() SignMap {
	m := b.newSignMap()
	done := make([]bool, len(b.grid))

	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			v := Vertex{x, y}
			if done[y*b.width+x] {
				continue
			}
			if s := b.Get(v); s != Empty {
				m[y][x] = s
				done[y*b.width+x] = true
				continue
			}

			region := b.Chain(v)
			owner := Empty
			neutral := false

		border:
			for _, c := range region {
				for _, n := range b.Neighbors(c) {
					s := b.Get(n)
					if s == Empty {
						continue
					}
					if owner == Empty {
						owner = s
					} else if owner != s {
						neutral = true
						break border
					}
				}
			}
			if neutral {
				owner = Empty
			}

			for _, c := range region {
				m[c.Y][c.X] = owner
				done[c.Y*b.width+c.X] = true
			}
		}
	}

	return m
}

// AreaEstimateMap дополняет AreaMap оценкой по расстоянию и влиянию.
func (b *Board) AreaEstimateMap() SignMap {
	m := b.AreaMap()

	pnn := b.NearestNeighborMap(Black)
	nnn := b.NearestNeighborMap(White)
	pim := b.InfluenceMap(Black)
	nim := b.InfluenceMap(White)

	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			if m[y][x] != Empty {
				continue
			}

			s := SignOf(nnn[y][x] - pnn[y][x])
			if s == Black && (pnn[y][x] > influenceRadius || math.Round(pim[y][x]) < 2) ||
				s == White && (nnn[y][x] > influenceRadius || math.Round(nim[y][x]) < 2) {
				s = Empty
			}

			m[y][x] = s
		}
	}

	// заделываем дыры и убираем области из одного пункта

	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			neighbors := b.Neighbors(Vertex{x, y})
			if len(neighbors) == 0 {
				continue
			}

			s := Empty
			if m[y][x] == Empty {
				s = m.Get(neighbors[0])
			}

			same := true
			for _, n := range neighbors {
				if m.Get(n) != s {
					same = false
					break
				}
			}
			if same {
				m[y][x] = s
			}
		}
	}

	return m
}

// NearestNeighborMap: длина пути до ближайшего камня sign через пустые
// пункты и свои камни. Строки и столбцы просматриваются в обе стороны.
func (b *Board) NearestNeighborMap(sign Sign) [][]int {
	m := make([][]int, b.height)
	for y := range m {
		m[y] = make([]int, b.width)
		for x := range m[y] {
			m[y][x] = Unreachable
		}
	}

	best := Unreachable
	relax := func(x, y int) {
		switch b.Get(Vertex{x, y}) {
		case sign:
			best = 0
		case Empty:
			if best < Unreachable {
				best++
			}
		default:
			best = Unreachable
		}
		best = min(best, m[y][x])
		m[y][x] = best
	}

	sweepColumn := func(x, y int) {
		relax(x, y)
		old := best
		for ny := y + 1; ny < b.height; ny++ {
			relax(x, ny)
		}
		best = old
		for ny := y - 1; ny >= 0; ny-- {
			relax(x, ny)
		}
		best = old
	}

	for y := 0; y < b.height; y++ {
		best = Unreachable
		for x := 0; x < b.width; x++ {
			sweepColumn(x, y)
		}
	}

	for y := b.height - 1; y >= 0; y-- {
		best = Unreachable
		for x := b.width - 1; x >= 0; x-- {
			sweepColumn(x, y)
		}
	}

	return m
}

type influenceStep struct {
	v     Vertex
	depth int
}

// InfluenceMap распространяет затухающее влияние от каждой цепочки sign на
// influenceRadius шагов. Пробы за краем доски отражаются обратно и дают 2.
func (b *Board) InfluenceMap(sign Sign) [][]float64 {
	m := make([][]float64, b.height)
	for y := range m {
		m[y] = make([]float64, b.width)
	}
	done := make([]bool, len(b.grid))

	cast := func(chain []Vertex, distance int) {
		queue := make([]influenceStep, 0, len(chain))
		for _, c := range chain {
			queue = append(queue, influenceStep{v: c})
		}
		visited := make(map[Vertex]bool)

		for len(queue) > 0 {
			step := queue[0]
			queue = queue[1:]

			w, ok := b.mirror(step.v)
			if ok {
				if b.Has(step.v) {
					m[w.Y][w.X] += 1.5 / (float64(step.depth)/float64(distance)*6 + 1)
				} else {
					m[w.Y][w.X] += 2
				}
			}

			if step.depth+1 > distance {
				continue
			}
			for _, n := range allNeighbors(step.v) {
				if visited[n] || (b.Has(n) && b.Get(n) == -sign) {
					continue
				}
				visited[n] = true
				queue = append(queue, influenceStep{v: n, depth: step.depth + 1})
			}
		}
	}

	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			v := Vertex{x, y}
			if b.Get(v) != sign || done[y*b.width+x] {
				continue
			}
			chain := b.Chain(v)
			for _, c := range chain {
				done[c.Y*b.width+c.X] = true
			}
			cast(chain, influenceRadius)
		}
	}

	return m
}

// mirror отражает вершину вне доски через край обратно на доску.
func (b *Board) mirror(v Vertex) (Vertex, bool) {
	fold := func(z, size int) int {
		for i := 0; i < 4 && (z < 0 || z >= size); i++ {
			if z < 0 {
				z = -z - 1
			} else {
				z = 2*size - z - 1
			}
		}
		return z
	}
	w := Vertex{fold(v.X, b.width), fold(v.Y, b.height)}
	return w, b.Has(w)
}

// Score: подсчёт по карте принадлежности. Индекс 0 чёрные, 1 белые.
type Score struct {
	Area      [2]int `json:"area"`
	Territory [2]int `json:"territory"`
	Captures  [2]int `json:"captures"`
}

func (b *Board) Score(areaMap SignMap) Score {
	score := Score{Captures: b.captures}

	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			sign := areaMap.Get(Vertex{x, y})
			if sign == Empty {
				continue
			}
			i := sign.index()
			score.Area[i]++
			if b.Get(Vertex{x, y}) == Empty {
				score.Territory[i]++
			}
		}
	}

	return score
}

// AreaResult: китайский счёт, положительный результат в пользу чёрных.
func (s Score) AreaResult(komi float64) float64 {
	return float64(s.Area[0]-s.Area[1]) - komi
}

// TerritoryResult: японский счёт: территория плюс пленные.
func (s Score) TerritoryResult(komi float64) float64 {
	return float64(s.Territory[0]+s.Captures[0]-s.Territory[1]-s.Captures[1]) - komi
}
