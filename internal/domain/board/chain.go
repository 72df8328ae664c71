package board

// ConnectedComponent обходит в глубину все вершины, достижимые из start через
// соседей, удовлетворяющих pred. start входит в результат всегда.
func (b *Board) ConnectedComponent(start Vertex, pred func(Vertex) bool) []Vertex {
	if !b.Has(start) {
		return []Vertex{}
	}

	visited := make([]bool, len(b.grid))
	visited[start.Y*b.width+start.X] = true
	result := []Vertex{start}
	stack := []Vertex{start}

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, n := range b.Neighbors(v) {
			i := n.Y*b.width + n.X
			if visited[i] || !pred(n) {
				continue
			}
			visited[i] = true
			result = append(result, n)
			stack = append(stack, n)
		}
	}

	return result
}

// Chain: цепочка одного цвета с v. Для пустой вершины это пустая область.
func (b *Board) Chain(v Vertex) []Vertex {
	sign := b.Get(v)
	return b.ConnectedComponent(v, func(w Vertex) bool {
		return b.Get(w) == sign
	})
}

// RelatedChains: камни того же цвета, связанные через свои камни и пустые пункты.
func (b *Board) RelatedChains(v Vertex) []Vertex {
	sign := b.Get(v)
	if !b.Has(v) || sign == Empty {
		return []Vertex{}
	}

	area := b.ConnectedComponent(v, func(w Vertex) bool {
		s := b.Get(w)
		return s == sign || s == Empty
	})

	result := make([]Vertex, 0, len(area))
	for _, w := range area {
		if b.Get(w) == sign {
			result = append(result, w)
		}
	}
	return result
}

func (b *Board) Liberties(v Vertex) []Vertex {
	if !b.Has(v) || b.Get(v) == Empty {
		return []Vertex{}
	}

	added := make(map[Vertex]bool)
	liberties := make([]Vertex, 0)

	for _, c := range b.Chain(v) {
		for _, n := range b.Neighbors(c) {
			if b.Get(n) != Empty || added[n] {
				continue
			}
			added[n] = true
			liberties = append(liberties, n)
		}
	}

	return liberties
}

// HasLiberties останавливается на первой найденной свободе.
func (b *Board) HasLiberties(v Vertex) bool {
	sign := b.Get(v)
	if !b.Has(v) || sign == Empty {
		return false
	}

	visited := make([]bool, len(b.grid))
	visited[v.Y*b.width+v.X] = true
	stack := []Vertex{v}

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, n := range b.Neighbors(c) {
			s := b.Get(n)
			if s == Empty {
				return true
			}
			i := n.Y*b.width + n.X
			if s != sign || visited[i] {
				continue
			}
			visited[i] = true
			stack = append(stack, n)
		}
	}

	return false
}
