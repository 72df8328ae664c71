package board

// HandicapPlacement возвращает первые count пунктов форы в каноническом порядке:
// углы, затем стороны и центр в зависимости от чётности размеров.
func (b *Board) HandicapPlacement(count int) []Vertex {
	if min(b.width, b.height) < 6 || count < 2 {
		return []Vertex{}
	}

	nearX, nearY := 2, 2
	if b.width >= 13 {
		nearX = 3
	}
	if b.height >= 13 {
		nearY = 3
	}
	farX := b.width - nearX - 1
	farY := b.height - nearY - 1
	middleX := (b.width - 1) / 2
	middleY := (b.height - 1) / 2

	result := []Vertex{{nearX, farY}, {farX, nearY}, {nearX, nearY}, {farX, farY}}

	switch {
	case b.width%2 != 0 && b.height%2 != 0:
		if count == 5 {
			result = append(result, Vertex{middleX, middleY})
		}
		result = append(result, Vertex{nearX, middleY}, Vertex{farX, middleY})

		if count == 7 {
			result = append(result, Vertex{middleX, middleY})
		}
		result = append(result, Vertex{middleX, nearY}, Vertex{middleX, farY}, Vertex{middleX, middleY})
	case b.width%2 != 0:
		result = append(result, Vertex{middleX, nearY}, Vertex{middleX, farY})
	case b.height%2 != 0:
		result = append(result, Vertex{nearX, middleY}, Vertex{farX, middleY})
	}

	if count < len(result) {
		result = result[:count]
	}
	return result
}

// IsTengen: точный центр доски, бывает только при нечётных сторонах.
func (b *Board) IsTengen(v Vertex) bool {
	return b.width%2 != 0 && b.height%2 != 0 && v == Vertex{(b.width - 1) / 2, (b.height - 1) / 2}
}
