package board

// MakeMove ставит камень и возвращает новую позицию, исходная не меняется.
// Пустой цвет, вершина вне доски или занятый пункт дают копию без изменений.
func (b *Board) MakeMove(sign Sign, v Vertex) *Board {
	move := b.Clone()

	if sign == Empty || !b.Has(v) || b.Get(v) != Empty {
		return move
	}

	sign = SignOf(int(sign))
	move.set(v, sign)

	// сначала снимаем соседние цепочки соперника без свобод

	captured := false
	for _, n := range move.Neighbors(v) {
		if move.Get(n) != -sign || move.HasLiberties(n) {
			continue
		}
		captured = true
		for _, c := range move.Chain(n) {
			move.set(c, Empty)
			move.captures[sign.index()]++
		}
	}

	// самоубийство разрешено, камни уходят в плен сопернику

	if !captured && !move.HasLiberties(v) {
		for _, c := range move.Chain(v) {
			move.set(c, Empty)
			move.captures[sign.Opponent().index()]++
		}
	}

	return move
}

// IsValid проверяет, что ни одна цепочка на доске не осталась без свобод.
func (b *Board) IsValid() bool {
	checked := make([]bool, len(b.grid))

	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			v := Vertex{x, y}
			if b.Get(v) == Empty || checked[y*b.width+x] {
				continue
			}
			if !b.HasLiberties(v) {
				return false
			}
			for _, c := range b.Chain(v) {
				checked[c.Y*b.width+c.X] = true
			}
		}
	}

	return true
}
