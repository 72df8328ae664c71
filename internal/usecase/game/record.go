package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"goshapes/internal/domain/board"
	"goshapes/internal/domain/game"
	"goshapes/internal/domain/shape"
	"goshapes/internal/errors"
	"goshapes/internal/statuses"
)

// applyMove проверяет ход против позиции current и ставит камень.
// Цвет хода уже должен быть указан.
func applyMove(current *board.Board, move game.Move, library *shape.Library) (game.Move, *board.Board, error) {
	sign, err := ParseColor(move.Color)
	if err != nil {
		return move, nil, err
	}
	move.Color = colorOf(sign)

	v := board.Pass
	if move.IsPass() {
		move.Coordinates = game.CoordPass
	} else {
		v, err = current.CoordToVertex(move.Coordinates)
		if err != nil {
			return move, nil, err
		}
		if current.Get(v) != board.Empty {
			return move, nil, fmt.Errorf("%w: %s", errors.ErrPointOccupied, move.Coordinates)
		}
		move.Coordinates, _ = current.VertexToCoord(v)
	}

	next := current.MakeMove(sign, v)
	move.Label = library.Interpret(next, v)
	return move, next, nil
}

// RecordFromMoves собирает запись партии из готовых ходов по тем же правилам, что и Play.
// Без setup фора расставляется по HandicapPlacement.
func RecordFromMoves(req game.ImportGameRequest, defaultSize int, defaultKomi float64, library *shape.Library) (game.Game, error) {
	size := req.BoardSize
	if size == 0 {
		size = defaultSize
	}
	if size < 1 || size > maxBoardSize {
		return game.Game{}, fmt.Errorf("%w: %d", errors.ErrBoardSize, size)
	}

	komi := defaultKomi
	if req.Komi != nil {
		komi = *req.Komi
	}

	b, err := board.NewSquare(size)
	if err != nil {
		return game.Game{}, err
	}

	play := game.Game{
		BoardSize: size,
		Komi:      komi,
		Handicap:  req.Handicap,
		Moves:     make([]game.Move, 0, len(req.Moves)),
		Status:    statuses.StatusActive,
	}

	if len(req.Setup) > 0 {
		for _, m := range req.Setup {
			sign, err := ParseColor(m.Color)
			if err != nil {
				return game.Game{}, fmt.Errorf("setup: %w", err)
			}
			v, err := b.CoordToVertex(m.Coordinates)
			if err != nil {
				return game.Game{}, fmt.Errorf("setup: %w", err)
			}
			coord, _ := b.VertexToCoord(v)
			play.Setup = append(play.Setup, game.Move{Color: colorOf(sign), Coordinates: coord})
		}
	} else {
		for _, v := range b.HandicapPlacement(req.Handicap) {
			coord, _ := b.VertexToCoord(v)
			play.Setup = append(play.Setup, game.Move{Color: game.ColorBlack, Coordinates: coord})
		}
		play.Handicap = len(play.Setup)
	}

	history, err := Replay(play)
	if err != nil {
		return game.Game{}, err
	}
	current := history[0]

	for i, m := range req.Moves {
		if m.Color == "" {
			m.Color = NextColor(play)
		}
		m, current, err = applyMove(current, m, library)
		if err != nil {
			return game.Game{}, fmt.Errorf("move %d: %w", i+1, err)
		}
		play.Moves = append(play.Moves, m)
	}

	return play, nil
}

// ImportGame заводит живую партию по готовой записи.
func (g *GameUseCase) ImportGame(ctx context.Context, req game.ImportGameRequest) (game.Game, error) {
	play, err := RecordFromMoves(req, g.cfg.DefaultBoardSize, g.cfg.DefaultKomi, g.library)
	if err != nil {
		return game.Game{}, err
	}
	play.ID = uuid.New().String()
	play.CreatedAt = g.now().UTC()

	if err = g.store.SaveGame(ctx, play); err != nil {
		g.log.Errorf("failed to save imported game: %v", err)
		return game.Game{}, fmt.Errorf("%w: %w", errors.ErrCreateGameFailed, err)
	}

	g.log.Infof("game %s imported: %d moves", play.ID, len(play.Moves))
	return play, nil
}
