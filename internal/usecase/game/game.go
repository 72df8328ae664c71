package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"goshapes/internal/bootstrap"
	"goshapes/internal/domain/board"
	"goshapes/internal/domain/game"
	"goshapes/internal/domain/shape"
	"goshapes/internal/errors"
	"goshapes/internal/statuses"
)

// maxBoardSize ограничен алфавитом координат (A..Z без I).
const maxBoardSize = 25

type GameStore interface {
	SaveGame(ctx context.Context, play game.Game) error
	LoadGame(ctx context.Context, id string) (game.Game, error)
	DeleteGame(ctx context.Context, id string) error
	ArchiveGame(ctx context.Context, summary game.Summary) error
	GetArchivedGame(ctx context.Context, id string) (game.Summary, error)
}

type GameUseCase struct {
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
	store   GameStore
	library *shape.Library
	locks   *gameLocks
	now     func() time.Time
}

func NewGameUseCase(cfg bootstrap.Config, log *zap.SugaredLogger, store GameStore, library *shape.Library) *GameUseCase {
	return &GameUseCase{
		cfg:     cfg,
		log:     log,
		store:   store,
		library: library,
		locks:   newGameLocks(),
		now:     time.Now,
	}
}

func (g *GameUseCase) CreateGame(ctx context.Context, req game.CreateGameRequest) (game.Game, error) {
	size := req.BoardSize
	if size == 0 {
		size = g.cfg.DefaultBoardSize
	}
	if size < 1 || size > maxBoardSize {
		return game.Game{}, fmt.Errorf("%w: %d", errors.ErrBoardSize, size)
	}

	komi := g.cfg.DefaultKomi
	if req.Komi != nil {
		komi = *req.Komi
	}

	b, err := board.NewSquare(size)
	if err != nil {
		return game.Game{}, err
	}

	newGame := game.Game{
		ID:        uuid.New().String(),
		BoardSize: size,
		Komi:      komi,
		Moves:     []game.Move{},
		Status:    statuses.StatusActive,
		CreatedAt: g.now().UTC(),
	}

	for _, v := range b.HandicapPlacement(req.Handicap) {
		coord, _ := b.VertexToCoord(v)
		newGame.Setup = append(newGame.Setup, game.Move{Color: game.ColorBlack, Coordinates: coord})
	}
	newGame.Handicap = len(newGame.Setup)

	if err = g.store.SaveGame(ctx, newGame); err != nil {
		g.log.Errorf("failed to save game %s: %v", newGame.ID, err)
		return game.Game{}, fmt.Errorf("%w: %w", errors.ErrCreateGameFailed, err)
	}

	g.log.Infof("game %s created: %dx%d, komi %.1f, handicap %d", newGame.ID, size, size, komi, newGame.Handicap)
	return newGame, nil
}

func (g *GameUseCase) GetGame(ctx context.Context, id string) (game.Game, error) {
	return g.store.LoadGame(ctx, id)
}

// Play применяет ход к последней позиции партии и называет его.
// Пустой цвет означает очередь по записи. Ходы одной партии применяются по одному.
func (g *GameUseCase) Play(ctx context.Context, id string, move game.Move) (game.MoveResult, error) {
	unlock := g.locks.lock(id)
	defer unlock()

	play, err := g.store.LoadGame(ctx, id)
	if err != nil {
		return game.MoveResult{}, err
	}
	if play.Status != statuses.StatusActive {
		return game.MoveResult{}, errors.ErrGameFinished
	}

	history, err := Replay(play)
	if err != nil {
		return game.MoveResult{}, err
	}
	current := history[len(history)-1]

	if move.Color == "" {
		move.Color = NextColor(play)
	}
	move, next, err := applyMove(current, move, g.library)
	if err != nil {
		return game.MoveResult{}, err
	}

	play.Moves = append(play.Moves, move)
	if err = g.store.SaveGame(ctx, play); err != nil {
		g.log.Errorf("failed to save move for game %s: %v", id, err)
		return game.MoveResult{}, err
	}

	changed := make([]string, 0)
	for _, w := range current.Diff(next) {
		coord, _ := next.VertexToCoord(w)
		changed = append(changed, coord)
	}

	return game.MoveResult{
		Move:     move,
		Label:    move.Label,
		Captures: [2]int{next.Captures(board.Black), next.Captures(board.White)},
		Changed:  changed,
		Position: position(play, next),
	}, nil
}

// Undo снимает последний ход. Позиции не откатываются, а заново проигрываются из записи.
func (g *GameUseCase) Undo(ctx context.Context, id string) (game.PositionResponse, error) {
	unlock := g.locks.lock(id)
	defer unlock()

	play, err := g.store.LoadGame(ctx, id)
	if err != nil {
		return game.PositionResponse{}, err
	}
	if play.Status != statuses.StatusActive {
		return game.PositionResponse{}, errors.ErrGameFinished
	}
	if len(play.Moves) == 0 {
		return game.PositionResponse{}, errors.ErrNothingToUndo
	}

	play.Moves = play.Moves[:len(play.Moves)-1]
	if err = g.store.SaveGame(ctx, play); err != nil {
		return game.PositionResponse{}, err
	}

	history, err := Replay(play)
	if err != nil {
		return game.PositionResponse{}, err
	}
	return position(play, history[len(history)-1]), nil
}

func (g *GameUseCase) Position(ctx context.Context, id string) (game.PositionResponse, error) {
	play, err := g.store.LoadGame(ctx, id)
	if err != nil {
		return game.PositionResponse{}, err
	}
	history, err := Replay(play)
	if err != nil {
		return game.PositionResponse{}, err
	}
	return position(play, history[len(history)-1]), nil
}

// Score считает очки по точной карте территории или, при estimate, по оценочной.
func (g *GameUseCase) Score(ctx context.Context, id string, estimate bool) (game.ScoreResponse, error) {
	play, err := g.store.LoadGame(ctx, id)
	if err != nil {
		return game.ScoreResponse{}, err
	}
	return ScoreGame(play, estimate)
}

// Finish подсчитывает партию, кладёт итог в архив и удаляет живую запись.
func (g *GameUseCase) Finish(ctx context.Context, id string) (game.Summary, error) {
	unlock := g.locks.lock(id)
	defer unlock()

	play, err := g.store.LoadGame(ctx, id)
	if err != nil {
		return game.Summary{}, err
	}
	if play.Status != statuses.StatusActive {
		return game.Summary{}, errors.ErrGameFinished
	}

	score, err := ScoreGame(play, false)
	if err != nil {
		return game.Summary{}, err
	}

	finishedAt := g.now().UTC()
	play.Status = statuses.StatusCompleted
	play.FinishedAt = &finishedAt

	summary := game.Summary{
		ID:         play.ID,
		BoardSize:  play.BoardSize,
		Komi:       play.Komi,
		Handicap:   play.Handicap,
		MoveCount:  len(play.Moves),
		Result:     resultString(score.AreaResult),
		Score:      score,
		CreatedAt:  play.CreatedAt,
		FinishedAt: finishedAt,
	}
	summary.Score.Ownership = nil
	summary.Setup = play.Setup
	summary.Moves = play.Moves

	if err = g.store.ArchiveGame(ctx, summary); err != nil {
		g.log.Errorf("failed to archive game %s: %v", id, err)
		return game.Summary{}, err
	}
	if err = g.store.DeleteGame(ctx, id); err != nil {
		// итог уже в архиве; живая запись помечается окончённой и истечёт сама
		g.log.Warnf("failed to delete finished game %s: %v", id, err)
		if err = g.store.SaveGame(ctx, play); err != nil {
			g.log.Errorf("failed to mark game %s as completed: %v", id, err)
		}
	}

	g.log.Infof("game %s finished: %s", id, summary.Result)
	return summary, nil
}

func (g *GameUseCase) GetArchivedGame(ctx context.Context, id string) (game.Summary, error) {
	return g.store.GetArchivedGame(ctx, id)
}

// Handicap возвращает пункты форы в нотации доски.
func (g *GameUseCase) Handicap(size, count int) (game.HandicapResponse, error) {
	if size < 1 || size > maxBoardSize {
		return game.HandicapResponse{}, fmt.Errorf("%w: %d", errors.ErrBoardSize, size)
	}
	b, err := board.NewSquare(size)
	if err != nil {
		return game.HandicapResponse{}, err
	}

	placement := b.HandicapPlacement(count)
	stones := make([]string, 0, len(placement))
	for _, v := range placement {
		coord, _ := b.VertexToCoord(v)
		stones = append(stones, coord)
	}
	return game.HandicapResponse{BoardSize: size, Stones: stones}, nil
}

// Replay проигрывает запись партии: позиция до первого хода и после каждого.
func Replay(play game.Game) ([]*board.Board, error) {
	b, err := board.NewSquare(play.BoardSize)
	if err != nil {
		return nil, err
	}

	stones := make(map[board.Vertex]board.Sign, len(play.Setup))
	for _, m := range play.Setup {
		sign, err := ParseColor(m.Color)
		if err != nil {
			return nil, err
		}
		v, err := b.CoordToVertex(m.Coordinates)
		if err != nil {
			return nil, err
		}
		stones[v] = sign
	}

	history := make([]*board.Board, 0, len(play.Moves)+1)
	history = append(history, b.Setup(stones))

	for i, m := range play.Moves {
		current := history[len(history)-1]
		sign, err := ParseColor(m.Color)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}

		v := board.Pass
		if !m.IsPass() {
			if v, err = current.CoordToVertex(m.Coordinates); err != nil {
				return nil, fmt.Errorf("move %d: %w", i+1, err)
			}
		}
		history = append(history, current.MakeMove(sign, v))
	}

	return history, nil
}

// ScoreGame считает очки последней позиции записи.
func ScoreGame(play game.Game, estimate bool) (game.ScoreResponse, error) {
	history, err := Replay(play)
	if err != nil {
		return game.ScoreResponse{}, err
	}
	b := history[len(history)-1]

	var areaMap board.SignMap
	if estimate {
		areaMap = b.AreaEstimateMap()
	} else {
		areaMap = b.AreaMap()
	}
	score := b.Score(areaMap)

	return game.ScoreResponse{
		Estimate:        estimate,
		Area:            score.Area,
		Territory:       score.Territory,
		Captures:        score.Captures,
		AreaResult:      score.AreaResult(play.Komi),
		TerritoryResult: score.TerritoryResult(play.Komi),
		Ownership:       signRows(areaMap),
	}, nil
}

// NextColor: чей ход по записи. После форы первыми ходят белые.
func NextColor(play game.Game) string {
	if len(play.Moves) == 0 {
		if play.Handicap > 1 {
			return game.ColorWhite
		}
		return game.ColorBlack
	}
	if strings.EqualFold(play.Moves[len(play.Moves)-1].Color, game.ColorBlack) {
		return game.ColorWhite
	}
	return game.ColorBlack
}

func ParseColor(color string) (board.Sign, error) {
	switch strings.ToUpper(strings.TrimSpace(color)) {
	case "B", "BLACK":
		return board.Black, nil
	case "W", "WHITE":
		return board.White, nil
	}
	return board.Empty, fmt.Errorf("%w: %q", errors.ErrInvalidColor, color)
}

func colorOf(sign board.Sign) string {
	if sign == board.White {
		return game.ColorWhite
	}
	return game.ColorBlack
}

func position(play game.Game, b *board.Board) game.PositionResponse {
	rows := make([]string, b.Height())
	for y := range rows {
		var row strings.Builder
		for x := 0; x < b.Width(); x++ {
			row.WriteString(b.Get(board.Vertex{X: x, Y: y}).String())
		}
		rows[y] = row.String()
	}

	moves := play.Moves
	if moves == nil {
		moves = []game.Move{}
	}

	return game.PositionResponse{
		ID:        play.ID,
		BoardSize: play.BoardSize,
		Komi:      play.Komi,
		Status:    play.Status,
		Moves:     moves,
		Next:      NextColor(play),
		Captures:  [2]int{b.Captures(board.Black), b.Captures(board.White)},
		Board:     rows,
	}
}

func signRows(m board.SignMap) []string {
	rows := make([]string, len(m))
	for y := range m {
		var row strings.Builder
		for _, s := range m[y] {
			row.WriteString(s.String())
		}
		rows[y] = row.String()
	}
	return rows
}

func resultString(result float64) string {
	switch {
	case result > 0:
		return fmt.Sprintf("B+%g", result)
	case result < 0:
		return fmt.Sprintf("W+%g", -result)
	}
	return "0"
}
