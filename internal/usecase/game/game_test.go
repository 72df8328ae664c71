package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"goshapes/internal/bootstrap"
	"goshapes/internal/domain/game"
	"goshapes/internal/domain/shape"
	apperrors "goshapes/internal/errors"
	"goshapes/internal/statuses"
)

type fakeStore struct {
	mu        sync.Mutex
	games     map[string]game.Game
	archive   map[string]game.Summary
	saveErr   error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{games: make(map[string]game.Game), archive: make(map[string]game.Summary)}
}

func (f *fakeStore) SaveGame(_ context.Context, play game.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return f.saveErr
	}
	play.Moves = append([]game.Move{}, play.Moves...)
	f.games[play.ID] = play
	return nil
}

func (f *fakeStore) LoadGame(_ context.Context, id string) (game.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	play, ok := f.games[id]
	if !ok {
		return game.Game{}, fmt.Errorf("%w: %s", apperrors.ErrGameNotFound, id)
	}
	play.Moves = append([]game.Move{}, play.Moves...)
	return play, nil
}

func (f *fakeStore) DeleteGame(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.games, id)
	return nil
}

func (f *fakeStore) ArchiveGame(_ context.Context, summary game.Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.archive[summary.ID] = summary
	return nil
}

func (f *fakeStore) GetArchivedGame(_ context.Context, id string) (game.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	summary, ok := f.archive[id]
	if !ok {
		return game.Summary{}, apperrors.ErrGameNotFound
	}
	return summary, nil
}

func newUseCase(t *testing.T, store GameStore) *GameUseCase {
	t.Helper()
	lib, err := shape.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg := bootstrap.Config{DefaultBoardSize: 19, DefaultKomi: 6.5}
	uc := NewGameUseCase(cfg, zap.NewNop().Sugar(), store, lib)
	uc.now = func() time.Time { return time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC) }
	return uc
}

func TestCreateGame(t *testing.T) {
	store := newFakeStore()
	uc := newUseCase(t, store)
	ctx := context.Background()

	komi := 0.5
	play, err := uc.CreateGame(ctx, game.CreateGameRequest{Komi: &komi, Handicap: 4})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if play.BoardSize != 19 || play.Komi != 0.5 || play.Handicap != 4 || play.Status != statuses.StatusActive {
		t.Errorf("game = %+v", play)
	}
	wantSetup := []string{"D4", "Q16", "D16", "Q4"}
	for i, m := range play.Setup {
		if m.Color != game.ColorBlack || m.Coordinates != wantSetup[i] {
			t.Errorf("setup[%d] = %+v, want B %s", i, m, wantSetup[i])
		}
	}
	if _, ok := store.games[play.ID]; !ok {
		t.Error("game was not saved")
	}
	if NextColor(play) != game.ColorWhite {
		t.Error("white moves first after handicap")
	}

	for _, size := range []int{-1, 26} {
		_, err = uc.CreateGame(ctx, game.CreateGameRequest{BoardSize: size})
		if !errors.Is(err, apperrors.ErrBoardSize) {
			t.Errorf("size %d: error = %v", size, err)
			continue
		}
		if !strings.Contains(err.Error(), "between 1 and 25") {
			t.Errorf("size %d: message %q does not name the allowed range", size, err)
		}
	}

	store.saveErr = errors.New("redis is down")
	if _, err = uc.CreateGame(ctx, game.CreateGameRequest{}); !errors.Is(err, apperrors.ErrCreateGameFailed) {
		t.Errorf("save failure = %v, want ErrCreateGameFailed", err)
	}
}

func TestPlayLabelsMoves(t *testing.T) {
	uc := newUseCase(t, newFakeStore())
	ctx := context.Background()
	play, _ := uc.CreateGame(ctx, game.CreateGameRequest{})

	tests := []struct {
		move  game.Move
		label string
	}{
		{move: game.Move{Coordinates: "D16"}, label: "4-4 Point"},
		{move: game.Move{Coordinates: "K10"}, label: "Tengen"},
		{move: game.Move{Coordinates: "Q16"}, label: "Nirensei Opening"},
		{move: game.Move{Color: "white", Coordinates: "C17"}, label: "3-3 Point"},
		{move: game.Move{Coordinates: "PASS"}, label: shape.LabelPass},
	}

	for _, test := range tests {
		result, err := uc.Play(ctx, play.ID, test.move)
		if err != nil {
			t.Fatalf("Play(%+v): %v", test.move, err)
		}
		if result.Label != test.label {
			t.Errorf("Play(%+v) label = %q, want %q", test.move, result.Label, test.label)
		}
	}

	stored, _ := uc.GetGame(ctx, play.ID)
	colors := ""
	for _, m := range stored.Moves {
		colors += m.Color
	}
	if colors != "BWBWB" || stored.Moves[4].Coordinates != game.CoordPass {
		t.Errorf("stored moves = %+v", stored.Moves)
	}
}

func TestPlayAtariAndConnect(t *testing.T) {
	uc := newUseCase(t, newFakeStore())
	ctx := context.Background()
	play, _ := uc.CreateGame(ctx, game.CreateGameRequest{BoardSize: 9})

	moves := []struct {
		color, coord, label string
	}{
		{"W", "E5", ""},
		{"B", "D5", ""},
		{"B", "F5", ""},
		{"B", "E6", shape.LabelAtari},
		{"B", "C7", ""},
		{"B", "C5", ""},
		{"B", "C6", shape.LabelConnect},
	}

	for _, m := range moves {
		result, err := uc.Play(ctx, play.ID, game.Move{Color: m.color, Coordinates: m.coord})
		if err != nil {
			t.Fatalf("%s %s: %v", m.color, m.coord, err)
		}
		if m.label != "" && result.Label != m.label {
			t.Errorf("%s %s label = %q, want %q", m.color, m.coord, result.Label, m.label)
		}
	}
}

func TestPlayErrors(t *testing.T) {
	uc := newUseCase(t, newFakeStore())
	ctx := context.Background()
	play, _ := uc.CreateGame(ctx, game.CreateGameRequest{BoardSize: 9})
	if _, err := uc.Play(ctx, play.ID, game.Move{Coordinates: "A1"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		id   string
		move game.Move
		want error
	}{
		{name: "unknown game", id: "missing", move: game.Move{Coordinates: "B2"}, want: apperrors.ErrGameNotFound},
		{name: "bad color", id: play.ID, move: game.Move{Color: "red", Coordinates: "B2"}, want: apperrors.ErrInvalidColor},
		{name: "bad coordinate", id: play.ID, move: game.Move{Coordinates: "I5"}, want: apperrors.ErrInvalidCoordinate},
		{name: "off board", id: play.ID, move: game.Move{Coordinates: "K1"}, want: apperrors.ErrInvalidCoordinate},
		{name: "occupied", id: play.ID, move: game.Move{Coordinates: "a1"}, want: apperrors.ErrPointOccupied},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := uc.Play(ctx, test.id, test.move); !errors.Is(err, test.want) {
				t.Errorf("error = %v, want %v", err, test.want)
			}
		})
	}
}

func TestUndoReplaysHistory(t *testing.T) {
	uc := newUseCase(t, newFakeStore())
	ctx := context.Background()
	play, _ := uc.CreateGame(ctx, game.CreateGameRequest{BoardSize: 9})

	for _, m := range []game.Move{
		{Color: "W", Coordinates: "A1"},
		{Color: "B", Coordinates: "B1"},
		{Color: "B", Coordinates: "A2"},
	} {
		if _, err := uc.Play(ctx, play.ID, m); err != nil {
			t.Fatal(err)
		}
	}

	pos, _ := uc.Position(ctx, play.ID)
	if pos.Captures != [2]int{1, 0} || pos.Board[8][0] != '.' {
		t.Fatalf("capture missing: %+v", pos)
	}

	pos, err := uc.Undo(ctx, play.ID)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if pos.Captures != [2]int{0, 0} || pos.Board[8][:2] != "WB" || pos.Board[7][0] != '.' {
		t.Errorf("undo must restore the captured stone: %+v", pos)
	}

	for i := 0; i < 2; i++ {
		if _, err = uc.Undo(ctx, play.ID); err != nil {
			t.Fatal(err)
		}
	}
	if _, err = uc.Undo(ctx, play.ID); !errors.Is(err, apperrors.ErrNothingToUndo) {
		t.Errorf("Undo on empty record = %v", err)
	}
}

func TestScoreAndFinish(t *testing.T) {
	store := newFakeStore()
	uc := newUseCase(t, store)
	ctx := context.Background()
	play, _ := uc.CreateGame(ctx, game.CreateGameRequest{BoardSize: 5})

	// чёрные стена по столбцу B, белые по столбцу D
	for _, row := range []string{"1", "2", "3", "4", "5"} {
		if _, err := uc.Play(ctx, play.ID, game.Move{Color: "B", Coordinates: "B" + row}); err != nil {
			t.Fatal(err)
		}
		if _, err := uc.Play(ctx, play.ID, game.Move{Color: "W", Coordinates: "D" + row}); err != nil {
			t.Fatal(err)
		}
	}

	score, err := uc.Score(ctx, play.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if score.Area != [2]int{10, 10} || score.Territory != [2]int{5, 5} || score.AreaResult != -6.5 {
		t.Errorf("score = %+v", score)
	}
	if score.Ownership[0] != "BB.WW" {
		t.Errorf("ownership = %v", score.Ownership)
	}

	summary, err := uc.Finish(ctx, play.ID)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if summary.Result != "W+6.5" || summary.MoveCount != 10 || summary.Score.Ownership != nil {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.Moves) != 10 || summary.Moves[9].Coordinates != "D5" || !summary.CreatedAt.Equal(summary.FinishedAt) {
		t.Errorf("archived record = %+v", summary)
	}
	if _, ok := store.archive[play.ID]; !ok {
		t.Error("summary was not archived")
	}
	if _, err = uc.GetGame(ctx, play.ID); !errors.Is(err, apperrors.ErrGameNotFound) {
		t.Error("finished game must be deleted from the live store")
	}
}

func TestFinishKeepsCompletedStatusWhenDeleteFails(t *testing.T) {
	store := newFakeStore()
	uc := newUseCase(t, store)
	ctx := context.Background()
	play, _ := uc.CreateGame(ctx, game.CreateGameRequest{BoardSize: 9})

	store.deleteErr = errors.New("redis timeout")
	if _, err := uc.Finish(ctx, play.ID); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if _, err := uc.Play(ctx, play.ID, game.Move{Coordinates: "E5"}); !errors.Is(err, apperrors.ErrGameFinished) {
		t.Errorf("move after finish = %v, want ErrGameFinished", err)
	}
	if _, err := uc.Finish(ctx, play.ID); !errors.Is(err, apperrors.ErrGameFinished) {
		t.Errorf("second finish = %v, want ErrGameFinished", err)
	}
}

func TestConcurrentPlayKeepsEveryMove(t *testing.T) {
	store := newFakeStore()
	uc := newUseCase(t, store)
	ctx := context.Background()

	play, err := uc.CreateGame(ctx, game.CreateGameRequest{BoardSize: 9})
	if err != nil {
		t.Fatal(err)
	}

	var points []string
	for _, row := range []string{"1", "2"} {
		for _, col := range "ABCDEFGH" {
			points = append(points, string(col)+row)
		}
	}

	errs := make(chan error, len(points))
	var wg sync.WaitGroup
	for _, p := range points {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Play(ctx, play.ID, game.Move{Coordinates: p})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Play: %v", err)
		}
	}

	stored, _ := uc.GetGame(ctx, play.ID)
	if len(stored.Moves) != len(points) {
		t.Fatalf("recorded %d moves, want %d", len(stored.Moves), len(points))
	}
	for i, m := range stored.Moves {
		if want := []string{"B", "W"}[i%2]; m.Color != want {
			t.Errorf("move %d color = %s, want %s", i+1, m.Color, want)
		}
	}
	if n := uc.locks.len(); n != 0 {
		t.Errorf("%d game locks left after play", n)
	}
}

func TestConcurrentFinishArchivesOnce(t *testing.T) {
	store := newFakeStore()
	uc := newUseCase(t, store)
	ctx := context.Background()

	play, _ := uc.CreateGame(ctx, game.CreateGameRequest{BoardSize: 9})

	const callers = 8
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Finish(ctx, play.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	finished := 0
	for err := range results {
		switch {
		case err == nil:
			finished++
		case !errors.Is(err, apperrors.ErrGameNotFound):
			t.Errorf("Finish: %v", err)
		}
	}
	if finished != 1 {
		t.Errorf("%d callers finished the game, want 1", finished)
	}
}

func TestHandicap(t *testing.T) {
	uc := newUseCase(t, newFakeStore())

	resp, err := uc.Handicap(9, 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"C3", "G7", "C7", "G3", "E5"}
	if strings.Join(resp.Stones, " ") != strings.Join(want, " ") {
		t.Errorf("stones = %v, want %v", resp.Stones, want)
	}

	counts := []struct {
		name  string
		count int
		want  int
	}{
		{name: "one stone", count: 1, want: 0},
		{name: "zero", count: 0, want: 0},
		{name: "negative", count: -1, want: 0},
		{name: "above table", count: 10, want: 9},
		{name: "huge", count: 1_000_000_000, want: 9},
	}
	for _, test := range counts {
		t.Run(test.name, func(t *testing.T) {
			resp, err := uc.Handicap(19, test.count)
			if err != nil {
				t.Fatalf("Handicap(19, %d): %v", test.count, err)
			}
			if len(resp.Stones) != test.want {
				t.Errorf("Handicap(19, %d) = %v, want %d stones", test.count, resp.Stones, test.want)
			}
		})
	}
	if _, err = uc.Handicap(0, 2); !errors.Is(err, apperrors.ErrBoardSize) {
		t.Errorf("size 0 = %v", err)
	}
}

func TestReplay(t *testing.T) {
	play := game.Game{
		BoardSize: 9,
		Setup:     []game.Move{{Color: "B", Coordinates: "C3"}},
		Moves: []game.Move{
			{Color: "W", Coordinates: "D4"},
			{Color: "B", Coordinates: "pass"},
			{Color: "W", Coordinates: "C3"}, // занято: ход без изменений
		},
	}

	history, err := Replay(play)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("history has %d positions, want 4", len(history))
	}
	if len(history[0].Diff(history[1])) != 1 || len(history[1].Diff(history[2])) != 0 || len(history[2].Diff(history[3])) != 0 {
		t.Error("pass and occupied moves must not change the board")
	}

	play.Moves = append(play.Moves, game.Move{Color: "W", Coordinates: "Z1"})
	if _, err = Replay(play); !errors.Is(err, apperrors.ErrInvalidCoordinate) {
		t.Errorf("bad record = %v", err)
	}
}

func TestImportGame(t *testing.T) {
	store := newFakeStore()
	uc := newUseCase(t, store)
	ctx := context.Background()

	play, _ := uc.CreateGame(ctx, game.CreateGameRequest{BoardSize: 9, Handicap: 2})
	for _, coord := range []string{"E5", "pass", "G3"} {
		if _, err := uc.Play(ctx, play.ID, game.Move{Coordinates: coord}); err != nil {
			t.Fatal(err)
		}
	}
	original, _ := uc.GetGame(ctx, play.ID)

	// ходы без названий и без цвета: всё восстанавливается по записи
	req := game.ImportGameRequest{BoardSize: 9, Handicap: 2}
	for _, m := range original.Moves {
		req.Moves = append(req.Moves, game.Move{Coordinates: strings.ToLower(m.Coordinates)})
	}

	imported, err := uc.ImportGame(ctx, req)
	if err != nil {
		t.Fatalf("ImportGame: %v", err)
	}
	if imported.ID == original.ID || imported.Handicap != 2 || len(imported.Setup) != 2 || len(imported.Moves) != 3 {
		t.Fatalf("imported = %+v", imported)
	}
	for i := range original.Moves {
		if imported.Moves[i] != original.Moves[i] {
			t.Errorf("move %d: imported %+v, original %+v", i, imported.Moves[i], original.Moves[i])
		}
	}
	if _, ok := store.games[imported.ID]; !ok {
		t.Error("imported game was not saved")
	}
}

func TestRecordFromMoves(t *testing.T) {
	lib, _ := shape.Default()

	tests := []struct {
		name string
		req  game.ImportGameRequest
		want error
	}{
		{
			name: "board size",
			req:  game.ImportGameRequest{BoardSize: 30},
			want: apperrors.ErrBoardSize,
		},
		{
			name: "setup color",
			req:  game.ImportGameRequest{Setup: []game.Move{{Color: "X", Coordinates: "D4"}}},
			want: apperrors.ErrInvalidColor,
		},
		{
			name: "setup off board",
			req:  game.ImportGameRequest{BoardSize: 9, Setup: []game.Move{{Color: "B", Coordinates: "K10"}}},
			want: apperrors.ErrInvalidCoordinate,
		},
		{
			name: "occupied",
			req:  game.ImportGameRequest{Moves: []game.Move{{Coordinates: "D4"}, {Coordinates: "D4"}}},
			want: apperrors.ErrPointOccupied,
		},
		{
			name: "bad coordinate",
			req:  game.ImportGameRequest{Moves: []game.Move{{Coordinates: "Z99"}}},
			want: apperrors.ErrInvalidCoordinate,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := RecordFromMoves(test.req, 19, 6.5, lib); !errors.Is(err, test.want) {
				t.Errorf("error = %v, want %v", err, test.want)
			}
		})
	}

	req := game.ImportGameRequest{
		Setup: []game.Move{{Color: "white", Coordinates: "q16"}},
		Moves: []game.Move{{Coordinates: "D4"}, {Color: "B", Coordinates: "C3"}, {Coordinates: ""}},
	}
	play, err := RecordFromMoves(req, 19, 6.5, lib)
	if err != nil {
		t.Fatal(err)
	}
	if play.BoardSize != 19 || play.Komi != 6.5 || play.Setup[0] != (game.Move{Color: "W", Coordinates: "Q16"}) {
		t.Errorf("record = %+v", play)
	}
	want := []game.Move{
		{Color: "B", Coordinates: "D4", Label: "4-4 Point"},
		{Color: "B", Coordinates: "C3", Label: "3-3 Point"},
		{Color: "W", Coordinates: game.CoordPass, Label: shape.LabelPass},
	}
	for i := range want {
		if play.Moves[i] != want[i] {
			t.Errorf("move %d = %+v, want %+v", i, play.Moves[i], want[i])
		}
	}
}
