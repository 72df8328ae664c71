// Package dataset выгружает размеченные ходы партий в parquet.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"goshapes/internal/domain/board"
	"goshapes/internal/domain/game"
	"goshapes/internal/domain/shape"
	gameuc "goshapes/internal/usecase/game"
)

const schemaVersion = "labelled_move_v1"

// MoveRow: один ход партии с названием и счётом пленных после него.
type MoveRow struct {
	GameID        string `parquet:"game_id,dict"`
	MoveNumber    int32  `parquet:"move_number"`
	BoardSize     int32  `parquet:"board_size"`
	Color         string `parquet:"color,dict"`
	Coordinates   string `parquet:"coordinates,dict"`
	Label         string `parquet:"label,dict"`
	CapturesBlack int32  `parquet:"captures_black"`
	CapturesWhite int32  `parquet:"captures_white"`
	Changed       int32  `parquet:"changed"`
}

// Rows разворачивает запись партии в строки; позиции получаются проигрыванием записи.
func Rows(gameID string, play game.Game) ([]MoveRow, error) {
	history, err := gameuc.Replay(play)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", gameID, err)
	}

	rows := make([]MoveRow, 0, len(play.Moves))
	for i, m := range play.Moves {
		before, after := history[i], history[i+1]
		rows = append(rows, MoveRow{
			GameID:        gameID,
			MoveNumber:    int32(i + 1),
			BoardSize:     int32(play.BoardSize),
			Color:         m.Color,
			Coordinates:   m.Coordinates,
			Label:         m.Label,
			CapturesBlack: int32(after.Captures(board.Black)),
			CapturesWhite: int32(after.Captures(board.White)),
			Changed:       int32(len(before.Diff(after))),
		})
	}
	return rows, nil
}

func WriteParquet(outPath string, rows []MoveRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// пишем во временный файл и переименовываем, чтобы читатель не увидел половину
	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaVersion),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

func ReadParquet(path string) ([]MoveRow, error) {
	rows, err := parquet.ReadFile[MoveRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}

// Builder собирает строки из JSON-файлов с записями партий: board_size, komi, handicap, setup, moves.
// Названия ходов в файле не нужны, они вычисляются заново.
type Builder struct {
	Log         *zap.SugaredLogger
	Library     *shape.Library
	Threads     int
	DefaultSize int
	DefaultKomi float64
}

// RecordFile: файл записи партии и её идентификатор в выгрузке.
type RecordFile struct {
	ID   string
	Path string
}

// RecordFiles раскрывает аргументы в файлы записей. У файла из аргумента идентификатор
// равен имени без расширения, каталог обходится рекурсивно, и идентификатором становится
// путь *.json относительно него. Совпадение идентификаторов считается ошибкой.
func RecordFiles(args []string) ([]RecordFile, error) {
	var files []RecordFile
	seen := make(map[string]string)
	add := func(id, path string) error {
		id = filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("duplicate game id %q: %s and %s", id, prev, path)
		}
		seen[id] = path
		files = append(files, RecordFile{ID: id, Path: path})
		return nil
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err = add(filepath.Base(arg), arg); err != nil {
				return nil, err
			}
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".json" {
				return nil
			}
			rel, err := filepath.Rel(arg, path)
			if err != nil {
				return err
			}
			return add(rel, path)
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

type record struct {
	id  string
	req game.ImportGameRequest
}

// Build читает файлы параллельно: загрузчик, Threads разметчиков и сборщик строк.
// Строки упорядочены по партии и номеру хода.
func (b *Builder) Build(ctx context.Context, files []RecordFile) ([]MoveRow, error) {
	b.Log.Infof("dataset build started: %d files", len(files))

	g, ctx := errgroup.WithContext(ctx)

	records := make(chan record, 128)
	results := make(chan []MoveRow, 128)

	g.Go(func() error {
		defer close(records)
		return loadRecords(ctx, files, records)
	})

	var rows []MoveRow
	g.Go(func() error {
		for chunk := range results {
			rows = append(rows, chunk...)
		}
		return nil
	})

	wg := &sync.WaitGroup{}
	for i, n := 0, max(b.Threads, 1); i < n; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return b.labelRecords(ctx, records, results)
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(rows, func(x, y MoveRow) int {
		if c := strings.Compare(x.GameID, y.GameID); c != 0 {
			return c
		}
		return int(x.MoveNumber - y.MoveNumber)
	})

	b.Log.Infof("dataset build finished: %d moves", len(rows))
	return rows, nil
}

func loadRecords(ctx context.Context, files []RecordFile, records chan<- record) error {
	for _, file := range files {
		data, err := os.ReadFile(file.Path)
		if err != nil {
			return err
		}

		var req game.ImportGameRequest
		if err = json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("%s: %w", file.Path, err)
		}

		select {
		case records <- record{id: file.ID, req: req}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *Builder) labelRecords(ctx context.Context, records <-chan record, results chan<- []MoveRow) error {
	for rec := range records {
		play, err := gameuc.RecordFromMoves(rec.req, b.DefaultSize, b.DefaultKomi, b.Library)
		if err != nil {
			return fmt.Errorf("%s: %w", rec.id, err)
		}

		rows, err := Rows(rec.id, play)
		if err != nil {
			return err
		}

		select {
		case results <- rows:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
