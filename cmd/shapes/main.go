package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"goshapes/internal/bootstrap"
	"goshapes/internal/dataset"
	"goshapes/internal/domain/game"
	"goshapes/internal/domain/shape"
	gameuc "goshapes/internal/usecase/game"
)

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Fatal("Failed to setup configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = newApp(cfg, logger).RunContext(ctx, os.Args); err != nil {
		logger.Fatal(err)
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func newApp(cfg *bootstrap.Config, log *zap.SugaredLogger) *cli.App {
	// флаги создаются заново для каждой команды
	shapesFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "shapes", Value: cfg.ShapesPath, Usage: "shape library (.json or .sgf), embedded one by default"}
	}
	sizeFlag := func() cli.Flag {
		return &cli.IntFlag{Name: "size", Aliases: []string{"s"}, Value: cfg.DefaultBoardSize, Usage: "board size"}
	}
	positionFlags := func(extra ...cli.Flag) []cli.Flag {
		return append([]cli.Flag{
			shapesFlag(),
			sizeFlag(),
			&cli.Float64Flag{Name: "komi", Value: cfg.DefaultKomi},
			&cli.IntFlag{Name: "handicap", Usage: "handicap stones placed before the first move"},
		}, extra...)
	}

	return &cli.App{
		Name:  "shapes",
		Usage: "label go moves and estimate territory",
		Commands: []*cli.Command{
			{
				Name:      "label",
				Usage:     "play moves and print their names",
				ArgsUsage: "MOVE... (D4, W:Q16, pass)",
				Flags:     positionFlags(),
				Action: func(c *cli.Context) error {
					play, err := record(c)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					for i, m := range play.Moves {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, m.Color, m.Coordinates, m.Label)
					}
					return w.Flush()
				},
			},
			{
				Name:      "score",
				Usage:     "play moves and print ownership and score",
				ArgsUsage: "MOVE...",
				Flags:     positionFlags(&cli.BoolFlag{Name: "estimate", Usage: "use the territory estimate instead of the exact area map"}),
				Action: func(c *cli.Context) error {
					play, err := record(c)
					if err != nil {
						return err
					}
					score, err := gameuc.ScoreGame(play, c.Bool("estimate"))
					if err != nil {
						return err
					}
					for _, row := range score.Ownership {
						fmt.Fprintln(c.App.Writer, row)
					}
					fmt.Fprintf(c.App.Writer, "area %v territory %v captures %v\n", score.Area, score.Territory, score.Captures)
					fmt.Fprintf(c.App.Writer, "area result %g, territory result %g\n", score.AreaResult, score.TerritoryResult)
					return nil
				},
			},
			{
				Name:  "handicap",
				Usage: "print handicap points",
				Flags: []cli.Flag{sizeFlag(), &cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 4}},
				Action: func(c *cli.Context) error {
					uc := gameuc.NewGameUseCase(*cfg, log, nil, nil)
					resp, err := uc.Handicap(c.Int("size"), c.Int("count"))
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, strings.Join(resp.Stones, " "))
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list shapes of the library in matching order",
				Flags: []cli.Flag{shapesFlag()},
				Action: func(c *cli.Context) error {
					library, err := loadLibrary(c.String("shapes"))
					if err != nil {
						return err
					}
					for _, s := range library.Shapes() {
						fmt.Fprintf(c.App.Writer, "%s\t%s\n", s.Name, s.Type)
					}
					return nil
				},
			},
			{
				Name:      "dataset",
				Usage:     "label game records and write them to parquet",
				ArgsUsage: "FILE|DIR...",
				Flags: []cli.Flag{
					shapesFlag(),
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "moves.parquet"},
					&cli.IntFlag{Name: "threads", Aliases: []string{"t"}, Value: 4},
				},
				Action: func(c *cli.Context) error {
					library, err := loadLibrary(c.String("shapes"))
					if err != nil {
						return err
					}
					files, err := dataset.RecordFiles(c.Args().Slice())
					if err != nil {
						return err
					}
					if len(files) == 0 {
						return cli.Exit("no game records given", 2)
					}

					builder := &dataset.Builder{
						Log:         log,
						Library:     library,
						Threads:     c.Int("threads"),
						DefaultSize: cfg.DefaultBoardSize,
						DefaultKomi: cfg.DefaultKomi,
					}
					rows, err := builder.Build(c.Context, files)
					if err != nil {
						return err
					}
					if err = dataset.WriteParquet(c.String("out"), rows); err != nil {
						return err
					}
					log.Infof("%d moves from %d games written to %s", len(rows), len(files), c.String("out"))
					return nil
				},
			},
		},
	}
}

func loadLibrary(path string) (*shape.Library, error) {
	if path == "" {
		return shape.Default()
	}
	return shape.Load(path)
}

// record проигрывает ходы из аргументов команды. Ход пишется как "D4" (цвет по очереди) или "W:D4".
func record(c *cli.Context) (game.Game, error) {
	library, err := loadLibrary(c.String("shapes"))
	if err != nil {
		return game.Game{}, err
	}

	komi := c.Float64("komi")
	req := game.ImportGameRequest{
		BoardSize: c.Int("size"),
		Komi:      &komi,
		Handicap:  c.Int("handicap"),
	}
	for _, arg := range c.Args().Slice() {
		move := game.Move{Coordinates: arg}
		if color, coord, ok := strings.Cut(arg, ":"); ok {
			move = game.Move{Color: color, Coordinates: coord}
		}
		req.Moves = append(req.Moves, move)
	}

	return gameuc.RecordFromMoves(req, c.Int("size"), komi, library)
}
