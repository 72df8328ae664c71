package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"goshapes/internal/bootstrap"
	"goshapes/internal/domain/game"
	apperrors "goshapes/internal/errors"
)

const (
	gameKeyPrefix     = "game:"
	archiveKeyPrefix  = "archive:"
	archiveCollection = "archive"
)

// GameRepository держит живые партии в Redis, окончённые в MongoDB.
// Без MongoDB архив тоже пишется в Redis, без срока жизни.
type GameRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewGameRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *GameRepository {
	return &GameRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

func (g *GameRepository) SaveGame(ctx context.Context, play game.Game) error {
	data, err := json.Marshal(play)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", play.ID, err)
	}

	ttl := time.Duration(g.cfg.GameTTLHours) * time.Hour
	if err = g.redis.Set(ctx, gameKeyPrefix+play.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("save game %s to redis: %w", play.ID, err)
	}
	return nil
}

func (g *GameRepository) LoadGame(ctx context.Context, id string) (game.Game, error) {
	data, err := g.redis.Get(ctx, gameKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Game{}, fmt.Errorf("%w: %s", apperrors.ErrGameNotFound, id)
	} else if err != nil {
		g.log.Error(err)
		return game.Game{}, fmt.Errorf("load game %s from redis: %w", id, err)
	}

	var play game.Game
	if err = json.Unmarshal(data, &play); err != nil {
		return game.Game{}, fmt.Errorf("decode game %s: %w", id, err)
	}
	return play, nil
}

func (g *GameRepository) DeleteGame(ctx context.Context, id string) error {
	return g.redis.Del(ctx, gameKeyPrefix+id).Err()
}

func (g *GameRepository) ArchiveGame(ctx context.Context, summary game.Summary) error {
	if g.mongo == nil {
		data, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		return g.redis.Set(ctx, archiveKeyPrefix+summary.ID, data, 0).Err()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(archiveCollection)
	opts := options.Replace().SetUpsert(true)

	_, err := collection.ReplaceOne(ctx, bson.M{"_id": summary.ID}, summary, opts)
	if err != nil {
		g.log.Errorf("failed to insert game to archive: %v", err)
		return err
	}

	g.log.Infof("game archived successfully with id: %s", summary.ID)
	return nil
}

func (g *GameRepository) GetArchivedGame(ctx context.Context, id string) (game.Summary, error) {
	var summary game.Summary

	if g.mongo == nil {
		data, err := g.redis.Get(ctx, archiveKeyPrefix+id).Bytes()
		if errors.Is(err, redis.Nil) {
			return summary, fmt.Errorf("%w: %s", apperrors.ErrGameNotFound, id)
		} else if err != nil {
			return summary, err
		}
		err = json.Unmarshal(data, &summary)
		return summary, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := g.mongo.Collection(archiveCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&summary)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return summary, fmt.Errorf("%w: %s", apperrors.ErrGameNotFound, id)
	} else if err != nil {
		g.log.Error(err)
		return summary, err
	}

	return summary, nil
}
