package game

import (
	"time"
)

type Game struct {
	ID         string     `json:"id" bson:"_id"`
	BoardSize  int        `json:"board_size" bson:"board_size"`
	Komi       float64    `json:"komi" bson:"komi"`
	Handicap   int        `json:"handicap" bson:"handicap"`
	Setup      []Move     `json:"setup,omitempty" bson:"setup,omitempty"` // камни до первого хода (фора, импорт)
	Moves      []Move     `json:"moves" bson:"moves"`
	Status     string     `json:"status" bson:"status"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
}

// @name CreateGameRequest
type CreateGameRequest struct {
	BoardSize int      `json:"board_size"`
	Komi      *float64 `json:"komi,omitempty"`
	Handicap  int      `json:"handicap"`
}

// ImportGameRequest: готовая запись партии. Названия ходов вычисляются заново.
// @name ImportGameRequest
type ImportGameRequest struct {
	BoardSize int      `json:"board_size"`
	Komi      *float64 `json:"komi,omitempty"`
	Handicap  int      `json:"handicap"`
	Setup     []Move   `json:"setup,omitempty"`
	Moves     []Move   `json:"moves"`
}

type GameCreateResponse struct {
	ID string `json:"id"`
}

// @name Position
type PositionResponse struct {
	ID        string   `json:"id"`
	BoardSize int      `json:"board_size"`
	Komi      float64  `json:"komi"`
	Status    string   `json:"status"`
	Moves     []Move   `json:"moves"`
	Next      string   `json:"next"`
	Captures  [2]int   `json:"captures"`
	Board     []string `json:"board"` // строки сверху вниз: B, W, .
}

// @name MoveResult
type MoveResult struct {
	Move     Move             `json:"move"`
	Label    string           `json:"label"`
	Captures [2]int           `json:"captures"`
	Changed  []string         `json:"changed"`
	Position PositionResponse `json:"position"`
}

// @name Score
type ScoreResponse struct {
	Estimate        bool     `json:"estimate" bson:"estimate"`
	Area            [2]int   `json:"area" bson:"area"`
	Territory       [2]int   `json:"territory" bson:"territory"`
	Captures        [2]int   `json:"captures" bson:"captures"`
	AreaResult      float64  `json:"area_result" bson:"area_result"`
	TerritoryResult float64  `json:"territory_result" bson:"territory_result"`
	Ownership       []string `json:"ownership,omitempty" bson:"-"`
}

// Summary: запись об окончённой партии в архиве.
type Summary struct {
	ID         string        `json:"id" bson:"_id"`
	BoardSize  int           `json:"board_size" bson:"board_size"`
	Komi       float64       `json:"komi" bson:"komi"`
	Handicap   int           `json:"handicap" bson:"handicap"`
	MoveCount  int           `json:"move_count" bson:"move_count"`
	Result     string        `json:"result" bson:"result"`
	Score      ScoreResponse `json:"score" bson:"score"`
	Setup      []Move        `json:"setup,omitempty" bson:"setup,omitempty"`
	Moves      []Move        `json:"moves" bson:"moves"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
	FinishedAt time.Time     `json:"finished_at" bson:"finished_at"`
}

// @name HandicapResponse
type HandicapResponse struct {
	BoardSize int      `json:"board_size"`
	Stones    []string `json:"stones"`
}
