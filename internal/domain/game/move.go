package game

import "strings"

// Цвета ходов в записи партии, как в SGF.
const (
	ColorBlack = "B"
	ColorWhite = "W"
)

// CoordPass: координата паса в записи.
const CoordPass = "pass"

// @name Move
type Move struct {
	Color       string `json:"color" bson:"color"`
	Coordinates string `json:"coordinates" bson:"coordinates"`
	Label       string `json:"label,omitempty" bson:"label,omitempty"`
}

func (m Move) IsPass() bool {
	return strings.TrimSpace(m.Coordinates) == "" || strings.EqualFold(m.Coordinates, CoordPass)
}
