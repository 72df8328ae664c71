package errors

import "errors"

var (
	ErrBoardSize         = errors.New("board size must be between 1 and 25")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidColor      = errors.New("color must be B or W")
	ErrMalformedShape    = errors.New("malformed shape definition")
	ErrMalformedSGF      = errors.New("malformed sgf")
	ErrCreateGameFailed  = errors.New("create game failed")
	ErrGameNotFound      = errors.New("game not found")
	ErrGameFinished      = errors.New("game is already finished")
	ErrPointOccupied     = errors.New("point is occupied")
	ErrNothingToUndo     = errors.New("no moves to undo")
	ErrInternal          = errors.New("internal error")
)
