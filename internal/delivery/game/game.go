package game

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"goshapes/internal/domain/game"
	apperrors "goshapes/internal/errors"
	"goshapes/internal/httpresponse"
	gameuc "goshapes/internal/usecase/game"
	"goshapes/internal/utils"
)

type GameHandler struct {
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase
	hub    *Hub
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewGameHandler(log *zap.SugaredLogger, gameUC *gameuc.GameUseCase) *GameHandler {
	return &GameHandler{
		log:    log,
		gameUC: gameUC,
		hub:    NewHub(log),
	}
}

func (g *GameHandler) Routes(r chi.Router) {
	r.Post("/games", g.HandleNewGame)
	r.Post("/games/import", g.HandleImportGame)
	r.Get("/games/{id}", g.HandleGetPosition)
	r.Post("/games/{id}/moves", g.HandlePlay)
	r.Delete("/games/{id}/moves", g.HandleUndo)
	r.Get("/games/{id}/score", g.HandleScore)
	r.Get("/games/{id}/record", g.HandleGetRecord)
	r.Post("/games/{id}/finish", g.HandleFinish)
	r.Get("/games/{id}/stream", g.HandleStream)
	r.Get("/archive/{id}", g.HandleGetArchived)
	r.Get("/handicap", g.HandleHandicap)
}

func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	var req game.CreateGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error: ", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	newGame, err := g.gameUC.CreateGame(r.Context(), req)
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.log.Info("New Game Created with id: " + newGame.ID)
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, game.GameCreateResponse{ID: newGame.ID})
}

func (g *GameHandler) HandleImportGame(w http.ResponseWriter, r *http.Request) {
	var req game.ImportGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error: ", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	imported, err := g.gameUC.ImportGame(r.Context(), req)
	if err != nil {
		g.writeError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, imported)
}

func (g *GameHandler) HandleGetPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := g.gameUC.Position(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, pos)
}

func (g *GameHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	var move game.Move
	if err := utils.DecodeJSONRequest(r, &move); err != nil {
		g.log.Error("JSON decode error: ", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := g.gameUC.Play(r.Context(), gameID, move)
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.hub.Broadcast(gameID, StreamMessage{Type: "move", Payload: result})
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, result)
}

func (g *GameHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	pos, err := g.gameUC.Undo(r.Context(), gameID)
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.hub.Broadcast(gameID, StreamMessage{Type: "undo", Payload: pos})
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, pos)
}

func (g *GameHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	estimate := false
	if value := r.URL.Query().Get("estimate"); value != "" {
		var err error
		if estimate, err = strconv.ParseBool(value); err != nil {
			httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "estimate must be a boolean")
			return
		}
	}

	score, err := g.gameUC.Score(r.Context(), chi.URLParam(r, "id"), estimate)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, score)
}

// HandleGetRecord отдаёт полную запись партии в том виде, в каком её принимает импорт.
func (g *GameHandler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	play, err := g.gameUC.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, play)
}

func (g *GameHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	summary, err := g.gameUC.Finish(r.Context(), gameID)
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.hub.Broadcast(gameID, StreamMessage{Type: "finished", Payload: summary})
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, summary)
}

func (g *GameHandler) HandleGetArchived(w http.ResponseWriter, r *http.Request) {
	summary, err := g.gameUC.GetArchivedGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, summary)
}

func (g *GameHandler) HandleHandicap(w http.ResponseWriter, r *http.Request) {
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "size must be an integer")
		return
	}
	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "count must be an integer")
		return
	}

	resp, err := g.gameUC.Handicap(size, count)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

// HandleStream подписывает соединение на события партии. Клиент может и сам
// присылать ходы: {"color": "B", "coordinates": "D4"}.
func (g *GameHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	pos, err := g.gameUC.Position(r.Context(), gameID)
	if err != nil {
		g.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("upgrade error: ", err)
		return
	}

	c := g.hub.subscribe(gameID, conn)
	defer func() {
		g.hub.unsubscribe(gameID, c)
		conn.Close()
	}()

	if err = c.send(StreamMessage{Type: "position", Payload: pos}); err != nil {
		g.log.Error("write error: ", err)
		return
	}

	for {
		var move game.Move
		if err = conn.ReadJSON(&move); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.log.Warn("read error: ", err)
			}
			return
		}

		g.log.Info("Получен ход: ", move)

		result, err := g.gameUC.Play(r.Context(), gameID, move)
		if err != nil {
			if sendErr := c.send(StreamMessage{Type: "error", Error: err.Error()}); sendErr != nil {
				return
			}
			continue
		}

		g.hub.Broadcast(gameID, StreamMessage{Type: "move", Payload: result})
	}
}

func (g *GameHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrGameNotFound):
		httpresponse.WriteErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrBoardSize),
		errors.Is(err, apperrors.ErrInvalidCoordinate),
		errors.Is(err, apperrors.ErrInvalidColor):
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrPointOccupied),
		errors.Is(err, apperrors.ErrGameFinished),
		errors.Is(err, apperrors.ErrNothingToUndo):
		httpresponse.WriteErrorResponse(w, http.StatusConflict, err.Error())
	default:
		g.log.Error(err)
		httpresponse.WriteErrorResponse(w, http.StatusInternalServerError, apperrors.ErrInternal.Error())
	}
}
