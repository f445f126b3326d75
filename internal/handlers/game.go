package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallowmere/minegen/internal/config"
	"github.com/tallowmere/minegen/internal/middleware"
	"github.com/tallowmere/minegen/internal/mines"
	"github.com/tallowmere/minegen/internal/repository"
)

type GameHandler struct {
	logger  *slog.Logger
	repo    *repository.Queries
	cookies *config.Cookies
	ws      *config.WebSocket
	rnd     *rand.Rand
}

func NewGameHandler(
	logger *slog.Logger,
	db *pgxpool.Pool,
	cookies *config.Cookies,
	ws *config.WebSocket,
	rnd *rand.Rand,
) *GameHandler {
	return &GameHandler{
		logger:  logger,
		repo:    repository.New(db),
		cookies: cookies,
		ws:      ws,
		rnd:     rnd,
	}
}

func (g GameHandler) seed() mines.Seed {
	return mines.Seed{g.rnd.Uint64(), g.rnd.Uint64()}
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dto, err := ParseCreateNewGameDTO(query)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(err))
		return
	}

	pos, err := ParsePosition(query)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(err))
		return
	}

	game, err := mines.NewGame(dto.GameParams(), pos.X, pos.Y, g.seed())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(err))
		return
	}

	var playerId *int
	if claims, ok := r.Context().Value(middleware.CtxPlayerClaims).(*config.PlayerClaims); ok {
		id := int(claims.PlayerId)
		playerId = &id
	}

	session, err := g.repo.CreateGameSession(
		r.Context(), game, repository.CreateGameSessionParams{PlayerId: playerId},
	)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to create game session", "error", err)
		return
	}

	sendJSONOrLog(w, g.logger, NewGameSessionDTO(session, game))
}

func (g GameHandler) loadSession(ctx context.Context, idStr string) (*repository.GameSession, *mines.GameState, error) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return nil, nil, fmt.Errorf("mines: invalid session id %q", idStr)
	}

	session, err := g.repo.FetchGameSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var game mines.GameState
	if err := game.GobDecode(session.State); err != nil {
		return nil, nil, fmt.Errorf("corrupt game_session.state: %w", err)
	}

	return session, &game, nil
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	session, game, err := g.loadSession(r.Context(), r.PathValue("id"))
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(err))
		return
	}

	sendJSONOrLog(w, g.logger, NewGameSessionDTO(session, game))
}

func (g GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	move, err := ParseGameMove(query.Get("move"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(err))
		return
	}

	pos, err := ParsePosition(query)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(err))
		return
	}

	session, game, err := g.loadSession(r.Context(), r.PathValue("id"))
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(err))
		return
	}

	switch move {
	case Open:
		err = game.OpenCell(r.Context(), pos.X, pos.Y)
	case Flag:
		err = game.FlagCell(r.Context(), pos.X, pos.Y)
	case Chord:
		err = game.ChordCell(r.Context(), pos.X, pos.Y)
	}
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(err))
		return
	}

	g.persistAndReply(w, r, session, game)
}

func (g GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	session, game, err := g.loadSession(r.Context(), r.PathValue("id"))
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(err))
		return
	}

	game.Forfeit(r.Context())
	g.persistAndReply(w, r, session, game)
}

// persistAndReply gob-encodes game, writes it back to the session row,
// and replies with the session's current DTO.
func (g GameHandler) persistAndReply(
	w http.ResponseWriter, r *http.Request,
	session *repository.GameSession, game *mines.GameState,
) {
	blob, err := game.GobEncode()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to encode game state", "error", err)
		return
	}

	params := repository.UpdateGameSessionParams{State: &blob}
	if game.Status != mines.InProgress {
		dead := game.Status == mines.Lost
		won := game.Status == mines.Won
		endedAt := time.Now().UTC()
		params.Dead, params.Won, params.EndedAt = &dead, &won, &endedAt
	}

	updated, err := g.repo.UpdateGameSession(r.Context(), session.GameSessionId, params)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to update game session", "error", err)
		return
	}

	sendJSONOrLog(w, g.logger, NewGameSessionDTO(updated, game))
}

// wsNotifier bridges GameState callbacks onto a live websocket
// connection, writing each callback as one JSON message.
type wsNotifier struct {
	logger *slog.Logger
	conn   *websocket.Conn
}

type wsMessage struct {
	Type  string `json:"type"`
	Cells []int  `json:"cells,omitempty"`
	Won   bool   `json:"won,omitempty"`
}

func (n wsNotifier) CellsChanged(ctx context.Context, cells []int) {
	if err := n.conn.WriteJSON(wsMessage{Type: "cells_changed", Cells: cells}); err != nil {
		n.logger.Error("failed to push cells_changed", "error", err)
	}
}

func (n wsNotifier) GameOver(ctx context.Context, won bool) {
	if err := n.conn.WriteJSON(wsMessage{Type: "game_over", Won: won}); err != nil {
		n.logger.Error("failed to push game_over", "error", err)
	}
}

// ConnectWS upgrades the request to a websocket and attaches a
// wsNotifier to a GameState decoded for this connection alone, holding
// the connection open until the client disconnects. It makes no moves
// itself, and MakeAMove acts on its own separately decoded GameState, so
// no notification is ever written to this connection.
func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	_, game, err := g.loadSession(r.Context(), r.PathValue("id"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	game.SetNotifier(wsNotifier{logger: g.logger, conn: conn})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
