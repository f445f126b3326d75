package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gorilla/schema"
	"github.com/tallowmere/minegen/internal/mines"
	"github.com/tallowmere/minegen/internal/repository"
)

type HighscoreHandler struct {
	logger *slog.Logger
	repo   *repository.Queries
}

func NewHighscoreHandler(logger *slog.Logger, db *pgxpool.Pool) *HighscoreHandler {
	return &HighscoreHandler{logger: logger, repo: repository.New(db)}
}

type highscoreFilterDTO struct {
	Username  *string `schema:"username"`
	Width     *int    `schema:"width"`
	Height    *int    `schema:"height"`
	MineCount *int    `schema:"mine_count"`
}

func (h HighscoreHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var dto highscoreFilterDTO
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	if err := dec.Decode(&dto, r.URL.Query()); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, h.logger, wrapError(err))
		return
	}

	filter := repository.HighscoreFilter{Username: dto.Username}
	if dto.Width != nil && dto.Height != nil && dto.MineCount != nil {
		filter.GameParams = &mines.GameParams{
			Width: *dto.Width, Height: *dto.Height, Mines: *dto.MineCount,
		}
	}

	scores, err := h.repo.GetHighscores(r.Context(), filter)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("failed to fetch highscores", "error", err, "filter", filter)
		return
	}

	sendJSONOrLog(w, h.logger, scores)
}
