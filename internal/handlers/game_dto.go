package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gorilla/schema"

	"github.com/tallowmere/minegen/internal/mines"
	"github.com/tallowmere/minegen/internal/repository"
)

// CreateNewGameDTO is the query-string shape of a new-game request
// (spec.md §2; width/height/mine_count map onto [mines.GameParams]).
type CreateNewGameDTO struct {
	Width            int  `schema:"width,required"`
	Height           int  `schema:"height,required"`
	MineCount        int  `schema:"mine_count,required"`
	AllowBigPerturbs bool `schema:"allow_big_perturbs"`
}

func ParseCreateNewGameDTO(src map[string][]string) (CreateNewGameDTO, error) {
	var dto CreateNewGameDTO
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	err := dec.Decode(&dto, src)
	return dto, err
}

func (dto CreateNewGameDTO) GameParams() mines.GameParams {
	return mines.GameParams{
		Width:            dto.Width,
		Height:           dto.Height,
		Mines:            dto.MineCount,
		AllowBigPerturbs: dto.AllowBigPerturbs,
	}
}

// Position is a single cell coordinate decoded from a query string.
type Position struct {
	X int `schema:"x,required"`
	Y int `schema:"y,required"`
}

func ParsePosition(src map[string][]string) (Position, error) {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	var pos Position
	err := dec.Decode(&pos, src)
	return pos, err
}

// GameMove names one of the three player actions spec.md §5 defines.
type GameMove uint8

const (
	Open GameMove = iota + 1
	Flag
	Chord
	lastMove
)

func (m GameMove) String() string {
	switch m {
	case Open:
		return "open"
	case Flag:
		return "flag"
	case Chord:
		return "chord"
	default:
		return "unknown"
	}
}

var ErrBadMove error

func init() {
	var allowed []string
	for i := GameMove(1); i < lastMove; i++ {
		allowed = append(allowed, "'"+i.String()+"'")
	}
	ErrBadMove = fmt.Errorf("move must be one of %s", strings.Join(allowed, ", "))
}

func ParseGameMove(s string) (GameMove, error) {
	switch strings.ToLower(s) {
	case "open":
		return Open, nil
	case "flag":
		return Flag, nil
	case "chord":
		return Chord, nil
	default:
		return 0, ErrBadMove
	}
}

// GameSessionDTO is the JSON representation of a game session sent to
// the client, including its currently-visible grid (spec.md §5). Once
// the game has finished the grid sent is the fully-revealed board.
type GameSessionDTO struct {
	GameSessionId string     `json:"game_session_id"`
	Grid          mines.Grid `json:"grid"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	MineCount     int        `json:"mine_count"`
	Status        string     `json:"status"`
	StartedAt     int64      `json:"started_at"`
	EndedAt       *int64     `json:"ended_at,omitempty"`
}

func NewGameSessionDTO(session *repository.GameSession, state *mines.GameState) *GameSessionDTO {
	var endedAt *int64
	if session.EndedAt.Valid {
		e := session.EndedAt.Time.UnixMilli()
		endedAt = &e
	}
	grid := state.RevealPlayerGrid()
	if state.Status != mines.InProgress {
		grid = state.RevealAll()
	}
	return &GameSessionDTO{
		GameSessionId: strconv.Itoa(session.GameSessionId),
		Grid:          grid,
		Width:         state.Params.Width,
		Height:        state.Params.Height,
		MineCount:     state.Params.Mines,
		Status:        state.Status.String(),
		StartedAt:     session.StartedAt.Time.UnixMilli(),
		EndedAt:       endedAt,
	}
}
