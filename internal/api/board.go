package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/yurufuwa/board/internal/app"
	"github.com/yurufuwa/board/internal/board"
	"github.com/yurufuwa/board/internal/models"
	"github.com/yurufuwa/board/internal/render"
)

// BoardAPI provides the board.* methods over the live session
type BoardAPI struct {
	sessions *Sessions
}

// NewBoardAPI creates the board API
func NewBoardAPI(sessions *Sessions) *BoardAPI {
	return &BoardAPI{sessions: sessions}
}

// PostView is a post as a viewer sees it
type PostView struct {
	models.Post
	TotalReactions int              `json:"totalReactions"`
	Tier           string           `json:"tier"`
	Age            string           `json:"age"`
	RemainingMs    int64            `json:"remainingMs"`
	Position       *render.Position `json:"position,omitempty"`
}

// StateResult is the visible board
type StateResult struct {
	Room     string     `json:"room"`
	RoomName string     `json:"roomName"`
	Filter   string     `json:"filter"`
	Posts    []PostView `json:"posts"`
	Hidden   int        `json:"hidden"`
}

type roomParams struct {
	Room   string `json:"room"`
	Filter string `json:"filter"`
}

type idParams struct {
	ID int64 `json:"id" binding:"required,min=1"`
}

type createParams struct {
	Nickname string `json:"nickname" binding:"max=40"`
	Content  string `json:"content" binding:"max=500"`
	Category string `json:"category" binding:"max=40"`
	Lifetime int    `json:"lifetime" binding:"min=0,max=86400"`
}

type reactionParams struct {
	ID   int64  `json:"id" binding:"required,min=1"`
	Kind string `json:"kind" binding:"required,oneof=like cheer join"`
}

type limitParams struct {
	Limit   int  `json:"limit" binding:"min=0"`
	Visible bool `json:"visible"`
}

type preferenceParams struct {
	Nickname *string `json:"nickname" binding:"omitempty,max=40"`
	Theme    *string `json:"theme" binding:"omitempty,oneof=auto morning day night"`
}

// ReactionView is the result of board.toggle_reaction
type ReactionView struct {
	Post  PostView `json:"post"`
	Kind  string   `json:"kind"`
	Added bool     `json:"added"`
}

// PreferencesView holds the local user's settings
type PreferencesView struct {
	Nickname string `json:"nickname"`
	Theme    string `json:"theme"`
}

func decodeParams(params json.RawMessage, dst interface{}) error {
	if len(params) > 0 && string(params) != "null" {
		if err := json.Unmarshal(params, dst); err != nil {
			return invalidParams(err)
		}
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return invalidParams(err)
	}
	return nil
}

// LoadRoom handles board.load_room
func (a *BoardAPI) LoadRoom(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p roomParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	s, err := a.sessions.Load(ctx.Request.Context(), p.Room)
	if err != nil {
		return nil, err
	}
	return stateOf(s, p.Filter), nil
}

// State handles board.state
func (a *BoardAPI) State(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p roomParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	s, err := a.sessions.Current(ctx.Request.Context())
	if err != nil {
		return nil, err
	}
	return stateOf(s, p.Filter), nil
}

// CreatePost handles board.create_post. lifetime is in seconds.
func (a *BoardAPI) CreatePost(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p createParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return a.withSession(ctx, func(rctx context.Context, s *app.Session) (interface{}, error) {
		post, err := s.Board.Create(rctx, p.Nickname, p.Content, p.Category, p.Lifetime)
		if err != nil {
			return nil, err
		}
		return viewOf(s, post), nil
	})
}

// GetPost handles board.get_post
func (a *BoardAPI) GetPost(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p idParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return a.withSession(ctx, func(_ context.Context, s *app.Session) (interface{}, error) {
		post, ok := s.Board.Find(p.ID)
		if !ok {
			return nil, board.ErrPostNotFound
		}
		return viewOf(s, post), nil
	})
}

// RemovePost handles board.remove_post
func (a *BoardAPI) RemovePost(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p idParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return a.withSession(ctx, func(rctx context.Context, s *app.Session) (interface{}, error) {
		return gin.H{"removed": s.Board.Remove(rctx, p.ID)}, nil
	})
}

// ToggleReaction handles board.toggle_reaction
func (a *BoardAPI) ToggleReaction(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p reactionParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return a.withSession(ctx, func(rctx context.Context, s *app.Session) (interface{}, error) {
		result, err := s.Board.ToggleReaction(rctx, p.ID, models.ReactionKind(p.Kind))
		if err != nil {
			return nil, err
		}
		return ReactionView{
			Post:  viewOf(s, result.Post),
			Kind:  string(result.Kind),
			Added: result.Added,
		}, nil
	})
}

// TogglePin handles board.toggle_pin
func (a *BoardAPI) TogglePin(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p idParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return a.withSession(ctx, func(rctx context.Context, s *app.Session) (interface{}, error) {
		post, err := s.Board.TogglePin(rctx, p.ID)
		if err != nil {
			return nil, err
		}
		return viewOf(s, post), nil
	})
}

// Notifications handles board.notifications
func (a *BoardAPI) Notifications(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p limitParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return a.withSession(ctx, func(rctx context.Context, s *app.Session) (interface{}, error) {
		entries, err := s.Board.Notifications(rctx, p.Limit)
		if err != nil {
			return nil, err
		}
		if entries == nil {
			entries = []models.Notification{}
		}
		return entries, nil
	})
}

// Toasts handles board.toasts
func (a *BoardAPI) Toasts(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p limitParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return a.withSession(ctx, func(_ context.Context, s *app.Session) (interface{}, error) {
		var toasts []render.Toast
		if p.Visible {
			toasts = s.Toasts.Visible()
		} else {
			toasts = s.Toasts.Recent(p.Limit)
		}
		if toasts == nil {
			toasts = []render.Toast{}
		}
		return toasts, nil
	})
}

// GetPreferences handles board.get_preferences
func (a *BoardAPI) GetPreferences(ctx *gin.Context, _ json.RawMessage) (interface{}, error) {
	return a.withSession(ctx, func(rctx context.Context, s *app.Session) (interface{}, error) {
		return preferencesOf(rctx, s.Board.Preferences())
	})
}

// SetPreferences handles board.set_preferences. Absent fields are left alone.
func (a *BoardAPI) SetPreferences(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p preferenceParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return a.withSession(ctx, func(rctx context.Context, s *app.Session) (interface{}, error) {
		prefs := s.Board.Preferences()
		if p.Nickname != nil {
			if err := prefs.SaveNickname(rctx, *p.Nickname); err != nil {
				return nil, err
			}
		}
		if p.Theme != nil {
			if err := prefs.SaveTheme(rctx, *p.Theme); err != nil {
				return nil, err
			}
		}
		return preferencesOf(rctx, prefs)
	})
}

// ShareText handles board.share_text
func (a *BoardAPI) ShareText(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p idParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return a.withSession(ctx, func(_ context.Context, s *app.Session) (interface{}, error) {
		text, err := s.Board.ShareText(p.ID)
		if err != nil {
			return nil, err
		}
		return gin.H{"text": text}, nil
	})
}

func (a *BoardAPI) withSession(ctx *gin.Context, fn func(context.Context, *app.Session) (interface{}, error)) (interface{}, error) {
	rctx := ctx.Request.Context()
	s, err := a.sessions.Current(rctx)
	if err != nil {
		return nil, err
	}
	return fn(rctx, s)
}

func preferencesOf(ctx context.Context, prefs *board.Preferences) (PreferencesView, error) {
	nickname, err := prefs.Nickname(ctx)
	if err != nil {
		return PreferencesView{}, err
	}
	theme, err := prefs.Theme(ctx)
	if err != nil {
		return PreferencesView{}, err
	}
	return PreferencesView{Nickname: nickname, Theme: theme}, nil
}

func stateOf(s *app.Session, filter string) StateResult {
	all := s.Board.Posts()
	visible := s.Board.View(filter)

	views := make([]PostView, 0, len(visible))
	for _, p := range visible {
		views = append(views, viewOf(s, p))
	}
	if filter == "" {
		filter = "all"
	}
	return StateResult{
		Room:     s.Board.Room(),
		RoomName: s.Board.RoomName(),
		Filter:   filter,
		Posts:    views,
		Hidden:   len(all) - len(visible),
	}
}

func viewOf(s *app.Session, p models.Post) PostView {
	now := s.Board.Now()
	remaining := p.Remaining(now)
	if deadline, ok := s.Board.Deadline(p.ID); ok {
		remaining = deadline.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
	}

	view := PostView{
		Post:           p,
		TotalReactions: p.TotalReactions(),
		Tier:           p.Tier(),
		Age:            board.FormatAge(p.CreatedAt, now),
		RemainingMs:    int64(remaining / time.Millisecond),
	}
	if placed, ok := s.Layout.Lookup(p.ID); ok {
		pos := placed.Position
		view.Position = &pos
	}
	return view
}
