package room

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cardroom/internal/engine"
	appErr "cardroom/pkg/errors"
	"cardroom/pkg/logger"

	"go.uber.org/zap"
)

// OutgoingMessage is the ws envelope pushed to subscribers. Seq increases per
// broadcast so clients can drop stale projections ("last projection wins").
type OutgoingMessage struct {
	Type string      `json:"type"`
	Seq  int64       `json:"seq"`
	Data interface{} `json:"data"`
}

type chatPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
	SentAt  int64  `json:"sentAt"`
}

// Runtime owns the live game of one room. It is the dispatch layer the
// engine assumes: it serializes transitions under one mutex, applies them
// against the single authoritative state, and on success re-derives and
// broadcasts a projection per subscriber. Engine failures go back to the
// dispatcher alone and are never broadcast.
type Runtime struct {
	roomID int64

	mu          sync.Mutex
	state       *engine.State
	seq         int64
	subscribers map[string]chan OutgoingMessage

	onGameOver func(*Runtime)
}

func newRuntime(roomID int64, onGameOver func(*Runtime)) *Runtime {
	return &Runtime{
		roomID:      roomID,
		subscribers: make(map[string]chan OutgoingMessage),
		onGameOver:  onGameOver,
	}
}

// Subscribe registers username for broadcasts and immediately pushes their
// current projection when a game is running.
func (rt *Runtime) Subscribe(username string) chan OutgoingMessage {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	ch := make(chan OutgoingMessage, 8)
	rt.subscribers[username] = ch
	if rt.state != nil {
		rt.pushProjectionLocked(username)
	}
	return ch
}

func (rt *Runtime) Unsubscribe(username string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if ch, ok := rt.subscribers[username]; ok {
		delete(rt.subscribers, username)
		close(ch)
	}
}

// StartGame dispatches the start transition as the Root identity. Any prior
// game state is replaced wholesale.
func (rt *Runtime) StartGame(seed string, players []string, handSize int) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	state, err := engine.Start(engine.Root, engine.StartPayload{
		Seed:     seed,
		Players:  players,
		HandSize: handSize,
	})
	if err != nil {
		return err
	}
	rt.state = state
	rt.broadcastProjectionsLocked()
	return nil
}

// HandleAction dispatches one ws event from username against the game.
func (rt *Runtime) HandleAction(username, action string, data json.RawMessage) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	switch action {
	case "draw":
		return rt.handleDrawLocked(username)
	case "play":
		return rt.handlePlayLocked(username, data)
	case "chat":
		return rt.handleChatLocked(username, data)
	case "rejoin":
		if rt.state != nil {
			rt.pushProjectionLocked(username)
		}
		return nil
	case "ping":
		rt.pushMessageLocked(username, OutgoingMessage{Type: "pong", Seq: rt.nextSeqLocked()})
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

func (rt *Runtime) handleDrawLocked(username string) error {
	if rt.state == nil {
		return appErr.ErrRoomNotInProgress
	}
	if err := rt.state.Draw(username); err != nil {
		return err
	}
	rt.broadcastProjectionsLocked()
	return nil
}

func (rt *Runtime) handlePlayLocked(username string, data json.RawMessage) error {
	if rt.state == nil {
		return appErr.ErrRoomNotInProgress
	}
	var payload struct {
		CardID string `json:"cardId"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("invalid play payload: %w", err)
		}
	}

	if err := rt.state.Play(username, payload.CardID); err != nil {
		return err
	}
	rt.broadcastProjectionsLocked()

	if rt.state.Over() {
		logger.Log.Info("all players finished",
			zap.Int64("roomID", rt.roomID),
			zap.Strings("finishers", rt.state.Finishers),
		)
		if rt.onGameOver != nil {
			go rt.onGameOver(rt)
		}
	}
	return nil
}

func (rt *Runtime) handleChatLocked(username string, data json.RawMessage) error {
	var payload struct {
		Message string `json:"message"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("invalid chat payload: %w", err)
		}
	}
	if payload.Message == "" {
		return nil
	}

	msg := OutgoingMessage{
		Type: "chat",
		Seq:  rt.nextSeqLocked(),
		Data: chatPayload{
			From:    username,
			Message: payload.Message,
			SentAt:  time.Now().UnixMilli(),
		},
	}
	for _, ch := range rt.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Finishers returns the finish order of the current game, earliest first.
func (rt *Runtime) Finishers() []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.state == nil {
		return nil
	}
	return append([]string(nil), rt.state.Finishers...)
}

func (rt *Runtime) pushProjectionLocked(username string) {
	rt.pushMessageLocked(username, OutgoingMessage{
		Type: "projection",
		Seq:  rt.nextSeqLocked(),
		Data: rt.state.Project(username),
	})
}

func (rt *Runtime) broadcastProjectionsLocked() {
	seq := rt.nextSeqLocked()
	for username, ch := range rt.subscribers {
		msg := OutgoingMessage{
			Type: "projection",
			Seq:  seq,
			Data: rt.state.Project(username),
		}
		select {
		case ch <- msg:
		default:
			logger.Log.Warn("subscriber channel full",
				zap.String("username", username),
				zap.Int64("roomID", rt.roomID),
			)
		}
	}
}

func (rt *Runtime) pushMessageLocked(username string, msg OutgoingMessage) {
	if ch, ok := rt.subscribers[username]; ok {
		select {
		case ch <- msg:
		default:
			logger.Log.Warn("subscriber channel full",
				zap.String("username", username),
				zap.Int64("roomID", rt.roomID),
			)
		}
	}
}

func (rt *Runtime) nextSeqLocked() int64 {
	rt.seq++
	return rt.seq
}
