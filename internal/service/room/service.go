package room

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"cardroom/internal/config"
	"cardroom/internal/model"
	"cardroom/internal/service/presence"
	appErr "cardroom/pkg/errors"
	"cardroom/pkg/logger"
	"cardroom/pkg/utils/random"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	roomCodeLen = 6
	gameSeedLen = 16
)

// Service owns room records and the live runtime for each room with a game
// in progress.
type Service struct {
	db       *gorm.DB
	presence *presence.Service

	runtimes sync.Map // roomID -> *Runtime

	startOnce sync.Once
}

type CreateParams struct {
	Name     string
	HandSize int
	Password string // empty = public room
}

type RoomInfo struct {
	ID        int64     `json:"id,string"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"ownerId,string"`
	Status    string    `json:"status"`
	HandSize  int       `json:"handSize"`
	Private   bool      `json:"private"`
	Players   []string  `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}

type ListResult struct {
	Total int64      `json:"total"`
	Items []RoomInfo `json:"items"`
}

func NewService(db *gorm.DB, presenceSvc *presence.Service) *Service {
	return &Service{db: db, presence: presenceSvc}
}

// Start launches the offline sweeper. Safe to call once from the container.
func (s *Service) Start(ctx context.Context) error {
	s.startOnce.Do(func() {
		interval := time.Duration(config.GlobalConfig.Room.SweepIntervalS) * time.Second
		go s.runSweeper(ctx, interval)
	})
	return nil
}

func (s *Service) CreateRoom(ctx context.Context, ownerID int64, ownerUsername string, params CreateParams) (*RoomInfo, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = ownerUsername + "'s room"
	}
	handSize := params.HandSize
	if handSize == 0 {
		handSize = config.GlobalConfig.Room.DefaultHandSize
	}
	if handSize < 3 || handSize > 10 {
		return nil, appErr.ErrInvalidHandSize
	}

	passwordHash := ""
	if params.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		passwordHash = string(hash)
	}

	playersJSON, err := json.Marshal([]string{ownerUsername})
	if err != nil {
		return nil, err
	}

	room := model.Room{
		Code:         random.Code(roomCodeLen),
		Name:         name,
		OwnerID:      ownerID,
		Status:       "waiting",
		HandSize:     handSize,
		PasswordHash: passwordHash,
		PlayersJSON:  playersJSON,
	}
	if err := s.db.WithContext(ctx).Create(&room).Error; err != nil {
		return nil, err
	}

	logger.Log.Info("room created",
		zap.Int64("roomID", room.ID),
		zap.String("code", room.Code),
		zap.String("owner", ownerUsername),
	)
	info := roomInfo(room)
	return &info, nil
}

func (s *Service) ListRooms(ctx context.Context, page, pageSize int) (*ListResult, error) {
	var total int64
	query := s.db.WithContext(ctx).Model(&model.Room{}).Where("status IN ?", []string{"waiting", "playing"})
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var rooms []model.Room
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rooms).Error; err != nil {
		return nil, err
	}

	items := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, roomInfo(room))
	}
	return &ListResult{Total: total, Items: items}, nil
}

func (s *Service) GetRoom(ctx context.Context, roomID int64) (*RoomInfo, error) {
	room, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	info := roomInfo(*room)
	return &info, nil
}

// JoinRoom adds username to a waiting room's roster.
func (s *Service) JoinRoom(ctx context.Context, username string, roomID int64, password string) (*RoomInfo, error) {
	room, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status == "ended" {
		return nil, appErr.ErrRoomClosed
	}
	if room.Status != "waiting" {
		return nil, appErr.ErrRoomInProgress
	}
	if room.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(room.PasswordHash), []byte(password)) != nil {
			return nil, appErr.ErrWrongRoomPassword
		}
	}

	players, err := decodePlayers(room.PlayersJSON)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		if p == username {
			return nil, appErr.ErrAlreadyInRoom
		}
	}
	if len(players) >= config.GlobalConfig.Room.MaxSeats {
		return nil, appErr.ErrRoomFull
	}

	players = append(players, username)
	if err := s.savePlayers(ctx, room, players); err != nil {
		return nil, err
	}

	logger.Log.Info("player joined room",
		zap.Int64("roomID", room.ID),
		zap.String("username", username),
	)
	info := roomInfo(*room)
	return &info, nil
}

// StartGame dispatches the engine start transition as Root on behalf of the
// room owner. An empty seed gets a fresh random one; passing an explicit seed
// reproduces a game exactly, which is how replays are debugged.
func (s *Service) StartGame(ctx context.Context, requesterID int64, roomID int64, seed string) error {
	room, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.OwnerID != requesterID {
		return appErr.ErrNotRoomOwner
	}
	if room.Status != "waiting" {
		return appErr.ErrRoomInProgress
	}

	players, err := decodePlayers(room.PlayersJSON)
	if err != nil {
		return err
	}
	if len(players) < 2 {
		return appErr.ErrNotEnoughPlayers
	}

	if seed == "" {
		seed = random.Seed(gameSeedLen)
	}

	rt, err := s.GetRuntime(ctx, roomID)
	if err != nil {
		return err
	}
	if err := rt.StartGame(seed, players, room.HandSize); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(room).Update("status", "playing").Error; err != nil {
		return err
	}

	logger.Log.Info("game started",
		zap.Int64("roomID", room.ID),
		zap.Int("players", len(players)),
		zap.Int("handSize", room.HandSize),
	)
	return nil
}

// ValidateRoomAccess gates the websocket: only roster members may subscribe.
func (s *Service) ValidateRoomAccess(ctx context.Context, username string, roomID int64) error {
	room, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return err
	}
	players, err := decodePlayers(room.PlayersJSON)
	if err != nil {
		return err
	}
	for _, p := range players {
		if p == username {
			return nil
		}
	}
	return appErr.ErrNotRoomMember
}

// GetRuntime returns the live runtime for a room, creating it on first use.
func (s *Service) GetRuntime(ctx context.Context, roomID int64) (*Runtime, error) {
	if v, ok := s.runtimes.Load(roomID); ok {
		return v.(*Runtime), nil
	}

	room, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	rt := newRuntime(room.ID, s.handleGameOver)
	actual, _ := s.runtimes.LoadOrStore(roomID, rt)
	return actual.(*Runtime), nil
}

// TouchPresence forwards a heartbeat from the ws layer.
func (s *Service) TouchPresence(ctx context.Context, username string) {
	if s.presence == nil {
		return
	}
	if err := s.presence.Touch(ctx, username); err != nil {
		logger.Log.Warn("presence touch failed", zap.String("username", username), zap.Error(err))
	}
}

func (s *Service) handleGameOver(rt *Runtime) {
	ctx := context.Background()
	if err := s.db.WithContext(ctx).
		Model(&model.Room{}).
		Where("id = ?", rt.roomID).
		Update("status", "ended").Error; err != nil {
		logger.Log.Error("failed to mark room ended", zap.Int64("roomID", rt.roomID), zap.Error(err))
		return
	}
	logger.Log.Info("game over",
		zap.Int64("roomID", rt.roomID),
		zap.Strings("finishers", rt.Finishers()),
	)
}

// runSweeper periodically drops offline users from rooms that are still
// waiting; a running game is never touched.
func (s *Service) runSweeper(ctx context.Context, interval time.Duration) {
	logger.Log.Info("room sweeper started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("room sweeper stopped")
			return
		case <-ticker.C:
			if err := s.sweepWaitingRooms(ctx); err != nil {
				logger.Log.Warn("room sweep error", zap.Error(err))
			}
		}
	}
}

func (s *Service) sweepWaitingRooms(ctx context.Context) error {
	if s.presence == nil {
		return nil
	}

	var rooms []model.Room
	if err := s.db.WithContext(ctx).Where("status = ?", "waiting").Find(&rooms).Error; err != nil {
		return err
	}

	for i := range rooms {
		room := &rooms[i]
		players, err := decodePlayers(room.PlayersJSON)
		if err != nil {
			logger.Log.Warn("bad players payload", zap.Int64("roomID", room.ID), zap.Error(err))
			continue
		}
		offline, err := s.presence.Offline(ctx, players)
		if err != nil {
			return err
		}
		if len(offline) == 0 {
			continue
		}

		kept := players[:0]
		gone := make(map[string]struct{}, len(offline))
		for _, username := range offline {
			gone[username] = struct{}{}
		}
		for _, username := range players {
			if _, ok := gone[username]; !ok {
				kept = append(kept, username)
			}
		}

		if err := s.savePlayers(ctx, room, kept); err != nil {
			return err
		}
		logger.Log.Info("kicked offline players from waiting room",
			zap.Int64("roomID", room.ID),
			zap.Strings("kicked", offline),
		)
	}
	return nil
}

func (s *Service) loadRoom(ctx context.Context, roomID int64) (*model.Room, error) {
	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (s *Service) savePlayers(ctx context.Context, room *model.Room, players []string) error {
	playersJSON, err := json.Marshal(players)
	if err != nil {
		return err
	}
	room.PlayersJSON = playersJSON
	return s.db.WithContext(ctx).Model(room).Update("players_json", playersJSON).Error
}

func decodePlayers(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var players []string
	if err := json.Unmarshal(raw, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func roomInfo(room model.Room) RoomInfo {
	players, err := decodePlayers(room.PlayersJSON)
	if err != nil {
		players = []string{}
	}
	return RoomInfo{
		ID:        room.ID,
		Code:      room.Code,
		Name:      room.Name,
		OwnerID:   room.OwnerID,
		Status:    room.Status,
		HandSize:  room.HandSize,
		Private:   room.PasswordHash != "",
		Players:   players,
		CreatedAt: room.CreatedAt,
	}
}
