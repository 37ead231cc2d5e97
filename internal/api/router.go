package api

import (
	"errors"
	"net/http"
	"strconv"

	"cardroom/internal/config"
	"cardroom/internal/engine"
	"cardroom/internal/middleware"
	"cardroom/internal/service"
	roomsvc "cardroom/internal/service/room"
	"cardroom/internal/ws"
	appErr "cardroom/pkg/errors"
	"cardroom/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Room)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	v1 := r.Group("/cardroom/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/guest", handler.GuestLogin)
		}

		roomGroup := v1.Group("/rooms")
		roomGroup.Use(middleware.AuthRequired())
		{
			roomGroup.GET("", handler.ListRooms)
			roomGroup.POST("", handler.CreateRoom)
			roomGroup.GET("/:id", handler.GetRoom)
			roomGroup.POST("/:id/join", handler.JoinRoom)
			roomGroup.POST("/:id/start", handler.StartGame)
		}
	}

	r.GET("/ws/room/:roomId", wsHandler.HandleRoomWS)
}

type guestLoginBody struct {
	Username string `json:"username" binding:"required"`
}

func (h *Handler) GuestLogin(c *gin.Context) {
	var body guestLoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "username is required")
		return
	}

	result, err := h.services.Auth.GuestLogin(c.Request.Context(), body.Username, config.GlobalConfig.JWT.Expire)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *Handler) ListRooms(c *gin.Context) {
	page, err := parsePositiveIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := parsePositiveIntQuery(c, "pageSize", 20)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Room.ListRooms(c.Request.Context(), page, pageSize)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}
	response.Success(c, result)
}

type createRoomBody struct {
	Name     string `json:"name"`
	HandSize int    `json:"handSize"`
	Password string `json:"password"`
}

func (h *Handler) CreateRoom(c *gin.Context) {
	userID, username, ok := getIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body createRoomBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	info, err := h.services.Room.CreateRoom(c.Request.Context(), userID, username, roomsvc.CreateParams{
		Name:     body.Name,
		HandSize: body.HandSize,
		Password: body.Password,
	})
	if err != nil {
		h.handleRoomError(c, err)
		return
	}
	response.Success(c, info)
}

func (h *Handler) GetRoom(c *gin.Context) {
	roomID, err := parseInt64Param(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid room id")
		return
	}

	info, err := h.services.Room.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}
	response.Success(c, info)
}

type joinRoomBody struct {
	Password string `json:"password"`
}

func (h *Handler) JoinRoom(c *gin.Context) {
	_, username, ok := getIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	roomID, err := parseInt64Param(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid room id")
		return
	}

	var body joinRoomBody
	_ = c.ShouldBindJSON(&body)

	info, err := h.services.Room.JoinRoom(c.Request.Context(), username, roomID, body.Password)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}
	response.Success(c, info)
}

type startGameBody struct {
	Seed string `json:"seed"`
}

func (h *Handler) StartGame(c *gin.Context) {
	userID, _, ok := getIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	roomID, err := parseInt64Param(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid room id")
		return
	}

	var body startGameBody
	_ = c.ShouldBindJSON(&body)

	if err := h.services.Room.StartGame(c.Request.Context(), userID, roomID, body.Seed); err != nil {
		h.handleRoomError(c, err)
		return
	}
	response.SuccessWithMsg(c, gin.H{}, "game started")
}

func (h *Handler) handleRoomError(c *gin.Context, err error) {
	// Engine rejections carry a kind instead of a sentinel.
	switch engine.KindOf(err) {
	case engine.KindValidation:
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	case engine.KindAuthorization:
		response.Error(c, http.StatusForbidden, err.Error())
		return
	case engine.KindState:
		response.Error(c, http.StatusConflict, err.Error())
		return
	}

	switch {
	case errors.Is(err, appErr.ErrInvalidUsername):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErr.ErrInvalidHandSize):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErr.ErrRoomNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErr.ErrRoomFull):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, appErr.ErrRoomClosed),
		errors.Is(err, appErr.ErrRoomInProgress),
		errors.Is(err, appErr.ErrRoomNotInProgress),
		errors.Is(err, appErr.ErrAlreadyInRoom),
		errors.Is(err, appErr.ErrNotEnoughPlayers):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, appErr.ErrWrongRoomPassword),
		errors.Is(err, appErr.ErrNotRoomOwner),
		errors.Is(err, appErr.ErrNotRoomMember):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

func parseInt64Param(c *gin.Context, key string) (int64, error) {
	return strconv.ParseInt(c.Param(key), 10, 64)
}

func parsePositiveIntQuery(c *gin.Context, key string, defaultVal int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return parsed, nil
}

func getIdentity(c *gin.Context) (int64, string, bool) {
	idVal, ok := c.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, "", false
	}
	id, ok := idVal.(int64)
	if !ok {
		return 0, "", false
	}
	nameVal, ok := c.Get(middleware.ContextUsernameKey)
	if !ok {
		return 0, "", false
	}
	name, ok := nameVal.(string)
	return id, name, ok
}
