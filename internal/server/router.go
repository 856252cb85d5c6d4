package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MarcoPoloResearchLab/planner/internal/planner"
	"github.com/MarcoPoloResearchLab/planner/internal/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errMissingStoreService = errors.New("store service dependency required")

// Dependencies describes what the HTTP handler needs.
type Dependencies struct {
	StoreService *store.Service
	Logger       *zap.Logger
}

// NewHTTPHandler builds the planner API router. CORS is wide open: the
// mini-app is served from the chat platform's origin, not ours.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.StoreService == nil {
		return nil, errMissingStoreService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		storeService: deps.StoreService,
		logger:       logger,
	}

	router.GET("/", handler.handleRoot)
	router.GET("/events/:userID", handler.handleListEvents)
	router.POST("/events", handler.handleCreateEvent)
	router.PUT("/events/:eventID", handler.handleUpdateEvent)
	router.DELETE("/events/:eventID", handler.handleDeleteEvent)
	router.GET("/users/:userID/groups", handler.handleListGroups)
	router.POST("/groups", handler.handleCreateGroup)
	router.PUT("/groups/:groupID", handler.handleUpdateGroup)
	router.DELETE("/groups/:groupID", handler.handleDeleteGroup)

	return router, nil
}

type httpHandler struct {
	storeService *store.Service
	logger       *zap.Logger
}

func (h *httpHandler) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Planner API"})
}

type eventPayload struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	EventTime    string `json:"event_time"`
	ReminderTime string `json:"reminder_time"`
	GroupID      string `json:"group_id,omitempty"`
}

type eventRequestPayload struct {
	UserID       int64  `json:"user_id" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	EventTime    string `json:"event_time" binding:"required"`
	ReminderTime string `json:"reminder_time" binding:"required"`
	GroupID      string `json:"group_id"`
}

type deleteEventPayload struct {
	UserID int64 `json:"user_id" binding:"required"`
}

func eventResponse(record store.Event) eventPayload {
	return eventPayload{
		ID:           record.ID,
		UserID:       record.UserID,
		Title:        record.Title,
		Description:  record.Description,
		EventTime:    planner.FormatEventTime(record.EventTime),
		ReminderTime: planner.FormatEventTime(record.ReminderTime),
		GroupID:      record.GroupID,
	}
}

func (h *httpHandler) handleListEvents(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_user_id"})
		return
	}

	records, err := h.storeService.ListEvents(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_events_failed"})
		return
	}

	response := make([]eventPayload, 0, len(records))
	for _, record := range records {
		response = append(response, eventResponse(record))
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleCreateEvent(c *gin.Context) {
	var request eventRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	record, ok := h.eventRecord(c, request)
	if !ok {
		return
	}

	created, err := h.storeService.CreateEvent(c.Request.Context(), record)
	if err != nil {
		h.logger.Error("failed to create event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_event_failed"})
		return
	}
	c.JSON(http.StatusOK, eventResponse(created))
}

func (h *httpHandler) handleUpdateEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("eventID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_event_id"})
		return
	}

	var request eventRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	record, ok := h.eventRecord(c, request)
	if !ok {
		return
	}

	updated, err := h.storeService.UpdateEvent(c.Request.Context(), eventID, request.UserID, record)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to update event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_event_failed"})
		return
	}
	c.JSON(http.StatusOK, eventResponse(updated))
}

func (h *httpHandler) handleDeleteEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("eventID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_event_id"})
		return
	}

	var request deleteEventPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	err = h.storeService.DeleteEvent(c.Request.Context(), eventID, request.UserID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to delete event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_event_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *httpHandler) eventRecord(c *gin.Context, request eventRequestPayload) (store.Event, bool) {
	eventTime, err := planner.ParseEventTime(request.EventTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_event_time"})
		return store.Event{}, false
	}
	reminderTime, err := planner.ParseEventTime(request.ReminderTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_reminder_time"})
		return store.Event{}, false
	}
	return store.Event{
		UserID:       request.UserID,
		Title:        request.Title,
		Description:  request.Description,
		EventTime:    eventTime,
		ReminderTime: reminderTime,
		GroupID:      request.GroupID,
	}, true
}

// groupPayload carries the member set in its wire form: a JSON-encoded
// string holding an integer array.
type groupPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Members string `json:"members"`
	OwnerID int64  `json:"owner_id"`
}

type createGroupPayload struct {
	ID      string  `json:"id" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	Members []int64 `json:"members"`
	OwnerID int64   `json:"owner_id" binding:"required"`
}

type updateGroupPayload struct {
	Name    string  `json:"name" binding:"required"`
	Members []int64 `json:"members"`
	OwnerID int64   `json:"owner_id" binding:"required"`
}

type deleteGroupPayload struct {
	OwnerID int64 `json:"owner_id" binding:"required"`
}

func groupResponse(record store.Group) groupPayload {
	return groupPayload{
		ID:      record.ID,
		Name:    record.Name,
		Members: record.MembersJSON,
		OwnerID: record.OwnerID,
	}
}

// encodeRequestMembers collapses duplicates before storage so the stored
// set always honors the uniqueness invariant.
func encodeRequestMembers(members []int64) string {
	deduplicated := make([]int64, 0, len(members))
	for _, memberID := range members {
		deduplicated = planner.AddMember(deduplicated, memberID)
	}
	return planner.EncodeMembers(deduplicated)
}

func (h *httpHandler) handleListGroups(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_user_id"})
		return
	}

	records, err := h.storeService.ListGroups(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list groups", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_groups_failed"})
		return
	}

	response := make([]groupPayload, 0, len(records))
	for _, record := range records {
		response = append(response, groupResponse(record))
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleCreateGroup(c *gin.Context) {
	var request createGroupPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	created, err := h.storeService.CreateGroup(c.Request.Context(), store.Group{
		ID:          request.ID,
		Name:        request.Name,
		MembersJSON: encodeRequestMembers(request.Members),
		OwnerID:     request.OwnerID,
	})
	if err != nil {
		h.logger.Error("failed to create group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_group_failed"})
		return
	}
	c.JSON(http.StatusOK, groupResponse(created))
}

func (h *httpHandler) handleUpdateGroup(c *gin.Context) {
	groupID := c.Param("groupID")

	var request updateGroupPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	updated, err := h.storeService.UpdateGroup(c.Request.Context(), groupID, request.OwnerID, store.Group{
		Name:        request.Name,
		MembersJSON: encodeRequestMembers(request.Members),
	})
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to update group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_group_failed"})
		return
	}
	c.JSON(http.StatusOK, groupResponse(updated))
}

func (h *httpHandler) handleDeleteGroup(c *gin.Context) {
	groupID := c.Param("groupID")

	var request deleteGroupPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	err := h.storeService.DeleteGroup(c.Request.Context(), groupID, request.OwnerID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to delete group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_group_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
