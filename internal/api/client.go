// Package api implements the typed HTTP client for the remote planner
// store. Update calls always carry the complete record; callers never
// send partial diffs.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/planner/internal/planner"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 15 * time.Second

var errMissingBaseURL = errors.New("api: base url is required")

// TransportError reports a network or HTTP-layer failure of a store call.
// Status is zero when the request never produced a response.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api: %s failed with status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("api: %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClientConfig describes the dependencies for a store client.
type ClientConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client issues the CRUD operations for events and groups.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a store client.
func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errMissingBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// ListEvents returns the user's events.
func (c *Client) ListEvents(ctx context.Context, userID int64) ([]planner.Event, error) {
	var events []planner.Event
	url := fmt.Sprintf("%s/events/%d", c.baseURL, userID)
	if err := c.do(ctx, "list_events", http.MethodGet, url, nil, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []planner.Event{}
	}
	return events, nil
}

// CreateEvent persists a new event and returns the created record with
// its server-assigned identifier.
func (c *Client) CreateEvent(ctx context.Context, event planner.Event) (planner.Event, error) {
	var created planner.Event
	url := c.baseURL + "/events"
	if err := c.do(ctx, "create_event", http.MethodPost, url, event, &created); err != nil {
		return planner.Event{}, err
	}
	return created, nil
}

// UpdateEvent replaces the stored event wholesale.
func (c *Client) UpdateEvent(ctx context.Context, eventID int64, event planner.Event) (planner.Event, error) {
	var updated planner.Event
	url := fmt.Sprintf("%s/events/%d", c.baseURL, eventID)
	if err := c.do(ctx, "update_event", http.MethodPut, url, event, &updated); err != nil {
		return planner.Event{}, err
	}
	return updated, nil
}

type deleteEventPayload struct {
	UserID int64 `json:"user_id"`
}

// DeleteEvent removes an event scoped to its owning user.
func (c *Client) DeleteEvent(ctx context.Context, eventID int64, userID int64) error {
	url := fmt.Sprintf("%s/events/%d", c.baseURL, eventID)
	return c.do(ctx, "delete_event", http.MethodDelete, url, deleteEventPayload{UserID: userID}, nil)
}

// groupPayload is the group wire shape on responses: members arrives as a
// JSON-encoded string holding an integer array, not a native array.
type groupPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Members string `json:"members"`
	OwnerID int64  `json:"owner_id"`
}

type createGroupPayload struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Members []int64 `json:"members"`
	OwnerID int64   `json:"owner_id"`
}

type updateGroupPayload struct {
	Name    string  `json:"name"`
	Members []int64 `json:"members"`
	OwnerID int64   `json:"owner_id"`
}

type deleteGroupPayload struct {
	OwnerID int64 `json:"owner_id"`
}

// ListGroups returns the groups the user owns or belongs to, with the
// member set decoded at this boundary.
func (c *Client) ListGroups(ctx context.Context, userID int64) ([]planner.Group, error) {
	var payloads []groupPayload
	url := fmt.Sprintf("%s/users/%d/groups", c.baseURL, userID)
	if err := c.do(ctx, "list_groups", http.MethodGet, url, nil, &payloads); err != nil {
		return nil, err
	}
	groups := make([]planner.Group, 0, len(payloads))
	for _, payload := range payloads {
		members, err := planner.DecodeMembers(payload.Members)
		if err != nil {
			c.logger.Warn("dropping group with malformed member set",
				zap.String("group_id", payload.ID), zap.Error(err))
			continue
		}
		groups = append(groups, planner.Group{
			ID:      payload.ID,
			Name:    payload.Name,
			Members: members,
			OwnerID: payload.OwnerID,
		})
	}
	return groups, nil
}

// CreateGroup persists a new group under its client-assigned identifier.
func (c *Client) CreateGroup(ctx context.Context, group planner.Group) (planner.Group, error) {
	request := createGroupPayload{
		ID:      group.ID,
		Name:    group.Name,
		Members: memberArray(group.Members),
		OwnerID: group.OwnerID,
	}
	var response groupPayload
	if err := c.do(ctx, "create_group", http.MethodPost, c.baseURL+"/groups", request, &response); err != nil {
		return planner.Group{}, err
	}
	return c.decodeGroup(response)
}

// UpdateGroup replaces the stored group wholesale.
func (c *Client) UpdateGroup(ctx context.Context, groupID string, group planner.Group) (planner.Group, error) {
	request := updateGroupPayload{
		Name:    group.Name,
		Members: memberArray(group.Members),
		OwnerID: group.OwnerID,
	}
	var response groupPayload
	url := c.baseURL + "/groups/" + groupID
	if err := c.do(ctx, "update_group", http.MethodPut, url, request, &response); err != nil {
		return planner.Group{}, err
	}
	return c.decodeGroup(response)
}

// DeleteGroup removes a group scoped to its owner.
func (c *Client) DeleteGroup(ctx context.Context, groupID string, ownerID int64) error {
	url := c.baseURL + "/groups/" + groupID
	return c.do(ctx, "delete_group", http.MethodDelete, url, deleteGroupPayload{OwnerID: ownerID}, nil)
}

func (c *Client) decodeGroup(payload groupPayload) (planner.Group, error) {
	members, err := planner.DecodeMembers(payload.Members)
	if err != nil {
		return planner.Group{}, err
	}
	return planner.Group{
		ID:      payload.ID,
		Name:    payload.Name,
		Members: members,
		OwnerID: payload.OwnerID,
	}, nil
}

func memberArray(members []int64) []int64 {
	if members == nil {
		return []int64{}
	}
	return members
}

func (c *Client) do(ctx context.Context, operation, method, url string, requestBody any, responseBody any) error {
	var reader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return &TransportError{Op: operation, Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &TransportError{Op: operation, Err: err}
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Warn("store request failed", zap.String("op", operation), zap.Error(err))
		return &TransportError{Op: operation, Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("store request rejected",
			zap.String("op", operation), zap.Int("status", response.StatusCode))
		return &TransportError{Op: operation, Status: response.StatusCode, Err: errors.New(response.Status)}
	}

	if responseBody == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		return &TransportError{Op: operation, Err: err}
	}
	return nil
}
