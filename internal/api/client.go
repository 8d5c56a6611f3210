package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/oncallboard/oncallboard/internal/types"
)

// BackendError is an application-level failure: the HTTP exchange worked
// but the response envelope carried an error string. Transport failures
// are returned as ordinary wrapped errors, so the two channels stay
// distinguishable with errors.As.
type BackendError struct {
	Op      string
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Client wraps the backend's /api surface. One HTTP round trip per call,
// no retries, no caching; timeouts are the caller's concern via ctx.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, http.DefaultClient)
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return c.do(op, req, out)
}

func (c *Client) post(ctx context.Context, op, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out any) error {
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}

	return nil
}

// envelopeError lifts a non-empty error field into a *BackendError.
func envelopeError(op, message string) error {
	if message == "" {
		return nil
	}
	return &BackendError{Op: op, Message: message}
}

func (c *Client) ListSlackUsers(ctx context.Context) ([]types.SlackUser, error) {
	const op = "list slack users"
	var resp types.ListSlackUsersResponse
	if err := c.get(ctx, op, "/list_slack_users", nil, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) ListOpsgenieUsers(ctx context.Context) ([]types.OpsgenieUser, error) {
	const op = "list opsgenie users"
	var resp types.ListOpsgenieUsersResponse
	if err := c.get(ctx, op, "/list_opsgenie_users", nil, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) ListSlackChannels(ctx context.Context) ([]types.SlackChannel, error) {
	const op = "list slack channels"
	var resp types.ListSlackChannelsResponse
	if err := c.get(ctx, op, "/list_slack_channels", nil, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.Channels, nil
}

func (c *Client) ListUserMappings(ctx context.Context) ([]types.UserMapping, error) {
	const op = "list user mappings"
	var resp types.ListUserMappingsResponse
	if err := c.get(ctx, op, "/list_user_mappings", nil, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.UserMappings, nil
}

// GetSlackUserMapping returns nil with no error when the user has no
// mapping; "unmapped" is a resolved empty result, not a failure.
func (c *Client) GetSlackUserMapping(ctx context.Context, slackUserID string) (*types.UserMapping, error) {
	const op = "get slack user mapping"
	query := url.Values{"slack_user_id": {slackUserID}}
	var resp types.GetSlackUserMappingResponse
	if err := c.get(ctx, op, "/get_slack_user_mapping", query, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.UserMapping, nil
}

func (c *Client) AddUserMap(ctx context.Context, slackID, opsgenieID string) (*types.UserMapping, error) {
	const op = "add user map"
	req := types.AddUserMapRequest{SlackID: slackID, OpsgenieID: opsgenieID}
	var resp types.AddUserMapResponse
	if err := c.post(ctx, op, "/add_user_map", req, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return &types.UserMapping{
		OpsgenieUserID: resp.OpsgenieUserID,
		SlackUserID:    resp.SlackUserID,
	}, nil
}

func (c *Client) RemoveUserMap(ctx context.Context, userMappingID int) error {
	const op = "remove user map"
	req := types.RemoveUserMapRequest{UserMappingID: userMappingID}
	var resp types.RemoveUserMapResponse
	if err := c.post(ctx, op, "/remove_user_map", req, &resp); err != nil {
		return err
	}
	return envelopeError(op, resp.Error)
}

func (c *Client) ListOncalls(ctx context.Context) ([]types.Oncall, error) {
	const op = "list oncalls"
	var resp types.ListOncallsResponse
	if err := c.get(ctx, op, "/list_oncalls", nil, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.Oncalls, nil
}

func (c *Client) ListUserGroups(ctx context.Context) ([]types.UserGroup, error) {
	const op = "list user groups"
	var resp types.ListUserGroupsResponse
	if err := c.get(ctx, op, "/list_user_groups", nil, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.UserGroups, nil
}

func (c *Client) ListSyncs(ctx context.Context) ([]types.OncallSync, error) {
	const op = "list syncs"
	var resp types.ListSyncsResponse
	if err := c.get(ctx, op, "/list_syncs", nil, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.Syncs, nil
}

func (c *Client) SyncedWith(ctx context.Context, oncallID string) ([]types.OncallSync, error) {
	const op = "synced with"
	query := url.Values{"oncall_id": {oncallID}}
	var resp types.SyncedWithResponse
	if err := c.get(ctx, op, "/synced_with", query, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.Syncs, nil
}

func (c *Client) AddSync(ctx context.Context, oncallID, userGroupID string) (*types.OncallSync, error) {
	const op = "add sync"
	req := types.AddSyncRequest{OncallID: oncallID, UserGroupID: userGroupID}
	var resp types.AddSyncResponse
	if err := c.post(ctx, op, "/add_sync", req, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return &types.OncallSync{
		ID:          resp.ID,
		OncallID:    resp.OncallID,
		UserGroupID: resp.UserGroupID,
	}, nil
}

func (c *Client) RemoveSync(ctx context.Context, oncallSyncID int) error {
	const op = "remove sync"
	req := types.RemoveSyncRequest{OncallSyncID: oncallSyncID}
	var resp types.RemoveSyncResponse
	if err := c.post(ctx, op, "/remove_sync", req, &resp); err != nil {
		return err
	}
	return envelopeError(op, resp.Error)
}

func (c *Client) ListNotifications(ctx context.Context) ([]types.Notification, error) {
	const op = "list notifications"
	var resp types.ListNotificationsResponse
	if err := c.get(ctx, op, "/notification/list", nil, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

// NotificationsForChannel returns nil with no error when the channel has
// no notification routed to it.
func (c *Client) NotificationsForChannel(ctx context.Context, slackChannelID string) (*types.Notification, error) {
	const op = "notifications for channel"
	query := url.Values{"slack_channel_id": {slackChannelID}}
	var resp types.NotificationsForChannelResponse
	if err := c.get(ctx, op, "/notifications/slack", query, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.Notification, nil
}

func (c *Client) NotificationsForOncall(ctx context.Context, oncallID string) ([]types.Notification, error) {
	const op = "notifications for oncall"
	query := url.Values{"oncall_id": {oncallID}}
	var resp types.NotificationsForOncallResponse
	if err := c.get(ctx, op, "/notifications/oncall", query, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

func (c *Client) AddNotification(ctx context.Context, oncallID, slackChannelID string) (*types.Notification, error) {
	const op = "add notification"
	req := types.AddNotificationRequest{OncallID: oncallID, SlackChannelID: slackChannelID}
	var resp types.AddNotificationResponse
	if err := c.post(ctx, op, "/notifications/add", req, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.Notification, nil
}

func (c *Client) RemoveNotification(ctx context.Context, notificationID int) (*types.Notification, error) {
	const op = "remove notification"
	req := types.RemoveNotificationRequest{NotificationID: notificationID}
	var resp types.RemoveNotificationResponse
	if err := c.post(ctx, op, "/notifications/remove", req, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(op, resp.Error); err != nil {
		return nil, err
	}
	return resp.Notification, nil
}
