package types

// Response envelopes for the /api surface. A non-empty Error means the
// call failed application-side even though the HTTP exchange succeeded;
// payload fields are pointers or slices so "absent" and "empty" stay
// distinguishable.

type ListSlackUsersResponse struct {
	Users []SlackUser `json:"users"`
	Error string      `json:"error,omitempty"`
}

type ListOpsgenieUsersResponse struct {
	Users []OpsgenieUser `json:"users"`
	Error string         `json:"error,omitempty"`
}

type ListSlackChannelsResponse struct {
	Channels []SlackChannel `json:"channels"`
	Error    string         `json:"error,omitempty"`
}

type ListUserMappingsResponse struct {
	UserMappings []UserMapping `json:"user_mappings"`
	Error        string        `json:"error,omitempty"`
}

type GetSlackUserMappingResponse struct {
	UserMapping *UserMapping `json:"user_mapping"`
	Error       string       `json:"error,omitempty"`
}

type AddUserMapRequest struct {
	SlackID    string `json:"slack_id"`
	OpsgenieID string `json:"opsgenie_id"`
}

type AddUserMapResponse struct {
	OpsgenieUserID string `json:"opsgenie_user_id"`
	SlackUserID    string `json:"slack_user_id"`
	Error          string `json:"error,omitempty"`
}

type RemoveUserMapRequest struct {
	UserMappingID int `json:"user_mapping_id"`
}

type RemoveUserMapResponse struct {
	Error string `json:"error,omitempty"`
}

type ListOncallsResponse struct {
	Oncalls []Oncall `json:"oncalls"`
	Error   string   `json:"error,omitempty"`
}

type ListUserGroupsResponse struct {
	UserGroups []UserGroup `json:"user_groups"`
	Error      string      `json:"error,omitempty"`
}

type ListSyncsResponse struct {
	Syncs []OncallSync `json:"syncs"`
	Error string       `json:"error,omitempty"`
}

type SyncedWithResponse struct {
	Syncs []OncallSync `json:"syncs"`
	Error string       `json:"error,omitempty"`
}

type AddSyncRequest struct {
	OncallID    string `json:"oncall_id"`
	UserGroupID string `json:"user_group_id"`
}

type AddSyncResponse struct {
	ID          int    `json:"id"`
	OncallID    string `json:"oncall_id"`
	UserGroupID string `json:"user_group_id"`
	Error       string `json:"error,omitempty"`
}

type RemoveSyncRequest struct {
	OncallSyncID int `json:"oncall_sync_id"`
}

type RemoveSyncResponse struct {
	Error string `json:"error,omitempty"`
}

type ListNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
	Error         string         `json:"error,omitempty"`
}

type NotificationsForChannelResponse struct {
	Notification *Notification `json:"notification"`
	Error        string        `json:"error,omitempty"`
}

type NotificationsForOncallResponse struct {
	Notifications []Notification `json:"notifications"`
	Error         string         `json:"error,omitempty"`
}

type AddNotificationRequest struct {
	OncallID       string `json:"oncall_id"`
	SlackChannelID string `json:"slack_channel_id"`
}

type AddNotificationResponse struct {
	Notification *Notification `json:"notification"`
	Error        string        `json:"error,omitempty"`
}

type RemoveNotificationRequest struct {
	NotificationID int `json:"notification_id"`
}

type RemoveNotificationResponse struct {
	Notification *Notification `json:"notification"`
	Error        string        `json:"error,omitempty"`
}
