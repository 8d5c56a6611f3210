package types

// Entities mirror the backend's wire model. The client never owns them:
// every value is a snapshot that is only valid until the next fetch.

type SlackUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	IsBot    bool   `json:"is_bot"`
}

// DisplayName prefers the real name over the handle, falling back to
// whichever is set.
func (u SlackUser) DisplayName() string {
	if u.RealName != "" {
		return u.RealName
	}
	return u.Name
}

type OpsgenieUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// UserMapping links one Slack user to one Opsgenie user. At most one
// mapping per slack_user_id is expected; a lookup yields zero or one row.
// ID may be zero in list payloads from older backends.
type UserMapping struct {
	ID             int    `json:"id"`
	OpsgenieUserID string `json:"opsgenie_user_id"`
	SlackUserID    string `json:"slack_user_id"`
}

type Oncall struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserGroup struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

// OncallSync associates an oncall with a Slack user group. Uniqueness of
// (oncall_id, user_group_id) is the backend's concern, not ours.
type OncallSync struct {
	ID              int    `json:"id"`
	OncallID        string `json:"oncall_id"`
	OncallName      string `json:"oncall_name"`
	UserGroupID     string `json:"user_group_id"`
	UserGroupName   string `json:"user_group_name"`
	UserGroupHandle string `json:"user_group_handle"`
}

type ChannelTopic struct {
	Value   string `json:"value"`
	Creator string `json:"creator"`
	LastSet int64  `json:"last_set"`
}

type SlackChannel struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Topic ChannelTopic `json:"topic"`
}

// Notification routes an oncall's alerts to a Slack channel.
type Notification struct {
	ID               int    `json:"id"`
	OncallID         string `json:"oncall_id"`
	OncallName       string `json:"oncall_name"`
	SlackChannelID   string `json:"slack_channel_id"`
	SlackChannelName string `json:"slack_channel_name"`
}
