package domain

// Settings keys persisted in the store's key-value area.
const (
	SettingNotificationsEnabled = "notifications.enabled"
)
