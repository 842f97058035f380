package model

// TimerSettings holds the persisted inactivity timeout (singleton).
type TimerSettings struct {
	Key            string `json:"key"`
	TimeoutMinutes int    `json:"timeout_minutes"`
}

// SetKey sets the database key for the settings.
func (s *TimerSettings) SetKey(key string) {
	s.Key = key
}

// GetKey returns the database key for the settings.
func (s *TimerSettings) GetKey() string {
	return s.Key
}

// NewTimerSettings creates settings with the given timeout.
func NewTimerSettings(minutes int) *TimerSettings {
	return &TimerSettings{
		Key:            KeyTimerSettings,
		TimeoutMinutes: minutes,
	}
}
