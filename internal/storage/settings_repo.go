package storage

import (
	"encoding/json"

	"github.com/manav03panchal/tidytodo/internal/model"
)

// TimerSettingsRepo provides operations for the TimerSettings singleton.
type TimerSettingsRepo struct {
	kv KV
}

// NewTimerSettingsRepo creates a new timer settings repository.
func NewTimerSettingsRepo(kv KV) *TimerSettingsRepo {
	return &TimerSettingsRepo{kv: kv}
}

// TimeoutMinutes returns the stored timeout, or fallback when none is stored
// or the stored value is unreadable.
func (r *TimerSettingsRepo) TimeoutMinutes(fallback int) (int, error) {
	data, err := r.kv.GetBytes(model.KeyTimerSettings)
	if IsErrKeyNotFound(err) {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}

	settings := &model.TimerSettings{}
	if err := json.Unmarshal(data, settings); err != nil || settings.TimeoutMinutes <= 0 {
		return fallback, nil
	}
	return settings.TimeoutMinutes, nil
}

// SetTimeoutMinutes persists the timeout.
func (r *TimerSettingsRepo) SetTimeoutMinutes(minutes int) error {
	return wrapWriteError("save timer settings", SetModel(r.kv, model.NewTimerSettings(minutes)))
}
