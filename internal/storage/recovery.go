package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/model"
)

// PrefixQuarantine holds values moved aside by Quarantine.
const PrefixQuarantine = "quarantine:"

// IntegrityReport is the result of a local store health check.
type IntegrityReport struct {
	Healthy     bool      `json:"healthy"`
	CheckedKeys int       `json:"checked_keys"`
	CorruptKeys []string  `json:"corrupt_keys,omitempty"`
	Errors      []string  `json:"errors,omitempty"`
	LastCheck   time.Time `json:"last_check"`
}

// CheckIntegrity verifies that every value the application reads parses.
// Corrupt local collections never break the application, but they silently
// hide todos, so they are worth reporting.
func CheckIntegrity(kv KV) *IntegrityReport {
	report := &IntegrityReport{
		Healthy:   true,
		LastCheck: time.Now(),
	}

	checks := map[string]func([]byte) error{
		model.KeySessionUser:   func(b []byte) error { return json.Unmarshal(b, &model.User{}) },
		model.KeyMockUsers:     func(b []byte) error { return json.Unmarshal(b, &[]model.MockUser{}) },
		model.KeyTimerSettings: func(b []byte) error { return json.Unmarshal(b, &model.TimerSettings{}) },
	}

	keys, err := kv.ListByPrefix(model.PrefixLocalTodos + ":")
	if err != nil {
		report.Healthy = false
		report.Errors = append(report.Errors, fmt.Sprintf("list local collections: %v", err))
	}
	for _, key := range keys {
		checks[key] = func(b []byte) error { return json.Unmarshal(b, &[]model.Todo{}) }
	}

	for key, check := range checks {
		data, err := kv.GetBytes(key)
		if IsErrKeyNotFound(err) {
			continue
		}
		report.CheckedKeys++
		if err != nil {
			report.Healthy = false
			report.Errors = append(report.Errors, fmt.Sprintf("read %s: %v", key, err))
			continue
		}
		if err := check(data); err != nil {
			report.Healthy = false
			report.CorruptKeys = append(report.CorruptKeys, key)
		}
	}

	return report
}

// Quarantine moves the values of the given keys under PrefixQuarantine so
// the application starts from empty values while the raw data is kept.
func Quarantine(kv KV, keys []string) (int, error) {
	moved := 0
	for _, key := range keys {
		if strings.HasPrefix(key, PrefixQuarantine) {
			continue
		}
		data, err := kv.GetBytes(key)
		if IsErrKeyNotFound(err) {
			continue
		}
		if err != nil {
			return moved, err
		}
		if err := kv.SetBytes(PrefixQuarantine+key, data); err != nil {
			return moved, wrapWriteError("quarantine "+key, err)
		}
		if err := kv.Delete(key); err != nil {
			return moved, err
		}
		logging.Warn("quarantined corrupt value", "key", key)
		moved++
	}
	return moved, nil
}
