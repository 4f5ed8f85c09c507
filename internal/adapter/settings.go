package adapter

import (
	"fmt"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Settings are the debug display settings in effect for a request. Handlers
// capture a snapshot once at the start of each request so that concurrent
// requests never observe a setting changing mid-flight.
type Settings struct {
	// ShowStaticVariables includes static members when enumerating children.
	ShowStaticVariables bool

	// ShowLogicalStructure enables the logical-size probe for collection
	// types.
	ShowLogicalStructure bool

	// ShowToString enables the computed-description detail for
	// reference-type values.
	ShowToString bool

	// MaxStringLength truncates rendered values. Zero means no limit.
	MaxStringLength int
}

// DefaultSettings returns the settings used before any client update.
func DefaultSettings() Settings {
	return Settings{
		ShowLogicalStructure: true,
		ShowToString:         true,
	}
}

// settingsKeys are the JSON keys a settings update may carry.
var settingsKeys = map[string]bool{
	"showStaticVariables":  true,
	"showLogicalStructure": true,
	"showToString":         true,
	"maxStringLength":      true,
}

// SettingsStore holds the current settings as a canonical JSON document.
// Updates merge partial documents; reads return value snapshots.
type SettingsStore struct {
	mu  sync.RWMutex
	doc string
}

// NewSettingsStore creates a store holding the default settings.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{doc: marshalSettings(DefaultSettings())}
}

// marshalSettings renders settings as the canonical JSON document.
func marshalSettings(set Settings) string {
	doc := "{}"
	doc, _ = sjson.Set(doc, "showStaticVariables", set.ShowStaticVariables)
	doc, _ = sjson.Set(doc, "showLogicalStructure", set.ShowLogicalStructure)
	doc, _ = sjson.Set(doc, "showToString", set.ShowToString)
	doc, _ = sjson.Set(doc, "maxStringLength", set.MaxStringLength)
	return doc
}

// unmarshalSettings parses the canonical document into a Settings value.
func unmarshalSettings(doc string) Settings {
	return Settings{
		ShowStaticVariables:  gjson.Get(doc, "showStaticVariables").Bool(),
		ShowLogicalStructure: gjson.Get(doc, "showLogicalStructure").Bool(),
		ShowToString:         gjson.Get(doc, "showToString").Bool(),
		MaxStringLength:      int(gjson.Get(doc, "maxStringLength").Int()),
	}
}

// Snapshot returns the current settings by value.
func (s *SettingsStore) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return unmarshalSettings(s.doc)
}

// Update merges a partial JSON settings document into the store and returns
// the resulting settings. Unknown keys are rejected and leave the store
// unchanged.
func (s *SettingsStore) Update(partial []byte) (Settings, error) {
	parsed := gjson.ParseBytes(partial)
	if !parsed.IsObject() {
		return Settings{}, fmt.Errorf("settings update is not a JSON object")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc
	var badKey string
	parsed.ForEach(func(key, value gjson.Result) bool {
		if !settingsKeys[key.Str] {
			badKey = key.Str
			return false
		}
		doc, _ = sjson.Set(doc, key.Str, value.Value())
		return true
	})
	if badKey != "" {
		return Settings{}, fmt.Errorf("unknown debug setting %q", badKey)
	}

	s.doc = doc
	return unmarshalSettings(doc), nil
}
