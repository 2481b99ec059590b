// ABOUTME: Feature flags toggling search modes and optional server behavior at runtime
// ABOUTME: Flags travel in the request context so core code never reads the environment

package featureflags

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlag represents a single feature flag
type FeatureFlag string

// Defined feature flags
const (
	// SimpleSearch replaces fuzzy ranking with a plain substring filter
	SimpleSearch FeatureFlag = "simple_search"

	// RelevanceOnly skips the priority tiebreak when a query is active
	RelevanceOnly FeatureFlag = "relevance_only"

	// CoverColorEnabled enables the cover color endpoint
	CoverColorEnabled FeatureFlag = "cover_color_enabled"

	// RateLimitEnabled enables rate limiting
	RateLimitEnabled FeatureFlag = "rate_limit_enabled"

	// CacheEnabled enables caching of the raw catalog feed
	CacheEnabled FeatureFlag = "cache_enabled"
)

// All lists every defined flag
func All() []FeatureFlag {
	return []FeatureFlag{SimpleSearch, RelevanceOnly, CoverColorEnabled, RateLimitEnabled, CacheEnabled}
}

// Manager defines the interface for feature flag management
type Manager interface {
	// IsEnabled checks if a feature flag is enabled
	IsEnabled(ctx context.Context, flag FeatureFlag) bool

	// SetEnabled flips a flag at runtime
	SetEnabled(flag FeatureFlag, enabled bool)

	// GetAllFlags returns the state of all flags
	GetAllFlags() map[FeatureFlag]bool
}

// EnvManager reads flags from <prefix><FLAG> environment variables.
// A runtime override wins over the environment, which wins over a default.
type EnvManager struct {
	mu        sync.RWMutex
	overrides map[FeatureFlag]bool
	defaults  map[FeatureFlag]bool
	prefix    string
}

// NewEnvManager creates a new environment-based feature flag manager
func NewEnvManager(prefix string) *EnvManager {
	if prefix == "" {
		prefix = "FEATURE_"
	}
	return &EnvManager{
		overrides: make(map[FeatureFlag]bool),
		defaults:  make(map[FeatureFlag]bool),
		prefix:    prefix,
	}
}

// SetDefault sets the state used when the flag's variable is unset or unparseable
func (m *EnvManager) SetDefault(flag FeatureFlag, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults[flag] = enabled
}

// IsEnabled checks if a feature flag is enabled
func (m *EnvManager) IsEnabled(ctx context.Context, flag FeatureFlag) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if enabled, ok := m.overrides[flag]; ok {
		return enabled
	}
	if enabled, ok := parseValue(os.Getenv(m.EnvKey(flag))); ok {
		return enabled
	}
	return m.defaults[flag]
}

// EnvKey returns the environment variable controlling flag
func (m *EnvManager) EnvKey(flag FeatureFlag) string {
	return m.prefix + strings.ToUpper(string(flag))
}

// SetEnabled overrides the environment for flag
func (m *EnvManager) SetEnabled(flag FeatureFlag, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[flag] = enabled
}

// GetAllFlags returns the state of all defined flags
func (m *EnvManager) GetAllFlags() map[FeatureFlag]bool {
	ctx := context.Background()
	flags := make(map[FeatureFlag]bool, len(All()))
	for _, f := range All() {
		flags[f] = m.IsEnabled(ctx, f)
	}
	return flags
}

// parseValue accepts strconv booleans plus on/off and enabled/disabled
func parseValue(v string) (enabled bool, ok bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "":
		return false, false
	case "on", "enabled", "yes":
		return true, true
	case "off", "disabled", "no":
		return false, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// StaticManager implements Manager with a fixed map, for tests and embedders
type StaticManager struct {
	flags map[FeatureFlag]bool
	mu    sync.RWMutex
}

// NewStaticManager creates a manager with predefined flag states. The map is copied.
func NewStaticManager(flags map[FeatureFlag]bool) *StaticManager {
	m := &StaticManager{flags: make(map[FeatureFlag]bool, len(flags))}
	for k, v := range flags {
		m.flags[k] = v
	}
	return m
}

// IsEnabled checks if a feature flag is enabled
func (m *StaticManager) IsEnabled(ctx context.Context, flag FeatureFlag) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags[flag]
}

// SetEnabled sets a feature flag's state
func (m *StaticManager) SetEnabled(flag FeatureFlag, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[flag] = enabled
}

// GetAllFlags returns all flag states
func (m *StaticManager) GetAllFlags() map[FeatureFlag]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[FeatureFlag]bool, len(m.flags))
	for k, v := range m.flags {
		result[k] = v
	}
	return result
}

type contextKey struct{}

// WithManager attaches a flag manager to the context
func WithManager(ctx context.Context, manager Manager) context.Context {
	return context.WithValue(ctx, contextKey{}, manager)
}

// FromContext returns the context's manager, or nil
func FromContext(ctx context.Context) Manager {
	manager, _ := ctx.Value(contextKey{}).(Manager)
	return manager
}

// IsEnabled reports whether flag is on for ctx. Without a manager every flag is off.
func IsEnabled(ctx context.Context, flag FeatureFlag) bool {
	manager := FromContext(ctx)
	if manager == nil {
		return false
	}
	return manager.IsEnabled(ctx, flag)
}
