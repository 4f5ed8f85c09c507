package variables

import (
	"context"
	"errors"
)

// ErrUnsupportedStructure is returned when no logical structure provider can
// compute a size for a value.
var ErrUnsupportedStructure = errors.New("logical structure not supported for value")

// LogicalStructureProvider computes a type-specific logical size for values
// it recognizes, distinct from their raw field enumeration.
type LogicalStructureProvider interface {
	// Matches reports whether this provider understands the value's type.
	Matches(v Value) bool

	// Size computes the logical size of the value on the given thread. The
	// computation may run code in the debuggee and can fail.
	Size(ctx context.Context, v Value, threadID int64) (Value, error)
}

// LogicalStructureManager dispatches logical-size probes to registered
// per-type providers.
type LogicalStructureManager struct {
	providers []LogicalStructureProvider
}

// NewLogicalStructureManager creates a manager with the given providers.
func NewLogicalStructureManager(providers ...LogicalStructureProvider) *LogicalStructureManager {
	return &LogicalStructureManager{providers: providers}
}

// Register adds a provider. Not safe for concurrent use with probes; register
// everything before serving requests.
func (m *LogicalStructureManager) Register(p LogicalStructureProvider) {
	m.providers = append(m.providers, p)
}

// IsIndexedVariable reports whether some provider exposes a logical size for
// the value's type.
func (m *LogicalStructureManager) IsIndexedVariable(v Value) bool {
	if m == nil {
		return false
	}
	for _, p := range m.providers {
		if p.Matches(v) {
			return true
		}
	}
	return false
}

// LogicalSize computes the value's logical size via the first matching
// provider.
func (m *LogicalStructureManager) LogicalSize(ctx context.Context, v Value, threadID int64) (Value, error) {
	if m != nil {
		for _, p := range m.providers {
			if p.Matches(v) {
				return p.Size(ctx, v, threadID)
			}
		}
	}
	return nil, ErrUnsupportedStructure
}
