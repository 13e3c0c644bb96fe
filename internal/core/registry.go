package core

import (
	"sort"
	"sync"
)

// backendKey scopes one backend instance within a BackendDict.
// The same (account, region) pair may exist in many dicts; it is only
// unique within one.
type backendKey struct {
	accountID string
	region    string
}

// BackendDict lazily creates and caches one backend instance per
// (account-id, region) pair. The first Get for a key constructs the backend
// via the factory; every later Get returns the identical instance.
//
// Creation is guarded by a mutex so that two goroutines racing on the first
// access of the same key never construct the backend twice.
type BackendDict[B any] struct {
	serviceName string
	factory     func(accountID, region string) B

	mu       sync.Mutex
	backends map[backendKey]B

	validateRegions bool
	knownRegions    map[string]struct{}
}

// DictOption configures a BackendDict.
type DictOption func(*dictConfig)

type dictConfig struct {
	validateRegions   bool
	additionalRegions []string
}

// WithAdditionalRegions extends the known-region set, e.g. with partition
// names for global services.
func WithAdditionalRegions(regions ...string) DictOption {
	return func(c *dictConfig) {
		c.additionalRegions = append(c.additionalRegions, regions...)
	}
}

// WithoutRegionValidation accepts any region string. Intended for tests.
func WithoutRegionValidation() DictOption {
	return func(c *dictConfig) {
		c.validateRegions = false
	}
}

// NewBackendDict creates an empty dict for one service. No backends exist
// until the first Get.
func NewBackendDict[B any](serviceName string, factory func(accountID, region string) B, opts ...DictOption) *BackendDict[B] {
	cfg := dictConfig{validateRegions: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	known := make(map[string]struct{}, len(standardRegions)+len(cfg.additionalRegions))
	for _, r := range standardRegions {
		known[r] = struct{}{}
	}
	for _, r := range cfg.additionalRegions {
		known[r] = struct{}{}
	}

	return &BackendDict[B]{
		serviceName:     serviceName,
		factory:         factory,
		backends:        make(map[backendKey]B),
		validateRegions: cfg.validateRegions,
		knownRegions:    known,
	}
}

// ServiceName returns the service this dict holds backends for.
func (d *BackendDict[B]) ServiceName() string {
	return d.serviceName
}

// Get returns the backend for (accountID, region), constructing it on first
// access. An unknown region is a validation fault rather than a silent new
// namespace.
func (d *BackendDict[B]) Get(accountID, region string) (B, error) {
	if d.validateRegions {
		if _, ok := d.knownRegions[region]; !ok {
			var zero B
			return zero, ValidationError("unknown region '%s' for service %s", region, d.serviceName)
		}
	}

	key := backendKey{accountID: accountID, region: region}

	d.mu.Lock()
	defer d.mu.Unlock()

	if backend, ok := d.backends[key]; ok {
		return backend, nil
	}
	backend := d.factory(accountID, region)
	d.backends[key] = backend
	return backend, nil
}

// Len returns the number of live backend instances.
func (d *BackendDict[B]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.backends)
}

// Reset drops every cached backend. The next Get for any key constructs a
// fresh instance.
func (d *BackendDict[B]) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.backends = make(map[backendKey]B)
}

// Each calls fn for every live backend, ordered by account then region so
// callers get deterministic iteration.
func (d *BackendDict[B]) Each(fn func(accountID, region string, backend B)) {
	d.mu.Lock()
	keys := make([]backendKey, 0, len(d.backends))
	for key := range d.backends {
		keys = append(keys, key)
	}
	d.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].accountID != keys[j].accountID {
			return keys[i].accountID < keys[j].accountID
		}
		return keys[i].region < keys[j].region
	})

	for _, key := range keys {
		d.mu.Lock()
		backend, ok := d.backends[key]
		d.mu.Unlock()
		if ok {
			fn(key.accountID, key.region, backend)
		}
	}
}

// Resettable is implemented by every BackendDict regardless of its backend
// type parameter, so the Registry can hold them uniformly.
type Resettable interface {
	ServiceName() string
	Reset()
}

// StateDumper is optionally implemented by backend dicts whose service can
// render its live state for the control API.
type StateDumper interface {
	DumpState() interface{}
}

// Registry holds the backend dicts of every registered service for one
// server instance. It is constructed explicitly and passed to whatever
// builds request handlers; there is no process-wide instance.
type Registry struct {
	mu    sync.Mutex
	dicts []Resettable
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a service's backend dict.
func (r *Registry) Add(dict Resettable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dicts = append(r.dicts, dict)
}

// ResetAll clears every registered backend dict. Used between test runs.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	dicts := append([]Resettable(nil), r.dicts...)
	r.mu.Unlock()

	for _, d := range dicts {
		d.Reset()
	}
}

// DumpAll renders the live state of every service that supports dumping,
// keyed by service name.
func (r *Registry) DumpAll() map[string]interface{} {
	r.mu.Lock()
	dicts := append([]Resettable(nil), r.dicts...)
	r.mu.Unlock()

	out := make(map[string]interface{}, len(dicts))
	for _, d := range dicts {
		if dumper, ok := d.(StateDumper); ok {
			out[d.ServiceName()] = dumper.DumpState()
		}
	}
	return out
}
