package vision

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/cinelog/ticket-scanner/constants"
	"github.com/cinelog/ticket-scanner/internal/common"
)

// Registry holds every credentialed backend and tracks which one is active.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
	active    string
	log       *slog.Logger
}

// NewRegistry instantiates a backend for every provider with a configured
// credential. A backend whose constructor fails is logged and skipped, never
// fatal: the registry is usable as long as one backend came up. The active
// provider starts as the configured default when that backend registered,
// otherwise the first backend that was instantiated.
func NewRegistry(ctx context.Context, cfg common.ProvidersConfig, log *slog.Logger) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		log:       log,
	}

	if cfg.OpenAI.APIKey != "" {
		r.register(NewOpenAIProvider(descriptorFor(constants.ProviderOpenAI, cfg.OpenAI), log))
	}
	if cfg.Gemini.APIKey != "" {
		p, err := NewGeminiProvider(ctx, descriptorFor(constants.ProviderGemini, cfg.Gemini), log)
		if err != nil {
			log.Error("vision.registry.init_failed", "provider", constants.ProviderGemini, "error", err)
		} else {
			r.register(p)
		}
	}
	if cfg.Anthropic.APIKey != "" {
		r.register(NewAnthropicProvider(descriptorFor(constants.ProviderAnthropic, cfg.Anthropic), log))
	}
	if cfg.OpenRouter.APIKey != "" {
		r.register(NewOpenRouterProvider(descriptorFor(constants.ProviderOpenRouter, cfg.OpenRouter), log))
	}

	if _, ok := r.providers[cfg.Default]; ok {
		r.active = cfg.Default
	} else if len(r.order) > 0 {
		r.active = r.order[0]
	}
	log.Info("vision.registry.ready", "providers", r.Names(), "active", r.active)
	return r
}

// NewRegistryWithProviders builds a registry from pre-constructed backends,
// active defaulting to the first one given. Used by tests and by callers
// that manage provider construction themselves.
func NewRegistryWithProviders(log *slog.Logger, providers ...Provider) *Registry {
	r := &Registry{
		providers: make(map[string]Provider, len(providers)),
		log:       log,
	}
	for _, p := range providers {
		r.register(p)
	}
	if len(r.order) > 0 {
		r.active = r.order[0]
	}
	return r
}

func descriptorFor(name string, pc common.ProviderConfig) Descriptor {
	return Descriptor{
		Name:       name,
		APIKey:     pc.APIKey,
		Model:      pc.Model,
		BaseURL:    pc.BaseURL,
		Timeout:    pc.Timeout,
		MaxRetries: pc.MaxRetries,
	}
}

func (r *Registry) register(p Provider) {
	if _, exists := r.providers[p.Name()]; !exists {
		r.order = append(r.order, p.Name())
	}
	r.providers[p.Name()] = p
}

// Get returns the named provider.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[constants.NormalizeProviderName(name)]
	if !ok {
		return nil, common.NewAppError("PROVIDER_NOT_FOUND", fmt.Sprintf("provider %q is not registered", name), common.ErrNotFound)
	}
	return p, nil
}

// Active returns the currently selected provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == "" {
		return nil, common.NewAppError("NO_PROVIDER", "no vision provider registered", common.ErrNoProvider)
	}
	return r.providers[r.active], nil
}

// ActiveName returns the selected provider's name, "" when none.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// SetActive switches the selected provider. Unknown names are rejected and
// the previous selection stays in place.
func (r *Registry) SetActive(name string) error {
	name = constants.NormalizeProviderName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return common.NewAppError("PROVIDER_NOT_FOUND", fmt.Sprintf("provider %q is not registered", name), common.ErrNotFound)
	}
	r.active = name
	r.log.Info("vision.registry.active_changed", "provider", name)
	return nil
}

// Remove drops a provider, e.g. after repeated auth failures. When the
// active provider is removed the selection falls to the earliest remaining
// registration.
func (r *Registry) Remove(name string) {
	name = constants.NormalizeProviderName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return
	}
	delete(r.providers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.active == name {
		r.active = ""
		if len(r.order) > 0 {
			r.active = r.order[0]
		}
		r.log.Info("vision.registry.active_changed", "provider", r.active, "removed", name)
	}
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len reports how many providers are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// TestAll probes every registered backend and returns name -> reachable. A
// panicking backend counts as unreachable rather than taking the process
// down.
func (r *Registry) TestAll(ctx context.Context) map[string]bool {
	r.mu.RLock()
	providers := make(map[string]Provider, len(r.providers))
	for n, p := range r.providers {
		providers[n] = p
	}
	r.mu.RUnlock()

	results := make(map[string]bool, len(providers))
	for name, p := range providers {
		results[name] = r.safeTest(ctx, name, p)
	}
	return results
}

func (r *Registry) safeTest(ctx context.Context, name string, p Provider) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("vision.test.panic", "provider", name, "panic", rec)
			ok = false
		}
	}()
	return p.TestConnection(ctx)
}
