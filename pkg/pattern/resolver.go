package pattern

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/getmockd/contractd/pkg/logging"
	"github.com/getmockd/contractd/pkg/result"
)

// DefaultMaxDepth bounds structural nesting during matching, generation and
// compatibility checks.
const DefaultMaxDepth = 64

// generateRecursionLimit is how often a name may appear on one generation path.
const generateRecursionLimit = 2

// ErrRegistryFrozen is returned when registering into a frozen registry.
var ErrRegistryFrozen = errors.New("registry is frozen")

// ErrDuplicateType is returned when a type name is registered twice.
var ErrDuplicateType = errors.New("type already registered")

// Registry maps type names to patterns. It is filled while a contract is
// compiled, then frozen and shared read-only by every resolver.
type Registry struct {
	mu       sync.RWMutex
	patterns map[string]Pattern
	frozen   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{patterns: make(map[string]Pattern)}
}

// Register adds a named pattern. The name may be given with or without
// surrounding parentheses.
func (g *Registry) Register(name string, p Pattern) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		return ErrRegistryFrozen
	}
	token := TypeToken(name)
	if _, exists := g.patterns[token]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, token)
	}
	g.patterns[token] = p
	return nil
}

// Freeze makes the registry read-only.
func (g *Registry) Freeze() {
	g.mu.Lock()
	g.frozen = true
	g.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (g *Registry) Frozen() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.frozen
}

// Get returns the pattern registered under name.
func (g *Registry) Get(name string) (Pattern, bool) {
	if g == nil {
		return nil, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.patterns[TypeToken(name)]
	return p, ok
}

// Names returns the registered type tokens, sorted.
func (g *Registry) Names() []string {
	if g == nil {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.patterns))
	for name := range g.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every named reference reachable from a registered
// pattern resolves. It returns one *LookupError per missing name.
func (g *Registry) Validate() error {
	missing := map[string]bool{}
	for _, name := range g.Names() {
		p, _ := g.Get(name)
		walkReferences(p, func(ref string) {
			if _, ok := builtin(ref); ok {
				return
			}
			if _, ok := g.Get(ref); !ok {
				missing[ref] = true
			}
		})
	}
	return missingError(missing)
}

// References returns the named types p refers to directly or through its
// children, without resolving them.
func References(p Pattern) []string {
	seen := map[string]bool{}
	var out []string
	walkReferences(p, func(ref string) {
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	})
	return out
}

func walkReferences(p Pattern, visit func(string)) {
	switch t := p.(type) {
	case Deferred:
		visit(TypeToken(t.Name))
	case LookupRow:
		walkReferences(t.Pattern, visit)
	case *List:
		walkReferences(t.Element, visit)
	case *Object:
		for _, f := range t.Fields {
			walkReferences(f.Pattern, visit)
		}
	case *Any:
		for _, alt := range t.Alternatives {
			walkReferences(alt, visit)
		}
	}
}

func missingError(missing map[string]bool) error {
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	errs := make([]error, len(names))
	for i, name := range names {
		errs[i] = &LookupError{Name: name}
	}
	return errors.Join(errs...)
}

// TypeToken returns name in its parenthesized form: "Order" becomes "(Order)".
func TypeToken(name string) string {
	name = strings.TrimSpace(name)
	if IsPatternToken(name) {
		return name
	}
	return "(" + name + ")"
}

// Resolver carries the registry, the mode flags and the recursion guards
// through every pattern operation. Operations never modify a resolver they
// are handed; recursion works on copies.
type Resolver struct {
	registry   *Registry
	generative bool
	tolerant   bool
	maxDepth   int
	logger     *slog.Logger

	depth     int
	expanding []string // names expanded at the current value node
	chain     []string // names expanded along the current generation path
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithGenerative makes Generate fill optional keys instead of omitting them.
func WithGenerative(generative bool) Option {
	return func(r *Resolver) { r.generative = generative }
}

// WithTolerant makes objects accept keys their pattern does not declare.
func WithTolerant(tolerant bool) Option {
	return func(r *Resolver) { r.tolerant = tolerant }
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver creates a resolver over registry. A nil registry resolves
// only the built-in type tokens.
func NewResolver(registry *Registry, opts ...Option) *Resolver {
	if registry == nil {
		registry = NewRegistry()
	}
	r := &Resolver{
		registry: registry,
		maxDepth: DefaultMaxDepth,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the resolver's registry.
func (r *Resolver) Registry() *Registry { return r.registry }

// Generative reports whether generation fills optional keys.
func (r *Resolver) Generative() bool { return r.generative }

// Tolerant reports whether undeclared object keys are accepted.
func (r *Resolver) Tolerant() bool { return r.tolerant }

// With returns a copy of r with opts applied. Recursion state is kept.
func (r *Resolver) With(opts ...Option) *Resolver {
	c := r.clone()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup resolves a type name to its pattern. Built-in tokens such as
// "(string)" resolve without the registry.
func (r *Resolver) Lookup(name string) (Pattern, error) {
	token := TypeToken(name)
	if p, ok := builtin(token); ok {
		return p, nil
	}
	if p, ok := r.registry.Get(token); ok {
		return p, nil
	}
	r.logger.Debug("type lookup failed", "type", token)
	return nil, &LookupError{Name: token}
}

func (r *Resolver) clone() *Resolver {
	c := *r
	c.expanding = slices.Clone(r.expanding)
	c.chain = slices.Clone(r.chain)
	return &c
}

// descend moves one structural level down. The names expanded at the
// parent node no longer count as a cycle.
func (r *Resolver) descend() (*Resolver, result.Result) {
	if r.depth >= r.maxDepth {
		r.logger.Warn("maximum nesting depth exceeded", "depth", r.depth)
		return nil, result.Failuref("maximum nesting depth %d exceeded", r.maxDepth)
	}
	c := r.clone()
	c.depth++
	c.expanding = nil
	return c, result.Success()
}

func (r *Resolver) descendGenerate() (*Resolver, error) {
	if r.depth >= r.maxDepth {
		return nil, fmt.Errorf("%w: %d", ErrMaxDepth, r.maxDepth)
	}
	c := r.clone()
	c.depth++
	return c, nil
}

// expand records that name is being expanded at the current node. It
// reports false when the name is already being expanded there.
func (r *Resolver) expand(name string) (*Resolver, bool) {
	if slices.Contains(r.expanding, name) {
		return nil, false
	}
	c := r.clone()
	c.expanding = append(c.expanding, name)
	return c, true
}

// enter records name on the generation path, failing with a *CycleError
// once it already appears limit times.
func (r *Resolver) enter(name string, limit int) (*Resolver, error) {
	count := 0
	for _, n := range r.chain {
		if n == name {
			count++
		}
	}
	if count >= limit {
		return nil, &CycleError{Name: name}
	}
	c := r.clone()
	c.chain = append(c.chain, name)
	return c, nil
}
