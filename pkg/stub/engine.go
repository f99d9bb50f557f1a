package stub

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getmockd/contractd/internal/id"
	"github.com/getmockd/contractd/internal/matching"
	"github.com/getmockd/contractd/internal/storage"
	"github.com/getmockd/contractd/pkg/contract"
	"github.com/getmockd/contractd/pkg/logging"
	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// ErrUnknownContract is returned for a stub whose contract is not loaded.
var ErrUnknownContract = errors.New("unknown contract")

// InvalidStubError is returned by Add for a stub that does not match its
// scenario.
type InvalidStubError struct {
	Scenario string
	Result   result.Result
}

func (e *InvalidStubError) Error() string {
	return fmt.Sprintf("stub for scenario %q does not match the contract: %s", e.Scenario, e.Result)
}

// Match is the outcome of a lookup: the selected stub, or the near misses
// explaining why none was selected.
type Match struct {
	Stub       *Stub
	NearMisses []matching.NearMiss
}

// Found reports whether a stub was selected.
func (m *Match) Found() bool {
	return m.Stub != nil
}

// Engine holds the stubs of loaded contracts and selects one for incoming
// requests and messages. It is safe for concurrent use.
type Engine struct {
	mu        sync.RWMutex
	contracts map[string]*contract.Compiled

	store storage.Store[*Stub]
	log   *slog.Logger
	topN  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithStore sets the stub store. Defaults to an in-memory store.
func WithStore(store storage.Store[*Stub]) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithNearMisses sets how many near misses a failed lookup reports.
func WithNearMisses(n int) Option {
	return func(e *Engine) {
		e.topN = n
	}
}

// NewEngine creates an empty engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		contracts: make(map[string]*contract.Compiled),
		store:     storage.NewMemory[*Stub](),
		log:       logging.Nop(),
		topN:      matching.DefaultTopN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load registers c, replacing any contract of the same name, and stores the
// stubs generated from it. Stubs generated from a previous version are
// dropped. Explicit stubs are checked against c: those that still match are
// rebound to its scenarios, the rest are removed. Lookups see either the old
// contract with its stubs or the new one with its stubs.
func (e *Engine) Load(c *contract.Compiled) ([]*Stub, error) {
	stubs, err := Generate(c)
	if err != nil {
		return nil, fmt.Errorf("failed to generate stubs for %s: %w", c.Name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.contracts[c.Name] = c
	group := storage.NewGroup(e.store, c.Name)
	kept, dropped := 0, 0
	for _, s := range group.List() {
		if s.Priority != PriorityExplicit {
			group.Delete(s.ID)
			continue
		}
		if res := Validate(c, s); res.IsFailure() {
			group.Delete(s.ID)
			dropped++
			e.log.Warn("removed stub that no longer matches its contract",
				"id", s.ID, "contract", c.Name, "scenario", s.Scenario, "reason", res.Report())
			continue
		}
		bind(c, s)
		kept++
	}
	for _, s := range stubs {
		if err := group.Set(s); err != nil {
			return nil, fmt.Errorf("failed to store stub %s: %w", s.ID, err)
		}
	}

	e.log.Info("loaded contract", "contract", c.Name, "version", c.Version,
		"stubs", len(stubs), "explicitKept", kept, "explicitRemoved", dropped)
	return stubs, nil
}

// Unload removes a contract and its stubs. Returns false if it was not
// loaded.
func (e *Engine) Unload(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.contracts[name]
	if ok {
		delete(e.contracts, name)
		storage.NewGroup(e.store, name).Clear()
	}
	return ok
}

// Add validates an explicit stub against its scenario and stores it ahead
// of generated stubs. A missing ID is assigned.
func (e *Engine) Add(s *Stub) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.contracts[s.Contract]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownContract, s.Contract)
	}
	if res := Validate(c, s); res.IsFailure() {
		return &InvalidStubError{Scenario: s.Scenario, Result: res}
	}

	bind(c, s)
	s.Priority = PriorityExplicit
	if s.ID == "" {
		s.ID = id.New()
	}
	if err := e.store.Set(s); err != nil {
		return fmt.Errorf("failed to store stub %s: %w", s.ID, err)
	}

	e.log.Debug("added stub", "id", s.ID, "contract", s.Contract, "scenario", s.Scenario)
	return nil
}

// bind points a validated stub at the patterns of its scenario in c.
func bind(c *contract.Compiled, s *Stub) {
	sc, _ := c.Scenario(s.Scenario)
	s.request, s.message = sc.Request, sc.Kafka
}

// Remove deletes a stub by ID.
func (e *Engine) Remove(id string) bool {
	return e.store.Delete(id)
}

// Stub returns a stub by ID.
func (e *Engine) Stub(id string) (*Stub, bool) {
	return e.store.Get(id)
}

// Stubs returns every stub in selection order.
func (e *Engine) Stubs() []*Stub {
	return e.store.List()
}

// ContractStubs returns the stubs of one contract in selection order.
func (e *Engine) ContractStubs(name string) []*Stub {
	return storage.NewGroup(e.store, name).List()
}

// MatchHTTP selects the first stub whose request pattern matches req. An
// explicit stub is selected only for the request it was written for.
func (e *Engine) MatchHTTP(req *contract.RequestValue) *Match {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stubs := e.store.List()
	for _, s := range stubs {
		if s.request == nil {
			continue
		}
		c, ok := e.contracts[s.Contract]
		if !ok {
			continue
		}
		if s.request.Matches(req, c.Resolver()).IsSuccess() && s.coversRequest(req) {
			e.log.Debug("stub matched", "id", s.ID, "scenario", s.Scenario, "method", req.Method, "path", req.Path)
			return &Match{Stub: s}
		}
	}

	misses := matching.CollectRequestNearMisses(e.candidates(stubs), req, e.topN)
	e.log.Info("no stub matched", "method", req.Method, "path", req.Path, "nearMisses", len(misses))
	return &Match{NearMisses: misses}
}

// MatchMessage selects the first stub whose message pattern matches msg.
func (e *Engine) MatchMessage(msg value.Message) *Match {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stubs := e.store.List()
	for _, s := range stubs {
		if s.message == nil {
			continue
		}
		c, ok := e.contracts[s.Contract]
		if !ok {
			continue
		}
		if s.message.Matches(msg, c.Resolver()).IsSuccess() && s.coversMessage(msg) {
			e.log.Debug("stub matched", "id", s.ID, "scenario", s.Scenario, "target", msg.Target)
			return &Match{Stub: s}
		}
	}

	misses := matching.CollectMessageNearMisses(e.candidates(stubs), msg, e.topN)
	e.log.Info("no stub matched", "target", msg.Target, "nearMisses", len(misses))
	return &Match{NearMisses: misses}
}

// candidates offers every stub for near-miss analysis, judged by the
// pattern that selects it. The caller holds e.mu.
func (e *Engine) candidates(stubs []*Stub) []matching.Candidate {
	out := make([]matching.Candidate, 0, len(stubs))
	for _, s := range stubs {
		c, ok := e.contracts[s.Contract]
		if !ok {
			continue
		}
		out = append(out, matching.Candidate{
			StubID:   s.ID,
			Scenario: s.Scenario,
			Request:  s.request,
			Message:  s.message,
			Resolver: c.Resolver(),
		})
	}
	return out
}
