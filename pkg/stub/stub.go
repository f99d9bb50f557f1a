package stub

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/getmockd/contractd/internal/id"
	"github.com/getmockd/contractd/pkg/contract"
	"github.com/getmockd/contractd/pkg/pattern"
	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// Stub priorities. Explicit stubs are tried before generated ones.
const (
	PriorityGenerated = 0
	PriorityExplicit  = 10
)

// Stub is a canned interaction of one scenario: either a request with the
// response to send, or a message to publish.
type Stub struct {
	ID       string
	Contract string
	Scenario string
	Priority int

	Request  *contract.RequestValue
	Response *contract.ResponseValue
	Message  *value.Message

	// Patterns selecting the stub. Generated stubs use the scenario variant
	// they were generated from; explicit stubs use the scenario itself.
	request *contract.HTTPRequest
	message *pattern.KafkaMessage
}

// IsMessage reports whether the stub carries a message.
func (s *Stub) IsMessage() bool {
	return s.Message != nil
}

// StoreID implements storage.Item.
func (s *Stub) StoreID() string { return s.ID }

// StoreGroup implements storage.Item; stubs are grouped by contract.
func (s *Stub) StoreGroup() string { return s.Contract }

// StorePriority implements storage.Item.
func (s *Stub) StorePriority() int { return s.Priority }

// Generate produces stubs for every scenario of c. Each example row (or a
// single empty row) specializes the scenario; every variant of the cross
// product becomes one stub with generated values. IDs are stable across
// runs.
func Generate(c *contract.Compiled) ([]*Stub, error) {
	r := c.Resolver(pattern.WithGenerative(true))

	var stubs []*Stub
	for _, s := range c.Scenarios {
		generated, err := generateScenario(c.Name, s, r)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		stubs = append(stubs, generated...)
	}
	return stubs, nil
}

func generateScenario(contractName string, s *contract.CompiledScenario, r *pattern.Resolver) ([]*Stub, error) {
	var stubs []*Stub
	next := func() *Stub {
		st := &Stub{
			ID:       id.Derived(contractName, s.Name, strconv.Itoa(len(stubs))),
			Contract: contractName,
			Scenario: s.Name,
			Priority: PriorityGenerated,
		}
		stubs = append(stubs, st)
		return st
	}

	for i, row := range s.Rows() {
		if s.IsMessage() {
			variants, err := s.Kafka.NewBasedOn(row, r)
			if err != nil {
				return nil, fmt.Errorf("example %d: %w", i, err)
			}
			for _, v := range variants {
				msg, err := v.Generate(r)
				if err != nil {
					return nil, fmt.Errorf("example %d: message: %w", i, err)
				}
				st := next()
				st.Message = &msg
				st.message = v
			}
			continue
		}

		requests, err := s.Request.NewBasedOn(row, r)
		if err != nil {
			return nil, fmt.Errorf("example %d: request: %w", i, err)
		}
		responses, err := s.Response.NewBasedOn(row, r)
		if err != nil {
			return nil, fmt.Errorf("example %d: response: %w", i, err)
		}
		for _, reqPattern := range requests {
			for _, respPattern := range responses {
				req, err := reqPattern.Generate(r)
				if err != nil {
					return nil, fmt.Errorf("example %d: request: %w", i, err)
				}
				resp, err := respPattern.Generate(r)
				if err != nil {
					return nil, fmt.Errorf("example %d: response: %w", i, err)
				}
				st := next()
				st.Request, st.Response = req, resp
				st.request = reqPattern
			}
		}
	}
	return stubs, nil
}

// Validate checks a stub against its scenario in c: the request and
// response (or the message) must match the scenario's patterns.
func Validate(c *contract.Compiled, s *Stub) result.Result {
	sc, ok := c.Scenario(s.Scenario)
	if !ok {
		return result.Failuref("No scenario named %q in contract %s", s.Scenario, c.Name)
	}
	r := c.Resolver()

	if sc.IsMessage() {
		if s.Message == nil {
			return result.Failure("Expected a kafka message, got an HTTP request")
		}
		return sc.Kafka.Matches(*s.Message, r)
	}
	if s.Request == nil || s.Response == nil {
		return result.Failure("Expected an HTTP request and response, got a kafka message")
	}
	if res := sc.Request.Matches(s.Request, r); res.IsFailure() {
		return res
	}
	return sc.Response.Matches(s.Response, r)
}

// coversRequest reports whether an explicit stub was written for req:
// method, path, the stub's query and header entries, and a non-empty body
// must be equal. Generated stubs cover every request their pattern matches.
func (s *Stub) coversRequest(req *contract.RequestValue) bool {
	if s.Priority != PriorityExplicit || s.Request == nil {
		return true
	}
	want := s.Request
	if !strings.EqualFold(want.Method, req.Method) || want.Path != req.Path {
		return false
	}
	if !containsEntries(req.Query, want.Query) || !containsEntries(req.Headers, want.Headers) {
		return false
	}
	if !value.IsEmpty(want.Body) && (req.Body == nil || !sameValue(want.Body, req.Body)) {
		return false
	}
	return true
}

// coversMessage is coversRequest for messages.
func (s *Stub) coversMessage(msg value.Message) bool {
	if s.Priority != PriorityExplicit || s.Message == nil {
		return true
	}
	if s.Message.Key != nil && (msg.Key == nil || !sameValue(s.Message.Key, msg.Key)) {
		return false
	}
	return sameValue(s.Message.Value, msg.Value)
}

func containsEntries(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

// sameValue compares values, reading raw text the way the other side is
// shaped.
func sameValue(want, got value.Value) bool {
	if want.Equal(got) {
		return true
	}
	if s, ok := got.(value.String); ok {
		if parsed, err := value.Parse(string(s)); err == nil {
			return want.Equal(parsed)
		}
	}
	return false
}
