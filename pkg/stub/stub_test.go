package stub

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/contractd/internal/id"
	"github.com/getmockd/contractd/pkg/contract"
	"github.com/getmockd/contractd/pkg/logging"
	"github.com/getmockd/contractd/pkg/value"
)

const shopYAML = `
name: shop
version: 1.0.0
types:
  Item:
    name: (string)
    qty: (number)
scenarios:
  - name: add item
    request:
      method: POST
      path: /carts/(id:number)/items
      headers:
        X-Tenant: (string)
      body: (Item)
    response:
      status: 201
      body: (Item)
  - name: get cart
    request:
      method: GET
      path: /carts/(id:number)
    response:
      status: 200
      body:
        id: (number)
        items: [(Item)]
    examples:
      - id: "7"
      - id: "8"
  - name: item added
    kafka:
      target: cart-events
      key: (string)
      value: (Item)
`

func compileShop(t *testing.T) *contract.Compiled {
	t.Helper()
	doc, err := contract.ParseYAML([]byte(shopYAML))
	require.NoError(t, err)
	c, err := contract.Compile(doc, nil)
	require.NoError(t, err)
	return c
}

func item(name string, qty value.Value) *value.Object {
	return value.NewObject(
		value.Field{Key: "name", Value: value.String(name)},
		value.Field{Key: "qty", Value: qty},
	)
}

func TestGenerate(t *testing.T) {
	c := compileShop(t)

	stubs, err := Generate(c)
	require.NoError(t, err)
	require.Len(t, stubs, 4)

	assert.Equal(t, "add item", stubs[0].Scenario)
	assert.Equal(t, "POST", stubs[0].Request.Method)
	assert.Equal(t, 201, stubs[0].Response.Status)

	assert.Equal(t, "get cart", stubs[1].Scenario)
	assert.Equal(t, "/carts/7", stubs[1].Request.Path)
	assert.Equal(t, "/carts/8", stubs[2].Request.Path)
	cartID, ok := value.Lookup(stubs[1].Response.Body, "id")
	require.True(t, ok)
	assert.Equal(t, value.Number(7), cartID)

	assert.True(t, stubs[3].IsMessage())
	assert.Equal(t, "cart-events", stubs[3].Message.Target)

	for _, s := range stubs {
		assert.Equal(t, "shop", s.Contract)
		assert.Equal(t, PriorityGenerated, s.Priority)
		assert.True(t, id.IsValid(s.ID), "id %q", s.ID)
		assert.True(t, Validate(c, s).IsSuccess(), "stub %s: %s", s.Scenario, Validate(c, s))
	}
}

func TestGenerate_StableIDs(t *testing.T) {
	c := compileShop(t)

	first, err := Generate(c)
	require.NoError(t, err)
	second, err := Generate(c)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.False(t, seen[first[i].ID], "duplicate id %s", first[i].ID)
		seen[first[i].ID] = true
	}
}

func TestValidate(t *testing.T) {
	c := compileShop(t)
	good := func() *Stub {
		return &Stub{
			Contract: "shop",
			Scenario: "add item",
			Request: &contract.RequestValue{
				Method:  "POST",
				Path:    "/carts/3/items",
				Headers: map[string]string{"x-tenant": "acme"},
				Body:    item("pen", value.Number(2)),
			},
			Response: &contract.ResponseValue{Status: 201, Body: item("pen", value.Number(2))},
		}
	}

	tests := []struct {
		name    string
		mutate  func(s *Stub)
		path    string
		message string
	}{
		{name: "valid", mutate: func(*Stub) {}},
		{
			name:    "unknown scenario",
			mutate:  func(s *Stub) { s.Scenario = "remove item" },
			message: `No scenario named "remove item" in contract shop`,
		},
		{
			name: "message for request scenario",
			mutate: func(s *Stub) {
				s.Request, s.Response = nil, nil
				s.Message = &value.Message{Target: "cart-events", Value: value.String("x")}
			},
			message: "Expected an HTTP request and response, got a kafka message",
		},
		{
			name:   "bad request body",
			mutate: func(s *Stub) { s.Request.Body = item("pen", value.String("two")) },
			path:   "REQUEST.BODY.qty",
		},
		{
			name:   "bad response status",
			mutate: func(s *Stub) { s.Response.Status = 200 },
			path:   "RESPONSE.STATUS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := good()
			tt.mutate(s)
			res := Validate(c, s)
			if tt.path == "" && tt.message == "" {
				assert.True(t, res.IsSuccess(), res.String())
				return
			}
			require.True(t, res.IsFailure())
			if tt.path != "" {
				assert.Equal(t, tt.path, res.PathString())
			}
			if tt.message != "" {
				assert.Equal(t, tt.message, res.Message())
			}
		})
	}
}

func TestValidate_MessageScenario(t *testing.T) {
	c := compileShop(t)

	ok := &Stub{Scenario: "item added", Message: &value.Message{Target: "cart-events", Key: value.String("c1"), Value: item("pen", value.Number(1))}}
	assert.True(t, Validate(c, ok).IsSuccess())

	wrong := &Stub{Scenario: "item added", Request: &contract.RequestValue{Method: "GET", Path: "/"}}
	assert.Equal(t, "Expected a kafka message, got an HTTP request", Validate(c, wrong).Message())

	badTarget := &Stub{Scenario: "item added", Message: &value.Message{Target: "other", Key: value.String("c1"), Value: item("pen", value.Number(1))}}
	assert.Equal(t, "KAFKA-MESSAGE.TARGET", Validate(c, badTarget).PathString())
}

func TestFile_RoundTrip(t *testing.T) {
	c := compileShop(t)
	stubs, err := Generate(c)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, stubs))

	decoded, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, decoded, len(stubs))

	for i, s := range decoded {
		assert.Equal(t, stubs[i].ID, s.ID)
		assert.Equal(t, stubs[i].Scenario, s.Scenario)
		assert.Equal(t, PriorityExplicit, s.Priority)
		assert.True(t, Validate(c, s).IsSuccess(), "stub %s: %s", s.Scenario, Validate(c, s))
	}
}

func TestDecode(t *testing.T) {
	data := `
scenario: add item
contract: shop
request:
  method: POST
  path: /carts/3/items
  headers:
    X-Tenant: acme
  body:
    name: pen
    qty: 2
response:
  status: 201
  body: {name: pen, qty: 2}
---
scenario: item added
message:
  target: cart-events
  value: {name: pen, qty: 1}
`
	stubs, err := Decode([]byte(data))
	require.NoError(t, err)
	require.Len(t, stubs, 2)

	req := stubs[0].Request
	assert.Equal(t, map[string]string{"x-tenant": "acme"}, req.Headers)
	assert.True(t, item("pen", value.Number(2)).Equal(req.Body))
	assert.True(t, stubs[1].IsMessage())
	assert.Nil(t, stubs[1].Message.Key)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no scenario", "request: {method: GET, path: /}\nresponse: {status: 200}\n"},
		{"request and message", "scenario: x\nrequest: {method: GET, path: /}\nmessage: {target: t, value: 1}\n"},
		{"neither", "scenario: x\n"},
		{"request without response", "scenario: x\nrequest: {method: GET, path: /}\n"},
		{"invalid yaml", "scenario: [unclosed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidStub)
		})
	}
}

func newEngine(t *testing.T) (*Engine, *contract.Compiled) {
	t.Helper()
	c := compileShop(t)
	e := NewEngine(WithLogger(logging.Nop()))
	_, err := e.Load(c)
	require.NoError(t, err)
	return e, c
}

func TestEngine_Load(t *testing.T) {
	e, c := newEngine(t)
	assert.Len(t, e.ContractStubs("shop"), 4)

	_, err := e.Load(c)
	require.NoError(t, err)
	assert.Len(t, e.Stubs(), 4, "reloading replaces the contract's stubs")

	assert.True(t, e.Unload("shop"))
	assert.False(t, e.Unload("shop"))
	assert.Empty(t, e.Stubs())
}

func TestEngine_LoadKeepsExplicitStubs(t *testing.T) {
	e, c := newEngine(t)
	explicit := cartStub(9)
	require.NoError(t, e.Add(explicit))

	_, err := e.Load(c)
	require.NoError(t, err)
	assert.Len(t, e.ContractStubs("shop"), 5)
	got, ok := e.Stub(explicit.ID)
	require.True(t, ok)
	assert.Same(t, explicit, got)
	assert.True(t, e.MatchHTTP(&contract.RequestValue{Method: "GET", Path: "/carts/9"}).Found())

	doc, err := contract.ParseYAML([]byte(strings.Replace(shopYAML,
		"        items: [(Item)]\n", "        items: [(Item)]\n        total: (number)\n", 1)))
	require.NoError(t, err)
	grown, err := contract.Compile(doc, nil)
	require.NoError(t, err)

	_, err = e.Load(grown)
	require.NoError(t, err)
	_, ok = e.Stub(explicit.ID)
	assert.False(t, ok, "a stub the new version rejects is removed")
	assert.Len(t, e.ContractStubs("shop"), 4)
	assert.False(t, e.MatchHTTP(&contract.RequestValue{Method: "GET", Path: "/carts/9"}).Found())
}

func TestEngine_LoadWhileMatching(t *testing.T) {
	e, c := newEngine(t)
	require.NoError(t, e.Add(cartStub(9)))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_, err := e.Load(c)
			assert.NoError(t, err)
		}
	}()
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				assert.True(t, e.MatchHTTP(&contract.RequestValue{Method: "GET", Path: "/carts/7"}).Found())
				assert.True(t, e.MatchHTTP(&contract.RequestValue{Method: "GET", Path: "/carts/9"}).Found())
			}
		}()
	}
	wg.Wait()
}

func TestEngine_MatchHTTP(t *testing.T) {
	e, _ := newEngine(t)

	t.Run("example row", func(t *testing.T) {
		m := e.MatchHTTP(&contract.RequestValue{Method: "GET", Path: "/carts/8"})
		require.True(t, m.Found())
		assert.Equal(t, "/carts/8", m.Stub.Request.Path)
		assert.Equal(t, 200, m.Stub.Response.Status)
	})

	t.Run("typed scenario", func(t *testing.T) {
		m := e.MatchHTTP(&contract.RequestValue{
			Method:  "POST",
			Path:    "/carts/3/items",
			Headers: map[string]string{"x-tenant": "acme"},
			Body:    item("pen", value.Number(2)),
		})
		require.True(t, m.Found())
		assert.Equal(t, "add item", m.Stub.Scenario)
	})

	t.Run("no example for path", func(t *testing.T) {
		m := e.MatchHTTP(&contract.RequestValue{Method: "GET", Path: "/carts/9"})
		require.False(t, m.Found())
		require.NotEmpty(t, m.NearMisses)
		nm := m.NearMisses[0]
		assert.Equal(t, "get cart", nm.Scenario)
		assert.Contains(t, nm.Reason, "PATH.1")
	})
}

func TestEngine_MatchMessage(t *testing.T) {
	e, _ := newEngine(t)

	m := e.MatchMessage(value.Message{Target: "cart-events", Key: value.String("c1"), Value: item("pen", value.Number(1))})
	require.True(t, m.Found())
	assert.Equal(t, "item added", m.Stub.Scenario)

	m = e.MatchMessage(value.Message{Target: "cart-evts", Key: value.String("c1"), Value: item("pen", value.Number(1))})
	require.False(t, m.Found())
	require.Len(t, m.NearMisses, 1)
	assert.Contains(t, m.NearMisses[0].Reason, "key and value matched, but TARGET")
}

// cartStub is an explicit "get cart" stub for a cart with no example row.
func cartStub(cart int) *Stub {
	return &Stub{
		Contract: "shop",
		Scenario: "get cart",
		Request:  &contract.RequestValue{Method: "GET", Path: fmt.Sprintf("/carts/%d", cart)},
		Response: &contract.ResponseValue{Status: 200, Body: value.NewObject(
			value.Field{Key: "id", Value: value.Number(float64(cart))},
			value.Field{Key: "items", Value: value.List{}},
		)},
	}
}

func TestEngine_Add(t *testing.T) {
	e, _ := newEngine(t)

	explicit := cartStub(9)
	require.NoError(t, e.Add(explicit))
	assert.True(t, id.IsValidULID(explicit.ID))
	assert.Equal(t, explicit, e.Stubs()[0])

	m := e.MatchHTTP(&contract.RequestValue{Method: "GET", Path: "/carts/9"})
	require.True(t, m.Found())
	assert.Same(t, explicit, m.Stub)

	m = e.MatchHTTP(&contract.RequestValue{Method: "GET", Path: "/carts/7"})
	require.True(t, m.Found())
	assert.Equal(t, PriorityGenerated, m.Stub.Priority, "explicit stubs only answer their own request")

	got, ok := e.Stub(explicit.ID)
	require.True(t, ok)
	assert.Same(t, explicit, got)
	assert.True(t, e.Remove(explicit.ID))
	assert.False(t, e.MatchHTTP(&contract.RequestValue{Method: "GET", Path: "/carts/9"}).Found())
}

func TestEngine_AddErrors(t *testing.T) {
	e, _ := newEngine(t)

	err := e.Add(&Stub{Contract: "billing", Scenario: "x"})
	assert.ErrorIs(t, err, ErrUnknownContract)

	err = e.Add(&Stub{
		Contract: "shop",
		Scenario: "get cart",
		Request:  &contract.RequestValue{Method: "GET", Path: "/carts/abc"},
		Response: &contract.ResponseValue{Status: 200},
	})
	var invalid *InvalidStubError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "get cart", invalid.Scenario)
	assert.Equal(t, "REQUEST.PATH.1", invalid.Result.PathString())
}

func TestEngine_Concurrent(t *testing.T) {
	e, _ := newEngine(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				m := e.MatchHTTP(&contract.RequestValue{Method: "GET", Path: "/carts/7"})
				assert.True(t, m.Found())
				_ = e.Add(&Stub{
					ID:       fmt.Sprintf("explicit-%d-%d", g, i),
					Contract: "shop",
					Scenario: "item added",
					Message:  &value.Message{Target: "cart-events", Key: value.String("c1"), Value: item("pen", value.Number(float64(i)))},
				})
			}
		}(g)
	}
	wg.Wait()

	assert.Len(t, e.Stubs(), 4+8*20)
}
