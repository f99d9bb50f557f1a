package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/contractd/pkg/pattern"
	"github.com/getmockd/contractd/pkg/value"
)

const ordersYAML = `
name: orders
version: 1.2.0
types:
  Item:
    name: (string)
    qty: (number)
  Order:
    id: (uuid)
    items: [(Item)]
    note?: (string)
scenarios:
  - name: create order
    request:
      method: POST
      path: /orders
      headers:
        Content-Type: application/json
      body:
        items: [(Item)]
    response:
      status: 201
      body: (Order)
  - name: get order
    request:
      method: GET
      path: /orders/(id:number)
      query:
        verbose: (boolean?)
    response:
      status: 200
      body: (Order)
    examples:
      - id: "42"
  - name: order created
    kafka:
      target: orders
      key: (string)
      value: (Order)
`

func compileOrders(t *testing.T) *Compiled {
	t.Helper()
	doc, err := ParseYAML([]byte(ordersYAML))
	require.NoError(t, err)
	c, err := Compile(doc, nil)
	require.NoError(t, err)
	return c
}

func TestCompile_Orders(t *testing.T) {
	c := compileOrders(t)

	assert.Equal(t, "orders", c.Name)
	assert.Equal(t, "1.2.0", c.Version)
	assert.Equal(t, []string{"(Item)", "(Order)"}, c.Registry.Names())
	assert.True(t, c.Registry.Frozen())
	require.Len(t, c.Scenarios, 3)

	get, ok := c.Scenario("get order")
	require.True(t, ok)
	assert.False(t, get.IsMessage())
	require.Len(t, get.Request.Path, 2)
	assert.Equal(t, "/orders/(number)", get.Request.PathString())
	require.Len(t, get.Rows(), 1)
	assert.Equal(t, "42", get.Rows()[0].Get("id"))

	msg, ok := c.Scenario("order created")
	require.True(t, ok)
	assert.True(t, msg.IsMessage())
	assert.Equal(t, "orders", msg.Kafka.Target)

	create, _ := c.Scenario("create order")
	require.Len(t, create.Rows(), 1)
	assert.True(t, create.Rows()[0].IsEmpty())

	_, ok = c.Scenario("missing")
	assert.False(t, ok)
}

func TestCompile_UnknownType(t *testing.T) {
	doc, err := ParseYAML([]byte(`
name: broken
scenarios:
  - name: get
    request:
      method: GET
      path: /things
    response:
      status: 200
      body: (Thing)
`))
	require.NoError(t, err)

	c, err := Compile(doc, nil)
	require.Error(t, err)
	assert.Nil(t, c)

	var lookupErr *pattern.LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "(Thing)", lookupErr.Name)
}

func TestCompile_UnknownTypeInPartsAndMessages(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "multipart content",
			yaml: `
name: broken
scenarios:
  - name: upload
    request:
      method: POST
      path: /upload
      multipart:
        - name: meta
          content: (Meta)
    response: {status: 204}
`,
			want: "(Meta)",
		},
		{
			name: "kafka value",
			yaml: `
name: broken
scenarios:
  - name: sent
    kafka: {target: events, value: (Event)}
`,
			want: "(Event)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseYAML([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = Compile(doc, nil)
			var lookupErr *pattern.LookupError
			require.True(t, errors.As(err, &lookupErr))
			assert.Equal(t, tt.want, lookupErr.Name)
		})
	}
}

func TestCompile_UnknownTypeInTypes(t *testing.T) {
	doc, err := ParseYAML([]byte(`
name: broken
types:
  Order:
    customer: (Customer)
scenarios:
  - name: get
    request:
      method: GET
      path: /orders
    response:
      status: 200
      body: (Order)
`))
	require.NoError(t, err)

	_, err = Compile(doc, nil)
	var lookupErr *pattern.LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "(Customer)", lookupErr.Name)
}

func TestCompile_ListWithTwoElements(t *testing.T) {
	doc, err := ParseYAML([]byte(`
name: broken
scenarios:
  - name: get
    request:
      method: GET
      path: /things
    response:
      status: 200
      body: [(string), (number)]
`))
	require.NoError(t, err)

	_, err = Compile(doc, nil)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestNodePattern(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		accept value.Value
		reject value.Value
	}{
		{
			name:   "token",
			yaml:   `(number)`,
			accept: value.Number(3),
			reject: value.String("three"),
		},
		{
			name:   "literal string",
			yaml:   `hello`,
			accept: value.String("hello"),
			reject: value.String("bye"),
		},
		{
			name:   "literal number",
			yaml:   `10`,
			accept: value.Number(10),
			reject: value.Number(11),
		},
		{
			name:   "literal boolean",
			yaml:   `true`,
			accept: value.Boolean(true),
			reject: value.Boolean(false),
		},
		{
			name:   "null",
			yaml:   `null`,
			accept: value.Null{},
			reject: value.String("x"),
		},
		{
			name:   "list",
			yaml:   `[(string)]`,
			accept: value.List{value.String("a"), value.String("b")},
			reject: value.List{value.Number(1)},
		},
		{
			name:   "empty list",
			yaml:   `[]`,
			accept: value.List{},
			reject: value.List{value.String("a")},
		},
		{
			name:   "oneOf",
			yaml:   `{oneOf: [(string), (number)]}`,
			accept: value.Number(1),
			reject: value.Boolean(true),
		},
		{
			name:   "optional key",
			yaml:   `{id: (number), "note?": (string)}`,
			accept: value.NewObject(value.Field{Key: "id", Value: value.Number(1)}),
			reject: value.NewObject(value.Field{Key: "note", Value: value.String("x")}),
		},
		{
			name:   "nullable token",
			yaml:   `(string?)`,
			accept: value.Null{},
			reject: value.Number(1),
		},
	}

	r := pattern.NewResolver(pattern.NewRegistry())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc struct {
				P yaml.Node `yaml:"p"`
			}
			require.NoError(t, yaml.Unmarshal([]byte("p: "+tt.yaml), &doc))

			p, err := nodePattern(&doc.P)
			require.NoError(t, err)
			assert.True(t, p.Matches(tt.accept, r).IsSuccess(), "should accept %s", tt.accept)
			assert.True(t, p.Matches(tt.reject, r).IsFailure(), "should reject %s", tt.reject)
		})
	}
}

func TestNodePattern_Missing(t *testing.T) {
	p, err := nodePattern(nil)
	require.NoError(t, err)
	assert.Equal(t, pattern.NoContent{}, p)
}

func TestPathPattern(t *testing.T) {
	segments := PathPattern("/orders/(id:number)/items/")
	require.Len(t, segments, 3)
	assert.Equal(t, pattern.ExactValue{Value: value.String("orders")}, segments[0])
	assert.Equal(t, pattern.LookupRow{Pattern: pattern.Number{}, Key: "id"}, segments[1])
	assert.Equal(t, pattern.ExactValue{Value: value.String("items")}, segments[2])

	assert.Empty(t, PathPattern("/"))
}

func TestTextObject_LowercasesHeaders(t *testing.T) {
	obj := textObject(map[string]string{"X-Trace": "(string)", "Accept": "text/plain"}, true)
	require.Len(t, obj.Fields, 2)
	assert.Equal(t, "accept", obj.Fields[0].Name)
	assert.Equal(t, pattern.ExactValue{Value: value.String("text/plain")}, obj.Fields[0].Pattern)
	assert.Equal(t, "x-trace", obj.Fields[1].Name)
	assert.Equal(t, pattern.String{}, obj.Fields[1].Pattern)

	query := textObject(map[string]string{"Page": "(number)"}, false)
	assert.Equal(t, "Page", query.Fields[0].Name)
}
