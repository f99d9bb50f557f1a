package value

import "fmt"

// Message is an asynchronous message addressed to a target (topic).
// Key is nil when the message has no key.
type Message struct {
	Target string
	Key    Value
	Value  Value
}

func (m Message) String() string {
	if m.Key == nil {
		return fmt.Sprintf("%s: %s", m.Target, quoted(m.Value))
	}
	return fmt.Sprintf("%s: %s=%s", m.Target, quoted(m.Key), quoted(m.Value))
}

func (Message) TypeName() string { return TypeMessage }

func (m Message) Native() any {
	out := map[string]any{"target": m.Target, "value": nativeOrNil(m.Value)}
	if m.Key != nil {
		out["key"] = m.Key.Native()
	}
	return out
}

func (m Message) Equal(other Value) bool {
	o, ok := other.(Message)
	if !ok || o.Target != m.Target {
		return false
	}
	if (m.Key == nil) != (o.Key == nil) {
		return false
	}
	if m.Key != nil && !m.Key.Equal(o.Key) {
		return false
	}
	if m.Value == nil || o.Value == nil {
		return m.Value == nil && o.Value == nil
	}
	return m.Value.Equal(o.Value)
}

func nativeOrNil(v Value) any {
	if v == nil {
		return nil
	}
	return v.Native()
}
