package pattern

import (
	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// Breadcrumbs of Kafka message results.
const (
	KafkaMessageCrumb = "KAFKA-MESSAGE"
	TargetCrumb       = "TARGET"
	KeyCrumb          = "KEY"
	ValueCrumb        = "VALUE"
)

// FieldCheck is the result of matching one part of a composite value such
// as a message or an HTTP request.
type FieldCheck struct {
	Field  string
	Result result.Result
}

// KafkaMessage describes a message published to Target.
type KafkaMessage struct {
	Target string
	Key    Pattern
	Value  Pattern
}

// NewKafkaMessage creates a message pattern. A nil key means the message
// carries no key; a nil value accepts any string.
func NewKafkaMessage(target string, key, val Pattern) *KafkaMessage {
	if key == nil {
		key = NoContent{}
	}
	if val == nil {
		val = String{}
	}
	return &KafkaMessage{Target: target, Key: key, Value: val}
}

// Matches checks target, key and value, in that order.
func (k *KafkaMessage) Matches(msg value.Message, r *Resolver) result.Result {
	for _, check := range k.Checks(msg, r) {
		if check.Result.IsFailure() {
			return check.Result.BreadCrumb(KafkaMessageCrumb)
		}
	}
	return result.Success()
}

// Checks matches target, key and value without stopping at the first
// failure. Results carry their part's breadcrumb but not KAFKA-MESSAGE.
func (k *KafkaMessage) Checks(msg value.Message, r *Resolver) []FieldCheck {
	target := result.Success()
	if msg.Target != k.Target {
		target = result.Failuref("Expected target %s, got %s", k.Target, msg.Target).BreadCrumb(TargetCrumb)
	}
	return []FieldCheck{
		{Field: TargetCrumb, Result: target},
		{Field: KeyCrumb, Result: k.Key.Matches(textual(k.Key, msg.Key, r), r).BreadCrumb(KeyCrumb)},
		{Field: ValueCrumb, Result: k.Value.Matches(textual(k.Value, msg.Value, r), r).BreadCrumb(ValueCrumb)},
	}
}

// Encompasses reports whether every message other accepts is accepted here.
func (k *KafkaMessage) Encompasses(other *KafkaMessage, thisR, otherR *Resolver) result.Result {
	if other.Target != k.Target {
		return result.Failuref("Expected target %s, got %s", k.Target, other.Target).
			BreadCrumb(TargetCrumb).BreadCrumb(KafkaMessageCrumb)
	}
	if res := k.Key.Encompasses(other.Key, thisR, otherR, TypeStack{}); res.IsFailure() {
		return res.BreadCrumb(KeyCrumb).BreadCrumb(KafkaMessageCrumb)
	}
	if res := k.Value.Encompasses(other.Value, thisR, otherR, TypeStack{}); res.IsFailure() {
		return res.BreadCrumb(ValueCrumb).BreadCrumb(KafkaMessageCrumb)
	}
	return result.Success()
}

// NewBasedOn specializes key and value with row and returns every
// combination.
func (k *KafkaMessage) NewBasedOn(row Row, r *Resolver) ([]*KafkaMessage, error) {
	keys, err := k.Key.NewBasedOn(row, r)
	if err != nil {
		return nil, err
	}
	values, err := k.Value.NewBasedOn(row, r)
	if err != nil {
		return nil, err
	}
	out := make([]*KafkaMessage, 0, len(keys)*len(values))
	for _, key := range keys {
		for _, val := range values {
			out = append(out, &KafkaMessage{Target: k.Target, Key: key, Value: val})
		}
	}
	return out, nil
}

// Generate produces a message. A key pattern accepting no content yields
// a message without a key.
func (k *KafkaMessage) Generate(r *Resolver) (value.Message, error) {
	msg := value.Message{Target: k.Target}
	if _, none := k.Key.(NoContent); !none {
		key, err := k.Key.Generate(r)
		if err != nil {
			return value.Message{}, err
		}
		msg.Key = key
	}
	val, err := k.Value.Generate(r)
	if err != nil {
		return value.Message{}, err
	}
	msg.Value = val
	return msg, nil
}

// textual re-reads a string payload with p's grammar, since message keys
// and values arrive as raw text.
func textual(p Pattern, v value.Value, r *Resolver) value.Value {
	s, ok := v.(value.String)
	if !ok {
		return v
	}
	if parsed, err := p.Parse(string(s), r); err == nil {
		return parsed
	}
	return v
}
