// Package pattern provides the typed pattern model of a contract and the
// algorithms that run over it.
//
// A Pattern describes the set of values it accepts. Every variant supports
// the same operations:
//
//   - Matches: check a concrete value.Value, reporting a breadcrumbed result
//   - Generate: produce one value the pattern accepts
//   - Parse: read text according to the pattern's grammar
//   - NewBasedOn: specialize the pattern with an example Row
//   - Encompasses: decide whether this pattern accepts every value another
//     pattern accepts (used for backward compatibility)
//   - PatternSet: the discrete patterns a pattern reduces to
//   - ListOf: wrap values the way a list of this pattern would
//
// # Variants
//
//   - ExactValue: a literal
//   - String, Number, Boolean, Null, NoContent, Empty, UUID, DateTime, URL
//   - *List, *Object, *Any
//   - Deferred: a named reference resolved through the Resolver
//   - LookupRow: substitutes a value from the current example row
//   - MultiPartContent, MultiPartFile: multipart/form-data parts
//   - *KafkaMessage: target, key and value of an asynchronous message
//
// # Resolver
//
// Every operation threads a *Resolver carrying the named-type Registry, the
// generative and tolerant flags, and the recursion guards. Resolvers are
// copied on recursion, so a shared Resolver can serve concurrent calls as
// long as its Registry is frozen.
//
//	registry := pattern.NewRegistry()
//	_ = registry.Register("Node", pattern.NewObject(
//	    pattern.ObjectField("name", pattern.String{}),
//	    pattern.ObjectField("child?", pattern.Deferred{Name: "(Node)"}),
//	))
//	registry.Freeze()
//
//	r := pattern.NewResolver(registry)
//	res := pattern.Deferred{Name: "(Node)"}.Matches(v, r)
//	if res.IsFailure() {
//	    fmt.Println(res.Report())
//	}
//
// # Recursion
//
// Self-referential types are expressed with Deferred names, never with
// cyclic pointers. Matching tracks the names expanded at the current value
// node: a name that comes round again before any structure was consumed is
// accepted. Generation allows one level of self-reference along a path and
// then reports a *CycleError, which optional fields, lists and unions
// absorb. Compatibility checks carry a TypeStack of compared pairs, a named
// type against a named type or a structural pattern instance, and accept a
// pair seen before. A depth limit bounds all three.
package pattern
