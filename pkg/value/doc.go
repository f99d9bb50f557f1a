// Package value provides the immutable runtime value model matched and
// produced by the contract pattern engine.
//
// A Value is one of:
//
//   - Null, Boolean, Number, String: scalars
//   - List: ordered sequence of values
//   - *Object: ordered mapping of unique keys to values
//   - *XMLNode: an XML element (backed by github.com/beevik/etree)
//   - MultiPartContent, MultiPartFile: parts of a multipart/form-data body
//   - Message: an asynchronous message (target, optional key, value)
//
// Values are never mutated after construction. Parsing helpers turn raw
// text, JSON or XML into values:
//
//	v, err := value.Parse(`{"id": 10, "tags": ["a", "b"]}`)
//	if err != nil {
//	    return err
//	}
//	name, ok := value.Lookup(v, "tags[1]")
package value
