// Package contract loads contract documents and compiles them into patterns.
//
// A contract document names a set of types and a list of scenarios. Each
// scenario is either an HTTP exchange (request and response) or a message
// published to a Kafka topic:
//
//	name: orders
//	version: 1.2.0
//	types:
//	  Item:
//	    name: (string)
//	    qty: (number)
//	scenarios:
//	  - name: get order
//	    request:
//	      method: GET
//	      path: /orders/(id:number)
//	    response:
//	      status: 200
//	      body:
//	        items: [(Item)]
//	        note?: (string)
//	    examples:
//	      - id: "42"
//
// Documents are read from YAML or JSON with LoadFromFile, or many at once
// with LoadGlob. Compile resolves every named reference and freezes the
// type registry:
//
//	doc, err := contract.LoadFromFile("orders.yaml")
//	if err != nil {
//	    return err
//	}
//	c, err := contract.Compile(doc, logger)
//
// OpenAPI 3 documents can be imported with LoadOpenAPI and FromOpenAPI.
package contract
