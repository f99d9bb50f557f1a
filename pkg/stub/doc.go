// Package stub generates, validates and selects stubs for contracts.
//
// Generate turns every scenario of a compiled contract into stubs: each
// example row specializes the scenario's patterns, every resulting variant
// yields one stub with generated values, and each stub keeps the variant
// pattern that selects it.
//
// An Engine stores the stubs of loaded contracts and answers lookups:
//
//	engine := stub.NewEngine(stub.WithLogger(logger))
//	if _, err := engine.Load(compiled); err != nil {
//	    return err
//	}
//	match := engine.MatchHTTP(req)
//	if !match.Found() {
//	    for _, nm := range match.NearMisses {
//	        logger.Info("near miss", "scenario", nm.Scenario, "reason", nm.Reason)
//	    }
//	}
//
// Explicit stubs, written by hand in the YAML stub format (see File), are
// validated against their scenario by Add and are tried before generated
// stubs, but only for the exact request or message they describe.
package stub
