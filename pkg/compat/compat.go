package compat

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/getmockd/contractd/pkg/contract"
	"github.com/getmockd/contractd/pkg/logging"
	"github.com/getmockd/contractd/pkg/pattern"
	"github.com/getmockd/contractd/pkg/result"
)

// Checker compares two versions of a contract.
type Checker struct {
	log *slog.Logger
}

// NewChecker creates a checker that logs a summary of every check.
func NewChecker(log *slog.Logger) *Checker {
	if log == nil {
		log = logging.Nop()
	}
	return &Checker{log: log}
}

// Check compares older and newer without logging.
func Check(older, newer *contract.Compiled) *result.Results {
	return NewChecker(nil).Check(older, newer)
}

// Check records one result per scenario of older. A scenario is compatible
// when the newer contract accepts every request the older one allowed and
// only produces responses and messages the older one promised.
func (c *Checker) Check(older, newer *contract.Compiled) *result.Results {
	results := &result.Results{}
	oldR, newR := older.Resolver(), newer.Resolver()

	for _, s := range older.Scenarios {
		next, ok := newer.Scenario(s.Name)
		if !ok {
			results.Add(s.Name, result.Failuref("Scenario %q was removed", s.Name))
			continue
		}
		res := scenarioCompatible(s, next, oldR, newR)
		if res.IsFailure() {
			c.log.Debug("incompatible scenario", "scenario", s.Name, "path", res.PathString(), "reason", res.Message())
		}
		results.Add(s.Name, res)
	}

	c.log.Info("compatibility check complete",
		"old", versionLabel(older),
		"new", versionLabel(newer),
		"scenarios", len(results.Entries()),
		"failures", results.FailureCount())
	return results
}

// Breaking reports whether results contain failures that the version change
// does not permit. A major version bump permits breaking changes.
func Breaking(older, newer *contract.Compiled, results *result.Results) bool {
	if results.Success() {
		return false
	}
	return !contract.MajorBump(older.Version, newer.Version)
}

func versionLabel(c *contract.Compiled) string {
	if c.Version == "" {
		return c.Name
	}
	return c.Name + "@" + c.Version
}

func scenarioCompatible(older, newer *contract.CompiledScenario, oldR, newR *pattern.Resolver) result.Result {
	switch {
	case older.IsMessage() && !newer.IsMessage():
		return result.Failure("Expected a kafka message, got an HTTP request")
	case !older.IsMessage() && newer.IsMessage():
		return result.Failure("Expected an HTTP request, got a kafka message")
	case older.IsMessage():
		return older.Kafka.Encompasses(newer.Kafka, oldR, newR)
	}

	if res := RequestCompatible(older.Request, newer.Request, oldR, newR); res.IsFailure() {
		return res
	}
	return ResponseCompatible(older.Response, newer.Response, oldR, newR)
}

// RequestCompatible reports whether newer accepts every request older
// accepts. Extra headers are always tolerated.
func RequestCompatible(older, newer *contract.HTTPRequest, oldR, newR *pattern.Resolver) result.Result {
	return requestCompatible(older, newer, oldR, newR).BreadCrumb(contract.CrumbRequest)
}

func requestCompatible(older, newer *contract.HTTPRequest, oldR, newR *pattern.Resolver) result.Result {
	if !strings.EqualFold(older.Method, newer.Method) {
		return result.Failuref("Expected method %s, got %s", older.Method, newer.Method).BreadCrumb(contract.CrumbMethod)
	}

	lengthMessage := fmt.Sprintf("Expected path %s, got %s", older.PathString(), newer.PathString())
	if res := pattern.EncompassesAll(newer.Path, older.Path, newR, oldR, pattern.TypeStack{}, lengthMessage); res.IsFailure() {
		return res.BreadCrumb(contract.CrumbPath)
	}
	if res := newer.Query.Encompasses(older.Query, newR, oldR, pattern.TypeStack{}); res.IsFailure() {
		return res.BreadCrumb(contract.CrumbQuery)
	}
	tolerant := newR.With(pattern.WithTolerant(true))
	if res := newer.Headers.Encompasses(older.Headers, tolerant, oldR, pattern.TypeStack{}); res.IsFailure() {
		return res.BreadCrumb(contract.CrumbHeaders)
	}

	if len(older.Multipart) > 0 || len(newer.Multipart) > 0 {
		return pattern.PartsEncompass(newer.Multipart, older.Multipart, newR, oldR).BreadCrumb(contract.CrumbMultipart)
	}
	return newer.Body.Encompasses(older.Body, newR, oldR, pattern.TypeStack{}).BreadCrumb(contract.CrumbBody)
}

// ResponseCompatible reports whether every response newer may send is one
// older promised. Extra headers are always tolerated.
func ResponseCompatible(older, newer *contract.HTTPResponse, oldR, newR *pattern.Resolver) result.Result {
	return responseCompatible(older, newer, oldR, newR).BreadCrumb(contract.CrumbResponse)
}

func responseCompatible(older, newer *contract.HTTPResponse, oldR, newR *pattern.Resolver) result.Result {
	if older.Status != newer.Status {
		return result.Failuref("Expected status %d, got %d", older.Status, newer.Status).BreadCrumb(contract.CrumbStatus)
	}
	tolerant := oldR.With(pattern.WithTolerant(true))
	if res := older.Headers.Encompasses(newer.Headers, tolerant, newR, pattern.TypeStack{}); res.IsFailure() {
		return res.BreadCrumb(contract.CrumbHeaders)
	}
	return older.Body.Encompasses(newer.Body, oldR, newR, pattern.TypeStack{}).BreadCrumb(contract.CrumbBody)
}
