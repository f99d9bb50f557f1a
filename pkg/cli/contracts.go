package cli

import (
	"sort"

	"github.com/getmockd/contractd/pkg/contract"
)

// sortedKeys returns the paths of loaded contracts in order.
func sortedKeys(all map[string]*contract.Compiled) []string {
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
