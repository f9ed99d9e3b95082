// Package memory backs the repository ports with mutex-guarded maps. It is
// the store for tests and local development; postgres carries production.
package memory

import (
	"encoding/json"
	"fmt"
)

// deepCopy round-trips through JSON; aggregates are plain data, and copies
// are cheap at this scale. Handing out copies keeps callers from aliasing
// stored state.
func deepCopy[T any](v *T) *T {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("memory store: marshal aggregate: %v", err))
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		panic(fmt.Sprintf("memory store: unmarshal aggregate: %v", err))
	}
	return out
}

func removeID(order []string, id string) []string {
	out := order[:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
