package id

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
)

// --- Derived ---

func TestDerived_Stable(t *testing.T) {
	a := Derived("orders", "get order", "0")
	b := Derived("orders", "get order", "0")
	if a != b {
		t.Errorf("Derived() = %q then %q, want equal", a, b)
	}
}

func TestDerived_Distinct(t *testing.T) {
	cases := [][]string{
		{"orders", "get order", "0"},
		{"orders", "get order", "1"},
		{"orders", "create order", "0"},
		{"ordersget order", "0"},
	}
	seen := make(map[string][]string)
	for _, parts := range cases {
		got := Derived(parts...)
		if prev, ok := seen[got]; ok {
			t.Errorf("Derived(%q) collides with Derived(%q)", parts, prev)
		}
		seen[got] = parts
	}
}

func TestDerived_Version5(t *testing.T) {
	got := Derived("orders")
	re := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-5[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	if !re.MatchString(got) {
		t.Errorf("Derived() = %q, not a UUID v5", got)
	}
}

// --- UUID ---

func TestUUID_Format(t *testing.T) {
	got := UUID()
	re := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	if !re.MatchString(got) {
		t.Errorf("UUID() = %q, does not match UUID v4 format", got)
	}
}

// --- ULID ---

func TestNew_Length(t *testing.T) {
	if got := New(); len(got) != 26 {
		t.Errorf("New() length = %d, want 26", len(got))
	}
}

func TestNew_CharacterSet(t *testing.T) {
	for i := 0; i < 100; i++ {
		got := New()
		for _, c := range got {
			if !strings.ContainsRune(ulidEncoding, c) {
				t.Fatalf("New() = %q contains invalid character %q", got, c)
			}
		}
	}
}

func TestNew_Sortable(t *testing.T) {
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = New()
	}
	// Same-millisecond IDs differ only in randomness; compare timestamps.
	for i := 1; i < len(ids); i++ {
		if ids[i][:10] < ids[i-1][:10] {
			t.Errorf("timestamp of %q sorts before %q", ids[i], ids[i-1])
		}
	}
}

func TestNew_Concurrent(t *testing.T) {
	const goroutines, perGoroutine = 10, 100

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, perGoroutine)
			for i := range local {
				local[i] = New()
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				if seen[id] {
					t.Errorf("duplicate ULID %q", id)
				}
				seen[id] = true
			}
		}()
	}
	wg.Wait()

	if len(seen) != goroutines*perGoroutine {
		t.Errorf("got %d unique IDs, want %d", len(seen), goroutines*perGoroutine)
	}
}

func TestEncodeULID_Timestamp(t *testing.T) {
	ids := []string{encodeULID(0, 0), encodeULID(1, 0), encodeULID(1<<40, 0), encodeULID(1<<47, 0)}
	if ids[0][:10] != "0000000000" {
		t.Errorf("zero timestamp encoded as %q", ids[0][:10])
	}
	if ids[1][:10] != "0000000001" {
		t.Errorf("timestamp 1 encoded as %q", ids[1][:10])
	}
	sorted := sort.SliceIsSorted(ids, func(i, j int) bool { return ids[i][:10] < ids[j][:10] })
	if !sorted {
		t.Errorf("timestamps not sorted: %q", ids)
	}
}

func TestIsValidULID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{New(), true},
		{"01ARZ3NDEKTSV4RRFFQ69G5FAV", true},
		{"01ARZ3NDEKTSV4RRFFQ69G5FA", false},
		{"01ARZ3NDEKTSV4RRFFQ69G5FAVX", false},
		{"01ARZ3NDEKTSV4RRFFQ69G5FAI", false},
		{"01arz3ndektsv4rrffq69g5fav", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidULID(tt.input); got != tt.want {
			t.Errorf("IsValidULID(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{New(), true},
		{UUID(), true},
		{Derived("orders"), true},
		{"stub-1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.input); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
