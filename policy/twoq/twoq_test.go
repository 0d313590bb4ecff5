package twoq

import (
	"math/rand"
	"testing"
)

func TestTwoQ_FirstTimeKeysEnterA1in(t *testing.T) {
	t.Parallel()

	q := New[string]().New(8).(*twoQ[string])
	q.OnInsert("a")

	if _, ok := q.inIdx["a"]; !ok {
		t.Fatal("a must sit in A1in")
	}
	if _, ok := q.amIdx["a"]; ok {
		t.Fatal("a must not be in Am yet")
	}
}

// A departure from A1in leaves a ghost, and readmission through the
// ghost lands in Am.
func TestTwoQ_GhostReadmissionPromotesToAm(t *testing.T) {
	t.Parallel()

	q := New[string]().New(8).(*twoQ[string])
	q.OnInsert("a")
	q.OnRemove("a")

	if _, ok := q.ghostIdx["a"]; !ok {
		t.Fatal("a must be ghosted in A1out")
	}

	q.OnInsert("a")
	if _, ok := q.amIdx["a"]; !ok {
		t.Fatal("readmission via ghost must land in Am")
	}
	if _, ok := q.ghostIdx["a"]; ok {
		t.Fatal("the ghost must be consumed")
	}
}

// Departures from Am never populate the ghost list.
func TestTwoQ_AmRemovalLeavesNoGhost(t *testing.T) {
	t.Parallel()

	q := New[string]().New(8).(*twoQ[string])
	q.OnInsert("a")
	q.OnRemove("a")
	q.OnInsert("a") // now in Am
	q.OnRemove("a")

	if _, ok := q.ghostIdx["a"]; ok {
		t.Fatal("Am departures must not ghost")
	}
}

// While A1in is at or above its quota the victim comes from A1in;
// otherwise from the Am LRU end.
func TestTwoQ_VictimPrefersA1inAtQuota(t *testing.T) {
	t.Parallel()

	// capacity 8, A1in ratio 0.25 -> quota 2
	q := New[string]().New(8).(*twoQ[string])
	q.OnInsert("x")
	q.OnInsert("y") // A1in: [y, x] at quota

	if k, ok := q.Victim(); !ok || k != "x" {
		t.Fatalf("victim want x (A1in oldest), got %q ok=%v", k, ok)
	}

	// Promote both into Am; A1in drops below quota.
	q.OnRemove("x")
	q.OnInsert("x")
	q.OnRemove("y")
	q.OnInsert("y") // Am: [y, x]

	if k, ok := q.Victim(); !ok || k != "x" {
		t.Fatalf("victim want x (Am LRU), got %q ok=%v", k, ok)
	}

	q.OnAccess("x") // Am: [x, y]
	if k, ok := q.Victim(); !ok || k != "y" {
		t.Fatalf("victim want y after promotion, got %q ok=%v", k, ok)
	}
}

func TestTwoQ_GhostCapacityBounded(t *testing.T) {
	t.Parallel()

	q := NewRatio[int](0.25, 0.5).New(8).(*twoQ[int]) // ghostCap 4
	for k := 0; k < 20; k++ {
		q.OnInsert(k)
		q.OnRemove(k)
	}
	if q.ghost.Len() > 4 {
		t.Fatalf("ghost list %d exceeds its cap", q.ghost.Len())
	}
}

func TestTwoQ_RandomDrill(t *testing.T) {
	t.Parallel()

	p := New[int]().New(8)
	tracked := make(map[int]bool)
	r := rand.New(rand.NewSource(7))

	for op := 0; op < 2_000; op++ {
		k := r.Intn(24)
		switch {
		case !tracked[k]:
			if len(tracked) == 8 {
				v, _ := p.Victim()
				p.OnRemove(v)
				delete(tracked, v)
			}
			p.OnInsert(k)
			tracked[k] = true
		case r.Intn(3) == 0:
			p.OnRemove(k)
			delete(tracked, k)
		default:
			p.OnAccess(k)
		}

		if p.Len() != len(tracked) {
			t.Fatalf("op %d: len %d, tracked %d", op, p.Len(), len(tracked))
		}
		if len(tracked) > 0 {
			if v, ok := p.Victim(); !ok || !tracked[v] {
				t.Fatalf("op %d: victim %v ok=%v not tracked", op, v, ok)
			}
		}
	}
}
