package supervisor

import "testing"

func TestRegistryAddGet(t *testing.T) {
	r := newRegistry()
	sv := newTestSupervisor(t)
	rec := newRecord(sv, &Watch{Name: "alpha", Start: []string{"/bin/true"}})

	r.add(rec)

	got, ok := r.get("alpha")
	if !ok {
		t.Fatal("expected alpha to be present after add")
	}
	if got != rec {
		t.Fatal("get returned a different record than the one added")
	}

	if _, ok := r.get("missing"); ok {
		t.Fatal("get should report false for an unregistered name")
	}
}

func TestRegistryByPID(t *testing.T) {
	r := newRegistry()
	sv := newTestSupervisor(t)
	rec := newRecord(sv, &Watch{Name: "alpha", Start: []string{"/bin/true"}})
	r.add(rec)

	if _, ok := r.byPID(123); ok {
		t.Fatal("byPID should not find a record before its pid is stored")
	}

	rec.storePID(123)
	got, ok := r.byPID(123)
	if !ok || got != rec {
		t.Fatal("byPID should find the record once its pid is stored")
	}
}

func TestRegistryPreservesInsertionOrder(t *testing.T) {
	r := newRegistry()
	sv := newTestSupervisor(t)
	names := []string{"charlie", "alpha", "bravo"}
	for _, n := range names {
		r.add(newRecord(sv, &Watch{Name: n, Start: []string{"/bin/true"}}))
	}

	got := r.names()
	if len(got) != len(names) {
		t.Fatalf("expected %d names, got %d", len(names), len(got))
	}
	for i, n := range names {
		if got[i] != n {
			t.Fatalf("expected insertion order %v, got %v", names, got)
		}
	}

	all := r.all()
	if len(all) != len(names) {
		t.Fatalf("expected %d records from all(), got %d", len(names), len(all))
	}
	for i, n := range names {
		if all[i].Watch.Name != n {
			t.Fatalf("all() did not preserve insertion order: expected %s at index %d, got %s", n, i, all[i].Watch.Name)
		}
	}
}
