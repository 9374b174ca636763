package role

import "testing"

func TestMemoryStoreFindByID(t *testing.T) {
	store := NewMemoryStore(Seed())

	got, ok := store.FindByID("finance")
	if !ok {
		t.Fatal("expected finance role to exist")
	}
	if got.Description != "Numbers-focused, formal tone" {
		t.Fatalf("unexpected description: %q", got.Description)
	}

	if _, ok := store.FindByID("nobody"); ok {
		t.Fatal("expected unknown role lookup to fail")
	}
}

func TestMemoryStoreListIsCopy(t *testing.T) {
	store := NewMemoryStore(Seed())

	list := store.List()
	list[0].Label = "mutated"

	if store.List()[0].Label == "mutated" {
		t.Fatal("List must not expose the backing slice")
	}
	if _, ok := store.FindByID(DefaultID); !ok {
		t.Fatalf("default role %q missing from seed", DefaultID)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	store := NewMemoryStore(Seed())

	if got := Resolve(store, "tech"); got.ID != "tech" {
		t.Fatalf("expected tech, got %s", got.ID)
	}
	if got := Resolve(store, "pirate"); got.ID != DefaultID {
		t.Fatalf("expected default role on miss, got %s", got.ID)
	}
	if got := Resolve(store, ""); got.ID != DefaultID {
		t.Fatalf("expected default role for empty id, got %s", got.ID)
	}
	if got := Resolve(nil, "finance"); got.ID != "finance" {
		t.Fatalf("nil store should resolve against the seed, got %s", got.ID)
	}

	noDefault := NewMemoryStore([]Role{{ID: "partner", Label: "Partner"}})
	if got := Resolve(noDefault, "pirate"); got.ID != Seed()[0].ID {
		t.Fatalf("expected first built-in role, got %s", got.ID)
	}
}
