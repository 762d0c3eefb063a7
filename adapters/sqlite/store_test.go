package sqlite

import (
	"context"
	"testing"

	"github.com/PatrickOgilvie/honertia/core/binding"
	"github.com/PatrickOgilvie/honertia/core/schema"
)

func testSchema() schema.Map {
	return schema.NewMap(
		schema.Collection{Name: "projects", Columns: []string{"id", "name"}},
		schema.Collection{Name: "tasks", Columns: []string{"id", "project_id", "title"}},
	)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", testSchema())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.CreateTables(context.Background()); err != nil {
		t.Fatalf("CreateTables: %v", err)
	}
	return store
}

func TestQuery_SingleClause(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Insert(ctx, "projects", binding.Row{"id": "p1", "name": "alpha"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	row, found, err := store.Query(ctx, "projects", binding.Predicate{{Column: "id", Value: "p1"}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !found {
		t.Fatal("row not found")
	}
	if row["name"] != "alpha" {
		t.Errorf("name = %v, want alpha", row["name"])
	}
}

func TestQuery_Conjunction(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.Insert(ctx, "tasks", binding.Row{"id": "t1", "project_id": "p1", "title": "one"})
	store.Insert(ctx, "tasks", binding.Row{"id": "t1x", "project_id": "p2", "title": "other"})

	_, found, err := store.Query(ctx, "tasks", binding.Predicate{
		{Column: "id", Value: "t1"},
		{Column: "project_id", Value: "p2"},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if found {
		t.Error("conjunction should exclude rows matching only one clause")
	}

	row, found, err := store.Query(ctx, "tasks", binding.Predicate{
		{Column: "id", Value: "t1"},
		{Column: "project_id", Value: "p1"},
	})
	if err != nil || !found {
		t.Fatalf("Query: found=%v err=%v", found, err)
	}
	if row["title"] != "one" {
		t.Errorf("title = %v, want one", row["title"])
	}
}

func TestQuery_NoMatchIsNotError(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.Query(context.Background(), "projects",
		binding.Predicate{{Column: "id", Value: "missing"}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if found {
		t.Error("expected no match")
	}
}

func TestQuery_RejectsUndeclaredIdentifiers(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, _, err := store.Query(ctx, "users", nil); err == nil {
		t.Error("undeclared collection should error")
	}

	_, _, err := store.Query(ctx, "projects",
		binding.Predicate{{Column: "name; DROP TABLE projects", Value: "x"}})
	if err == nil {
		t.Error("undeclared column should error, not reach SQL")
	}
}

func TestQuery_FirstRowIsDeterministic(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.Insert(ctx, "tasks", binding.Row{"id": "t2", "project_id": "p1", "title": "later"})
	store.Insert(ctx, "tasks", binding.Row{"id": "t1", "project_id": "p1", "title": "earlier"})

	for range 5 {
		row, found, err := store.Query(ctx, "tasks",
			binding.Predicate{{Column: "project_id", Value: "p1"}})
		if err != nil || !found {
			t.Fatalf("Query: found=%v err=%v", found, err)
		}
		if row["id"] != "t1" {
			t.Fatalf("first row id = %v, want t1 (ordered by id)", row["id"])
		}
	}
}

func TestInsert_GeneratesID(t *testing.T) {
	store := openTestStore(t)

	id, err := store.Insert(context.Background(), "projects", binding.Row{"name": "beta"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	_, found, err := store.Query(context.Background(), "projects",
		binding.Predicate{{Column: "id", Value: id}})
	if err != nil || !found {
		t.Errorf("generated row not retrievable: found=%v err=%v", found, err)
	}
}
