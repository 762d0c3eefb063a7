package relation

import (
	"testing"

	"github.com/PatrickOgilvie/honertia/core/schema"
)

func testSchema() schema.Map {
	return schema.NewMap(
		schema.Collection{Name: "projects", Columns: []string{"id", "name"}},
		schema.Collection{Name: "tasks", Columns: []string{"id", "project_id", "title"}},
		schema.Collection{Name: "comments", Columns: []string{"id", "body"}},
		schema.Collection{Name: "companies", Columns: []string{"id"}},
		schema.Collection{Name: "offices", Columns: []string{"id", "company_id"}},
	)
}

func TestFind_ConventionalReference(t *testing.T) {
	d, ok := Find(testSchema(), "tasks", "projects")
	if !ok {
		t.Fatal("tasks -> projects relation not found")
	}
	if d.ForeignKey != "project_id" || d.Referenced != "id" {
		t.Errorf("descriptor = %+v, want {project_id id}", d)
	}
}

func TestFind_SingularizesIrregularSuffix(t *testing.T) {
	d, ok := Find(testSchema(), "offices", "companies")
	if !ok {
		t.Fatal("offices -> companies relation not found")
	}
	if d.ForeignKey != "company_id" {
		t.Errorf("ForeignKey = %q, want company_id", d.ForeignKey)
	}
}

func TestFind_NoForeignKeyColumn(t *testing.T) {
	if _, ok := Find(testSchema(), "comments", "projects"); ok {
		t.Error("comments has no project_id column, relation should be absent")
	}
}

func TestFind_UnknownCollections(t *testing.T) {
	s := testSchema()
	if _, ok := Find(s, "missing", "projects"); ok {
		t.Error("unknown child should yield no relation")
	}
	if _, ok := Find(s, "tasks", "missing"); ok {
		t.Error("unknown parent should yield no relation")
	}
}
