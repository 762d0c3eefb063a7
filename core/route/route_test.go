package route

import "testing"

func TestTranslate_SinglePlaceholder(t *testing.T) {
	p, err := Translate("/projects/{project}")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	if p.Native != "/projects/{project}" {
		t.Errorf("Native = %q, want /projects/{project}", p.Native)
	}
	if len(p.Bindings) != 1 {
		t.Fatalf("got %d bindings, want 1", len(p.Bindings))
	}

	b := p.Bindings[0]
	if b.Param != "project" || b.Collection != "projects" || b.Column != "id" {
		t.Errorf("binding = %+v, want {project projects id}", b)
	}
}

func TestTranslate_ColumnAnnotation(t *testing.T) {
	p, err := Translate("/projects/{project}/tasks/{task:uuid}")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	if p.Native != "/projects/{project}/tasks/{task}" {
		t.Errorf("Native = %q: column annotation must be stripped", p.Native)
	}
	if len(p.Bindings) != 2 {
		t.Fatalf("got %d bindings, want 2", len(p.Bindings))
	}
	if p.Bindings[0].Param != "project" || p.Bindings[1].Param != "task" {
		t.Errorf("bindings out of order: %+v", p.Bindings)
	}
	if p.Bindings[1].Column != "uuid" {
		t.Errorf("second binding column = %q, want uuid", p.Bindings[1].Column)
	}
	if p.Bindings[1].Collection != "tasks" {
		t.Errorf("second binding collection = %q, want tasks", p.Bindings[1].Collection)
	}
}

func TestTranslate_OrderAndCount(t *testing.T) {
	p, err := Translate("/a/{one}/b/{two}/c/{three}")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	want := []string{"one", "two", "three"}
	if len(p.Bindings) != len(want) {
		t.Fatalf("got %d bindings, want %d", len(p.Bindings), len(want))
	}
	for i, name := range want {
		if p.Bindings[i].Param != name {
			t.Errorf("binding[%d].Param = %q, want %q", i, p.Bindings[i].Param, name)
		}
	}
}

func TestTranslate_NoPlaceholders(t *testing.T) {
	p, err := Translate("/about/contact")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if p.Native != "/about/contact" {
		t.Errorf("Native = %q: literal segments must be preserved", p.Native)
	}
	if len(p.Bindings) != 0 {
		t.Errorf("got %d bindings, want 0", len(p.Bindings))
	}
}

func TestTranslate_Pluralization(t *testing.T) {
	cases := []struct {
		pattern    string
		collection string
	}{
		{"/companies/{company}", "companies"},
		{"/boxes/{box}", "boxes"},
		{"/batches/{batch}", "batches"},
	}

	for _, c := range cases {
		p, err := Translate(c.pattern)
		if err != nil {
			t.Fatalf("Translate(%q): %v", c.pattern, err)
		}
		if p.Bindings[0].Collection != c.collection {
			t.Errorf("Translate(%q) collection = %q, want %q",
				c.pattern, p.Bindings[0].Collection, c.collection)
		}
	}
}

func TestTranslate_MalformedPatterns(t *testing.T) {
	bad := []string{
		"/projects/{project",
		"/projects/project}",
		"/a}b/{c}",
		"/projects/{}",
		"/projects/{project:}",
		"/projects/{a{b}}",
	}

	for _, pattern := range bad {
		if _, err := Translate(pattern); err == nil {
			t.Errorf("Translate(%q): expected error", pattern)
		}
	}
}

func TestTranslate_Deterministic(t *testing.T) {
	a, err := Translate("/projects/{project}/tasks/{task:uuid}")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Translate("/projects/{project}/tasks/{task:uuid}")

	if a.Native != b.Native || len(a.Bindings) != len(b.Bindings) {
		t.Error("Translate is not deterministic")
	}
}
