package dom

import "testing"

func childTags(e *Element) []string {
	var tags []string
	for _, c := range e.Children() {
		tags = append(tags, c.Tag())
	}
	return tags
}

func TestAppendChildOrder(t *testing.T) {
	root := NewElement("div")
	a := NewElement("a")
	b := NewElement("b")
	c := NewElement("c")

	root.AppendChild(a)
	root.AppendChild(b)
	root.AppendChild(c)

	got := childTags(root)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Children() = %v, want %v", got, want)
		}
	}

	if a.Parent() != root {
		t.Error("Parent() = nil, want root")
	}
}

func TestInsertBefore(t *testing.T) {
	root := NewElement("div")
	a := NewElement("a")
	c := NewElement("c")
	root.AppendChild(a)
	root.AppendChild(c)

	b := NewElement("b")
	root.InsertBefore(b, c)

	got := childTags(root)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Children() = %v, want %v", got, want)
		}
	}
}

func TestInsertBeforeNilRefAppends(t *testing.T) {
	root := NewElement("div")
	a := NewElement("a")
	root.AppendChild(a)

	b := NewElement("b")
	root.InsertBefore(b, nil)

	if root.Index(b) != 1 {
		t.Errorf("Index(b) = %d, want 1", root.Index(b))
	}
}

func TestAppendChildReparents(t *testing.T) {
	first := NewElement("div")
	second := NewElement("div")
	child := NewElement("span")

	first.AppendChild(child)
	second.AppendChild(child)

	if first.ChildCount() != 0 {
		t.Errorf("first.ChildCount() = %d, want 0", first.ChildCount())
	}
	if child.Parent() != second {
		t.Error("Parent() != second after reparent")
	}
}

func TestRemoveIdempotent(t *testing.T) {
	root := NewElement("div")
	child := NewElement("span")
	root.AppendChild(child)

	child.Remove()
	child.Remove() // second removal is a no-op

	if root.ChildCount() != 0 {
		t.Errorf("ChildCount() = %d, want 0", root.ChildCount())
	}
	if child.Parent() != nil {
		t.Error("Parent() != nil after Remove")
	}
}

func TestIndexOfNonChild(t *testing.T) {
	root := NewElement("div")
	if got := root.Index(NewElement("span")); got != -1 {
		t.Errorf("Index() = %d, want -1", got)
	}
}

func TestString(t *testing.T) {
	root := NewElement("g")
	root.SetAttr("class", "layer")
	root.SetTransform("translate(1,2) scale(3)")
	child := NewElement("rect")
	child.SetAttr("width", "10")
	root.AppendChild(child)

	want := `<g class="layer" transform="translate(1,2) scale(3)"><rect width="10"/></g>`
	if got := root.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}
