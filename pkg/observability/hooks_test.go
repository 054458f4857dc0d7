package observability

import (
	"errors"
	"testing"
	"time"
)

type recordingStackHooks struct {
	appended []string
	moves    [][2]int
	removed  []string
}

func (r *recordingStackHooks) OnSurfaceAppended(kind string, depth int) {
	r.appended = append(r.appended, kind)
}

func (r *recordingStackHooks) OnSurfaceMoved(kind string, from, to int) {
	r.moves = append(r.moves, [2]int{from, to})
}

func (r *recordingStackHooks) OnSurfaceRemoved(kind string, depth int) {
	r.removed = append(r.removed, kind)
}

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()

	// None of these should panic.
	Stack().OnSurfaceAppended("canvas", 1)
	Stack().OnSurfaceMoved("canvas", 0, 1)
	Stack().OnSurfaceRemoved("canvas", 0)
	Render().OnReconcileStart("svg", "node")
	Render().OnReconcileComplete("svg", "node", 3, 1, time.Millisecond)
	Render().OnDrawPass(10, time.Millisecond)
	Export().OnExportStart("png", 2)
	Export().OnExportComplete("png", 1024, time.Millisecond, errors.New("disk full"))
}

func TestSetStackHooks(t *testing.T) {
	defer Reset()

	rec := &recordingStackHooks{}
	SetStackHooks(rec)

	Stack().OnSurfaceAppended("svg", 1)
	Stack().OnSurfaceMoved("svg", 0, 2)
	Stack().OnSurfaceRemoved("svg", 0)

	if len(rec.appended) != 1 || rec.appended[0] != "svg" {
		t.Errorf("appended = %v, want [svg]", rec.appended)
	}
	if len(rec.moves) != 1 || rec.moves[0] != [2]int{0, 2} {
		t.Errorf("moves = %v, want [[0 2]]", rec.moves)
	}
	if len(rec.removed) != 1 {
		t.Errorf("removed = %v, want one entry", rec.removed)
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	defer Reset()

	rec := &recordingStackHooks{}
	SetStackHooks(rec)
	SetStackHooks(nil)

	Stack().OnSurfaceAppended("canvas", 1)
	if len(rec.appended) != 1 {
		t.Errorf("appended = %v, want one entry", rec.appended)
	}
}

func TestCompositeStackHooksFanOut(t *testing.T) {
	defer Reset()

	first := &recordingStackHooks{}
	second := &recordingStackHooks{}
	SetStackHooks(CompositeStackHooks{first, second})

	Stack().OnSurfaceAppended("canvas", 0)
	Stack().OnSurfaceMoved("canvas", 0, 1)

	for i, rec := range []*recordingStackHooks{first, second} {
		if len(rec.appended) != 1 {
			t.Errorf("member %d appended = %v, want one entry", i, rec.appended)
		}
		if len(rec.moves) != 1 {
			t.Errorf("member %d moves = %v, want one entry", i, rec.moves)
		}
	}
}

func TestReset(t *testing.T) {
	rec := &recordingStackHooks{}
	SetStackHooks(rec)
	Reset()

	Stack().OnSurfaceAppended("canvas", 1)
	if len(rec.appended) != 0 {
		t.Errorf("appended = %v, want empty after Reset", rec.appended)
	}
}
