package session

import "testing"

func TestManagerAddRemoveCount(t *testing.T) {
	m := NewManager()
	a := &Session{ID: "a"}
	b := &Session{ID: "b"}
	m.Add(a)
	m.Add(b)
	if m.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", m.Count())
	}
	m.Remove(a)
	if m.Count() != 1 {
		t.Fatalf("Count() after Remove = %d, want 1", m.Count())
	}
}

func TestManagerBindSnakeAndLookup(t *testing.T) {
	m := NewManager()
	s := &Session{ID: "a"}
	m.Add(s)
	m.BindSnake(s, 42)

	if !s.HasSnake || s.SnakeID != 42 {
		t.Fatalf("BindSnake did not set session snake fields: %+v", s)
	}
	got, ok := m.BySnake(42)
	if !ok || got != s {
		t.Fatalf("BySnake(42) = %v, %v, want the bound session", got, ok)
	}
}

func TestManagerRemoveClearsSnakeBinding(t *testing.T) {
	m := NewManager()
	s := &Session{ID: "a"}
	m.Add(s)
	m.BindSnake(s, 7)
	m.Remove(s)

	if _, ok := m.BySnake(7); ok {
		t.Fatalf("expected snake binding cleared after Remove")
	}
}

func TestManagerSnapshotIsIndependentOfLiveSet(t *testing.T) {
	m := NewManager()
	a := &Session{ID: "a"}
	m.Add(a)
	snap := m.Snapshot()
	m.Add(&Session{ID: "b"})

	if len(snap) != 1 {
		t.Fatalf("Snapshot len = %d, want 1 (taken before second Add)", len(snap))
	}
}
