package resource

import (
	"sync"
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnHandleEvent(e Event) {
	o.events = append(o.events, e)
}

type dropTracker struct {
	dropped bool
}

func (d *dropTracker) Drop() { d.dropped = true }

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	h := table.Insert(TypeObject, "test")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if _, ok = table.GetTyped(h, TypeObject); !ok {
		t.Fatal("GetTyped with correct type failed")
	}
	if _, ok = table.GetTyped(h, TypeScene); ok {
		t.Fatal("GetTyped with wrong type should fail")
	}

	val, ok = table.Remove(h)
	if !ok {
		t.Fatal("Remove failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
}

func TestTable_InvalidHandle(t *testing.T) {
	table := NewTable()

	if _, ok := table.Get(0); ok {
		t.Fatal("Get(0) should fail")
	}
	if _, ok := table.Get(999); ok {
		t.Fatal("Get of unknown handle should fail")
	}
	if _, ok := table.Remove(999); ok {
		t.Fatal("Remove of unknown handle should fail")
	}

	h := table.Insert(TypeObject, 1)
	table.Remove(h)
	if _, ok := table.Get(h); ok {
		t.Fatal("Get after Remove should fail")
	}
}

func TestTable_HandleReuse(t *testing.T) {
	table := NewTable()

	h1 := table.Insert(TypeObject, "first")
	table.Remove(h1)

	h2 := table.Insert(TypeObject, "second")
	if h2 != h1 {
		t.Fatalf("Expected freed handle %d to be reused, got %d", h1, h2)
	}

	val, _ := table.Get(h2)
	if val != "second" {
		t.Fatalf("Expected 'second', got %v", val)
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert(TypeScene, "test")
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventCreated {
		t.Fatal("Expected EventCreated")
	}
	if obs.events[0].Handle != h || obs.events[0].TypeID != TypeScene {
		t.Fatal("Wrong handle or type in event")
	}

	table.Remove(h)
	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}
	if obs.events[1].Type != EventDropped {
		t.Fatal("Expected EventDropped")
	}

	table.Unsubscribe(obs)
	table.Insert(TypeObject, "after")
	if len(obs.events) != 2 {
		t.Fatal("Unsubscribed observer should not receive events")
	}
}

func TestTable_Dropper(t *testing.T) {
	table := NewTable()

	d1 := &dropTracker{}
	h := table.Insert(TypeObject, d1)
	table.Remove(h)
	if !d1.dropped {
		t.Fatal("Remove should call Drop")
	}

	d2 := &dropTracker{}
	table.Insert(TypeObject, d2)
	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !d2.dropped {
		t.Fatal("Close should call Drop on remaining values")
	}

	if h := table.Insert(TypeObject, "late"); h != 0 {
		t.Fatal("Insert after Close should return 0")
	}
}

func TestTable_Clear(t *testing.T) {
	table := NewTable()
	for i := 0; i < 5; i++ {
		table.Insert(TypeObject, i)
	}
	table.Clear()
	if table.Len() != 0 {
		t.Fatalf("Expected empty table after Clear, got %d", table.Len())
	}

	// Table still usable after Clear.
	if h := table.Insert(TypeObject, "again"); h == 0 {
		t.Fatal("Insert after Clear should succeed")
	}
}

func TestTable_ConcurrentReaders(t *testing.T) {
	table := NewTable()
	handles := make([]Handle, 100)
	for i := range handles {
		handles[i] = table.Insert(TypeObject, i)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, h := range handles {
				v, ok := table.Get(h)
				if !ok || v != i {
					t.Errorf("Get(%d) = %v, %v", h, v, ok)
					return
				}
			}
		}()
	}
	wg.Wait()
}
