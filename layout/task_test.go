package layout

import (
	"errors"
	"testing"
)

func TestTaskQueueStableOrder(t *testing.T) {
	var got []string
	add := func(name string) func() error {
		return func() error { got = append(got, name); return nil }
	}
	q := NewTaskQueue(quietLogger())
	q.Insert(
		NewDrawingTask("c1", PriorityContent, add("c1")),
		NewDrawingTask("bg", PriorityBackground, add("bg")),
		NewDrawingTask("c2", PriorityContent, add("c2")),
		NewDrawingTask("over", PriorityOverlay, add("over")),
		NewDrawingTask("page", PriorityPageBackground, add("page")),
		NewDrawingTask("c3", PriorityContent, add("c3")),
	)
	want := []string{"page", "bg", "c1", "c2", "c3", "over"}
	pending := q.Tasks()
	for i, task := range pending {
		if task.Name() != want[i] {
			t.Fatalf("Tasks()[%d] = %s, want %s", i, task.Name(), want[i])
		}
	}
	if q.Len() != len(want) {
		t.Fatalf("Tasks must not drain the queue")
	}
	if err := q.Invoke(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: got %v want %v", got, want)
		}
	}
	if q.State() != QueueDone {
		t.Fatalf("state: %s", q.State())
	}
}

func TestTaskQueueFailureKeepsEarlierOutput(t *testing.T) {
	var got []string
	cause := errors.New("disk full")
	q := NewTaskQueue(quietLogger())
	q.Insert(
		NewDrawingTask("a", PriorityContent, func() error { got = append(got, "a"); return nil }),
		NewDrawingTask("b", PriorityContent, func() error { return cause }),
		NewDrawingTask("c", PriorityContent, func() error { got = append(got, "c"); return nil }),
	)
	err := q.Invoke()
	var de *DrawingError
	if !errors.As(err, &de) || de.Task != "b" || de.Seq != 1 {
		t.Fatalf("expected DrawingError for b, got %v", err)
	}
	if !errors.Is(err, ErrDrawingFailure) || !errors.Is(err, cause) {
		t.Fatalf("error should match ErrDrawingFailure and wrap the cause: %v", err)
	}
	if len(got) != 1 || got[0] != "a" {
		t.Fatalf("only a should have run, got %v", got)
	}
	if q.State() != QueueFailed || q.Len() != 0 {
		t.Fatalf("state=%s len=%d", q.State(), q.Len())
	}
}

func TestTaskQueueRecoversPanics(t *testing.T) {
	q := NewTaskQueue(quietLogger())
	q.Insert(NewDrawingTask("p", PriorityContent, func() error { panic("bad path") }))
	if err := q.Invoke(); !errors.Is(err, ErrDrawingFailure) {
		t.Fatalf("panic should become a drawing failure, got %v", err)
	}
}

func TestTaskQueueIsSingleUse(t *testing.T) {
	runs := 0
	q := NewTaskQueue(nil)
	q.Insert(NewDrawingTask("x", PriorityContent, func() error { runs++; return nil }))
	if err := q.Invoke(); err != nil {
		t.Fatal(err)
	}
	if err := q.Invoke(); !errors.Is(err, ErrLogic) {
		t.Fatalf("second Invoke should fail with ErrLogic, got %v", err)
	}
	q.Insert(NewDrawingTask("late", PriorityContent, func() error { runs++; return nil }))
	if q.Len() != 0 || runs != 1 {
		t.Fatalf("late insert should be ignored: len=%d runs=%d", q.Len(), runs)
	}
}

func TestDrawingTaskInvoke(t *testing.T) {
	task := NewDrawingTask("solo", PriorityBorder, func() error { return errors.New("nope") })
	if task.Priority() != PriorityBorder {
		t.Fatalf("priority: %d", task.Priority())
	}
	if err := task.Invoke(); !errors.Is(err, ErrDrawingFailure) {
		t.Fatalf("got %v", err)
	}
	if err := NewDrawingTask("noop", PriorityContent, nil).Invoke(); err != nil {
		t.Fatalf("nil action should be a no-op, got %v", err)
	}
}
