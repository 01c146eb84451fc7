package layout

import (
	"container/heap"
	"fmt"

	"github.com/charmbracelet/log"
)

// Priority orders drawing tasks back to front: lower values paint first.
type Priority int

const (
	PriorityPageBackground Priority = 10 // page decorations
	PriorityWatermark      Priority = 15
	PriorityBackground     Priority = 20
	PriorityBorder         Priority = 30
	PriorityContent        Priority = 40
	PriorityOverlay        Priority = 50 // header and footer
)

// DrawingTask is a deferred paint action. It is immutable once built.
type DrawingTask struct {
	name     string
	priority Priority
	action   func() error
}

// NewDrawingTask returns a task running action at the given priority.
func NewDrawingTask(name string, priority Priority, action func() error) *DrawingTask {
	return &DrawingTask{name: name, priority: priority, action: action}
}

func (t *DrawingTask) Name() string       { return t.name }
func (t *DrawingTask) Priority() Priority { return t.priority }

// invoke runs the action. A returned error or a panic becomes a
// *DrawingError; seq identifies the task within its queue.
func (t *DrawingTask) invoke(seq uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DrawingError{Task: t.name, Seq: seq, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	if t.action == nil {
		return nil
	}
	if err := t.action(); err != nil {
		return &DrawingError{Task: t.name, Seq: seq, Cause: err}
	}
	return nil
}

// Invoke runs the task on its own, outside of any queue.
func (t *DrawingTask) Invoke() error { return t.invoke(0) }

// QueueState tracks a TaskQueue's single pass.
type QueueState int

const (
	QueueCollected QueueState = iota
	QueueInvoking
	QueueDone
	QueueFailed
)

func (s QueueState) String() string {
	switch s {
	case QueueInvoking:
		return "invoking"
	case QueueDone:
		return "done"
	case QueueFailed:
		return "failed"
	default:
		return "collected"
	}
}

type queuedTask struct {
	task *DrawingTask
	seq  uint64
}

type taskHeap []queuedTask

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].task.priority != h[j].task.priority {
		return h[i].task.priority < h[j].task.priority
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(queuedTask)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// TaskQueue is a stable priority queue of drawing tasks: equal priorities
// run in insertion order. A queue is single use; invoking it a second time
// returns ErrLogic. Not safe for concurrent use.
type TaskQueue struct {
	h      taskHeap
	next   uint64
	state  QueueState
	logger *log.Logger
}

// NewTaskQueue returns an empty queue. A nil logger means log.Default().
func NewTaskQueue(logger *log.Logger) *TaskQueue {
	if logger == nil {
		logger = log.Default()
	}
	return &TaskQueue{logger: logger}
}

// Insert adds tasks in order. Inserting after Invoke has started is ignored
// and logged.
func (q *TaskQueue) Insert(tasks ...*DrawingTask) {
	if q.state != QueueCollected {
		q.logger.Warn("task inserted into a drained queue", "state", q.state, "count", len(tasks))
		return
	}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		heap.Push(&q.h, queuedTask{task: t, seq: q.next})
		q.next++
	}
}

func (q *TaskQueue) Len() int          { return q.h.Len() }
func (q *TaskQueue) State() QueueState { return q.state }

// Tasks returns the pending tasks in the order Invoke would run them without
// draining the queue.
func (q *TaskQueue) Tasks() []*DrawingTask {
	cp := make(taskHeap, len(q.h))
	copy(cp, q.h)
	out := make([]*DrawingTask, 0, len(cp))
	for cp.Len() > 0 {
		out = append(out, heap.Pop(&cp).(queuedTask).task)
	}
	return out
}

// Invoke drains the queue in paint order. The first failing task stops the
// run: earlier output is kept, later tasks never run, and the failure is
// returned as a *DrawingError.
func (q *TaskQueue) Invoke() error {
	if q.state != QueueCollected {
		return fmt.Errorf("%w: task queue already %s", ErrLogic, q.state)
	}
	q.state = QueueInvoking
	for q.h.Len() > 0 {
		it := heap.Pop(&q.h).(queuedTask)
		if err := it.task.invoke(it.seq); err != nil {
			q.state = QueueFailed
			q.logger.Error("drawing task failed", "task", it.task.name, "seq", it.seq, "skipped", q.h.Len(), "err", err)
			q.h = nil
			return err
		}
	}
	q.state = QueueDone
	return nil
}
