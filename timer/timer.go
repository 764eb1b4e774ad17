// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Task is a scheduled callback. A non-zero Interval reschedules it after
// each run.
type Task struct {
	ID       int64
	Execute  time.Time
	Interval time.Duration
	Callback func()
	index    int
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*Task)
	task.index = n
	*q = append(*q, task)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// Manager runs scheduled tasks off a single goroutine driven by a heap of
// execution times.
type Manager struct {
	queue    taskQueue
	mutex    sync.Mutex
	nextID   int64
	wakeup   chan struct{}
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewManager() *Manager {
	m := &Manager{
		wakeup:   make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
	heap.Init(&m.queue)
	go m.loop()
	return m
}

// Schedule runs callback once after delay.
func (m *Manager) Schedule(delay time.Duration, callback func()) int64 {
	return m.add(delay, 0, callback)
}

// Repeat runs callback every interval, starting one interval from now.
func (m *Manager) Repeat(interval time.Duration, callback func()) int64 {
	return m.add(interval, interval, callback)
}

func (m *Manager) add(delay, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	m.nextID++
	task := &Task{
		ID:       m.nextID,
		Execute:  time.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	}
	heap.Push(&m.queue, task)
	m.mutex.Unlock()

	select {
	case m.wakeup <- struct{}{}:
	default:
	}
	return task.ID
}

// Cancel removes a pending task by id.
func (m *Manager) Cancel(id int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, task := range m.queue {
		if task.ID == id {
			heap.Remove(&m.queue, task.index)
			return
		}
	}
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Manager) loop() {
	for {
		m.mutex.Lock()
		var wait time.Duration
		if m.queue.Len() == 0 {
			wait = time.Hour
		} else {
			wait = time.Until(m.queue[0].Execute)
		}
		m.mutex.Unlock()

		if wait > 0 {
			select {
			case <-time.After(wait):
			case <-m.wakeup:
				continue
			case <-m.stopChan:
				return
			}
		}

		m.runDue()
	}
}

func (m *Manager) runDue() {
	now := time.Now()
	for {
		m.mutex.Lock()
		if m.queue.Len() == 0 || m.queue[0].Execute.After(now) {
			m.mutex.Unlock()
			return
		}
		task := heap.Pop(&m.queue).(*Task)
		if task.Interval > 0 {
			next := *task
			next.Execute = now.Add(task.Interval)
			heap.Push(&m.queue, &next)
		}
		m.mutex.Unlock()

		task.Callback()
	}
}
