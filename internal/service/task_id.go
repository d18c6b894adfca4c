package service

import (
	"fmt"
	"sync"
	"time"
)

const taskCounterLimit = 99999999

// TaskIDGenerator issues ids of the form YYYYMMDDHHMMSS followed by an
// eight digit counter. The counter restarts every hour and when it reaches
// its limit.
type TaskIDGenerator struct {
	mu      sync.Mutex
	now     func() time.Time
	hour    string
	counter int
}

func NewTaskIDGenerator() *TaskIDGenerator {
	return newTaskIDGenerator(time.Now)
}

func newTaskIDGenerator(now func() time.Time) *TaskIDGenerator {
	return &TaskIDGenerator{now: now, hour: now().Format("2006010215")}
}

func (g *TaskIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	hour := now.Format("2006010215")
	if hour != g.hour || g.counter >= taskCounterLimit {
		g.counter = 0
		g.hour = hour
	}

	id := fmt.Sprintf("%s%08d", now.Format("20060102150405"), g.counter)
	g.counter++
	return id
}
