package notify

import (
	"fmt"
	"log"
	"sync"
)

// Notifier is the single user-facing error path. Transport failures,
// backend error envelopes and local validation failures all surface here
// exactly once; nothing is retried.
type Notifier interface {
	Errorf(format string, args ...any)
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

func (LogNotifier) Errorf(format string, args ...any) {
	log.Printf("ERROR: "+format, args...)
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}

func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}
