package nav

import "sync"

// History is the navigation environment the router drives. Denied navigations
// use Replace so back-navigation never loops onto a blocked route.
type History interface {
	Push(path string)
	Replace(path string)
	Current() string
}

// MemHistory is an in-memory History for the terminal shell and tests.
type MemHistory struct {
	sync.Mutex
	stack []string
}

var _ History = (*MemHistory)(nil)

func NewMemHistory(initial string) *MemHistory {
	return &MemHistory{stack: []string{initial}}
}

func (h *MemHistory) Push(path string) {
	h.Lock()
	defer h.Unlock()
	h.stack = append(h.stack, path)
}

func (h *MemHistory) Replace(path string) {
	h.Lock()
	defer h.Unlock()
	h.stack[len(h.stack)-1] = path
}

func (h *MemHistory) Current() string {
	h.Lock()
	defer h.Unlock()
	return h.stack[len(h.stack)-1]
}

// Back pops the current entry and returns the new current path.
func (h *MemHistory) Back() string {
	h.Lock()
	defer h.Unlock()
	if len(h.stack) > 1 {
		h.stack = h.stack[:len(h.stack)-1]
	}
	return h.stack[len(h.stack)-1]
}

// Entries returns a copy of the stack, oldest first.
func (h *MemHistory) Entries() []string {
	h.Lock()
	defer h.Unlock()
	out := make([]string, len(h.stack))
	copy(out, h.stack)
	return out
}
