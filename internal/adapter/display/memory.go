package display

import "sync"

// MemoryOutput keeps the element content in memory. The web front reads it
// back through Content.
type MemoryOutput struct {
	mu      sync.RWMutex
	content string
	writes  int
}

// NewMemoryOutput creates an empty MemoryOutput
func NewMemoryOutput() *MemoryOutput {
	return &MemoryOutput{}
}

// Set implements Output
func (o *MemoryOutput) Set(content string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.content = content
	o.writes++
}

// Content returns the current element content
func (o *MemoryOutput) Content() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.content
}

// Writes returns how many times the element was overwritten
func (o *MemoryOutput) Writes() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.writes
}
