package watcher

import (
	"io"
	"os"
	"sync"

	"github.com/nxadm/tail"
)

// Positions remembers how far each log has been read. Offsets live only
// as long as the process.
type Positions struct {
	mu      sync.Mutex
	offsets map[string]int64
}

// NewPositions creates an empty position table.
func NewPositions() *Positions {
	return &Positions{offsets: make(map[string]int64)}
}

// Update records offset for file.
func (p *Positions) Update(file string, offset int64) {
	p.mu.Lock()
	p.offsets[file] = offset
	p.mu.Unlock()
}

// Offset returns the recorded offset for file.
func (p *Positions) Offset(file string) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	off, ok := p.offsets[file]
	return off, ok
}

// SeekInfo picks where to start reading file: a remembered offset when it is
// still within the file, otherwise the start or the end.
func (p *Positions) SeekInfo(file string, fromStart bool) *tail.SeekInfo {
	if off, ok := p.Offset(file); ok {
		if info, err := os.Stat(file); err == nil && info.Size() >= off {
			return &tail.SeekInfo{Offset: off, Whence: io.SeekStart}
		}
		// Truncated since we last read it.
		return &tail.SeekInfo{Offset: 0, Whence: io.SeekStart}
	}
	if fromStart {
		return &tail.SeekInfo{Offset: 0, Whence: io.SeekStart}
	}
	return &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
}
