package debug

import (
	"fmt"
	"sync"
	"time"
)

// Logger is the centralized, component-tagged logging sink shared by the
// CPU and every peripheral. Entries are appended to a circular buffer by
// a single background goroutine so that callers on the emulation hot path
// never block on a full channel; an entry is dropped rather than stalling
// a bus access.
type Logger struct {
	entries    []LogEntry
	entriesMu  sync.RWMutex
	maxEntries int
	writeIndex int
	entryCount int

	componentEnabled map[Component]bool
	componentMu      sync.RWMutex

	minLevel LogLevel
	levelMu  sync.RWMutex

	logChan  chan LogEntry
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewLogger creates a new logger instance with the given ring buffer size.
func NewLogger(maxEntries int) *Logger {
	if maxEntries < 100 {
		maxEntries = 100
	}

	logger := &Logger{
		entries:          make([]LogEntry, maxEntries),
		maxEntries:       maxEntries,
		componentEnabled: make(map[Component]bool),
		minLevel:         LogLevelInfo,
		logChan:          make(chan LogEntry, 1000),
		shutdown:         make(chan struct{}),
	}

	for _, c := range []Component{
		ComponentCPU, ComponentBus, ComponentInterrupt, ComponentTimer,
		ComponentSyscon, ComponentGPIO, ComponentI2C, ComponentATA,
		ComponentLCD, ComponentKeypad, ComponentMailbox, ComponentFirmware,
		ComponentHost,
	} {
		logger.componentEnabled[c] = false
	}

	logger.wg.Add(1)
	go logger.processLogs()

	return logger
}

func (l *Logger) processLogs() {
	defer l.wg.Done()

	for {
		select {
		case entry := <-l.logChan:
			l.addEntry(entry)
		case <-l.shutdown:
			for {
				select {
				case entry := <-l.logChan:
					l.addEntry(entry)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) addEntry(entry LogEntry) {
	l.entriesMu.Lock()
	defer l.entriesMu.Unlock()

	l.entries[l.writeIndex] = entry
	l.writeIndex = (l.writeIndex + 1) % l.maxEntries

	if l.entryCount < l.maxEntries {
		l.entryCount++
	}
}

// Log records a message if its component is enabled and its level clears the threshold.
func (l *Logger) Log(component Component, level LogLevel, message string, data map[string]interface{}) {
	l.componentMu.RLock()
	enabled := l.componentEnabled[component]
	l.componentMu.RUnlock()

	if !enabled {
		return
	}

	l.levelMu.RLock()
	minLevel := l.minLevel
	l.levelMu.RUnlock()

	if level < minLevel {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Component: component,
		Level:     level,
		Message:   message,
		Data:      data,
	}

	select {
	case l.logChan <- entry:
	default:
		// buffer saturated; drop rather than stall the caller
	}
}

// Logf logs a formatted message.
func (l *Logger) Logf(component Component, level LogLevel, format string, args ...interface{}) {
	l.Log(component, level, fmt.Sprintf(format, args...), nil)
}

// GetEntries returns a copy of all buffered entries, oldest first.
func (l *Logger) GetEntries() []LogEntry {
	l.entriesMu.RLock()
	defer l.entriesMu.RUnlock()

	if l.entryCount == 0 {
		return []LogEntry{}
	}

	entries := make([]LogEntry, l.entryCount)

	if l.entryCount < l.maxEntries {
		copy(entries, l.entries[:l.entryCount])
	} else {
		for i := 0; i < l.entryCount; i++ {
			idx := (l.writeIndex + i) % l.maxEntries
			entries[i] = l.entries[idx]
		}
	}

	return entries
}

// GetRecentEntries returns the most recent count entries.
func (l *Logger) GetRecentEntries(count int) []LogEntry {
	all := l.GetEntries()
	if count >= len(all) {
		return all
	}
	return all[len(all)-count:]
}

// Clear discards all buffered entries.
func (l *Logger) Clear() {
	l.entriesMu.Lock()
	defer l.entriesMu.Unlock()

	l.entryCount = 0
	l.writeIndex = 0
}

// SetComponentEnabled enables or disables logging for a component.
func (l *Logger) SetComponentEnabled(component Component, enabled bool) {
	l.componentMu.Lock()
	defer l.componentMu.Unlock()
	l.componentEnabled[component] = enabled
}

// IsComponentEnabled reports whether a component is currently enabled.
func (l *Logger) IsComponentEnabled(component Component) bool {
	l.componentMu.RLock()
	defer l.componentMu.RUnlock()
	return l.componentEnabled[component]
}

// SetMinLevel sets the minimum level that will be recorded.
func (l *Logger) SetMinLevel(level LogLevel) {
	l.levelMu.Lock()
	defer l.levelMu.Unlock()
	l.minLevel = level
}

// MinLevel returns the minimum level that will be recorded.
func (l *Logger) MinLevel() LogLevel {
	l.levelMu.RLock()
	defer l.levelMu.RUnlock()
	return l.minLevel
}

// Shutdown stops the background goroutine and drains any pending entries.
func (l *Logger) Shutdown() {
	close(l.shutdown)
	l.wg.Wait()
}
