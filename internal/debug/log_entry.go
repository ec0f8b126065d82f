package debug

import (
	"fmt"
	"time"
)

// LogLevel represents the severity level of a log entry
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelNone:
		return "NONE"
	case LogLevelError:
		return "ERROR"
	case LogLevelWarning:
		return "WARNING"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Component identifies the subsystem that produced a log entry. The set
// mirrors the PP5021C peripheral map in spec.md rather than a display
// pipeline: there is no PPU/APU here, only the bus and the MMIO blocks
// firmware actually programs.
type Component string

const (
	ComponentCPU       Component = "CPU"
	ComponentBus       Component = "Bus"
	ComponentInterrupt Component = "IRQ"
	ComponentTimer     Component = "Timer"
	ComponentSyscon    Component = "Syscon"
	ComponentGPIO      Component = "GPIO"
	ComponentI2C       Component = "I2C"
	ComponentATA       Component = "ATA"
	ComponentLCD       Component = "LCD"
	ComponentKeypad    Component = "Keypad"
	ComponentMailbox   Component = "Mailbox"
	ComponentFirmware  Component = "Firmware"
	ComponentHost      Component = "Host"
)

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp time.Time
	Component Component
	Level     LogLevel
	Message   string
	Data      map[string]interface{}
}

// String renders the entry as one line of plain text (the devkit log viewer).
func (e LogEntry) String() string {
	return fmt.Sprintf("%s [%s] %-8s %s", e.Timestamp.Format(time.RFC3339Nano), e.Level, e.Component, e.Message)
}
