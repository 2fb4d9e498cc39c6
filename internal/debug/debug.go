package debug

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// FromEnv reports whether RU_ADDR_DEBUG asks for debug output
func FromEnv() bool {
	switch strings.ToLower(os.Getenv("RU_ADDR_DEBUG")) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// DebugHeader marks the start of a named run, such as "split" or "osm"
func DebugHeader(enabled bool, run string) {
	if enabled {
		log.Printf("=== %s: start ===", run)
	}
}

// DebugFooter marks the end of a named run
func DebugFooter(enabled bool, run string) {
	if enabled {
		log.Printf("=== %s: end ===", run)
	}
}

// DebugOutput prints debug output if debugging is enabled
func DebugOutput(enabled bool, format string, args ...interface{}) {
	if enabled {
		timestamp := time.Now().Format("15:04:05.000")
		log.Printf("[%s] %s", timestamp, fmt.Sprintf(format, args...))
	}
}

// DebugTiming logs the start of an operation and returns a func logging its duration
func DebugTiming(enabled bool, operation string) func() {
	if !enabled {
		return func() {}
	}

	start := time.Now()
	DebugOutput(enabled, "Starting: %s", operation)

	return func() {
		DebugOutput(enabled, "Completed: %s (took %v)", operation, time.Since(start))
	}
}

// Progress logs a checkpoint line every `every` items and reports whether it did
func Progress(count, every int, what string) bool {
	if every <= 0 || count == 0 || count%every != 0 {
		return false
	}
	log.Printf("did %d %s", count, what)
	return true
}
