package logger

import (
	"fmt"
	"time"
)

// ANSI colors for console output.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func line(color, tag, msg string) {
	fmt.Printf("%s%s%s %s[%s]%s %s\n", dim, timestamp(), reset, color, tag, reset, msg)
}

// Info logs a neutral message with a tag.
func Info(tag, msg string) {
	line(cyan, tag, msg)
}

// Success logs a completed step.
func Success(tag, msg string) {
	line(green, tag, msg)
}

// Warn logs a recoverable problem.
func Warn(tag, msg string) {
	line(yellow, tag, msg)
}

// Error logs a failure.
func Error(tag, msg string) {
	line(red, tag, msg)
}

// Section prints a visual divider before a group of related log lines.
func Section(name string) {
	fmt.Printf("\n%s== %s ==%s\n", bold, name, reset)
}

// Stats prints a key/value pair indented under the current section.
func Stats(key string, value interface{}) {
	fmt.Printf("   %s%s:%s %v\n", dim, key, reset, value)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("%s%sBazaar Flipper%s %s%s%s\n", bold, cyan, reset, dim, version, reset)
}

// Server prints the listen address once the HTTP server is up.
func Server(addr string) {
	fmt.Printf("%s%sListening on http://%s%s\n", bold, green, addr, reset)
}
