package view

import (
	"strconv"
	"strings"
	"sync/atomic"
)

const (
	DefaultWindowHours = 24
	MaxWindowHours     = 168
)

// Window is the single piece of state shared by every fetch of a cycle.
type Window struct {
	hours   atomic.Int64
	choices []int
}

func NewWindow(hours int, choices []int) *Window {
	w := &Window{choices: choices}
	w.hours.Store(int64(hours))
	return w
}

// Hours returns the active window, defaulting when unset or invalid and
// bounded to the backend's accepted range.
func (w *Window) Hours() int {
	h := int(w.hours.Load())
	if h <= 0 {
		return DefaultWindowHours
	}
	if h > MaxWindowHours {
		return MaxWindowHours
	}
	return h
}

func (w *Window) Set(hours int) {
	w.hours.Store(int64(hours))
}

// SetRaw stores a selector value; anything that is not a positive integer
// falls back to the default window.
func (w *Window) SetRaw(raw string) int {
	w.Set(ParseHours(raw))
	return w.Hours()
}

func (w *Window) Choices() []int {
	return w.choices
}

func ParseHours(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return DefaultWindowHours
	}
	return n
}
