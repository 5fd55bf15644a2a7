package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"lunch-menu/models"
)

// ParseClock converts "HH:MM" (or "HH:MM:SS") to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 || len(parts[0]) > 2 {
		return 0, fmt.Errorf("clock %q: bad hour", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("clock %q: bad minute", s)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("clock %q: bad second", s)
		}
	}
	return h*60 + m, nil
}

// FormatClock is the inverse of ParseClock.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// IsOpenAt reports whether orders are accepted at nowMinutes on dayOfWeek
// (0 = Sunday). Sunday is always closed. Both ends of the window are
// inclusive and the window never crosses midnight. Malformed hours count as
// closed.
func IsOpenAt(nowMinutes int, opening, closing string, dayOfWeek int) bool {
	if dayOfWeek == int(time.Sunday) {
		return false
	}
	open, err := ParseClock(opening)
	if err != nil {
		return false
	}
	closeAt, err := ParseClock(closing)
	if err != nil {
		return false
	}
	return nowMinutes >= open && nowMinutes <= closeAt
}

// IsOpen evaluates the window against now in now's own location.
func IsOpen(now time.Time, opening, closing string) bool {
	return IsOpenAt(now.Hour()*60+now.Minute(), opening, closing, int(now.Weekday()))
}

// MenuDay is the day tab shown as "today": the weekday index, with Sunday
// showing Saturday's menu.
func MenuDay(now time.Time) int {
	d := int(now.Weekday())
	if d == int(time.Sunday) {
		return int(time.Saturday)
	}
	return d
}

// ValidateWindow checks an operating window before it is stored.
func ValidateWindow(w models.OperatingWindow) (models.OperatingWindow, error) {
	open, err := ParseClock(w.OpeningTime)
	if err != nil {
		return w, fmt.Errorf("%w: opening: %v", ErrInvalidWindow, err)
	}
	closeAt, err := ParseClock(w.ClosingTime)
	if err != nil {
		return w, fmt.Errorf("%w: closing: %v", ErrInvalidWindow, err)
	}
	if closeAt <= open {
		return w, fmt.Errorf("%w: closing must be after opening", ErrInvalidWindow)
	}
	w.OpeningTime = FormatClock(open)
	w.ClosingTime = FormatClock(closeAt)
	return w, nil
}
