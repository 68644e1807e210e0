package tui

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/naveenspark/yorch/pkg/auth"
	"github.com/naveenspark/yorch/pkg/client"
)

// formatTime renders a relative timestamp against now.
func formatTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "ahora"
	case d < time.Hour:
		return fmt.Sprintf("hace %dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("hace %dh", int(d.Hours()))
	default:
		return fmt.Sprintf("hace %dd", int(d.Hours()/24))
	}
}

// formatRemaining renders a session countdown at minute resolution:
// "5h 59m", "9m", or "<1m".
func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return "<1m"
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// errText returns what a screen should show for err. Session expiry is
// handled by the App, so it yields "".
func errText(err error) string {
	if err == nil || errors.Is(err, auth.ErrSessionExpired) {
		return ""
	}
	return client.Message(err)
}

// minVisibleRows is the fewest list rows shown however short the screen.
const minVisibleRows = 3

// listWindow returns the [start, end) slice of an n-row list to draw so that
// cursor stays on screen. rows <= 0 means the height is unknown and every row
// is drawn.
func listWindow(cursor, n, rows int) (start, end int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	rows = max(rows, minVisibleRows)
	if cursor >= rows {
		start = cursor - rows + 1
	}
	end = min(start+rows, n)
	return start, end
}
