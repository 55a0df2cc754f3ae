package components

import (
	"github.com/Veraticus/pennywise/internal/tui/themes"
)

// NoticeKind selects how a notice is styled.
type NoticeKind int

// Notice kinds.
const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is a one-line, dismissible status message.
type Notice struct {
	Text string
	Kind NoticeKind
	// Seq identifies the notice so a delayed dismissal only clears the
	// notice it was scheduled for.
	Seq int
}

// Visible reports whether there is anything to show.
func (n Notice) Visible() bool {
	return n.Text != ""
}

// Render renders the notice, or "" when hidden.
func (n Notice) Render(theme themes.Theme) string {
	if !n.Visible() {
		return ""
	}
	switch n.Kind {
	case NoticeError:
		return theme.StatusError.Render("✗ " + n.Text + "  (esc to dismiss)")
	case NoticeSuccess:
		return theme.StatusSuccess.Render("✓ " + n.Text)
	default:
		return theme.StatusInfo.Render(n.Text)
	}
}
