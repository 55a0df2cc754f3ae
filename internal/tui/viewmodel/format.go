package viewmodel

import (
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/pennywise/internal/model"
)

// PayeeLabel returns the payee or a placeholder.
func PayeeLabel(t model.Transaction) string {
	if t.Payee == nil || strings.TrimSpace(*t.Payee) == "" {
		return "(no payee)"
	}
	return SanitizeForDisplay(*t.Payee)
}

// CategoryLabel returns the category name or "Uncategorized".
func CategoryLabel(t model.Transaction) string {
	if t.CategoryName == nil || *t.CategoryName == "" {
		return "Uncategorized"
	}
	return *t.CategoryName
}

// FormatDateShort renders an ISO date as "Jan 02". Unparseable dates are
// returned unchanged.
func FormatDateShort(date string) string {
	t, err := model.ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("Jan 02")
}

// TruncateString truncates a string to maxLen runes with an ellipsis.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// SanitizeForDisplay removes potentially problematic characters for terminal display.
func SanitizeForDisplay(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " ")
}
