// Package ui provides the color themes shared by the console output and the
// dashboard. Console code reads ANSI escape codes through the Color*
// helpers; the dashboard reads lipgloss colors from the matching TUITheme.
// Both honour --no-color and the NO_COLOR environment variable.
package ui
