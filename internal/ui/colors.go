package ui

// ColorRed returns the escape code for errors.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the escape code for successful outcomes.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the escape code for warnings.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorCyan returns the escape code for highlighted values.
func ColorCyan() string { return GetCurrentTheme().Primary }

// ColorMagenta returns the escape code for informational text.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorDim returns the escape code for secondary text.
func ColorDim() string { return GetCurrentTheme().Secondary }

// ColorBold returns the escape code for bold text.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the escape code for underlined text.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// ColorReset returns the escape code clearing all attributes.
func ColorReset() string { return GetCurrentTheme().Reset }

// StateColor returns the escape code for a job state name as printed by
// job.State.String.
func StateColor(state string) string {
	switch state {
	case "completed":
		return ColorGreen()
	case "failed":
		return ColorRed()
	case "cancelled":
		return ColorYellow()
	case "running":
		return ColorCyan()
	default:
		return ColorDim()
	}
}
