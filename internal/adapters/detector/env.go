// Package detector picks how log output is coloured for the current environment.
package detector

import (
	"os"

	"github.com/muesli/termenv"
	"go.trai.ch/stratum/internal/ui/output"
	"golang.org/x/term"
)

// OutputMode represents how log lines are rendered.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeTerminal uses the full colour profile of the terminal.
	ModeTerminal
	// ModeCI uses 16 ANSI colours, which CI log viewers understand.
	ModeCI
	// ModePlain writes no escape sequences.
	ModePlain
)

// DetectEnvironment returns the recommended mode for output written to f.
// CI wins over a terminal since CI runners often allocate a pseudo terminal.
func DetectEnvironment(f *os.File) OutputMode {
	ci := os.Getenv("CI")
	if ci == "true" || ci == "1" {
		return ModeCI
	}
	if f != nil && term.IsTerminal(int(f.Fd())) {
		return ModeTerminal
	}
	return ModePlain
}

// ResolveMode applies the --color flag to the detected mode.
// userFlag should be one of: "auto", "always", "never", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "always":
		if autoDetected == ModeCI {
			return ModeCI
		}
		return ModeTerminal
	case "never":
		return ModePlain
	default:
		return autoDetected
	}
}

// Profile returns the colour profile function for mode. NO_COLOR is
// honoured in every mode.
func Profile(mode OutputMode) func() termenv.Profile {
	switch mode {
	case ModeCI:
		return output.ColorProfileANSI
	case ModePlain:
		return func() termenv.Profile { return termenv.Ascii }
	default:
		return output.ColorProfile
	}
}
