// Package output creates termenv outputs that honour NO_COLOR and the
// terminal's capabilities the same way everywhere in the CLI.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// ColorProfile returns the profile for terminal output. NO_COLOR forces
// plain text, otherwise the environment decides.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// ColorProfileANSI returns the 16 colour profile used when the output is
// not a terminal, such as CI logs.
func ColorProfileANSI() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// New returns an output writing to w with ColorProfile. A nil w means stderr.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	return NewWithProfile(w, ColorProfile, opts...)
}

// NewWithProfile returns an output writing to w with the profile chosen by profileFn.
func NewWithProfile(w io.Writer, profileFn func() termenv.Profile, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	opts = append(opts,
		termenv.WithProfile(profileFn()),
		termenv.WithTTY(true),
	)
	return termenv.NewOutput(w, opts...)
}
