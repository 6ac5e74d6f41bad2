package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/stratum/internal/ui/output"
)

func TestColorProfile_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile())
	assert.Equal(t, termenv.Ascii, output.ColorProfileANSI())
}

func TestColorProfileANSI(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.Equal(t, termenv.ANSI, output.ColorProfileANSI())
}

func TestNew_PlainText(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	out := output.New(&buf)

	_, _ = out.WriteString(out.String("built").Foreground(termenv.ANSIGreen).String())
	assert.Equal(t, "built", buf.String())
}

func TestNewWithProfile_ANSI(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var buf bytes.Buffer
	out := output.NewWithProfile(&buf, output.ColorProfileANSI)

	_, _ = out.WriteString(out.String("failed").Foreground(termenv.ANSIRed).String())
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "failed")
}

func TestNew_NilWriter(t *testing.T) {
	assert.NotNil(t, output.New(nil))
}
