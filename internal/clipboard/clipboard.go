// Package clipboard copies short strings (an email address, a project URL)
// to the system clipboard.
package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/folio-sh/folio/internal/platform"
)

var (
	// ErrEmpty is returned for an empty string.
	ErrEmpty = errors.New("clipboard: nothing to copy")
	// ErrUnavailable means no native tool was found and the terminal does
	// not accept OSC 52.
	ErrUnavailable = errors.New("clipboard: no clipboard method available (install pbcopy, xclip, xsel or wl-copy)")
)

// Result reports how the text was copied.
type Result struct {
	Method string // "pbcopy", "xclip", "osc52", ...
	Bytes  int
}

// Copy tries the platform clipboard tool first, then OSC 52 when the
// terminal is known to support it.
func Copy(text string) (*Result, error) {
	if text == "" {
		return nil, ErrEmpty
	}
	if method, err := copyNative(text); err == nil {
		return &Result{Method: method, Bytes: len(text)}, nil
	}
	if !SupportsOSC52() {
		return nil, ErrUnavailable
	}
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("clipboard: open tty: %w", err)
	}
	defer tty.Close()
	if err := writeOSC52(tty, text, os.Getenv("TMUX") != ""); err != nil {
		return nil, fmt.Errorf("clipboard: osc52: %w", err)
	}
	return &Result{Method: "osc52", Bytes: len(text)}, nil
}

// SupportsOSC52 guesses from the environment whether the terminal honours
// the OSC 52 clipboard sequence.
func SupportsOSC52() bool {
	if os.Getenv("TMUX") != "" {
		return true
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "ghostty", "vscode":
		return true
	}
	term := os.Getenv("TERM")
	for _, t := range []string{"kitty", "alacritty", "foot", "wezterm", "ghostty"} {
		if strings.Contains(term, t) {
			return true
		}
	}
	return false
}

func copyNative(text string) (string, error) {
	switch p := platform.Detect(); p {
	case platform.PlatformMacOS:
		return "pbcopy", pipeTo("pbcopy", nil, text)
	case platform.PlatformWSL1, platform.PlatformWSL2:
		return "clip.exe", pipeTo("clip.exe", nil, text)
	case platform.PlatformLinux:
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			if path, err := exec.LookPath("wl-copy"); err == nil {
				return "wl-copy", pipeTo(path, nil, text)
			}
		}
		if path, err := exec.LookPath("xclip"); err == nil {
			return "xclip", pipeTo(path, []string{"-selection", "clipboard"}, text)
		}
		if path, err := exec.LookPath("xsel"); err == nil {
			return "xsel", pipeTo(path, []string{"--clipboard", "--input"}, text)
		}
		return "", errors.New("clipboard: no clipboard command found")
	default:
		return "", fmt.Errorf("clipboard: unsupported platform %s", p)
	}
}

func pipeTo(name string, args []string, text string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func writeOSC52(w io.Writer, text string, inTmux bool) error {
	_, err := io.WriteString(w, osc52(base64.StdEncoding.EncodeToString([]byte(text)), inTmux))
	return err
}

// osc52 builds the escape sequence, wrapped in a DCS passthrough for tmux.
func osc52(encoded string, inTmux bool) string {
	seq := "\x1b]52;c;" + encoded + "\x07"
	if inTmux {
		return "\x1bPtmux;\x1b" + seq + "\x1b\\"
	}
	return seq
}
