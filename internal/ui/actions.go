package ui

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// Actions reach outside the terminal
type Actions interface {
	OpenURL(url string) error
	Copy(text string) error
}

// SystemActions uses the desktop browser and clipboard
type SystemActions struct{}

// OpenURL opens url with the platform opener. MIDLO_BROWSER overrides it.
func (SystemActions) OpenURL(url string) error {
	bin := os.Getenv("MIDLO_BROWSER")
	var args []string
	if bin == "" {
		switch runtime.GOOS {
		case "darwin":
			bin = "open"
		case "windows":
			bin, args = "rundll32", []string{"url.dll,FileProtocolHandler"}
		default:
			bin = "xdg-open"
		}
	}
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("%s not found in PATH", bin)
	}

	cmd := exec.Command(bin, append(args, url)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	// the opener outlives us on some platforms; reap it in the background
	go func() { _ = cmd.Wait() }()
	return nil
}

// Copy writes text to the system clipboard
func (SystemActions) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard not available")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}
	return nil
}

func openURLCmd(a Actions, url string) tea.Cmd {
	return func() tea.Msg {
		return openURLMsg{url: url, err: a.OpenURL(url)}
	}
}

func copyCmd(a Actions, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{text: text, err: a.Copy(text)}
	}
}
