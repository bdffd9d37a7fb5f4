//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
	"unsafe"

	"github.com/creack/pty"
)

const ringSize = 1 << 20 // 1 MiB of scrollback

// binPath is replaced by TestMain with the freshly built binary
var binPath = "midlo_e2e"

const (
	KeyEnter = "\r"
	KeyCtrlC = "\x03"
	KeyTab   = "\t"
	KeyEsc   = "\x1b"
	KeyDown  = "\x1b[B"
	KeyF1    = "\x1bOP"
	KeyBack  = "b"
)

// readyMarker is printed under every frame when MIDLO_E2E_TEST=1
const readyMarker = "__READY__"

// ansiRe strips CSI, OSC, charset and keypad sequences plus carriage returns
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` +
		`(?:\x1b\][^\x07]*\x07)|` +
		`(?:\x1b[\(\)][A-Za-z])|` +
		`(?:\x1b=|\x1b>)|` +
		`\r`,
)

// TUITestFramework runs the midlo binary in a pty against an isolated HOME
// and records everything it draws
type TUITestFramework struct {
	t          *testing.T
	pty        *os.File
	tty        *os.File
	cmd        *exec.Cmd
	workspace  string
	backendURL string

	mu   sync.Mutex
	buf  []byte // ring of the last ringSize bytes of output
	head int
	full bool
}

// NewTUITest creates a driver with its own temporary workspace
func NewTUITest(t *testing.T) *TUITestFramework {
	return &TUITestFramework{
		t:         t,
		buf:       make([]byte, ringSize),
		workspace: t.TempDir(),
	}
}

// Workspace is the HOME the app runs in; config, history and the log live here
func (tf *TUITestFramework) Workspace() string {
	return tf.workspace
}

// UseBackend points the app at a fake backend
func (tf *TUITestFramework) UseBackend(url string) {
	tf.backendURL = url
}

// StartApp launches midlo with given arguments in a PTY
func (tf *TUITestFramework) StartApp(args ...string) error {
	// Build the command
	cmdArgs := append([]string{binPath}, args...)
	tf.cmd = exec.Command(cmdArgs[0], cmdArgs[1:]...)
	tf.cmd.Dir = tf.workspace

	// Set per-process environment variables
	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C.UTF-8",
		"LANG=C.UTF-8",
		"HOME="+tf.workspace, // isolate $HOME
		"XDG_CONFIG_HOME="+tf.workspace,
		"MIDLO_HISTORY_PATH="+filepath.Join(tf.workspace, "history.db"),
		"MIDLO_LOG_FILE="+filepath.Join(tf.workspace, "midlo.log"),
		"MIDLO_LOG_LEVEL=debug",
		"MIDLO_DEBOUNCE=100ms",
		"MIDLO_BROWSER=true", // never launch a real browser
		"MIDLO_E2E_TEST=1",
	)
	if tf.backendURL != "" {
		tf.cmd.Env = append(tf.cmd.Env, "MIDLO_API_BASE_URL="+tf.backendURL)
	}

	// Start the command with a PTY
	ptyFile, tty, err := pty.Open()
	if err != nil {
		return fmt.Errorf("failed to open pty: %w", err)
	}

	tf.pty = ptyFile
	tf.tty = tty
	tf.cmd.Stdout = tty
	tf.cmd.Stdin = tty
	tf.cmd.Stderr = tty

	// Set terminal size
	ws := struct {
		Row uint16
		Col uint16
		X   uint16
		Y   uint16
	}{40, 120, 0, 0}
	syscall.Syscall(syscall.SYS_IOCTL, ptyFile.Fd(), uintptr(syscall.TIOCSWINSZ), uintptr(unsafe.Pointer(&ws)))

	if err := tf.cmd.Start(); err != nil {
		ptyFile.Close()
		tty.Close()
		return fmt.Errorf("failed to start command: %w", err)
	}

	// Start the continuous reader
	tf.startReader()

	return nil
}

// startReader copies pty output into the ring until the pty closes
func (tf *TUITestFramework) startReader() {
	go func() {
		chunk := make([]byte, 8192)
		for {
			n, err := tf.pty.Read(chunk)
			if n > 0 {
				tf.mu.Lock()
				for _, b := range chunk[:n] {
					tf.buf[tf.head] = b
					tf.head = (tf.head + 1) % ringSize
					if tf.head == 0 {
						tf.full = true
					}
				}
				tf.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()
}

// SendKeys writes raw bytes to the app's terminal
func (tf *TUITestFramework) SendKeys(keys string) error {
	tf.t.Helper()
	_, err := tf.pty.Write([]byte(keys))
	return err
}

// Type sends text one rune at a time, as a user would type it
func (tf *TUITestFramework) Type(text string) error {
	tf.t.Helper()
	for _, r := range text {
		if err := tf.SendKeys(string(r)); err != nil {
			return err
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

// Tab moves focus to the next address field
func (tf *TUITestFramework) Tab() error {
	tf.t.Helper()
	return tf.SendKeys(KeyTab)
}

// Enter picks the highlighted row or submits the search
func (tf *TUITestFramework) Enter() error {
	tf.t.Helper()
	return tf.SendKeys(KeyEnter)
}

// Down moves the highlight
func (tf *TUITestFramework) Down() error {
	tf.t.Helper()
	return tf.SendKeys(KeyDown)
}

// Esc closes the dropdown or leaves a result screen. The pause keeps the
// next key from being read as an alt sequence.
func (tf *TUITestFramework) Esc() error {
	tf.t.Helper()
	if err := tf.SendKeys(KeyEsc); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return nil
}

// Back returns from the details screen to the places list
func (tf *TUITestFramework) Back() error {
	tf.t.Helper()
	return tf.SendKeys(KeyBack)
}

// Quit sends Ctrl+C; plain letters are address text
func (tf *TUITestFramework) Quit() error {
	tf.t.Helper()
	return tf.SendKeys(KeyCtrlC)
}

// Ready waits for the first frame
func (tf *TUITestFramework) Ready() bool {
	tf.t.Helper()
	return tf.poll(func() bool { return strings.Contains(tf.output(), readyMarker) }, 5*time.Second)
}

// SeePlain waits for text to appear in the output with escapes stripped
func (tf *TUITestFramework) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.poll(func() bool { return strings.Contains(tf.SnapshotPlain(), text) }, 3*time.Second)
}

// SeeAll waits until every text is on screen and reports the output tail otherwise
func (tf *TUITestFramework) SeeAll(timeout time.Duration, texts ...string) error {
	tf.t.Helper()
	seen := tf.poll(func() bool {
		out := tf.SnapshotPlain()
		for _, text := range texts {
			if !strings.Contains(out, text) {
				return false
			}
		}
		return true
	}, timeout)
	if seen {
		return nil
	}
	out := tf.SnapshotPlain()
	if len(out) > 4096 {
		out = out[len(out)-4096:]
	}
	return fmt.Errorf("never saw %q\n--- tail ---\n%s", texts, out)
}

func (tf *TUITestFramework) poll(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond)
	}
	return true
}

// output returns the ring contents in write order
func (tf *TUITestFramework) output() string {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if !tf.full {
		return string(tf.buf[:tf.head])
	}
	out := make([]byte, 0, ringSize)
	out = append(out, tf.buf[tf.head:]...)
	out = append(out, tf.buf[:tf.head]...)
	return string(out)
}

// SnapshotPlain returns everything drawn so far with escapes stripped
func (tf *TUITestFramework) SnapshotPlain() string {
	return ansiRe.ReplaceAllString(tf.output(), "")
}

// DumpTailOnFail saves the last n bytes of plain output for debugging
func (tf *TUITestFramework) DumpTailOnFail(t *testing.T, name string, n int) {
	t.Helper()
	s := tf.SnapshotPlain()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	p := filepath.Join(t.TempDir(), name+".txt")
	_ = os.WriteFile(p, []byte(s), 0o644)
	t.Logf("saved output tail to %s", p)
}

// Cleanup closes the pty, which hangs up the app, and reaps the process
func (tf *TUITestFramework) Cleanup() {
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.tty != nil {
		_ = tf.tty.Close()
		tf.tty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		_, _ = tf.cmd.Process.Wait()
		tf.cmd = nil
	}
}
