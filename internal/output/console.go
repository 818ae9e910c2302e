package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// RenderModal renders the success confirmation box
func RenderModal(message, deviceName string, width int) string {
	lines := []string{
		"",
		ModalTitleStyle.Render(SuccessMarker + "  " + message),
		ModalDetailStyle.Render("Tên: " + deviceName),
		"",
	}
	return ModalBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// RenderAlert renders an alert box. An empty title renders only the message.
func RenderAlert(title, message string, width int) string {
	var lines []string
	lines = append(lines, "")
	if title != "" {
		lines = append(lines, AlertTitleStyle.Render(FailureMarker+"  "+title))
	}
	lines = append(lines, AlertMessageStyle.Render(message))
	lines = append(lines, "")
	return AlertBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// Console prints form feedback to a terminal.
// It satisfies the add-device form's View and Navigator.
type Console struct {
	out   io.Writer
	width int
	quiet bool

	mu        sync.Mutex
	lastRoute string
	closed    chan struct{}
}

// NewConsole creates a Console writing to w (os.Stdout when nil)
func NewConsole(w io.Writer, quiet bool) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{
		out:    w,
		width:  GetTerminalWidth(),
		quiet:  quiet,
		closed: make(chan struct{}),
	}
}

// Alert prints an alert box. Alerts are printed even in quiet mode.
func (c *Console) Alert(title, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, RenderAlert(title, message, c.width))
}

// ShowModal prints the success confirmation
func (c *Console) ShowModal(message, deviceName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quiet {
		return
	}
	_, _ = fmt.Fprintln(c.out, RenderModal(message, deviceName, c.width))
}

// CloseModal marks the confirmation as dismissed
func (c *Console) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
}

// ModalClosed is closed once the success confirmation has been dismissed
func (c *Console) ModalClosed() <-chan struct{} {
	return c.closed
}

// Replace records the route and prints how to get there from the command line
func (c *Console) Replace(route string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRoute = route
	if route == "login" {
		_, _ = fmt.Fprintln(c.out, HintStyle.Render("Run 'doidoi auth set-token' to sign in again."))
	}
}

// Route returns the last route navigated to, empty if none
func (c *Console) Route() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRoute
}
