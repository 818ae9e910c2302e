package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages the form controller sends into the program
type (
	alertMsg struct {
		title   string
		message string
	}
	modalShownMsg struct {
		message    string
		deviceName string
	}
	modalClosedMsg struct{}
	navigateMsg    struct{ route string }
)

// Bridge turns form controller callbacks into Bubble Tea messages, so every
// state change is applied on the program's event loop.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
	// pending holds messages sent before the program was attached
	pending []tea.Msg
}

// Attach connects the bridge to a running program and flushes queued messages
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, msg := range pending {
		p.Send(msg)
	}
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	if p == nil {
		b.pending = append(b.pending, msg)
	}
	b.mu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

// Alert implements form.View
func (b *Bridge) Alert(title, message string) {
	b.send(alertMsg{title: title, message: message})
}

// ShowModal implements form.View
func (b *Bridge) ShowModal(message, deviceName string) {
	b.send(modalShownMsg{message: message, deviceName: deviceName})
}

// CloseModal implements form.View
func (b *Bridge) CloseModal() {
	b.send(modalClosedMsg{})
}

// Replace implements form.Navigator
func (b *Bridge) Replace(route string) {
	b.send(navigateMsg{route: route})
}
