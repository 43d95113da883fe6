// Package control exposes a unix-socket command surface for a running
// parla instance. External tools (window manager keybinds, scripts) send
// single-line JSON commands; the daemon injects them into the event loop.
package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parlavoce/parla/internal/event"
	"github.com/parlavoce/parla/internal/fsm"
)

// Command names accepted over the control socket.
const (
	CmdToggle  = "toggle"
	CmdDismiss = "dismiss"
	CmdStatus  = "status"
	CmdReload  = "reload"
)

// Command is one client request.
type Command struct {
	Name string `json:"command"`
}

// Reply is the daemon's answer to a Command.
type Reply struct {
	OK      bool   `json:"ok"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Controller maps control commands onto the daemon's event bus. Commands
// never touch application state directly; they go through the same bus as
// the hotkey listener, so the loop goroutine stays the only state owner.
type Controller struct {
	bus    *event.Bus
	status func() fsm.Status
	reload func(context.Context) error
	logger *slog.Logger
}

// NewController binds the command surface to the bus. reload re-reads the
// config file and propagates changes into the running instance; nil
// disables the reload command.
func NewController(bus *event.Bus, status func() fsm.Status, reload func(context.Context) error, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{bus: bus, status: status, reload: reload, logger: logger}
}

func (c *Controller) Handle(ctx context.Context, cmd Command) Reply {
	switch cmd.Name {
	case CmdToggle:
		if err := c.bus.Send(ctx, event.HotkeyTriggered{}); err != nil {
			return Reply{OK: false, Status: c.statusString(), Error: fmt.Sprintf("deliver toggle: %v", err)}
		}
		return Reply{OK: true, Status: c.statusString(), Message: "toggle requested"}
	case CmdDismiss:
		if err := c.bus.Send(ctx, event.OverlayClicked{}); err != nil {
			return Reply{OK: false, Status: c.statusString(), Error: fmt.Sprintf("deliver dismiss: %v", err)}
		}
		return Reply{OK: true, Status: c.statusString(), Message: "dismiss requested"}
	case CmdStatus:
		return Reply{OK: true, Status: c.statusString()}
	case CmdReload:
		if c.reload == nil {
			return Reply{OK: false, Status: c.statusString(), Error: "reload is not available"}
		}
		if err := c.reload(ctx); err != nil {
			return Reply{OK: false, Status: c.statusString(), Error: fmt.Sprintf("reload config: %v", err)}
		}
		return Reply{OK: true, Status: c.statusString(), Message: "config reloaded"}
	default:
		c.logger.Warn("unknown control command", "command", cmd.Name)
		return Reply{OK: false, Status: c.statusString(), Error: fmt.Sprintf("unknown command: %s", cmd.Name)}
	}
}

func (c *Controller) statusString() string {
	if c.status == nil {
		return ""
	}
	return string(c.status())
}
