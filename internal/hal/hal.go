package hal

import (
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
)

// Errors returned by line backends.
var (
	ErrUnsupported    = errors.New("hal: backend not supported on this platform")
	ErrUnknownBackend = errors.New("hal: unknown backend")
	ErrHandlerSet     = errors.New("hal: edge handler already attached")
	ErrClosed         = errors.New("hal: line closed")
)

// consumer is the label shown by gpioinfo for lines held by the node.
const consumer = "buttonnode"

// InputLine is an edge-triggered digital input.
type InputLine interface {
	// OnRisingEdge attaches the interrupt handler. Only one handler may be
	// attached for the life of the line.
	OnRisingEdge(handler func()) error
	Close() error
}

// OutputLine is a digital output.
type OutputLine interface {
	SetLevel(on bool) error
	Level() bool
	Close() error
}

// Lines holds the node's button and LED.
type Lines struct {
	Button InputLine
	LED    OutputLine
}

// Open returns the lines for the configured backend. The LED starts low.
func Open(cfg config.GPIOConfig) (*Lines, error) {
	switch cfg.Backend {
	case config.GPIOBackendSim, "":
		return &Lines{Button: NewSimInput(), LED: NewSimOutput()}, nil
	case config.GPIOBackendGPIOCDev:
		return openGPIOCDev(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Close releases both lines.
func (l *Lines) Close() error {
	var errs []error
	if l.Button != nil {
		errs = append(errs, l.Button.Close())
	}
	if l.LED != nil {
		errs = append(errs, l.LED.Close())
	}
	return errors.Join(errs...)
}
