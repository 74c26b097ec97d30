//go:build linux

package hal

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
)

// openGPIOCDev requests the LED immediately and defers the button request
// until a handler is attached, since gpiocdev binds the handler at request
// time.
func openGPIOCDev(cfg config.GPIOConfig) (*Lines, error) {
	led, err := gpiocdev.RequestLine(cfg.Chip, cfg.LEDLine,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer(consumer),
	)
	if err != nil {
		return nil, fmt.Errorf("requesting LED line %s:%d: %w", cfg.Chip, cfg.LEDLine, err)
	}

	button := &cdevInput{
		chip:   cfg.Chip,
		offset: cfg.ButtonLine,
		opts:   buttonOptions(cfg),
	}
	return &Lines{Button: button, LED: &cdevOutput{line: led}}, nil
}

// buttonOptions builds the request options for the button line. The edge
// handler is appended when one is attached.
func buttonOptions(cfg config.GPIOConfig) []gpiocdev.LineReqOption {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithConsumer(consumer),
	}
	if d := cfg.GetDebounce(); d > 0 {
		opts = append(opts, gpiocdev.WithDebounce(d))
	}
	return opts
}

type cdevInput struct {
	chip   string
	offset int
	opts   []gpiocdev.LineReqOption

	mu     sync.Mutex
	line   *gpiocdev.Line
	closed bool
}

func (in *cdevInput) OnRisingEdge(handler func()) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return ErrClosed
	}
	if in.line != nil {
		return ErrHandlerSet
	}

	opts := append(in.opts, gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
		handler()
	}))
	line, err := gpiocdev.RequestLine(in.chip, in.offset, opts...)
	if err != nil {
		return fmt.Errorf("requesting button line %s:%d: %w", in.chip, in.offset, err)
	}
	in.line = line
	return nil
}

func (in *cdevInput) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.closed = true
	if in.line == nil {
		return nil
	}
	err := in.line.Close()
	in.line = nil
	return err
}

type cdevOutput struct {
	line  *gpiocdev.Line
	level atomic.Bool
}

func (out *cdevOutput) SetLevel(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := out.line.SetValue(v); err != nil {
		return fmt.Errorf("setting LED line: %w", err)
	}
	out.level.Store(on)
	return nil
}

func (out *cdevOutput) Level() bool {
	return out.level.Load()
}

func (out *cdevOutput) Close() error {
	return out.line.Close()
}
