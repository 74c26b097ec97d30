package hal

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
)

func TestOpen_Sim(t *testing.T) {
	lines, err := Open(config.GPIOConfig{Backend: config.GPIOBackendSim})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer lines.Close()

	if _, ok := lines.Button.(*SimInput); !ok {
		t.Errorf("Button = %T, want *SimInput", lines.Button)
	}
	if lines.LED.Level() {
		t.Error("LED starts high, want low")
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(config.GPIOConfig{Backend: "sysfs"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(sysfs) error = %v, want ErrUnknownBackend", err)
	}
}

func TestSimInput_Press(t *testing.T) {
	in := NewSimInput()
	if in.Press() {
		t.Error("Press() without handler = true")
	}

	var edges atomic.Int32
	if err := in.OnRisingEdge(func() { edges.Add(1) }); err != nil {
		t.Fatalf("OnRisingEdge() error = %v", err)
	}
	if err := in.OnRisingEdge(func() {}); !errors.Is(err, ErrHandlerSet) {
		t.Errorf("second OnRisingEdge() error = %v, want ErrHandlerSet", err)
	}

	for i := 0; i < 3; i++ {
		in.Press()
	}
	if edges.Load() != 3 || in.Presses() != 3 {
		t.Errorf("edges = %d, Presses() = %d; want 3", edges.Load(), in.Presses())
	}

	_ = in.Close()
	if in.Press() {
		t.Error("Press() after Close = true")
	}
	if err := in.OnRisingEdge(func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("OnRisingEdge() after Close error = %v, want ErrClosed", err)
	}
}

func TestSimOutput(t *testing.T) {
	out := NewSimOutput()
	var echoed []bool
	out.OnWrite(func(on bool) { echoed = append(echoed, on) })

	_ = out.SetLevel(true)
	_ = out.SetLevel(true)
	_ = out.SetLevel(false)

	if out.Level() {
		t.Error("Level() = true, want false")
	}
	if out.Writes() != 3 || len(echoed) != 3 {
		t.Errorf("Writes() = %d, echoed = %d; want 3", out.Writes(), len(echoed))
	}

	_ = out.Close()
	if err := out.SetLevel(true); !errors.Is(err, ErrClosed) {
		t.Errorf("SetLevel() after Close error = %v, want ErrClosed", err)
	}
}

func TestLinesClose(t *testing.T) {
	lines := &Lines{Button: NewSimInput(), LED: NewSimOutput()}
	if err := lines.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := (&Lines{}).Close(); err != nil {
		t.Errorf("Close() on empty Lines error = %v", err)
	}
}
