//go:build linux

package hal

import (
	"testing"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
)

func TestOpen_GPIOCDevMissingChip(t *testing.T) {
	_, err := Open(config.GPIOConfig{
		Backend: config.GPIOBackendGPIOCDev,
		Chip:    "gpiochip-does-not-exist",
		LEDLine: 2,
	})
	if err == nil {
		t.Fatal("Open() on a missing chip error = nil")
	}
}

func TestButtonOptions_Debounce(t *testing.T) {
	plain := buttonOptions(config.GPIOConfig{})
	debounced := buttonOptions(config.GPIOConfig{DebounceMS: 20})

	if len(debounced) != len(plain)+1 {
		t.Errorf("options with debounce = %d, want %d", len(debounced), len(plain)+1)
	}
}
