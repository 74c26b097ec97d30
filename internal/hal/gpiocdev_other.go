//go:build !linux

package hal

import (
	"fmt"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
)

func openGPIOCDev(cfg config.GPIOConfig) (*Lines, error) {
	return nil, fmt.Errorf("%w: gpiocdev on %s", ErrUnsupported, cfg.Chip)
}
