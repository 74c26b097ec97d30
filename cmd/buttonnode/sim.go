package main

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-buttonnode/internal/hal"
	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-buttonnode/internal/node"
	"github.com/nerrad567/gray-logic-buttonnode/internal/pubsub"
)

// simConsole turns stdin lines into bench stimuli:
//
//	(empty) | press   one button press
//	led <0-255>       publish on the led topic (loopback transport only)
//	stats             log a node snapshot
type simConsole struct {
	input    *hal.SimInput
	loopback *pubsub.Loopback
	ledTopic string
	codec    node.Codec
	node     *node.Node
	log      *logging.Logger
}

// echoLED logs every level written to the simulated LED.
func (c *simConsole) echoLED(led *hal.SimOutput) {
	led.OnWrite(func(on bool) {
		state := "off"
		if on {
			state = "on"
		}
		c.log.Info("LED " + state)
	})
}

func (c *simConsole) run(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		c.handle(scanner.Text())
	}
}

// handle executes one console line.
func (c *simConsole) handle(line string) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		c.input.Press()
		return
	}

	switch fields[0] {
	case "press", "p":
		c.input.Press()

	case "led":
		if len(fields) != 2 {
			c.log.Warn("usage: led <0-255>")
			return
		}
		v, err := strconv.ParseUint(fields[1], 10, 8)
		if err != nil {
			c.log.Warn("invalid led value", "value", fields[1])
			return
		}
		if c.loopback == nil {
			c.log.Warn("led command needs the loopback transport")
			return
		}
		if err := c.loopback.Publish(c.ledTopic, c.codec.Encode(uint8(v)), 0, false); err != nil {
			c.log.Warn("led publish failed", "error", err)
		}

	case "stats":
		s := c.node.Stats()
		c.log.Info("node stats",
			"state", s.State,
			"counter", s.Counter,
			"actuator", s.Actuator,
			"published", s.Published,
			"received", s.Received,
			"dropped", s.Bridge.Dropped,
			"collapsed", s.Bridge.Collapsed,
		)

	default:
		c.log.Warn("unknown command", "command", fields[0])
	}
}
