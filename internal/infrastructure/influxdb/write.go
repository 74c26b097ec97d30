package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the node.
const (
	MeasurementButton   = "button_press"
	MeasurementActuator = "actuator_state"
	MeasurementBridge   = "bridge_stats"
	MeasurementFault    = "node_fault"
)

// WriteButtonPress records one counter publish attempt.
func (c *Client) WriteButtonPress(nodeName string, counter uint8) {
	c.writePoint(MeasurementButton,
		map[string]string{"node": nodeName},
		map[string]interface{}{"counter": int64(counter)},
	)
}

// WriteActuatorState records an LED level change.
func (c *Client) WriteActuatorState(nodeName string, on bool) {
	c.writePoint(MeasurementActuator,
		map[string]string{"node": nodeName},
		map[string]interface{}{"on": on},
	)
}

// WriteBridgeStats records cumulative bridge counters. dropped counts full
// queue drops; collapsed counts presses merged into a pending flag.
func (c *Client) WriteBridgeStats(nodeName string, emitted, dropped, collapsed uint64) {
	c.writePoint(MeasurementBridge,
		map[string]string{"node": nodeName},
		map[string]interface{}{
			"emitted":   emitted,
			"dropped":   dropped,
			"collapsed": collapsed,
		},
	)
}

// WriteFault records a setup failure. The step is a tag so faults can be
// grouped by where setup stopped.
func (c *Client) WriteFault(nodeName, step, message string) {
	c.writePoint(MeasurementFault,
		map[string]string{"node": nodeName, "step": step},
		map[string]interface{}{"error": message},
	)
}

// writePoint queues a point stamped now. Dropped silently when closed.
func (c *Client) writePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
