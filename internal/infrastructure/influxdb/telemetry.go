package influxdb

// NodeTelemetry binds a Client to one node name. It satisfies the node
// core's Telemetry interface.
type NodeTelemetry struct {
	client *Client
	node   string
}

// Telemetry returns a NodeTelemetry writing through c.
func (c *Client) Telemetry(nodeName string) *NodeTelemetry {
	return &NodeTelemetry{client: c, node: nodeName}
}

// RecordButtonPress writes a button_press point.
func (t *NodeTelemetry) RecordButtonPress(counter uint8) {
	t.client.WriteButtonPress(t.node, counter)
}

// RecordActuator writes an actuator_state point.
func (t *NodeTelemetry) RecordActuator(on bool) {
	t.client.WriteActuatorState(t.node, on)
}

// RecordBridgeStats writes a bridge_stats point.
func (t *NodeTelemetry) RecordBridgeStats(emitted, dropped, collapsed uint64) {
	t.client.WriteBridgeStats(t.node, emitted, dropped, collapsed)
}

// RecordFault writes a node_fault point.
func (t *NodeTelemetry) RecordFault(step string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	t.client.WriteFault(t.node, step, msg)
}
