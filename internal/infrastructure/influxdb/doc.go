// Package influxdb records button node telemetry in InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library. Writes are
// non-blocking and batched; batch errors arrive through SetOnError.
//
// # Measurements
//
//   - button_press   (tag node; field counter)
//   - actuator_state (tag node; field on)
//   - bridge_stats   (tag node; fields emitted, dropped, collapsed)
//   - node_fault     (tags node, step; field error)
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	n, err := node.New(node.Options{Telemetry: client.Telemetry(cfg.Node.Name), ...})
//
// Telemetry is optional. The node runs the same with InfluxDB disabled or
// unreachable.
package influxdb
