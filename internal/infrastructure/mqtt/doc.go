// Package mqtt connects the button node to an MQTT broker.
//
// This package manages:
//   - Connection with auto-reconnect and subscription restore
//   - A retained status topic with a Last Will for offline detection
//   - Publish and subscribe with QoS and topic validation
//   - Panic-safe handler dispatch
//
// The client knows nothing about buttons or LEDs. Package pubsub layers the
// node's publisher, subscription and executor semantics on top of it.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Topics.Status)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe("led", 1, func(topic string, payload []byte) error {
//	    inbox.Push(topic, payload)
//	    return nil
//	})
//
// Handlers run on paho's goroutines. Anything that must happen on the
// node's dispatch context has to be queued and delivered from there.
package mqtt
