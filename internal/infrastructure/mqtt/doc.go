// Package mqtt provides MQTT client connectivity for the optional
// Spoolbridge event relay.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// The client is publish-only. Events flow one way (bridge to broker);
// consumers subscribe with their own MQTT client.
//
// # Architecture
//
// When the relay is enabled, every synchronization event the engine
// broadcasts is also published to the broker so other home-automation
// consumers (dashboards, notification scripts, Node-RED flows) can react
// without opening a WebSocket to the bridge.
//
//	Spoolbridge → MQTT Broker → external consumers
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Publish a synchronization event
//	topic := mqtt.Topics{}.Event("usage")
//	client.Publish(topic, payload, 1, false)
package mqtt
