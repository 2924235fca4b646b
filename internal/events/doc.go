// Package events provides the in-process broadcaster that fans
// synchronization events out to interested subscribers.
//
// The broadcaster is deliberately simple: subscribers register a
// callback, publishers invoke Publish, and every registered callback is
// called in registration order on the publisher's goroutine. A panic in
// one subscriber is recovered and logged so a misbehaving consumer
// cannot take down the publisher or starve its peers.
//
// Consumers that need asynchrony (the websocket gateway, the MQTT
// relay) buffer internally; the broadcaster itself never queues.
package events
