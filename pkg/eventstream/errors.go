package eventstream

import "errors"

// ErrNilTurnEvent indicates a nil turn event payload was provided to a publisher.
var ErrNilTurnEvent = errors.New("nil turn event")

// ErrNoBrokers is returned when a Kafka publisher is configured without brokers.
var ErrNoBrokers = errors.New("no kafka brokers configured")
