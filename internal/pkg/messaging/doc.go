// Package messaging publishes events to a broker chosen at startup.
//
// The service only produces events (an SMS gateway or another worker
// consumes them), so the API is publish-only. Drivers: nats, kafka, nsq,
// google-pubsub and log.
package messaging
