package broker

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Standard header keys stamped on every published event.
const (
	HeaderTimestamp   = "timestamp"
	HeaderContentType = "content-type"
	HeaderKey         = "x-message-key"
	HeaderWorker      = "X-Worker-ID"
)

// Event is an outgoing message before the publish lifecycle runs.
// Zero fields are filled from producer defaults during preparation.
type Event struct {
	// Topic is the destination. Empty falls back to the producer's
	// default topic.
	Topic string

	// Key is an optional partitioning or correlation key.
	Key string

	// Headers are caller-provided headers. Standard headers are added
	// during preparation without overwriting caller values.
	Headers map[string]string

	// Body is the serialized payload.
	Body []byte

	// ContentType defaults to application/json.
	ContentType string
}

// Message is a consumed event normalized across wire bindings.
type Message struct {
	Topic     string
	Key       string
	Headers   map[string]string
	Body      []byte
	Partition int
	Offset    int64
	Time      time.Time
}

// Topic joins a worker namespace and a base name so that parallel
// workers publish to disjoint topics.
func Topic(namespace, name string) string {
	return namespace + "." + name
}

// GroupID derives a unique consumer group for one test from a worker
// namespace. Each call returns a fresh group so consumers never steal
// each other's offsets.
func GroupID(namespace string) string {
	return fmt.Sprintf("%s-%s", namespace, uuid.NewString()[:8])
}
