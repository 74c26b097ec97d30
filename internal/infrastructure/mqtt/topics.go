package mqtt

import (
	"fmt"
	"strings"
)

// Topics resolves the node's relative topic names against its namespace.
//
//	Topics{Namespace: "bench"}.Resolve("button") // "bench/button"
//	Topics{}.Resolve("button")                   // "button"
type Topics struct {
	Namespace string
}

// Resolve returns name prefixed with the namespace, if any.
func (t Topics) Resolve(name string) string {
	ns := strings.Trim(t.Namespace, "/")
	name = strings.TrimPrefix(name, "/")
	if ns == "" {
		return name
	}
	return ns + "/" + name
}

// ValidatePublishTopic rejects topics a client may not publish to: empty
// names, wildcards, and NUL bytes.
func ValidatePublishTopic(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if strings.ContainsAny(topic, "+#\x00") {
		return fmt.Errorf("%w: %q contains a wildcard or NUL", ErrInvalidTopic, topic)
	}
	return nil
}
