package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewDeviceGUID returns a random external device identifier.
func NewDeviceGUID() string {
	return uuid.NewString()
}

// NewRequestID returns a snowflake id from the process-wide node configured by
// SNOWFLAKE_NODE, or a KSUID when the node could not be created.
func NewRequestID() string {
	nodeOnce.Do(func() {
		node, _ = snowflake.NewNode(nodeIDFromEnv())
	})
	return idFrom(node)
}

func idFrom(n *snowflake.Node) string {
	if n == nil {
		return NewKSUID()
	}
	return n.Generate().String()
}

func nodeIDFromEnv() int64 {
	nodeEnv := os.Getenv("SNOWFLAKE_NODE")
	if nodeEnv == "" {
		// default to node 1 when not provided so snowflake IDs are still produced
		return 1
	}
	nodeID, err := strconv.ParseInt(nodeEnv, 10, 64)
	if err != nil {
		return 1
	}
	return nodeID
}
