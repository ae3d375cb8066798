package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

const defaultNode = 1

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID. Only the first
// call has an effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a time-ordered int64 ID used to correlate a generation run
// across logs, spans and responses. Falls back to node 1 when Init was not called.
func New() int64 {
	_ = Init(defaultNode)
	return node.Generate().Int64()
}
