package idutil

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Generator interface {
	Generate() snowflake.ID
}

func NewSnowflakeGenerator(nodeID int64) (*snowflake.Node, error) {
	return snowflake.NewNode(nodeID)
}

// TimeOf returns the moment a snowflake id was generated.
func TimeOf(id int64) time.Time {
	return time.UnixMilli(snowflake.ParseInt64(id).Time())
}
