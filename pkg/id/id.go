// Package id generates the time-ordered account identifiers.
package id

import (
	"fmt"

	"github.com/amirasaad/bankaccount/pkg/domain/account"
	"github.com/bwmarrin/snowflake"
)

// Snowflake produces globally unique, time-ordered 64-bit ids. It is an
// explicit, injectable service so the engine stays testable with
// deterministic ids.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator for the given node id (0-1023).
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", nodeID, err)
	}
	return &Snowflake{node: node}, nil
}

// NextAccountID generates a fresh account id.
func (g *Snowflake) NextAccountID() account.AccountID {
	return account.AccountID(g.node.Generate().Int64())
}
