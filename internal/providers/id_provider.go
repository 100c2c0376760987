package providers

import (
	"fmt"
	"receiptd/internal/structures"

	"github.com/bwmarrin/snowflake"
)

// IDProviderInterface hands out unique, time-ordered int64 ids for issuers
// and receipt records.
type IDProviderInterface interface {
	NextID() int64
}

type IDProvider struct {
	node *snowflake.Node
}

func NewIDProvider(conf *structures.Config) (IDProviderInterface, error) {
	node, err := snowflake.NewNode(conf.Billing.NodeID)
	if err != nil {
		return nil, fmt.Errorf("unable to create id generator: %w", err)
	}
	return &IDProvider{node: node}, nil
}

func (p *IDProvider) NextID() int64 {
	return p.node.Generate().Int64()
}
