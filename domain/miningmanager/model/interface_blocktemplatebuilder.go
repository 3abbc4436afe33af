package model

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
)

// BlockTemplateBuilder builds block templates for miners to consume
type BlockTemplateBuilder interface {
	GetBlockTemplate(rewardAddress externalapi.DomainAddress) (*externalapi.DomainBlock, error)
	SolveBlock(template *externalapi.DomainBlock) *externalapi.DomainBlock
}
