package appmessage

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
)

// MsgBlock implements the Message interface and carries a block relayed by
// the node identified by SenderID.
type MsgBlock struct {
	baseMessage
	SenderID string
	Block    *externalapi.DomainBlock
}

// Command returns the protocol command string for the message. This is part
// of the Message interface implementation.
func (msg *MsgBlock) Command() MessageCommand {
	return CmdBlock
}

// NewMsgBlock returns a new block message.
func NewMsgBlock(senderID string, block *externalapi.DomainBlock) *MsgBlock {
	return &MsgBlock{
		SenderID: senderID,
		Block:    block,
	}
}
