package appmessage

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
)

// MsgTransaction implements the Message interface and carries a
// transaction relayed by the node identified by SenderID.
type MsgTransaction struct {
	baseMessage
	SenderID    string
	Transaction *externalapi.DomainTransaction
}

// Command returns the protocol command string for the message. This is part
// of the Message interface implementation.
func (msg *MsgTransaction) Command() MessageCommand {
	return CmdTransaction
}

// NewMsgTransaction returns a new transaction message.
func NewMsgTransaction(senderID string, transaction *externalapi.DomainTransaction) *MsgTransaction {
	return &MsgTransaction{
		SenderID:    senderID,
		Transaction: transaction,
	}
}
