package appmessage

import (
	"testing"
	"time"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
)

func TestMessageCommands(t *testing.T) {
	tests := []struct {
		message        Message
		expectedCmd    MessageCommand
		expectedString string
	}{
		{NewMsgTransaction("node-0", externalapi.NewDomainTransaction(nil, nil)), CmdTransaction, "Transaction [code 0]"},
		{NewMsgBlock("node-0", externalapi.NewDomainBlock(externalapi.ZeroHash, externalapi.ZeroHash, 0, 0, nil)),
			CmdBlock, "Block [code 1]"},
	}
	for _, test := range tests {
		if test.message.Command() != test.expectedCmd {
			t.Fatalf("TestMessageCommands: got command %s, want %s", test.message.Command(), test.expectedCmd)
		}
		if test.message.Command().String() != test.expectedString {
			t.Fatalf("TestMessageCommands: got %q, want %q", test.message.Command().String(), test.expectedString)
		}

		receivedAt := time.Unix(1600000000, 0)
		test.message.SetReceivedAt(receivedAt)
		test.message.SetMessageNumber(7)
		if !test.message.ReceivedAt().Equal(receivedAt) || test.message.MessageNumber() != 7 {
			t.Fatalf("TestMessageCommands: message metadata was not kept")
		}
	}
	if MessageCommand(99).String() != "unknown command [code 99]" {
		t.Fatalf("TestMessageCommands: unexpected string for an unknown command")
	}
}
