package wallet

import (
	"github.com/kaspanet/ledgersim/app/node"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/crypto"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/utxo"
	"github.com/pkg/errors"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrInsufficientFunds is returned when the confirmed, unspent and
// unreserved funds of a wallet cannot cover a payment
var ErrInsufficientFunds = errors.New("insufficient funds")

// Node is the part of a node a wallet needs
type Node interface {
	ReceiveTransaction(transaction *externalapi.DomainTransaction) (node.Acceptance, error)
	RegisterBlockAddedHandler(handler node.BlockAddedHandler)
	RegisterTransactionAcceptedHandler(handler node.TransactionAcceptedHandler)
	ContainingBlock(transactionHash externalapi.DomainHash) (*externalapi.DomainBlock, error)
	IsConfirmed(blockHash externalapi.DomainHash) (bool, error)
	UTXOAsOfBestTip() (utxo.Collection, error)
}

// spendableInput is a ready to use, signed input spending an output that
// pays one of the wallet's keys
type spendableInput struct {
	input  *externalapi.DomainTransactionInput
	amount uint64
}

// Wallet manages keys derived from a mnemonic and follows a node to learn
// which outputs pay them.
type Wallet struct {
	node           Node
	cryptoProvider crypto.Provider

	lock            deadlock.Mutex
	keychain        *keychain
	unconfirmedKeys map[externalapi.DomainAddress]*crypto.KeyPair
	confirmedKeys   map[externalapi.DomainAddress]*crypto.KeyPair
	inputs          map[externalapi.DomainOutpoint]*spendableInput
	reserved        map[externalapi.DomainOutpoint]externalapi.DomainHash
}

// New creates a wallet following n whose keys derive from mnemonic
func New(n Node, cryptoProvider crypto.Provider, mnemonic string) (*Wallet, error) {
	keychain, err := newKeychain(mnemonic)
	if err != nil {
		return nil, err
	}

	w := &Wallet{
		node:            n,
		cryptoProvider:  cryptoProvider,
		keychain:        keychain,
		unconfirmedKeys: make(map[externalapi.DomainAddress]*crypto.KeyPair),
		confirmedKeys:   make(map[externalapi.DomainAddress]*crypto.KeyPair),
		inputs:          make(map[externalapi.DomainOutpoint]*spendableInput),
		reserved:        make(map[externalapi.DomainOutpoint]externalapi.DomainHash),
	}
	n.RegisterTransactionAcceptedHandler(w.handleTransactionAccepted)
	n.RegisterBlockAddedHandler(w.handleBlockAdded)
	return w, nil
}

// GenerateAddress derives a new key and returns its address. The key is
// unconfirmed until some transaction pays it.
func (w *Wallet) GenerateAddress() (externalapi.DomainAddress, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.generateAddress()
}

func (w *Wallet) generateAddress() (externalapi.DomainAddress, error) {
	keyPair, err := w.keychain.nextKeyPair()
	if err != nil {
		return externalapi.DomainAddress{}, err
	}
	address := w.cryptoProvider.Hash160(keyPair.PublicKey)
	w.unconfirmedKeys[address] = keyPair
	log.Debugf("Generated address %s", address)
	return address, nil
}

// Addresses returns every address the wallet generated
func (w *Wallet) Addresses() []externalapi.DomainAddress {
	w.lock.Lock()
	defer w.lock.Unlock()

	addresses := append(maps.Keys(w.confirmedKeys), maps.Keys(w.unconfirmedKeys)...)
	slices.SortFunc(addresses, func(a, b externalapi.DomainAddress) bool {
		return a.Less(b)
	})
	return addresses
}

// IsConfirmedAddress returns whether a transaction accepted by the node or
// a block admitted by it paid the given address
func (w *Wallet) IsConfirmedAddress(address externalapi.DomainAddress) bool {
	w.lock.Lock()
	defer w.lock.Unlock()

	_, ok := w.confirmedKeys[address]
	return ok
}

func (w *Wallet) keyPair(address externalapi.DomainAddress) (*crypto.KeyPair, bool) {
	if keyPair, ok := w.confirmedKeys[address]; ok {
		return keyPair, true
	}
	keyPair, ok := w.unconfirmedKeys[address]
	return keyPair, ok
}

func (w *Wallet) confirmKey(address externalapi.DomainAddress) {
	keyPair, ok := w.unconfirmedKeys[address]
	if !ok {
		return
	}
	delete(w.unconfirmedKeys, address)
	w.confirmedKeys[address] = keyPair
	log.Debugf("Address %s is confirmed", address)
}

func (w *Wallet) handleTransactionAccepted(transaction *externalapi.DomainTransaction) {
	w.lock.Lock()
	defer w.lock.Unlock()

	for _, output := range transaction.Outputs() {
		w.confirmKey(output.Address)
	}
}

// handleBlockAdded records a signed input for every output of block that
// pays one of the wallet's keys.
func (w *Wallet) handleBlockAdded(block *externalapi.DomainBlock) {
	w.lock.Lock()
	defer w.lock.Unlock()

	for _, transaction := range block.Transactions() {
		transactionHash := consensushashing.TransactionHash(transaction)
		for i, output := range transaction.Outputs() {
			keyPair, ok := w.keyPair(output.Address)
			if !ok {
				continue
			}
			w.confirmKey(output.Address)

			outpoint := externalapi.DomainOutpoint{TransactionID: transactionHash, Index: int32(i)}
			if _, ok := w.inputs[outpoint]; ok {
				continue
			}
			signature, err := w.cryptoProvider.Sign(keyPair.PrivateKey, consensushashing.OutputHash(output))
			if err != nil {
				log.Errorf("Failed signing output %s: %+v", outpoint, err)
				continue
			}
			w.inputs[outpoint] = &spendableInput{
				input: &externalapi.DomainTransactionInput{
					PreviousOutpoint: outpoint,
					Signature:        signature,
					PublicKey:        keyPair.PublicKey,
				},
				amount: output.Value,
			}
			log.Debugf("Output %s pays %d to address %s", outpoint, output.Value, output.Address)
		}
	}
}

// Balance returns the sum of the wallet's outputs that are unspent at the
// node's best tip and belong to confirmed blocks
func (w *Wallet) Balance() (uint64, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	spendable, err := w.spendableOutpoints()
	if err != nil {
		return 0, err
	}
	var balance uint64
	for _, outpoint := range spendable {
		balance += w.inputs[outpoint].amount
	}
	return balance, nil
}

// spendableOutpoints returns, sorted, the outpoints of the wallet's inputs
// that are unspent at the best tip and belong to confirmed blocks. Reserved
// inputs whose outputs were spent are forgotten.
func (w *Wallet) spendableOutpoints() ([]externalapi.DomainOutpoint, error) {
	utxoSet, err := w.node.UTXOAsOfBestTip()
	if err != nil {
		return nil, err
	}

	var spendable []externalapi.DomainOutpoint
	for outpoint := range w.inputs {
		if !utxoSet.Contains(outpoint) {
			if _, ok := w.reserved[outpoint]; ok {
				delete(w.reserved, outpoint)
				delete(w.inputs, outpoint)
			}
			continue
		}
		block, err := w.node.ContainingBlock(outpoint.TransactionID)
		if err != nil {
			return nil, err
		}
		isConfirmed, err := w.node.IsConfirmed(consensushashing.BlockHash(block))
		if err != nil {
			return nil, err
		}
		if isConfirmed {
			spendable = append(spendable, outpoint)
		}
	}
	slices.SortFunc(spendable, func(a, b externalapi.DomainOutpoint) bool {
		return a.Less(b)
	})
	return spendable, nil
}

// CreateTransaction builds a transaction paying amount to address, with fee
// left to the miner and the change sent to a fresh address of the wallet.
// The spent inputs are reserved until the transaction is rejected or its
// inputs leave the UTXO set.
func (w *Wallet) CreateTransaction(address externalapi.DomainAddress, amount uint64,
	fee uint64) (*externalapi.DomainTransaction, error) {

	w.lock.Lock()
	defer w.lock.Unlock()

	if amount == 0 {
		return nil, errors.New("cannot send a zero amount")
	}
	target := amount + fee
	if target < amount {
		return nil, errors.Errorf("amount %d plus fee %d overflows", amount, fee)
	}

	spendable, err := w.spendableOutpoints()
	if err != nil {
		return nil, err
	}

	var selected []*externalapi.DomainTransactionInput
	var total uint64
	for _, outpoint := range spendable {
		if total >= target {
			break
		}
		if _, ok := w.reserved[outpoint]; ok {
			continue
		}
		selected = append(selected, w.inputs[outpoint].input)
		total += w.inputs[outpoint].amount
	}
	if total < target {
		return nil, errors.Wrapf(ErrInsufficientFunds, "need %d but only %d is available", target, total)
	}

	outputs := []*externalapi.DomainTransactionOutput{{Value: amount, Address: address}}
	if change := total - target; change > 0 {
		changeAddress, err := w.generateAddress()
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, &externalapi.DomainTransactionOutput{Value: change, Address: changeAddress})
	}

	transaction := externalapi.NewDomainTransaction(selected, outputs)
	transactionHash := consensushashing.TransactionHash(transaction)
	for _, input := range selected {
		w.reserved[input.PreviousOutpoint] = transactionHash
	}
	log.Infof("Created transaction %s paying %d to %s with fee %d from %d inputs",
		transactionHash, amount, address, fee, len(selected))
	return transaction, nil
}

// Send creates a transaction with CreateTransaction and offers it to the
// node. The reserved inputs are released if the node does not accept it.
func (w *Wallet) Send(address externalapi.DomainAddress, amount uint64,
	fee uint64) (*externalapi.DomainTransaction, node.Acceptance, error) {

	transaction, err := w.CreateTransaction(address, amount, fee)
	if err != nil {
		return nil, node.Acceptance{}, err
	}

	acceptance, err := w.node.ReceiveTransaction(transaction)
	if err != nil || acceptance.Status == node.Rejected {
		w.release(transaction)
	}
	if err != nil {
		return nil, node.Acceptance{}, err
	}
	return transaction, acceptance, nil
}

func (w *Wallet) release(transaction *externalapi.DomainTransaction) {
	w.lock.Lock()
	defer w.lock.Unlock()

	transactionHash := consensushashing.TransactionHash(transaction)
	for _, input := range transaction.Inputs() {
		if w.reserved[input.PreviousOutpoint] == transactionHash {
			delete(w.reserved, input.PreviousOutpoint)
		}
	}
}
