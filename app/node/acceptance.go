package node

// AcceptanceStatus is the outcome of offering a transaction or a block to a
// node.
type AcceptanceStatus int

const (
	// Accepted means the node validated and stored the data and relayed it
	// to its peers.
	Accepted AcceptanceStatus = iota

	// AlreadyKnown means the node already had the data. Nothing was done.
	AlreadyKnown

	// Rejected means the data broke a validation rule.
	Rejected
)

var acceptanceStatusStrings = map[AcceptanceStatus]string{
	Accepted:     "Accepted",
	AlreadyKnown: "AlreadyKnown",
	Rejected:     "Rejected",
}

func (status AcceptanceStatus) String() string {
	if str, ok := acceptanceStatusStrings[status]; ok {
		return str
	}
	return "Unknown"
}

// Acceptance describes how a node handled a transaction or a block.
// RejectReason is set only for Rejected.
type Acceptance struct {
	Status       AcceptanceStatus
	RejectReason error
}

// IsAccepted returns whether the data was accepted.
func (a Acceptance) IsAccepted() bool {
	return a.Status == Accepted
}

func (a Acceptance) String() string {
	if a.RejectReason != nil {
		return a.Status.String() + ": " + a.RejectReason.Error()
	}
	return a.Status.String()
}

var (
	accepted     = Acceptance{Status: Accepted}
	alreadyKnown = Acceptance{Status: AlreadyKnown}
)

func rejected(reason error) Acceptance {
	return Acceptance{Status: Rejected, RejectReason: reason}
}
