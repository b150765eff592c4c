package txengine

// DisputeState is the dispute lifecycle state of a deposit.
type DisputeState int

const (
	NotDisputed DisputeState = iota
	Disputed
	ChargedBack // terminal
)

func (s DisputeState) String() string {
	switch s {
	case NotDisputed:
		return "not-disputed"
	case Disputed:
		return "disputed"
	case ChargedBack:
		return "charged-back"
	default:
		return "unknown"
	}
}

// Disputes tracks the dispute state of transactions.
//
// Transactions never seen by the tracker are NotDisputed.
type Disputes struct {
	states map[TxID]DisputeState
}

// NewDisputes creates an empty dispute tracker.
func NewDisputes() *Disputes {
	return &Disputes{states: make(map[TxID]DisputeState)}
}

// State returns the current state of tx.
func (d *Disputes) State(tx TxID) DisputeState {
	return d.states[tx]
}

// set records the state of tx. NotDisputed entries are dropped.
func (d *Disputes) set(tx TxID, s DisputeState) {
	if s == NotDisputed {
		delete(d.states, tx)
		return
	}
	d.states[tx] = s
}

// Open returns the number of transactions currently under dispute.
func (d *Disputes) Open() int {
	n := 0
	for _, s := range d.states {
		if s == Disputed {
			n++
		}
	}
	return n
}
