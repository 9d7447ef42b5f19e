package conn

// State enumerates the states a Connection progresses through. Only the
// subset of RFC 9293's state machine reachable by a passive-open,
// peer-initiated half-close connection is modeled: there is no active-close
// completion beyond FIN_WAIT_1 and no simultaneous-open handling.
type State uint8

const (
	// StateClosed is the pseudo-state of a Connection that has been torn
	// down and must not be used again.
	StateClosed State = iota
	// StateSynRcvd is entered immediately after the passive handshake
	// receives a SYN and replies with SYN+ACK; it exits on the final ACK.
	StateSynRcvd
	// StateEstablished is the normal data-transfer state.
	StateEstablished
	// StateCloseWait is entered when the peer sends FIN while established.
	// Send is a no-op here and buffered data is not transmitted; the local
	// side's remaining step is Close.
	StateCloseWait
	// StateLastAck is entered from CloseWait on a local Close call; the
	// connection is fully closed once the peer ACKs the local FIN.
	StateLastAck
	// StateFinWait1 is entered from Established on a local Close call
	// (active close). This implementation does not carry the flow past
	// FIN_WAIT_1: ACKs are still processed, but payload and FIN from the
	// peer are ignored in this state (see canReceiveData), so rcv_next does
	// not advance and no further state transition is modeled.
	StateFinWait1
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateSynRcvd:
		return "SYN-RECEIVED"
	case StateEstablished:
		return "ESTABLISHED"
	case StateCloseWait:
		return "CLOSE-WAIT"
	case StateLastAck:
		return "LAST-ACK"
	case StateFinWait1:
		return "FIN-WAIT-1"
	default:
		return "UNKNOWN"
	}
}

// canReceiveData reports whether segments arriving in this state may carry
// application data or a FIN per §4.2.4.
func (s State) canReceiveData() bool {
	return s == StateEstablished || s == StateCloseWait
}

// canTransmit reports whether the transmit pass may drain send_buffer.
func (s State) canTransmit() bool {
	return s == StateEstablished
}
