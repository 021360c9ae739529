package amqp

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Operation names the kind of ledger mutation a message reports.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Ledger namespaces carried in change messages. They match the storage keys.
const (
	NamespaceTransactions = "transactions"
	NamespaceGoals        = "goals"
)

// LedgerChangeMessage tells the worker that a ledger record changed.
// It carries no payload: the worker reads the current snapshot itself.
type LedgerChangeMessage struct {
	Namespace string    `json:"namespace"`
	Operation Operation `json:"operation"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangeMessage(namespace string, op Operation, id string) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Namespace: namespace,
		Operation: op,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (m *LedgerChangeMessage) Validate() error {
	switch m.Namespace {
	case NamespaceTransactions, NamespaceGoals:
	default:
		return fmt.Errorf("unknown namespace %q", m.Namespace)
	}
	switch m.Operation {
	case OpCreate, OpUpdate, OpDelete:
	default:
		return fmt.Errorf("unknown operation %q", m.Operation)
	}
	if m.ID == "" {
		return fmt.Errorf("missing record id")
	}
	return nil
}

func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangeMessageFromJSON decodes and validates a message body.
func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
