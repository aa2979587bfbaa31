package amqp

import (
	"encoding/json"
	"time"
)

const (
	CollectionSales   = "fuel_sales"
	CollectionCredits = "credit_sales"
	CollectionEntries = "entries"
	CollectionFuel    = "fuel_types"

	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// DataChangedMessage announces that a record collection was mutated. The
// backup worker consumes these to schedule a debounced snapshot write.
type DataChangedMessage struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	ID         string    `json:"id,omitempty"`
	Date       string    `json:"date,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewDataChangedMessage(collection, op, id, date string) *DataChangedMessage {
	return &DataChangedMessage{
		Collection: collection,
		Op:         op,
		ID:         id,
		Date:       date,
		OccurredAt: time.Now().UTC(),
	}
}

func (m *DataChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DataChangedMessageFromJSON(data []byte) (*DataChangedMessage, error) {
	var m DataChangedMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
