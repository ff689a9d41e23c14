// Package production tracks the block printing unit: daily production of
// sarees and dresses, and batches of sarees sent out for rolling and returned.
package production

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/shopledger/internal/shared"
)

// ItemType is what a production entry made.
type ItemType string

const (
	TypeSaree ItemType = "saree"
	TypeDress ItemType = "dress"
)

// RollingAction sends sarees out for rolling or receives them back.
type RollingAction string

const (
	ActionSend    RollingAction = "send"
	ActionReceive RollingAction = "receive"
)

const dayLayout = "2006-01-02"

// ErrOverReceive rejects receiving more sarees than are out at rolling.
var ErrOverReceive = fmt.Errorf("%w: more sarees received than sent for rolling", shared.ErrInvalidInput)

// Entry is one production line of a day.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	Day        string    `json:"date"`
	Type       ItemType  `json:"type"`
	DesignName string    `json:"design_name"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}

// Batch is one lot sent for rolling. Returned grows as sarees come back.
type Batch struct {
	ID        uuid.UUID `json:"id"`
	Day       string    `json:"date"`
	Sent      int       `json:"sent_quantity"`
	Returned  int       `json:"returned_quantity"`
	Pending   int       `json:"pending"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Outstanding is how many sarees of the batch are still at rolling.
func (b Batch) Outstanding() int { return b.Sent - b.Returned }

func (b Batch) withPending() Batch {
	b.Pending = b.Outstanding()
	return b
}

// EntryInput records production. Date defaults to today in the shop zone.
type EntryInput struct {
	Type       ItemType `json:"type" validate:"required,oneof=saree dress"`
	DesignName string   `json:"design_name" validate:"required,max=120"`
	Quantity   int      `json:"quantity" validate:"gt=0,lte=100000"`
	Date       string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// RollingInput sends or receives sarees. A receive without BatchID is taken
// from the oldest batches first.
type RollingInput struct {
	Action   RollingAction `json:"action" validate:"required,oneof=send receive"`
	Quantity int           `json:"quantity" validate:"gt=0,lte=100000"`
	BatchID  string        `json:"batch_id" validate:"omitempty,uuid"`
}

// Receipt lists how a receive was spread over batches.
type Receipt struct {
	Quantity int     `json:"quantity"`
	Batches  []Batch `json:"batches"`
}

// Summary is the production dashboard of one day.
type Summary struct {
	Day       string `json:"date"`
	Sarees    int    `json:"sarees"`
	Dresses   int    `json:"dresses"`
	AtRolling int    `json:"at_rolling"`
	// OpenBatches counts batches with sarees still at rolling.
	OpenBatches int `json:"open_batches"`
}
