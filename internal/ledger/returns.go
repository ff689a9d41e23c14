package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/shopledger/internal/money"
)

// Resolution is how a return is settled.
type Resolution string

const (
	ResolutionRefund     Resolution = "refund"
	ResolutionCreditNote Resolution = "credit_note"
	ResolutionExchange   Resolution = "exchange"
)

// ParseResolution validates a resolution name.
func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(s); r {
	case ResolutionRefund, ResolutionCreditNote, ResolutionExchange:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
}

// ReturnLine asks to take back qty units of a purchased product.
type ReturnLine struct {
	ProductID string         `json:"product_id"`
	Quantity  money.Quantity `json:"quantity"`
}

// ReturnRequest is the input to ResolveReturn.
type ReturnRequest struct {
	Returned   []ReturnLine
	Resolution Resolution
	// Exchange rows are priced at the current catalog price.
	Exchange []LineItem
	// Prior returns against the same record reduce what can still come back.
	Prior []ReturnRecord
}

// ReturnRecord is the resolved outcome of a return or exchange.
// Delta is signed: positive means the counterparty owes the shop, negative
// means the shop owes the counterparty.
type ReturnRecord struct {
	ID             uuid.UUID    `json:"id"`
	OriginalKind   Kind         `json:"original_kind"`
	OriginalNumber string       `json:"original_number"`
	Counterparty   Counterparty `json:"counterparty"`
	Resolution     Resolution   `json:"resolution"`
	ReturnedItems  []LineItem   `json:"returned_items"`
	ExchangedItems []LineItem   `json:"exchanged_items,omitempty"`
	ReturnValue    money.Money  `json:"return_value"`
	ExchangeValue  money.Money  `json:"exchange_value"`
	Delta          money.Money  `json:"delta"`
	Reason         string       `json:"reason,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Clone returns a deep copy.
func (r ReturnRecord) Clone() ReturnRecord {
	r.ReturnedItems = cloneLines(r.ReturnedItems)
	r.ExchangedItems = cloneLines(r.ExchangedItems)
	return r
}

// Direction says which way money moves to settle a return.
type Direction string

const (
	CounterpartyPays Direction = "counterparty_pays"
	RefundDue        Direction = "refund_due"
	NoDifference     Direction = "no_difference"
)

// Settlement is the presentation form of a signed delta.
type Settlement struct {
	Direction Direction   `json:"direction"`
	Amount    money.Money `json:"amount"`
}

// Settlement maps Delta to a direction and an unsigned amount.
func (r ReturnRecord) Settlement() Settlement {
	switch {
	case r.Delta > 0:
		return Settlement{Direction: CounterpartyPays, Amount: r.Delta}
	case r.Delta < 0:
		return Settlement{Direction: RefundDue, Amount: r.Delta.Abs()}
	default:
		return Settlement{Direction: NoDifference}
	}
}

// Describe renders the settlement as counter text.
func (s Settlement) Describe() string {
	switch s.Direction {
	case CounterpartyPays:
		return "Customer pays " + money.Format(s.Amount)
	case RefundDue:
		return "Refund " + money.Format(s.Amount)
	default:
		return "No difference"
	}
}

// ResolveReturn prices a return against the original record. It is a pure
// function of its inputs; the caller assigns ID and CreatedAt.
func ResolveReturn(original *Record, req ReturnRequest) (*ReturnRecord, error) {
	if original == nil {
		return nil, fmt.Errorf("%w: original record required", ErrNothingReturned)
	}
	if _, err := ParseResolution(string(req.Resolution)); err != nil {
		return nil, err
	}
	if len(req.Returned) == 0 {
		return nil, ErrNothingReturned
	}

	requested, order, err := mergeReturnLines(req.Returned)
	if err != nil {
		return nil, err
	}
	remaining := original.Quantities()
	for _, prior := range req.Prior {
		if prior.OriginalNumber != original.Number || prior.OriginalKind != original.Kind {
			continue
		}
		for _, l := range prior.ReturnedItems {
			remaining[l.ProductID] -= l.Quantity
		}
	}

	returned := make([]LineItem, 0, len(order))
	for _, productID := range order {
		qty := requested[productID]
		line, ok := original.Line(productID)
		if !ok {
			return nil, fmt.Errorf("%w: %s was not on %s", ErrOverReturn, productID, original.Number)
		}
		if qty > remaining[productID] {
			return nil, fmt.Errorf("%w: %s returning %d, %d returnable", ErrOverReturn, productID, qty, remaining[productID])
		}
		line.Quantity = qty
		returned = append(returned, line)
	}

	out := &ReturnRecord{
		OriginalKind:   original.Kind,
		OriginalNumber: original.Number,
		Counterparty:   original.Counterparty,
		Resolution:     req.Resolution,
		ReturnedItems:  returned,
		ReturnValue:    sumLines(returned),
	}

	if req.Resolution != ResolutionExchange {
		if len(req.Exchange) > 0 {
			return nil, ErrUnexpectedExchange
		}
		out.Delta = money.Zero.Diff(out.ReturnValue)
		return out, nil
	}

	if len(req.Exchange) == 0 {
		return nil, ErrExchangeRequired
	}
	exchange := NewCart()
	for _, l := range req.Exchange {
		if err := exchange.AddItem(Product{ID: l.ProductID, Name: l.Name, Price: l.UnitPrice}, l.Quantity); err != nil {
			return nil, err
		}
	}
	out.ExchangedItems = exchange.Items()
	out.ExchangeValue = exchange.Subtotal()
	out.Delta = out.ExchangeValue.Diff(out.ReturnValue)
	return out, nil
}

func mergeReturnLines(lines []ReturnLine) (map[string]money.Quantity, []string, error) {
	merged := make(map[string]money.Quantity, len(lines))
	order := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity <= 0 || l.Quantity > money.MaxQuantity-merged[l.ProductID] {
			return nil, nil, fmt.Errorf("%w: return line %q qty %d", ErrInvalidLine, l.ProductID, l.Quantity)
		}
		if _, seen := merged[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		merged[l.ProductID] += l.Quantity
	}
	return merged, order, nil
}
