package component

// TransactionKind tags the active exclusive interaction.
type TransactionKind uint8

const (
	TransactionNone TransactionKind = iota
	TransactionTrading
	TransactionBuySelling
)

func (k TransactionKind) String() string {
	switch k {
	case TransactionNone:
		return "none"
	case TransactionTrading:
		return "trading"
	case TransactionBuySelling:
		return "buyselling"
	default:
		return "unknown"
	}
}

// TradeHandler is the trade subsystem's side of an active trade.
type TradeHandler interface {
	Cancel()
}

// BuySellHandler is the shop subsystem's side of an active buy/sell.
type BuySellHandler interface {
	Cancel()
}

// Transaction enforces at most one active interactive transaction per
// character. The tag and handler move together: None means no handler,
// any other tag means a non-nil handler of the matching kind. A handler
// of the wrong kind is unrepresentable.
type Transaction struct {
	kind    TransactionKind
	trade   TradeHandler
	buySell BuySellHandler
}

func (t *Transaction) Kind() TransactionKind {
	return t.kind
}

// SetTrading adopts a new trade, cancelling any active transaction first.
// A nil handler ends the current trade; that is only legal from the None
// or Trading states, and SetTrading reports false without changing
// anything when called with nil during a buy/sell.
func (t *Transaction) SetTrading(h TradeHandler) bool {
	if h == nil {
		if t.kind == TransactionBuySelling {
			return false
		}
		t.kind = TransactionNone
		t.trade = nil
		return true
	}
	t.Cancel()
	t.kind = TransactionTrading
	t.trade = h
	return true
}

// SetBuySell adopts a new buy/sell, cancelling any active transaction
// first. A nil handler ends the current buy/sell; that is only legal from
// the None or BuySelling states.
func (t *Transaction) SetBuySell(h BuySellHandler) bool {
	if h == nil {
		if t.kind == TransactionTrading {
			return false
		}
		t.kind = TransactionNone
		t.buySell = nil
		return true
	}
	t.Cancel()
	t.kind = TransactionBuySelling
	t.buySell = h
	return true
}

// Cancel dispatches the active handler's cancel hook, if any, and resets
// to None. Cancelling while already None is a no-op.
func (t *Transaction) Cancel() {
	switch t.kind {
	case TransactionTrading:
		h := t.trade
		t.kind = TransactionNone
		t.trade = nil
		h.Cancel()
	case TransactionBuySelling:
		h := t.buySell
		t.kind = TransactionNone
		t.buySell = nil
		h.Cancel()
	}
}

// Trading returns the active trade handler, or nil unless a trade is the
// active transaction.
func (t *Transaction) Trading() TradeHandler {
	if t.kind != TransactionTrading {
		return nil
	}
	return t.trade
}

// BuySell returns the active buy/sell handler, or nil unless a buy/sell
// is the active transaction.
func (t *Transaction) BuySell() BuySellHandler {
	if t.kind != TransactionBuySelling {
		return nil
	}
	return t.buySell
}
