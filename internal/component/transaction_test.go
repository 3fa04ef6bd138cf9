package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	cancelled int
}

func (h *recordingHandler) Cancel() { h.cancelled++ }

func TestTransactionReplacementCancelsPrior(t *testing.T) {
	var tx Transaction
	trade := &recordingHandler{}
	shop := &recordingHandler{}

	require.True(t, tx.SetTrading(trade))
	assert.Equal(t, TransactionTrading, tx.Kind())
	assert.NotNil(t, tx.Trading())

	// Starting a buy/sell cancels the trade first.
	require.True(t, tx.SetBuySell(shop))
	assert.Equal(t, 1, trade.cancelled)
	assert.Equal(t, TransactionBuySelling, tx.Kind())
	assert.Nil(t, tx.Trading(), "trade handler unreachable once buy/sell is active")
	assert.NotNil(t, tx.BuySell())
}

func TestTransactionCancelFiresOnce(t *testing.T) {
	var tx Transaction
	trade := &recordingHandler{}

	tx.SetTrading(trade)
	tx.Cancel()
	assert.Equal(t, 1, trade.cancelled)
	assert.Equal(t, TransactionNone, tx.Kind())

	// Cancelling with nothing active is a no-op.
	tx.Cancel()
	assert.Equal(t, 1, trade.cancelled)
}

func TestTransactionNilHandlerEndsMatchingState(t *testing.T) {
	var tx Transaction
	trade := &recordingHandler{}

	tx.SetTrading(trade)
	require.True(t, tx.SetTrading(nil))
	assert.Equal(t, TransactionNone, tx.Kind())
	assert.Equal(t, 0, trade.cancelled, "ending a trade is not a cancellation")

	// Ending a trade while a buy/sell is active is a contract violation.
	shop := &recordingHandler{}
	tx.SetBuySell(shop)
	assert.False(t, tx.SetTrading(nil))
	assert.Equal(t, TransactionBuySelling, tx.Kind())
	assert.NotNil(t, tx.BuySell())

	require.True(t, tx.SetBuySell(nil))
	assert.Equal(t, TransactionNone, tx.Kind())
	assert.Equal(t, 0, shop.cancelled)
}

func TestTransactionQueriesNilWhenInactive(t *testing.T) {
	var tx Transaction
	assert.Nil(t, tx.Trading())
	assert.Nil(t, tx.BuySell())
	assert.Equal(t, TransactionNone, tx.Kind())
}
