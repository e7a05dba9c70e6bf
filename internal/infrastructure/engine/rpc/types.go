package rpcengine

import "encoding/json"

const jsonrpcVersion = "2.0"

// JSON-RPC methods exposed by a trading engine.
const (
	methodGetOrderBook      = "getorderbook"
	methodCreateMarketOrder = "createmarketorder"
	methodCreateLimitOrder  = "createlimitorder"
	methodWithdraw          = "withdraw"
	methodGetBalance        = "getbalance"
	methodGetAddress        = "getaddress"
	methodGetOrderStatus    = "getorderstatus"
)

const limitOrderSuccess = "success"

type request struct {
	Version string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type response struct {
	Version string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type pairParams struct {
	Base  string `json:"base"`
	Quote string `json:"rel"`
}

type pricePoint struct {
	Price  string `json:"price"`
	Amount string `json:"maxvolume"`
}

type orderBookResult struct {
	Base  string       `json:"base"`
	Quote string       `json:"rel"`
	Bids  []pricePoint `json:"bids"`
	Asks  []pricePoint `json:"asks"`
}

type marketOrderParams struct {
	Base   string `json:"base"`
	Quote  string `json:"rel"`
	Side   string `json:"side"`
	Amount string `json:"volume"`
	Price  string `json:"price"`
}

// marketOrderResult is empty if the engine declined the order.
type marketOrderResult struct {
	Pending *struct {
		Uuid string `json:"uuid"`
	} `json:"pending,omitempty"`
}

type limitOrderParams struct {
	Base  string `json:"base"`
	Quote string `json:"rel"`
	Price string `json:"price"`
}

type limitOrderResult struct {
	Result string `json:"result"`
}

type withdrawParams struct {
	Asset   string `json:"coin"`
	Address string `json:"to"`
	Amount  string `json:"amount"`
}

type withdrawResult struct {
	TxID string `json:"tx_hash"`
}

type assetParams struct {
	Asset string `json:"coin"`
}

type balanceResult struct {
	Balance string `json:"balance"`
}

type addressResult struct {
	Address string `json:"address"`
}

type orderStatusParams struct {
	Uuid string `json:"uuid"`
}

type orderStatusResult struct {
	Status string `json:"status"`
}
