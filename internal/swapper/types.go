package swapper

import "encoding/json"

// QuoteRequest is the caller-supplied request to convert one asset to another.
// Immutable once created; echoed back verbatim inside the resulting Quote.
type QuoteRequest struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	FromAsset   string `json:"from_asset"`
	ToAsset     string `json:"to_asset"`
	FromValue   string `json:"from_value"`
	ReferralBps int    `json:"referral_bps"`
	SlippageBps int    `json:"slippage_bps"`
}

// Quote is the phase-one result. RouteData is opaque to the caller and is
// passed back unmodified into GetQuoteData.
type Quote struct {
	Quote          QuoteRequest    `json:"quote"`
	OutputValue    string          `json:"output_value"`
	OutputMinValue string          `json:"output_min_value"`
	EtaInSeconds   int             `json:"eta_in_seconds"`
	RouteData      json.RawMessage `json:"route_data"`
}

// QuoteData is the phase-two result: a ready-to-sign transaction payload.
type QuoteData struct {
	To       string `json:"to"`
	Value    string `json:"value"`
	Data     string `json:"data"`
	DataType string `json:"dataType"`
}

// DataTypeTransaction marks QuoteData.Data as a base64-encoded transaction.
const DataTypeTransaction = "transaction"
