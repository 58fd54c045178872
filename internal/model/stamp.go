package model

// StampRef identifies a single HTML stamp to probe.
// It is produced by the catalog fetcher and never mutated afterwards;
// each run builds its own fresh slice of refs.
type StampRef struct {
	// ID is the stamp number assigned by the indexer.
	// It is the path component of the preview endpoint.
	ID int64 `json:"stamp"`

	// TxHash is the Bitcoin transaction hash that anchors the stamp.
	// The API contract guarantees this field is present.
	TxHash string `json:"tx_hash"`

	// StampURL is the canonical content URL of the stamp.
	// Optional; empty when the API omits it.
	StampURL string `json:"stamp_url"`
}
