package mirror

type AccountInfo struct {
	Account string         `json:"account"`
	Key     map[string]any `json:"key"`
	Memo    string         `json:"memo"`
	Balance AccountBalance `json:"balance"`
}

type AccountBalance struct {
	Balance   int64  `json:"balance"`
	Timestamp string `json:"timestamp"`
}

type TopicMessage struct {
	ConsensusTimestamp string     `json:"consensus_timestamp"`
	ChunkInfo          *ChunkInfo `json:"chunk_info,omitempty"`
	Message            string     `json:"message"`
	PayerAccountID     string     `json:"payer_account_id"`
	RunningHash        string     `json:"running_hash"`
	RunningHashVersion int64      `json:"running_hash_version"`
	SequenceNumber     int64      `json:"sequence_number"`
	TopicID            string     `json:"topic_id"`
}

type ChunkInfo struct {
	InitialTransactionID any `json:"initial_transaction_id,omitempty"`
	Number               int `json:"number,omitempty"`
	Total                int `json:"total,omitempty"`
}

type topicMessagesResponse struct {
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
	Messages []TopicMessage `json:"messages"`
}

type Transaction struct {
	ChargedTxFee       int64      `json:"charged_tx_fee"`
	ConsensusTimestamp string     `json:"consensus_timestamp"`
	EntityID           *string    `json:"entity_id"`
	MaxFee             string     `json:"max_fee"`
	MemoBase64         string     `json:"memo_base64"`
	Name               string     `json:"name"`
	Node               string     `json:"node"`
	Result             string     `json:"result"`
	TransactionID      string     `json:"transaction_id"`
	Transfers          []Transfer `json:"transfers"`
}

type Transfer struct {
	Account    string `json:"account"`
	Amount     int64  `json:"amount"`
	IsApproval bool   `json:"is_approval"`
}

type transactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type TokenInfo struct {
	TokenID           string      `json:"token_id"`
	Name              string      `json:"name"`
	Symbol            string      `json:"symbol"`
	Type              string      `json:"type"`
	Memo              string      `json:"memo"`
	TotalSupply       string      `json:"total_supply"`
	MaxSupply         string      `json:"max_supply"`
	TreasuryAccountID string      `json:"treasury_account_id"`
	SupplyKey         *Key        `json:"supply_key"`
	MetadataKey       *Key        `json:"metadata_key"`
	CustomFees        *CustomFees `json:"custom_fees"`
}

type Key struct {
	Type string `json:"_type"`
	Key  string `json:"key"`
}

type CustomFees struct {
	CreatedTimestamp string       `json:"created_timestamp"`
	RoyaltyFees      []RoyaltyFee `json:"royalty_fees"`
}

type RoyaltyFee struct {
	Amount struct {
		Numerator   int64 `json:"numerator"`
		Denominator int64 `json:"denominator"`
	} `json:"amount"`
	CollectorAccountID string `json:"collector_account_id"`
}

// Nft is a single serial as reported by /api/v1/tokens/{id}/nfts/{serial}.
// Metadata is base64 encoded.
type Nft struct {
	AccountID         string `json:"account_id"`
	CreatedTimestamp  string `json:"created_timestamp"`
	ModifiedTimestamp string `json:"modified_timestamp"`
	Deleted           bool   `json:"deleted"`
	Metadata          string `json:"metadata"`
	SerialNumber      int64  `json:"serial_number"`
	TokenID           string `json:"token_id"`
}
