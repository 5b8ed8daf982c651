// Package shared holds the plumbing every other package of the NFT demo
// leans on: network normalisation, Hedera client construction, operator
// credentials from the environment or a .env file, token key generation and
// persistence, and HashScan explorer links.
//
// # Environment Variables
//
// The operator account is read from HEDERA_ACCOUNT_ID / HEDERA_PRIVATE_KEY
// (or the network-scoped TESTNET_ / MAINNET_ variants). The token key used as
// supply and metadata key is read from NFT_TOKEN_PRIVATE_KEY and generated on
// first run when absent.
package shared
