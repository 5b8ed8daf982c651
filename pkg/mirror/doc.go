// Package mirror is a small Hedera mirror node REST client. The NFT demo
// uses it to find a freshly minted serial, read token and account state,
// fetch inscription topic messages, and price executed transactions.
//
// The mirror node is eventually consistent with consensus: entities created
// by a transaction usually appear a few seconds after its receipt.
package mirror
