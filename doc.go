// Package nftmintdemo mints a Hedera NFT whose HIP-412 metadata is stored as
// HCS-1 inscriptions, then updates the NFT to point at new metadata.
//
// # Packages
//
//   - pkg/nft: descriptors, the upload/mint/update client and its Hedera
//     ledger and inscription storage backends
//   - pkg/inscriber: the Kiloscribe inscription service client
//   - pkg/hcs1: hcs://1 references and resolution of HCS-1 files
//   - pkg/mirror: the mirror node REST client
//   - pkg/shared: network, operator, key and explorer helpers
//
// The demo itself lives in cmd/nft-demo:
//
//	go run ./cmd/nft-demo --network testnet
package nftmintdemo
