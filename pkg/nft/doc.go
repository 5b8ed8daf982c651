// Package nft mints a single-serial NFT and repoints its metadata.
//
// A Client combines a Storage, which turns files into URIs, with a Ledger,
// which creates, finds and updates tokens. InscriberStorage stores files as
// HCS-1 inscriptions and HederaLedger uses the Hedera token service:
//
//	upload, err := client.UploadMetadata(ctx, nft.DefaultCreateDescriptor)
//	minted, err := client.CreateNft(ctx, upload.MetadataURI, nft.DefaultCreateDescriptor)
//	update, err := client.UploadMetadata(ctx, nft.DefaultUpdateDescriptor)
//	result, err := client.UpdateNftURI(ctx, update.MetadataURI, minted.ID)
package nft
