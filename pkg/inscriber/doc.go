// Package inscriber writes files to Hedera through the Kiloscribe
// inscription service.
//
// The service is authenticated with a signed challenge, after which a file
// inscription is started, paid for by executing the transaction the service
// returns, and awaited over socket.io or by polling:
//
//	auth, err := inscriber.NewAuthClient("").Authenticate(ctx, accountID, privateKey, inscriber.NetworkTestnet)
//	client, err := inscriber.NewClient(inscriber.Config{APIKey: auth.APIKey, Network: inscriber.NetworkTestnet})
//	response, err := inscriber.Inscribe(ctx, input, clientConfig, inscriber.InscriptionOptions{
//		FileStandard: inscriber.FileStandardHCS1,
//	}, client)
//
// A completed HCS-1 inscription is addressed by its topic ID.
package inscriber
