package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/shared"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	network         string
	assetsDir       string
	descriptorsPath string
	keyFile         string
	keyType         string
	awaitRecords    bool
	verbose         bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nft-demo",
	Short: "Mint an NFT with HCS-1 metadata on Hedera, then update its metadata",
	Long: `nft-demo uploads an image and its HIP-412 metadata as HCS-1 inscriptions,
mints a single-serial NFT pointing at the metadata, then uploads a second
image and metadata and updates the NFT to point at them.

The operator account is read from HEDERA_ACCOUNT_ID and HEDERA_PRIVATE_KEY
(or their TESTNET_/MAINNET_ scoped variants), loading .env when present.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.OutputPaths = []string{"stderr"}
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		demo, closeDemo, err := setupDemo(ctx, demoOptions{
			Network:         network,
			AssetsDir:       assetsDir,
			DescriptorsPath: descriptorsPath,
			KeyFile:         keyFile,
			KeyType:         keyType,
			AwaitRecords:    awaitRecords,
		}, logger)
		if err != nil {
			return err
		}
		defer closeDemo()

		return runDemo(ctx, cmd.OutOrStdout(), demo)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&network, "network", "", "testnet or mainnet (default from HEDERA_NETWORK, else testnet)")
	flags.StringVar(&assetsDir, "assets", "", "directory holding the descriptor images (default ./assets)")
	flags.StringVar(&descriptorsPath, "descriptors", "", "YAML file with create and update descriptors")
	flags.StringVar(&keyFile, "key-file", ".env", "env file the generated token key is written to")
	flags.StringVar(&keyType, "key-type", string(shared.KeyTypeEd25519), "curve for a generated token key: ed25519 or ecdsa")
	flags.BoolVar(&awaitRecords, "record", false, "wait for transaction records instead of receipts")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// run executes the root command with args and returns the process exit code.
// Errors are printed to stdout.
func run(args []string, stdout io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(stdout, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}
