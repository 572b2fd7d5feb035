package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"b2backup/internal/app"
	"b2backup/internal/backup"
	"b2backup/internal/config"
	"b2backup/internal/credentials"
	"b2backup/internal/history"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "b2b",
	Short: "Back up local folders to S3-compatible storage",
}

// loadConfig reads the config from its default location.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}
	path := defaults["config_path"]
	cfg, err := config.ReadFromFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading config (run 'b2b config init' first): %w", err)
	}
	return cfg, path, nil
}

// newApp wires a BackupApp, loading credentials when the store needs them.
func newApp(ctx context.Context, cfg *config.Config) (*app.BackupApp, error) {
	var creds *credentials.Credentials
	if cfg.Store.Type == "s3" {
		store := credentials.NewStore(cfg.CredentialsPath)
		if !store.Exists() {
			return nil, fmt.Errorf("no saved credentials found (run 'b2b credentials set' first)")
		}
		passphrase, err := promptSecret("Passphrase: ")
		if err != nil {
			return nil, err
		}
		creds, err = store.Load(passphrase)
		if err != nil {
			return nil, fmt.Errorf("loading credentials: %w", err)
		}
	}
	return app.NewBackupApp(ctx, cfg, creds)
}

// promptLine reads one line of visible input.
func promptLine(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads one line without echoing it.
func promptSecret(label string) (string, error) {
	fmt.Print(label)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading secret input: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// config commands

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Credentials:   %s\n", cfg.CredentialsPath)
		fmt.Printf("Incremental:   %t\n", cfg.Incremental)
		fmt.Printf("Deduplication: %t\n", cfg.Dedup)
		if cfg.SingleBucketMode {
			fmt.Printf("Bucket mode:   single (%s)\n", cfg.SingleBucketName)
		} else {
			fmt.Printf("Bucket mode:   per-folder\n")
		}
		fmt.Printf("Folders:\n")
		for _, f := range cfg.Folders {
			if f.Bucket != "" {
				fmt.Printf("  %s -> %s\n", f.Path, f.Bucket)
			} else {
				fmt.Printf("  %s\n", f.Path)
			}
		}
		return nil
	},
}

// credentials commands

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage destination-store credentials",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save credentials (encrypted with a passphrase)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		endpoint, err := promptLine("Endpoint: ")
		if err != nil {
			return err
		}
		region, err := promptLine("Region: ")
		if err != nil {
			return err
		}
		accessKey, err := promptLine("Access key: ")
		if err != nil {
			return err
		}
		secretKey, err := promptSecret("Secret key: ")
		if err != nil {
			return err
		}
		passphrase, err := promptSecret("Passphrase: ")
		if err != nil {
			return err
		}

		store := credentials.NewStore(cfg.CredentialsPath)
		creds := &credentials.Credentials{
			Endpoint:  endpoint,
			AccessKey: accessKey,
			SecretKey: secretKey,
			Region:    region,
		}
		if err := store.Save(creds, passphrase); err != nil {
			return fmt.Errorf("saving credentials: %w", err)
		}

		fmt.Printf("Credentials saved to %s\n", cfg.CredentialsPath)
		return nil
	},
}

var credentialsTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify saved credentials against the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ValidateConnection(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Connection successful")
		return nil
	},
}

// folder commands

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage the folders to back up",
}

var folderAddBucket string

var folderAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a folder to the backup configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		cfg.AddFolder(args[0], folderAddBucket)
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Printf("Folder added: %s\n", args[0])
		return nil
	},
}

var folderRemoveCmd = &cobra.Command{
	Use:   "remove <path>",
	Short: "Remove a folder from the backup configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		if !cfg.RemoveFolder(args[0]) {
			return fmt.Errorf("folder not configured: %s", args[0])
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Printf("Folder removed: %s\n", args[0])
		return nil
	},
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		if len(cfg.Folders) == 0 {
			fmt.Println("No folders configured")
			return nil
		}
		for _, f := range cfg.Folders {
			bucket := f.Bucket
			if cfg.SingleBucketMode {
				bucket = cfg.SingleBucketName
			}
			fmt.Printf("%s -> %s\n", f.Path, bucket)
		}
		return nil
	},
}

// bucket commands

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Configure bucket mode",
}

var bucketSingleCmd = &cobra.Command{
	Use:   "single <name>",
	Short: "Back up every folder into one bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		cfg.SetSingleBucketMode(true, args[0])
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Printf("Single-bucket mode enabled: %s\n", args[0])
		return nil
	},
}

var bucketPerFolderCmd = &cobra.Command{
	Use:   "per-folder",
	Short: "Back up each folder into its own configured bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		cfg.SetSingleBucketMode(false, "")
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Println("Per-folder bucket mode enabled")
		return nil
	},
}

// backup commands

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run, preview, and inspect backups",
}

var (
	backupRunFull    bool
	backupRunNoDedup bool
)

var backupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backup pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := a.Options()
		if backupRunFull {
			opts.Incremental = false
		}
		if backupRunNoDedup {
			opts.Dedup = false
		}

		// Ctrl-C requests cooperative cancellation; the in-flight file
		// finishes first.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			if _, ok := <-sigCh; ok {
				a.Cancel()
			}
		}()

		obs := &backup.CallbackObserver{
			OnProgress: func(percent int) { fmt.Printf("\rProgress: %3d%%", percent) },
			OnStatus:   func(message string) { fmt.Printf("\n%s\n", message) },
			OnError:    func(message string) { fmt.Fprintf(os.Stderr, "\nError: %s\n", message) },
		}

		ok := a.RunBackup(cmd.Context(), opts, obs)
		fmt.Println()
		if !ok {
			return fmt.Errorf("backup did not complete")
		}
		return nil
	},
}

var backupPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show what a backup pass would upload or skip",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.PreviewBackup(cmd.Context(), a.Options())
		if err != nil {
			return err
		}

		for _, entry := range result.Entries {
			fmt.Printf("%-15s %s -> %s/%s\n", entry.Decision, entry.Path, entry.Bucket, entry.Key)
		}
		fmt.Printf("\nTo upload: %d files (%d bytes)\n", result.UploadCount, result.UploadBytes)
		fmt.Printf("To skip:   %d files (%d bytes)\n", result.SkipCount, result.SkipBytes)
		return nil
	},
}

var backupHistoryLimit int

var backupHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent backup runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		historyDB, err := history.NewFromConfig(cfg.History)
		if err != nil {
			return err
		}
		defer historyDB.Close()

		runs, err := historyDB.RecentRuns(backupHistoryLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No recorded runs")
			return nil
		}
		for _, run := range runs {
			fmt.Printf("%s  %-9s  uploaded=%d unchanged=%d duplicate=%d failed=%d\n",
				run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				run.Result, run.Uploaded, run.SkippedUnchanged, run.SkippedDuplicate, run.Failed)
		}
		return nil
	},
}

func init() {
	folderAddCmd.Flags().StringVar(&folderAddBucket, "bucket", "", "destination bucket for this folder (per-folder mode)")
	backupRunCmd.Flags().BoolVar(&backupRunFull, "full", false, "upload every file, ignoring remote state")
	backupRunCmd.Flags().BoolVar(&backupRunNoDedup, "no-dedup", false, "disable bucket-wide content deduplication")
	backupHistoryCmd.Flags().IntVar(&backupHistoryLimit, "limit", 10, "maximum runs to list")

	configCmd.AddCommand(configInitCmd, configListCmd)
	credentialsCmd.AddCommand(credentialsSetCmd, credentialsTestCmd)
	folderCmd.AddCommand(folderAddCmd, folderRemoveCmd, folderListCmd)
	bucketCmd.AddCommand(bucketSingleCmd, bucketPerFolderCmd)
	backupCmd.AddCommand(backupRunCmd, backupPreviewCmd, backupHistoryCmd)
	rootCmd.AddCommand(configCmd, credentialsCmd, folderCmd, bucketCmd, backupCmd)
}
