package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pokeslot/slotserver/internal/factory"
	"github.com/pokeslot/slotserver/internal/storage"
	redisstorage "github.com/pokeslot/slotserver/internal/storage/redis"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance commands",
	}

	cmd.AddCommand(newDBResetCmd())

	return cmd
}

func newDBResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all users, sessions and leaderboard data",
		Long: `Reset wipes the storage backend and recreates an empty schema.

The backend is selected the same way the server selects it, via
STORAGE_TYPE, DATABASE_PATH and REDIS_URL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Print("This will delete ALL data. Type 'yes' to continue: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				if strings.TrimSpace(line) != "yes" {
					fmt.Println("Aborted")
					return nil
				}
			}

			store, err := newStorageFromEnv()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Database reset complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}

func newStorageFromEnv() (storage.Storage, error) {
	fcfg := factory.Config{
		StorageType:  os.Getenv("STORAGE_TYPE"),
		DatabasePath: os.Getenv("DATABASE_PATH"),
	}
	if fcfg.StorageType == "" {
		fcfg.StorageType = factory.StorageTypeSQLite
	}
	if fcfg.StorageType == factory.StorageTypeSQLite && fcfg.DatabasePath == "" {
		fcfg.DatabasePath = "slot_machine.db"
	}
	if fcfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return nil, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		fcfg.RedisConfig = &redisCfg
	}

	return factory.NewStorage(fcfg)
}
