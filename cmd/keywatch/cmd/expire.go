package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/keywatchhq/keywatch/internal/store"
)

var (
	expireDB        string
	expireRetention time.Duration
)

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Prune aged content-hash dedup records",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.NewSQLite(expireDB)
		if err != nil {
			return err
		}
		defer s.Close()

		removed, err := s.ExpireContent(time.Now().Add(-expireRetention))
		if err != nil {
			return err
		}
		fmt.Printf("removed %d content record(s)\n", removed)
		return nil
	},
}

func init() {
	expireCmd.Flags().StringVar(&expireDB, "db", "keywatch.db", "SQLite store path")
	expireCmd.Flags().DurationVar(&expireRetention, "retention", store.DefaultRetention, "content-hash retention window")
}
