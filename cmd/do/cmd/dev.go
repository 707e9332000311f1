package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/templui/apiplate/internal/config"
	"github.com/templui/apiplate/internal/db"
)

func DevCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Apply migrations, then run the API under air with hot reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			airPath, err := exec.LookPath("air")
			if err != nil {
				fmt.Println("air is not installed: go install github.com/air-verse/air@latest")
				return errors.New("air not found")
			}

			if !skipMigrate {
				err = migrateForDev()
				if err != nil {
					return err
				}
			}

			return syscall.Exec(airPath, airArgs(), os.Environ())
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "start without applying pending migrations")
	return cmd
}

func migrateForDev() error {
	cfg := config.Load()

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	return db.RunMigrations(database.DB, cfg.DBDriver)
}

// airArgs replaces an .air.toml; templates and migrations are embedded so
// edits to them need a rebuild too.
func airArgs() []string {
	return []string{
		"air",
		"-c", "/dev/null",
		"-root", ".",
		"-build.cmd", "go build -o ./tmp/server ./cmd/server",
		"-build.bin", "./tmp/server",
		"-build.delay", "200",
		"-build.exclude_dir", "bin,tmp,data,_examples",
		"-build.exclude_regex", "_test.go$",
		"-build.include_ext", "go,sql,md",
		"-build.send_interrupt", "true",
		"-build.kill_delay", "1s",
	}
}
