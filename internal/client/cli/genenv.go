package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/spf13/cobra"
)

const envTemplate = `# Database
DB_HOST=localhost
DB_PORT=5432
DB_NAME=vault_db
DB_USER=vault_user
DB_PASSWORD=vault_password

# Application
SECRET_KEY=%s
MASTER_KEY=%s
ALGORITHM=HS256
ACCESS_TOKEN_EXPIRE_MINUTES=60
`

// renderEnv returns a server .env file with freshly generated keys.
func renderEnv() (string, error) {
	secretKey, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}
	masterKey, err := common.MakeRandKeyString(common.MasterKeySize)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(envTemplate, secretKey, masterKey), nil
}

func (a *App) genenvCmd() *cobra.Command {
	var output string
	var force bool

	cmd := &cobra.Command{
		Use:   "genenv",
		Short: "Write a server .env file with fresh keys",
		Long: `Write a .env file for the server with a random SECRET_KEY for
signing tokens and a random MASTER_KEY for encrypting credentials.

Keep the MASTER_KEY safe: credentials stored under it cannot be read
without it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := renderEnv()
			if err != nil {
				return err
			}

			flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if force {
				flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			f, err := os.OpenFile(output, flags, 0o600)
			if errors.Is(err, os.ErrExist) {
				return fmt.Errorf("%s already exists, use --force to overwrite", output)
			}
			if err != nil {
				return err
			}

			if _, err := f.WriteString(content); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s file created\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", ".env", "file to write")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
