package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vietddude/statusrelay/internal/api/auth"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the bcrypt hash for auth.password_hash",
	Long: `Hashes the given password, or the first line of stdin when no argument is passed.
The output is a single-quoted DEMO_PASS_HASH line ready for .env; use --raw for the bare hash.`,
	Args:  cobra.MaximumNArgs(1),
	Run:   runHashPassword,
}

var rawHash bool

func init() {
	hashPasswordCmd.Flags().BoolVar(&rawHash, "raw", false, "print only the hash")
	rootCmd.AddCommand(hashPasswordCmd)
}

// envLine renders hash for .env. Single quotes stop godotenv from expanding
// the "$2a$10$" segments of a bcrypt hash as variables.
func envLine(hash string) string {
	return fmt.Sprintf("DEMO_PASS_HASH='%s'", hash)
}

func runHashPassword(cmd *cobra.Command, args []string) {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
			os.Exit(1)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}
	if rawHash {
		fmt.Println(hash)
		return
	}
	fmt.Println(envLine(hash))
}
