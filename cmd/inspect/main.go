package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts options
	rootCmd := &cobra.Command{
		Use:   "alumni-inspect",
		Short: "Read-only inspection of an alumni-net store",
		Long: `alumni-inspect opens the badger store in read-only mode and prints users,
conversations and messages. It can run next to a live server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", os.Getenv("BADGER_FILEPATH"), "Path to badger DB")
	rootCmd.PersistentFlags().StringVar(&opts.unreadMode, "unread-mode", "shared", "Unread counter to display (shared or per_viewer)")

	rootCmd.AddCommand(usersCmd(&opts))
	rootCmd.AddCommand(conversationsCmd(&opts))
	rootCmd.AddCommand(messagesCmd(&opts))
	rootCmd.AddCommand(checkGraphCmd(&opts))
	rootCmd.AddCommand(dumpCmd(&opts))
	return rootCmd
}
