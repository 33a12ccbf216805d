package promptsan

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	readCmd := &cobra.Command{
		Use:   "read-file <path>",
		Short: "Print a text file the way the host loads it for sanitizing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := current.service()
			if err != nil {
				return err
			}
			text, err := svc.ReadFile(args[0])
			if err != nil {
				return err
			}
			if flagJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"path": args[0], "text": text})
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}

	dialogCmd := &cobra.Command{
		Use:   "open-file",
		Short: "Pick a file with the native dialog (not available in this host)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := current.service()
			if err != nil {
				return err
			}
			path, err := svc.OpenFileDialog()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	rootCmd.AddCommand(readCmd, dialogCmd)
}
