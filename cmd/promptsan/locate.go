package promptsan

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var flagLocateAll bool

func init() {
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Show which engine executable would be used",
		Args:  cobra.NoArgs,
		RunE:  runLocate,
	}
	cmd.Flags().BoolVar(&flagLocateAll, "all", false, "list every candidate location and whether it exists")
	rootCmd.AddCommand(cmd)
}

type candidateView struct {
	Description string `json:"description"`
	Path        string `json:"path"`
	Exists      bool   `json:"exists"`
}

func runLocate(cmd *cobra.Command, _ []string) error {
	loc := current.engineLocator()
	out := cmd.OutOrStdout()

	if flagLocateAll {
		var views []candidateView
		for _, c := range loc.Candidates() {
			st, err := os.Stat(c.Path)
			views = append(views, candidateView{Description: c.Description, Path: c.Path, Exists: err == nil && !st.IsDir()})
		}
		if flagJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(views)
		}
		table := tablewriter.NewWriter(out)
		table.Header("Source", "Path", "Exists")
		for _, v := range views {
			_ = table.Append([]string{v.Description, v.Path, fmt.Sprint(v.Exists)})
		}
		return table.Render()
	}

	c, err := loc.Resolve()
	if err != nil {
		return err
	}
	if flagJSON {
		return json.NewEncoder(out).Encode(map[string]string{"path": c.Path, "source": c.Description})
	}
	_, err = fmt.Fprintf(out, "%s\t(%s)\n", c.Path, c.Description)
	return err
}
