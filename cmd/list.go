package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pagekeep/pagekeep/internal/snapshot"
)

func init() {
	rootCmd.AddCommand(listDocsCmd())
}

func listDocsCmd() *cobra.Command {
	var serverURL string

	command := &cobra.Command{
		Use:   "list",
		Short: "list documents on a running server",
		Run: func(cmd *cobra.Command, args []string) {
			res, err := http.Get(serverURL + "/api/documents")
			if err != nil {
				logrus.Error(err)
				return
			}
			defer res.Body.Close()

			if res.StatusCode != http.StatusOK {
				color.Red("server returned %s", res.Status)
				return
			}

			var docs []snapshot.DocumentProjection
			if err := json.NewDecoder(res.Body).Decode(&docs); err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Title", "Type", "Size", "Shelf", "Progress"})
			for _, doc := range docs {
				shelf := ""
				if doc.ShelfID != nil {
					shelf = *doc.ShelfID
				}
				progress := ""
				if doc.ReadingProgressPercent != nil {
					progress = fmt.Sprintf("%.1f%%", *doc.ReadingProgressPercent)
				}
				table.Append([]string{
					doc.ID,
					doc.Title,
					doc.Kind,
					strconv.FormatInt(doc.FileSize, 10),
					shelf,
					progress,
				})
			}
			table.Render()
		},
	}

	command.Flags().StringVarP(&serverURL, "url", "u", "http://localhost:3030", "server base URL")

	return command
}
