package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GSKISBOT/fileconvertor/pkg/translate"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List translation target languages",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		popular := make(map[string]bool, len(translate.PopularLanguages))
		for _, code := range translate.PopularLanguages {
			popular[code] = true
		}

		fmt.Println("🌐 Target languages (★ = shown first in the bot)")
		for _, l := range translate.TargetLanguages() {
			mark := " "
			if popular[l.Code] {
				mark = "★"
			}
			fmt.Printf("  %s %-6s %s\n", mark, l.Code, l.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
