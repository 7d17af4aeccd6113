package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var previewLink linkFlags

func init() {
	rootCmd.AddCommand(cmdLink)
	previewLink.register(cmdLink)
}

var cmdLink = &cobra.Command{
	Use:   "link",
	Short: "Print the deep link a launch would deliver",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		link, err := controller().PreviewLink(previewLink.params())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}
