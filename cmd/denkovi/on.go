package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var onCmd = &cobra.Command{
	Use:   "on [channel...]",
	Short: "Turn relays on",
	Long: `Turn relays on.

With no arguments every relay on the board is switched on. With one or
more channel numbers only those relays are switched on, leaving the
rest untouched.

Example usage:
  denkovi --board 16ch --backend vcp -s DAE001 on
  denkovi --board 16ch --backend vcp -s DAE001 on 1 4 16`,
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := openBoard()
		if err != nil {
			return err
		}
		defer board.Close()

		if len(args) == 0 {
			if err := board.SetAllStatesOn(); err != nil {
				return err
			}
			fmt.Println("all relays on")
			return nil
		}

		addrs, err := parseChannels(args)
		if err != nil {
			return err
		}
		if err := board.SetState(true, addrs...); err != nil {
			return err
		}
		fmt.Println("relays on:", addrs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(onCmd)
}
