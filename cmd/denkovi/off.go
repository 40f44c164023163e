package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var offCmd = &cobra.Command{
	Use:   "off [channel...]",
	Short: "Turn relays off",
	Long: `Turn relays off.

With no arguments every relay on the board is switched off. With one or
more channel numbers only those relays are switched off, leaving the
rest untouched.

Example usage:
  denkovi --board 8ch --backend d2xx -s DAE002 off
  denkovi --board 8ch --backend d2xx -s DAE002 off 2 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := openBoard()
		if err != nil {
			return err
		}
		defer board.Close()

		if len(args) == 0 {
			if err := board.SetAllStatesOff(); err != nil {
				return err
			}
			fmt.Println("all relays off")
			return nil
		}

		addrs, err := parseChannels(args)
		if err != nil {
			return err
		}
		if err := board.SetState(false, addrs...); err != nil {
			return err
		}
		fmt.Println("relays off:", addrs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(offCmd)
}
