package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <channel...>",
	Short: "Set exactly the given relays on, all others off",
	Long: `Set exactly the given relays on and every other relay off in a
single operation.

Unlike "on", which leaves unnamed relays untouched, "set" drives the
whole board to a known state.

Example usage:
  denkovi --board 16ch --backend vcp -s DAE001 set 1 3 5
  denkovi --board 4ch-mcp2200 --backend mcp2200 -s 0001112223 set 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs, err := parseChannels(args)
		if err != nil {
			return err
		}

		board, err := openBoard()
		if err != nil {
			return err
		}
		defer board.Close()

		if err := board.SetClearState(true, addrs...); err != nil {
			return err
		}
		fmt.Println("relays set:", addrs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
