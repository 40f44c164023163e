package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	relayOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Bold(true)
	relayOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8"))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of every relay",
	Long: `Show the state of every relay on the board.

For bit-bang boards the states are read live from the GPIO register;
for the other families the board is queried over its protocol.

Example usage:
  denkovi --board 16ch --backend vcp -s DAE001 status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := openBoard()
		if err != nil {
			return err
		}
		defer board.Close()

		states, err := board.GetAllStates()
		if err != nil {
			return err
		}

		if sn, err := board.SerialNumber(); err == nil {
			fmt.Println("board:", sn)
		}
		for i, on := range states {
			state := relayOffStyle.Render("off")
			if on {
				state = relayOnStyle.Render("ON")
			}
			fmt.Printf("%2d  %s\n", i+1, state)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
