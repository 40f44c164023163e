package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Morishima-Yoru/denkovi-relayboard/internal/tui/models"
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Interactive relay panel",
	Long: `Open an interactive panel for toggling relays.

Navigate with the arrow keys or j/k, toggle the selected relay with
space or enter, switch everything with a (all on) or o (all off), and
refresh the view with r.

Example usage:
  denkovi --board 8ch --backend d2xx -s DAE002 panel`,
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := openBoard()
		if err != nil {
			return err
		}
		defer board.Close()

		title := fmt.Sprintf("denkovi %s", viper.GetString("board"))
		if sn, err := board.SerialNumber(); err == nil {
			title += " · " + sn
		}

		m := models.NewPanelModel(board, title)
		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(panelCmd)
}
