package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	denkovi "github.com/Morishima-Yoru/denkovi-relayboard"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discoverable relay boards",
	Long: `List every relay board reachable through any available backend.

Each backend enumerates its own transport: the vendor D2XX library and
the userspace FTDI driver scan the USB bus, the VCP backend scans the
OS serial ports, and the MCP2200 backend scans HID devices. Backends
whose native prerequisites are missing on this system are skipped.

The same physical board may appear once per backend that can reach it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		devices := denkovi.ListPotentialBoards()
		if len(devices) == 0 {
			fmt.Println("No relay boards found")
			return nil
		}
		renderDeviceTable(devices)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#cdd6f4")).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#585b70"))

	tableCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

func renderDeviceTable(devices []denkovi.DiscoveredDevice) {
	rows := [][]string{{"BACKEND", "SERIAL NUMBER", "ADDRESS"}}
	for _, dev := range devices {
		addr := dev.DeviceAddress
		if addr == "" {
			addr = "-"
		}
		rows = append(rows, []string{string(dev.Backend), dev.SerialNumber, addr})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for rowIdx, row := range rows {
		line := ""
		for i, cell := range row {
			padded := fmt.Sprintf("%-*s", widths[i], cell)
			line += tableCellStyle.Render(padded)
		}
		if rowIdx == 0 {
			fmt.Println(tableHeaderStyle.Render(line))
		} else {
			fmt.Println(line)
		}
	}
}
