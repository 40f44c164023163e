package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	denkovi "github.com/Morishima-Yoru/denkovi-relayboard"
)

var rootCmd = &cobra.Command{
	Use:   "denkovi",
	Short: "Control Denkovi USB relay boards",
	Long: `Control Denkovi USB relay boards over several transports.

Supported board types:
  16ch          16-channel board (ASCII protocol over a serial link)
  8ch           8-channel board (FTDI bit-bang)
  4ch-ftd2xx    4-channel FT-based board (FTDI bit-bang)
  4ch-mcp2200   4-channel MCP2200 board (USB-HID reports)

Supported backend types:
  d2xx          vendor FTD2XX library
  vcp           virtual COM port
  mcp2200       USB-HID
  ftdi          direct userspace USB access

Boards are addressed by serial number (--serial) or by the device path
of their COM port (--address), never both. Defaults for every flag can
be set in ~/.denkovi.yaml or through DENKOVI_* environment variables.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("board", "", "board type: 16ch, 8ch, 4ch-ftd2xx, 4ch-mcp2200")
	flags.String("backend", "", "backend type: d2xx, vcp, mcp2200, ftdi")
	flags.StringP("address", "a", "", "device path of the board's COM port")
	flags.StringP("serial", "s", "", "serial number of the board")
	flags.Duration("timeout", 5*time.Second, "read timeout for board I/O")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	for _, name := range []string{"board", "backend", "address", "serial", "timeout", "verbose"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".denkovi")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("DENKOVI")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}

	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// openBoard builds a connected board from the persistent flags.
func openBoard() (denkovi.Board, error) {
	boardType := viper.GetString("board")
	backendType := viper.GetString("backend")
	if boardType == "" || backendType == "" {
		return nil, fmt.Errorf("both --board and --backend are required")
	}
	return denkovi.Create(
		denkovi.BoardType(boardType),
		denkovi.BackendType(backendType),
		viper.GetString("address"),
		viper.GetString("serial"),
		viper.GetDuration("timeout"),
	)
}

// parseChannels converts positional arguments into relay addresses.
func parseChannels(args []string) ([]int, error) {
	addrs := make([]int, 0, len(args))
	for _, arg := range args {
		addr, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid channel %q", arg)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
