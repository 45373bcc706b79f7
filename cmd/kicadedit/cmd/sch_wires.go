package cmd

import "github.com/spf13/cobra"

var (
	wireFromX, wireFromY, wireToX, wireToY float64
	wireFromRef, wireFromPin               string
	wireToRef, wireToPin, wireStyle        string
	labelText, labelKind                   string
	labelOrientation                       float64
	netName                                string
	netNearestPinFallback                  bool
)

var schAddWireCmd = &cobra.Command{
	Use:   "add-wire <schematic_file>",
	Short: "Draw a straight wire segment between two points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("add_wire", map[string]interface{}{
			"path": args[0], "from_x": wireFromX, "from_y": wireFromY, "to_x": wireToX, "to_y": wireToY,
		})
	},
}

var schAddConnectionCmd = &cobra.Command{
	Use:   "add-connection <schematic_file>",
	Short: "Connect two component pins with wire segments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("add_connection", map[string]interface{}{
			"path": args[0], "from_reference": wireFromRef, "from_pin": wireFromPin,
			"to_reference": wireToRef, "to_pin": wireToPin, "style": wireStyle,
		})
	},
}

var schAddLabelCmd = &cobra.Command{
	Use:   "add-label <schematic_file>",
	Short: "Place a net label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("add_label", map[string]interface{}{
			"path": args[0], "x": wireFromX, "y": wireFromY, "text": labelText,
			"kind": labelKind, "orientation": labelOrientation,
		})
	},
}

var schGetNetConnectionsCmd = &cobra.Command{
	Use:   "get-net-connections <schematic_file>",
	Short: "List every pin reachable from a named net",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("get_net_connections", map[string]interface{}{
			"path": args[0], "net": netName, "nearest_pin_fallback": netNearestPinFallback,
		})
	},
}

func init() {
	schCmd.AddCommand(schAddWireCmd, schAddConnectionCmd, schAddLabelCmd, schGetNetConnectionsCmd)

	schAddWireCmd.Flags().Float64Var(&wireFromX, "from-x", 0, "start X")
	schAddWireCmd.Flags().Float64Var(&wireFromY, "from-y", 0, "start Y")
	schAddWireCmd.Flags().Float64Var(&wireToX, "to-x", 0, "end X")
	schAddWireCmd.Flags().Float64Var(&wireToY, "to-y", 0, "end Y")

	schAddConnectionCmd.Flags().StringVar(&wireFromRef, "from-reference", "", "source component reference")
	schAddConnectionCmd.Flags().StringVar(&wireFromPin, "from-pin", "", "source pin identifier")
	schAddConnectionCmd.Flags().StringVar(&wireToRef, "to-reference", "", "destination component reference")
	schAddConnectionCmd.Flags().StringVar(&wireToPin, "to-pin", "", "destination pin identifier")
	schAddConnectionCmd.Flags().StringVar(&wireStyle, "style", "orthogonal_h", "direct|orthogonal_h|orthogonal_v")

	schAddLabelCmd.Flags().Float64Var(&wireFromX, "x", 0, "label X")
	schAddLabelCmd.Flags().Float64Var(&wireFromY, "y", 0, "label Y")
	schAddLabelCmd.Flags().StringVar(&labelText, "text", "", "label text")
	schAddLabelCmd.Flags().StringVar(&labelKind, "kind", "local", "local|global|hierarchical")
	schAddLabelCmd.Flags().Float64Var(&labelOrientation, "orientation", 0, "label orientation in degrees")

	schGetNetConnectionsCmd.Flags().StringVar(&netName, "net", "", "net label name")
	schGetNetConnectionsCmd.Flags().BoolVar(&netNearestPinFallback, "nearest-pin-fallback", false, "also include unwired pins within 10 units")
}
