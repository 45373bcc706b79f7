package cmd

import "github.com/spf13/cobra"

var (
	pcbLibrary, pcbFootprint, pcbReference, pcbValue, pcbLayer string
	pcbX, pcbY, pcbRotation                                    float64
	trackFromX, trackFromY, trackToX, trackToY, trackWidth     float64
	viaSize, viaDrill                                          float64
	netFilter                                                  int64
)

var pcbCmd = &cobra.Command{
	Use:   "pcb",
	Short: "Board (.kicad_pcb) operations",
}

var pcbPlaceFootprintCmd = &cobra.Command{
	Use:   "place-footprint <board_file>",
	Short: "Place a footprint onto a board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("place_component", map[string]interface{}{
			"path": args[0], "library": pcbLibrary, "footprint": pcbFootprint,
			"reference": pcbReference, "value": pcbValue, "x": pcbX, "y": pcbY,
			"rotation": pcbRotation, "layer": pcbLayer,
		})
	},
}

var pcbMoveFootprintCmd = &cobra.Command{
	Use:   "move-footprint <board_file>",
	Short: "Move a footprint to a new position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("move_component", map[string]interface{}{
			"path": args[0], "reference": pcbReference, "x": pcbX, "y": pcbY, "rotation": pcbRotation,
		})
	},
}

var pcbDeleteFootprintCmd = &cobra.Command{
	Use:   "delete-footprint <board_file>",
	Short: "Delete every footprint matching a reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("delete_component", map[string]interface{}{"path": args[0], "reference": pcbReference})
	},
}

var pcbGetFootprintsCmd = &cobra.Command{
	Use:   "get-footprints <board_file>",
	Short: "List every placed footprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("get_components", map[string]interface{}{"path": args[0]})
	},
}

var pcbAddTrackCmd = &cobra.Command{
	Use:   "add-track <board_file>",
	Short: "Add a straight copper track segment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("add_track", map[string]interface{}{
			"path": args[0], "from_x": trackFromX, "from_y": trackFromY, "to_x": trackToX, "to_y": trackToY,
			"layer": pcbLayer, "width": trackWidth, "net": netFilter,
		})
	},
}

var pcbAddViaCmd = &cobra.Command{
	Use:   "add-via <board_file>",
	Short: "Add a through-hole via",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("add_via", map[string]interface{}{
			"path": args[0], "x": pcbX, "y": pcbY, "size": viaSize, "drill": viaDrill, "net": netFilter,
		})
	},
}

var pcbDeleteTracksCmd = &cobra.Command{
	Use:   "delete-tracks <board_file>",
	Short: "Delete every track on a given net",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("delete_tracks", map[string]interface{}{"path": args[0], "net": netFilter})
	},
}

func init() {
	rootCmd.AddCommand(pcbCmd)
	pcbCmd.AddCommand(pcbPlaceFootprintCmd, pcbMoveFootprintCmd, pcbDeleteFootprintCmd, pcbGetFootprintsCmd,
		pcbAddTrackCmd, pcbAddViaCmd, pcbDeleteTracksCmd)

	for _, c := range []*cobra.Command{pcbPlaceFootprintCmd, pcbMoveFootprintCmd, pcbDeleteFootprintCmd} {
		c.Flags().StringVar(&pcbReference, "reference", "", "footprint reference designator")
	}
	for _, c := range []*cobra.Command{pcbPlaceFootprintCmd, pcbMoveFootprintCmd} {
		c.Flags().Float64Var(&pcbX, "x", 0, "X position")
		c.Flags().Float64Var(&pcbY, "y", 0, "Y position")
		c.Flags().Float64Var(&pcbRotation, "rotation", 0, "rotation in degrees")
	}
	pcbPlaceFootprintCmd.Flags().StringVar(&pcbLibrary, "library", "", "footprint library name")
	pcbPlaceFootprintCmd.Flags().StringVar(&pcbFootprint, "footprint", "", "footprint name within the library")
	pcbPlaceFootprintCmd.Flags().StringVar(&pcbValue, "value", "", "footprint value")
	pcbPlaceFootprintCmd.Flags().StringVar(&pcbLayer, "layer", "F.Cu", "placement layer")

	pcbAddTrackCmd.Flags().Float64Var(&trackFromX, "from-x", 0, "start X")
	pcbAddTrackCmd.Flags().Float64Var(&trackFromY, "from-y", 0, "start Y")
	pcbAddTrackCmd.Flags().Float64Var(&trackToX, "to-x", 0, "end X")
	pcbAddTrackCmd.Flags().Float64Var(&trackToY, "to-y", 0, "end Y")
	pcbAddTrackCmd.Flags().StringVar(&pcbLayer, "layer", "F.Cu", "copper layer")
	pcbAddTrackCmd.Flags().Float64Var(&trackWidth, "width", 0.25, "track width")
	pcbAddTrackCmd.Flags().Int64Var(&netFilter, "net", 0, "net number")

	pcbAddViaCmd.Flags().Float64Var(&pcbX, "x", 0, "X position")
	pcbAddViaCmd.Flags().Float64Var(&pcbY, "y", 0, "Y position")
	pcbAddViaCmd.Flags().Float64Var(&viaSize, "size", 0.6, "via pad size")
	pcbAddViaCmd.Flags().Float64Var(&viaDrill, "drill", 0.3, "via drill size")
	pcbAddViaCmd.Flags().Int64Var(&netFilter, "net", 0, "net number")

	pcbDeleteTracksCmd.Flags().Int64Var(&netFilter, "net", 0, "net number to delete tracks from")
}
