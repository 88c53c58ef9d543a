package passage

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/timeutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	listSegmentID   string
	listCheckpostID string
	listPlate       string
	listSource      string
	listMatched     string // "true", "false", or "" for all
	listSince       string
	listUntil       string
	listLimit       int
	listOffset      int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List passages",
	Long: `List passages recorded on the server, newest first.

Time filters accept a relative duration ("24h") or an RFC3339 timestamp.

Examples:
  # Most recent passages
  gatewatchctl passage list

  # One plate over the last day
  gatewatchctl passage list --plate "BA 2 PA 1234" --since 24h

  # Unmatched entries on a segment
  gatewatchctl passage list --segment 1f3a... --matched=false

  # SMS-submitted passages
  gatewatchctl passage list --source sms`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listSegmentID, "segment", "", "Filter by segment ID")
	listCmd.Flags().StringVar(&listCheckpostID, "checkpost", "", "Filter by checkpost ID")
	listCmd.Flags().StringVar(&listPlate, "plate", "", "Filter by plate number")
	listCmd.Flags().StringVar(&listSource, "source", "", "Filter by source (api|sms)")
	listCmd.Flags().StringVar(&listMatched, "matched", "", "Filter by match state (true|false)")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only passages recorded after this time")
	listCmd.Flags().StringVar(&listUntil, "until", "", "Only passages recorded before this time")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum number of passages")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Number of passages to skip")
}

// PassageList is a list of passages for table rendering.
type PassageList []apiclient.Passage

// Headers implements TableRenderer.
func (pl PassageList) Headers() []string {
	return []string{"ID", "PLATE", "VEHICLE", "CHECKPOST", "RECORDED", "SOURCE", "MATCHED"}
}

// Rows implements TableRenderer.
func (pl PassageList) Rows() [][]string {
	rows := make([][]string, 0, len(pl))
	for _, p := range pl {
		rows = append(rows, []string{
			p.ID,
			p.PlateNumber,
			p.VehicleType,
			p.CheckpostID,
			timeutil.FormatLocal(p.RecordedAt),
			p.Source,
			cmdutil.BoolToYesNo(p.IsMatched()),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	since, err := cmdutil.ParseTimeFlag(listSince)
	if err != nil {
		return err
	}
	until, err := cmdutil.ParseTimeFlag(listUntil)
	if err != nil {
		return err
	}

	opts := &apiclient.PassageListOptions{
		SegmentID:   listSegmentID,
		CheckpostID: listCheckpostID,
		Plate:       listPlate,
		Source:      listSource,
		Since:       since,
		Until:       until,
		Limit:       listLimit,
		Offset:      listOffset,
	}
	switch listMatched {
	case "":
	case "true":
		matched := true
		opts.Matched = &matched
	case "false":
		matched := false
		opts.Matched = &matched
	default:
		return fmt.Errorf("--matched must be true or false")
	}

	passages, err := client.ListPassages(opts)
	if err != nil {
		return fmt.Errorf("failed to list passages: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, passages, len(passages) == 0, "No passages found.", PassageList(passages))
}
