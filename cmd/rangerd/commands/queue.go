package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/internal/cli/output"
	"github.com/gatewatch/gatewatch/internal/cli/timeutil"
	"github.com/gatewatch/gatewatch/pkg/agent/store"
	"github.com/gatewatch/gatewatch/pkg/config"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect the sync queue",
	Long: `Inspect and manage the outbound sync queue.

Every recorded passage moves through the queue: pending until the server
acknowledges it, failed once its delivery attempts are spent or the server
refused it outright.

Examples:
  # List everything still owed to the server
  rangerd queue list

  # Inspect one entry
  rangerd queue show 1b4e28ba-2fa1-11d2-883f-0016d3cca427

  # Give failed entries a fresh attempt budget
  rangerd queue retry --failed`,
}

var queueStatusFilter string

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sync queue entries",
	RunE:  runQueueList,
}

var queueShowCmd = &cobra.Command{
	Use:   "show <client-id>",
	Short: "Show one queue entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueShow,
}

var queueRetryAllFailed bool

var queueRetryCmd = &cobra.Command{
	Use:   "retry [client-id...]",
	Short: "Return failed entries to pending",
	Long: `Return failed queue entries to pending with a fresh attempt budget.

An entry fails after exhausting its delivery attempts or when the server
refuses the passage. Retry it once the cause is fixed, then run
'rangerd sync' to push immediately.`,
	RunE: runQueueRetry,
}

func init() {
	queueListCmd.Flags().StringVar(&queueStatusFilter, "status", "", "Filter by status (pending, in_flight, synced, failed)")
	queueRetryCmd.Flags().BoolVar(&queueRetryAllFailed, "failed", false, "Retry every failed entry")

	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueShowCmd)
	queueCmd.AddCommand(queueRetryCmd)
}

// parseSyncStatus maps the --status flag onto a queue status.
func parseSyncStatus(value string) (store.SyncStatus, error) {
	switch store.SyncStatus(value) {
	case store.StatusPending, store.StatusInFlight, store.StatusSynced, store.StatusFailed:
		return store.SyncStatus(value), nil
	default:
		return "", fmt.Errorf("unknown status %q (valid: pending, in_flight, synced, failed)", value)
	}
}

func runQueueList(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoadAgent(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	var statuses []store.SyncStatus
	if queueStatusFilter != "" {
		status, err := parseSyncStatus(queueStatusFilter)
		if err != nil {
			return err
		}
		statuses = append(statuses, status)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	entries, err := st.ListQueueEntries(ctx, statuses...)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		if queueStatusFilter != "" {
			fmt.Printf("No %s entries in the sync queue.\n", queueStatusFilter)
		} else {
			fmt.Println("Sync queue is empty.")
		}
		return nil
	}

	table := output.NewTableData("CLIENT ID", "PLATE", "STATUS", "ATTEMPTS", "LAST ATTEMPT", "SMS", "CREATED")
	for _, entry := range entries {
		plateNumber := "-"
		if passage, err := st.GetPassage(ctx, entry.PassageClientID); err == nil {
			plateNumber = passage.PlateNumber
		}

		lastAttempt := "-"
		if entry.LastAttemptAt != nil {
			lastAttempt = timeutil.FormatLocal(*entry.LastAttemptAt)
		}
		sent := "no"
		if entry.SMSSent {
			sent = "yes"
		}

		table.AddRow(
			entry.PassageClientID,
			plateNumber,
			string(entry.Status),
			strconv.Itoa(entry.Attempts),
			lastAttempt,
			sent,
			timeutil.FormatLocal(entry.CreatedAt),
		)
	}
	if err := output.PrintTable(os.Stdout, table); err != nil {
		return err
	}

	counts, err := st.QueueCounts(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\n%d pending, %d in flight, %d failed, %d synced\n",
		counts[store.StatusPending], counts[store.StatusInFlight],
		counts[store.StatusFailed], counts[store.StatusSynced])
	return nil
}

func runQueueShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoadAgent(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	entry, err := st.GetQueueEntry(ctx, args[0])
	if err != nil {
		if errors.Is(err, store.ErrQueueEntryNotFound) {
			return fmt.Errorf("no queue entry for client id '%s'", args[0])
		}
		return err
	}

	pairs := [][2]string{
		{"Client ID", entry.PassageClientID},
		{"Status", string(entry.Status)},
		{"Attempts", strconv.Itoa(entry.Attempts)},
	}
	if entry.LastAttemptAt != nil {
		pairs = append(pairs, [2]string{"Last attempt", timeutil.FormatLocal(*entry.LastAttemptAt)})
	}
	if entry.LastError != "" {
		pairs = append(pairs, [2]string{"Last error", entry.LastError})
	}
	pairs = append(pairs, [2]string{"Sent by SMS", boolYesNo(entry.SMSSent)})
	pairs = append(pairs, [2]string{"Created", timeutil.FormatLocal(entry.CreatedAt)})

	if passage, err := st.GetPassage(ctx, entry.PassageClientID); err == nil {
		pairs = append(pairs,
			[2]string{"Plate", passage.PlateNumber},
			[2]string{"Vehicle", passage.VehicleType},
			[2]string{"Recorded", timeutil.FormatLocal(passage.RecordedAt)},
		)
		if passage.PlateNumberRaw != "" && passage.PlateNumberRaw != passage.PlateNumber {
			pairs = append(pairs, [2]string{"Plate as written", passage.PlateNumberRaw})
		}
		if passage.PhotoRef != "" {
			pairs = append(pairs, [2]string{"Photo", passage.PhotoRef})
		}
	}

	return output.SimpleTable(os.Stdout, pairs)
}

func runQueueRetry(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !queueRetryAllFailed {
		return fmt.Errorf("specify client ids or --failed")
	}

	cfg, err := config.MustLoadAgent(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	ids := args
	if queueRetryAllFailed {
		failed, err := st.ListQueueEntries(ctx, store.StatusFailed)
		if err != nil {
			return err
		}
		for _, entry := range failed {
			ids = append(ids, entry.PassageClientID)
		}
	}
	if len(ids) == 0 {
		fmt.Println("No failed entries to retry.")
		return nil
	}

	retried := 0
	for _, id := range ids {
		entry, err := st.GetQueueEntry(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrQueueEntryNotFound) {
				fmt.Printf("No queue entry for client id '%s', skipping.\n", id)
				continue
			}
			return err
		}
		if entry.Status != store.StatusFailed {
			fmt.Printf("Entry %s is %s, not failed; skipping.\n", id, entry.Status)
			continue
		}

		if _, err := st.UpdateQueueEntry(ctx, id, func(q *store.SyncQueueEntry) {
			q.Status = store.StatusPending
			q.Attempts = 0
			q.LastError = ""
		}); err != nil {
			return err
		}
		retried++
	}

	if retried == 0 {
		fmt.Println("Nothing retried.")
		return nil
	}
	fmt.Printf("%d passage(s) returned to pending. Run 'rangerd sync' to push now.\n", retried)
	return nil
}

func boolYesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
