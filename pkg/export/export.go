// Package export writes run results to files for offline analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/fleetlab/dispatchsim/core/metrics"
	"github.com/fleetlab/dispatchsim/core/sim"
)

// WriteJSON writes the per-tick statistics to w in JSON format.
func WriteJSON(w io.Writer, stats []metrics.TickStats) error {
	enc := json.NewEncoder(w)
	return enc.Encode(stats)
}

// WriteCSV writes the per-tick statistics to w in CSV format, one row per tick.
func WriteCSV(w io.Writer, stats []metrics.TickStats) error {
	cw := csv.NewWriter(w)
	header := []string{
		"run_id", "time", "generated", "expired",
		"offers_proposed", "offers_accepted",
		"assigned", "picked_up", "delivered", "mutations",
		"served_total", "expired_total",
		"pending", "in_transit", "idle_drivers", "avg_wait",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, st := range stats {
		rec := []string{
			st.RunID,
			strconv.FormatInt(st.Time, 10),
			strconv.Itoa(st.Generated),
			strconv.Itoa(st.Expired),
			strconv.Itoa(st.OffersProposed),
			strconv.Itoa(st.OffersAccepted),
			strconv.Itoa(st.Assigned),
			strconv.Itoa(st.PickedUp),
			strconv.Itoa(st.Delivered),
			strconv.Itoa(st.Mutations),
			strconv.FormatInt(st.ServedTotal, 10),
			strconv.FormatInt(st.ExpiredTotal, 10),
			strconv.Itoa(st.Pending),
			strconv.Itoa(st.InTransit),
			strconv.Itoa(st.IdleDrivers),
			strconv.FormatFloat(st.AvgWait, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSnapshot writes the final world state to w as indented JSON.
func WriteSnapshot(w io.Writer, snap sim.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
