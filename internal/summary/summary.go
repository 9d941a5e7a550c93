// Package summary turns the final per-client account map into output
// rows and, via Write, a CSV stream with the header
// `client,available,held,total,locked`.
package summary

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"ledger-pipeline/internal/models"
)

// Row is one client's final snapshot, ready for serialization.
type Row struct {
	ClientID  models.ClientID
	Available string
	Held      string
	Total     string
	Locked    bool
}

// FromAccounts formats every account's snapshot into a Row, sorted by
// ClientID ascending since the map's own iteration order is otherwise
// unstable.
func FromAccounts(accounts map[models.ClientID]*models.Account) []Row {
	rows := make([]Row, 0, len(accounts))
	for id, acc := range accounts {
		rows = append(rows, Row{
			ClientID:  id,
			Available: acc.Snapshot.Available.String(),
			Held:      acc.Snapshot.Held.String(),
			Total:     acc.Snapshot.Total().String(),
			Locked:    acc.Status == models.Locked,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ClientID < rows[j].ClientID })
	return rows
}

// Write serializes rows as CSV to w, with header
// `client,available,held,total,locked` and `locked` rendered as
// lowercase true/false.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}
	for _, row := range rows {
		locked := "false"
		if row.Locked {
			locked = "true"
		}
		record := []string{
			strconv.FormatUint(uint64(row.ClientID), 10),
			row.Available,
			row.Held,
			row.Total,
			locked,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
