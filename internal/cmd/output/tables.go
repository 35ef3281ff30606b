package output

import (
	"io"
	"strconv"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/balances"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
)

const none = "-"

// BalanceRow is one account's balances as shown by the balances command.
type BalanceRow struct {
	Account  string            `json:"account" yaml:"account"`
	Name     string            `json:"name" yaml:"name"`
	Currency string            `json:"currency,omitempty" yaml:"currency,omitempty"`
	Balances balances.Balances `json:"balances" yaml:"balances"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// Write formats data with format. Table formats render the result of
// tables instead, so callers can shape rows without changing the
// structured output.
func Write(w io.Writer, format Format, data any, tables func(wide bool) []Data) error {
	formatter := NewFormatter(format)
	switch format {
	case FormatTable, FormatWide, "":
		return formatter.Format(w, tables(format == FormatWide))
	default:
		return formatter.Format(w, data)
	}
}

// SnapshotTables renders the awaiting requisitions and the accounts of a run.
func SnapshotTables(snap reconcile.Snapshot, wide bool) []Data {
	return []Data{
		RequisitionsTable(snap.Requisitions, wide),
		AccountsTable(snap.Accounts, wide),
	}
}

// RequisitionsTable renders requisitions awaiting authentication.
func RequisitionsTable(reqs []reconcile.Reconciled, wide bool) Data {
	headers := []string{"Reference", "Institution", "Status", "Link"}
	if wide {
		headers = append(headers, "Requisition", "Created")
	}

	rows := make([][]string, 0, len(reqs))
	for _, r := range reqs {
		row := []string{
			r.Reference,
			institutionName(r.Details),
			status(r.Status),
			orNone(r.Link),
		}
		if wide {
			created := none
			if r.Created != nil {
				created = r.Created.Format("2006-01-02 15:04")
			}
			row = append(row, orNone(r.ID), created)
		}
		rows = append(rows, row)
	}

	return Data{
		Title:   "Requisitions awaiting authentication",
		Headers: headers,
		Rows:    rows,
	}
}

// AccountsTable renders linked accounts.
func AccountsTable(accounts []reconcile.Account, wide bool) Data {
	headers := []string{"Unique Ref", "Name", "Owner", "Currency", "Institution", "Refresh"}
	if wide {
		headers = append(headers, "Account", "Requisition", "Product", "BIC")
	}

	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		row := []string{
			a.UniqueRef,
			orNone(a.Name),
			orNone(a.Owner),
			orNone(a.Currency),
			institutionName(a.Institution),
			strconv.Itoa(a.Intent.RefreshRate) + "m",
		}
		if wide {
			row = append(row, a.ID, a.Requisition.ID, orNone(a.Product), orNone(a.BIC))
		}
		rows = append(rows, row)
	}

	return Data{
		Title:   "Accounts",
		Headers: headers,
		Rows:    rows,
	}
}

// BalancesTable renders one row per account with a column per bucket.
// Narrow output only shows buckets that at least one account knows.
func BalancesTable(rows []BalanceRow, wide bool) Data {
	types := balances.Types
	if !wide {
		types = knownTypes(rows)
	}

	failed := false
	for _, r := range rows {
		failed = failed || r.Error != ""
	}

	headers := append([]string{"Account", "Name", "Currency"}, typeNames(types)...)
	align := make([]Align, len(headers))
	for i := 3; i < len(align); i++ {
		align[i] = AlignRight
	}
	if failed {
		headers = append(headers, "Error")
		align = append(align, AlignLeft)
	}

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := []string{r.Account, orNone(r.Name), orNone(r.Currency)}
		for _, t := range types {
			if v, ok := r.Balances.Get(t); ok {
				row = append(row, v.StringFixed(2))
			} else {
				row = append(row, none)
			}
		}
		if failed {
			row = append(row, orNone(r.Error))
		}
		out = append(out, row)
	}

	return Data{
		Title:           "Balances",
		Headers:         headers,
		Rows:            out,
		ColumnAlignment: align,
	}
}

func knownTypes(rows []BalanceRow) []balances.Type {
	seen := make(map[balances.Type]bool)
	for _, r := range rows {
		for _, t := range r.Balances.Known() {
			seen[t] = true
		}
	}
	var types []balances.Type
	for _, t := range balances.Types {
		if seen[t] {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return balances.Types[:2]
	}
	return types
}

func typeNames(types []balances.Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

func institutionName(inst reconcile.Institution) string {
	if inst.Name != "" {
		return inst.Name
	}
	return orNone(inst.ID)
}

func status(s reconcile.Status) string {
	if s.IsZero() {
		return "NEW"
	}
	return s.String()
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}
