package service

import (
	"bytes"
	"strconv"
)

// PurchaseRow is one recipe-ingredient line of a recipe in a cart.
type PurchaseRow struct {
	Name   string
	Unit   string
	Amount int
}

// PurchaseItem is the summed amount of one ingredient and unit pair.
type PurchaseItem struct {
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	Amount int    `json:"amount"`
}

// Key is the "name, unit" label used in the downloaded list.
func (p PurchaseItem) Key() string {
	return p.Name + ", " + p.Unit
}

// AggregateIngredients sums amounts per ingredient and unit. Items keep the
// order in which each pair was first seen.
func AggregateIngredients(rows []PurchaseRow) []PurchaseItem {
	items := make([]PurchaseItem, 0, len(rows))
	index := make(map[string]int, len(rows))

	for _, row := range rows {
		item := PurchaseItem{Name: row.Name, Unit: row.Unit}
		key := item.Key()
		if i, ok := index[key]; ok {
			items[i].Amount += row.Amount
			continue
		}
		item.Amount = row.Amount
		index[key] = len(items)
		items = append(items, item)
	}
	return items
}

// RenderPurchaseList writes one "name, unit - amount" line per item.
func RenderPurchaseList(items []PurchaseItem) []byte {
	var buf bytes.Buffer
	for _, item := range items {
		buf.WriteString(item.Key())
		buf.WriteString(" - ")
		buf.WriteString(strconv.Itoa(item.Amount))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// PurchaseFileName is the attachment name for username's list.
func PurchaseFileName(username string) string {
	return username + "_cart.txt"
}
