package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goodnatureofminers/chainspend/internal/model"
)

type journalReader interface {
	Get(txid string) (model.SpendRecord, error)
	List() ([]model.SpendRecord, error)
}

// printJournal writes one JSON line per record, or only the record for txid when set.
func printJournal(w io.Writer, reader journalReader, txid string) error {
	var recs []model.SpendRecord
	if txid != "" {
		rec, err := reader.Get(txid)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
	} else {
		all, err := reader.List()
		if err != nil {
			return fmt.Errorf("list journal: %w", err)
		}
		recs = all
	}

	enc := json.NewEncoder(w)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write record %s: %w", rec.TxID, err)
		}
	}
	return nil
}
