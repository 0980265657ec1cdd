package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goodnatureofminers/chainspend/internal/journal"
	"github.com/goodnatureofminers/chainspend/internal/model"
)

func TestPrintJournal(t *testing.T) {
	store, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, rec := range []model.SpendRecord{
		{Step: model.StepSecond, TxID: "bb", BroadcastTxID: "bb", Fee: 1000},
		{Step: model.StepFirst, TxID: "aa", BroadcastTxID: "aa", Fee: 1000},
	} {
		rec.CreatedAt = created.Add(-time.Duration(i) * time.Minute)
		if err := store.Record(t.Context(), rec); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		name    string
		txid    string
		want    []string
		wantErr error
	}{
		{name: "all records in creation order", want: []string{"aa", "bb"}},
		{name: "single txid", txid: "bb", want: []string{"bb"}},
		{name: "unknown txid", txid: "cc", wantErr: journal.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := printJournal(&out, store, tt.txid)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("printJournal() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("printJournal() error = %v", err)
			}

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("printJournal() wrote %d lines, want %d: %q", len(lines), len(tt.want), out.String())
			}
			for i, line := range lines {
				var rec model.SpendRecord
				if err := json.Unmarshal([]byte(line), &rec); err != nil {
					t.Fatalf("line %d: %v", i, err)
				}
				if rec.TxID != tt.want[i] {
					t.Errorf("line %d txid = %s, want %s", i, rec.TxID, tt.want[i])
				}
			}
		})
	}
}
