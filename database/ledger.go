// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/database/types"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"github.com/fxamacker/cbor/v2"
)

// ApplyChangeset writes the entities of a ledger transition to the metadata
// store and its journal entry to the blob store in a single transaction
func (d *Database) ApplyChangeset(
	ctx context.Context,
	changeset *models.Changeset,
) error {
	if changeset == nil || changeset.Collection == nil {
		return errors.New("changeset has no collection")
	}
	journalData, err := cbor.Marshal(changeset.Journal)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	txn := d.Transaction(true)
	return txn.Do(func(txn *Txn) error {
		if err := d.Metadata().SaveChangeset(
			changeset,
			txn.Metadata().WithContext(ctx),
		); err != nil {
			return err
		}
		return d.Blob().Set(
			txn.Blob(),
			types.JournalBlobKey(
				changeset.Journal.Collection,
				changeset.Journal.Sequence,
			),
			journalData,
		)
	})
}

// LoadState returns the persisted ledger entities
func (d *Database) LoadState(ctx context.Context) (*models.Snapshot, error) {
	return d.Metadata().LoadSnapshot(d.Metadata().DB().WithContext(ctx))
}

// Journal returns the journal entries of a collection in sequence order
func (d *Database) Journal(
	collection lcommon.Key,
) ([]models.JournalEntry, error) {
	txn := d.Blob().NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	var ret []models.JournalEntry
	err := d.Blob().IteratePrefix(
		txn,
		types.JournalBlobPrefix(collection),
		func(_ []byte, val []byte) error {
			var entry models.JournalEntry
			if err := cbor.Unmarshal(val, &entry); err != nil {
				return fmt.Errorf("decode journal entry: %w", err)
			}
			ret = append(ret, entry)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Transfers returns the transfer instructions issued for a collection
func (d *Database) Transfers(
	ctx context.Context,
	collection lcommon.Key,
) ([]models.Transfer, error) {
	return d.Metadata().GetTransfers(
		collection,
		d.Metadata().DB().WithContext(ctx),
	)
}
