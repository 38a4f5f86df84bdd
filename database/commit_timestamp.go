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
	"errors"
	"fmt"

	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/database/types"
	"github.com/fxamacker/cbor/v2"
)

type CommitTimestampError struct {
	MetadataTimestamp int64
	BlobTimestamp     int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"commit timestamp mismatch: %d (metadata) != %d (blob)",
		e.MetadataTimestamp,
		e.BlobTimestamp,
	)
}

func (d *Database) checkCommitTimestamp() error {
	metadataTimestamp, err := d.Metadata().GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf(
			"failed to get metadata timestamp from plugin: %w",
			err,
		)
	}
	blobTimestamp, err := d.Blob().GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf(
			"failed to get blob timestamp from plugin: %w",
			err,
		)
	}
	if blobTimestamp != metadataTimestamp {
		return CommitTimestampError{
			MetadataTimestamp: metadataTimestamp,
			BlobTimestamp:     blobTimestamp,
		}
	}
	return nil
}

func (d *Database) updateCommitTimestamp(txn *Txn, timestamp int64) error {
	if err := d.Metadata().SetCommitTimestamp(txn.Metadata(), timestamp); err != nil {
		return err
	}
	if err := d.Blob().SetCommitTimestamp(timestamp, txn.Blob()); err != nil {
		return err
	}
	return nil
}

// recoverCommitTimestampConflict brings the journal back in line with the
// metadata store after an interrupted commit. The metadata store is
// authoritative: journal entries past each collection's sequence are removed.
func (d *Database) recoverCommitTimestampConflict(
	tsErr CommitTimestampError,
) error {
	snapshot, err := d.Metadata().LoadSnapshot(nil)
	if err != nil {
		return fmt.Errorf("recover commit timestamp: %w", err)
	}
	txn := d.Transaction(true)
	err = txn.Do(func(txn *Txn) error {
		for _, coll := range snapshot.Collections {
			var staleKeys [][]byte
			err := d.Blob().IteratePrefix(
				txn.Blob(),
				types.JournalBlobPrefix(coll.Key),
				func(key []byte, val []byte) error {
					var entry models.JournalEntry
					if err := cbor.Unmarshal(val, &entry); err != nil {
						return err
					}
					if entry.Sequence > coll.Sequence {
						staleKeys = append(staleKeys, key)
					}
					return nil
				},
			)
			if err != nil {
				return err
			}
			for _, key := range staleKeys {
				if err := d.Blob().Delete(txn.Blob(), key); err != nil {
					return err
				}
			}
			if len(staleKeys) > 0 {
				d.logger.Warn(
					fmt.Sprintf(
						"removed %d uncommitted journal entries",
						len(staleKeys),
					),
					"component", "database",
					"collection", coll.Key.String(),
				)
			}
		}
		return nil
	})
	if err != nil {
		return errors.Join(tsErr, fmt.Errorf("recover commit timestamp: %w", err))
	}
	return nil
}
