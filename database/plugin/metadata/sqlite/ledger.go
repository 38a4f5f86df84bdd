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

package sqlite

import (
	"fmt"

	"github.com/blinklabs-io/rotary/database/models"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// commitMarker is the single row holding the timestamp of the last
// committed ledger transaction
type commitMarker struct {
	ID        uint `gorm:"primarykey"`
	Timestamp int64
}

func (commitMarker) TableName() string {
	return "commit_timestamp"
}

// SaveChangeset writes every entity in the changeset, replacing existing rows with the same key
func (d *MetadataStoreSqlite) SaveChangeset(
	changeset *models.Changeset,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	upsert := clause.OnConflict{UpdateAll: true}
	if changeset.Collection != nil {
		if result := db.Clauses(upsert).Create(changeset.Collection); result.Error != nil {
			return fmt.Errorf("save collection: %w", result.Error)
		}
	}
	for _, member := range changeset.Members {
		if result := db.Clauses(upsert).Create(member); result.Error != nil {
			return fmt.Errorf("save member: %w", result.Error)
		}
	}
	if changeset.Multisig != nil {
		if result := db.Clauses(upsert).Create(changeset.Multisig); result.Error != nil {
			return fmt.Errorf("save multisig: %w", result.Error)
		}
	}
	for _, proposal := range changeset.Proposals {
		if result := db.Clauses(upsert).Create(proposal); result.Error != nil {
			return fmt.Errorf("save proposal: %w", result.Error)
		}
	}
	for _, transfer := range changeset.Transfers {
		if result := db.Create(transfer); result.Error != nil {
			return fmt.Errorf("save transfer: %w", result.Error)
		}
	}
	return nil
}

// LoadSnapshot returns all stored collections, members, multisigs and proposals
func (d *MetadataStoreSqlite) LoadSnapshot(
	txn *gorm.DB,
) (*models.Snapshot, error) {
	db := d.resolveDB(txn)
	ret := &models.Snapshot{}
	if result := db.Order("created_at, `key`").Find(&ret.Collections); result.Error != nil {
		return nil, fmt.Errorf("load collections: %w", result.Error)
	}
	if result := db.Order("joined_at, `key`").Find(&ret.Members); result.Error != nil {
		return nil, fmt.Errorf("load members: %w", result.Error)
	}
	if result := db.Find(&ret.Multisigs); result.Error != nil {
		return nil, fmt.Errorf("load multisigs: %w", result.Error)
	}
	if result := db.Order("collection_key, proposal_index").Find(&ret.Proposals); result.Error != nil {
		return nil, fmt.Errorf("load proposals: %w", result.Error)
	}
	return ret, nil
}

// GetTransfers returns the transfer instructions issued for a collection in issue order
func (d *MetadataStoreSqlite) GetTransfers(
	collection lcommon.Key,
	txn *gorm.DB,
) ([]models.Transfer, error) {
	var ret []models.Transfer
	result := d.resolveDB(txn).
		Where("collection_key = ?", collection[:]).
		Order("id").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) GetCommitTimestamp() (int64, error) {
	var markers []commitMarker
	if result := d.DB().Limit(1).Find(&markers); result.Error != nil {
		return 0, result.Error
	}
	if len(markers) == 0 {
		return 0, nil
	}
	return markers[0].Timestamp, nil
}

func (d *MetadataStoreSqlite) SetCommitTimestamp(
	txn *gorm.DB,
	timestamp int64,
) error {
	marker := commitMarker{ID: 1, Timestamp: timestamp}
	return d.resolveDB(txn).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&marker).
		Error
}
