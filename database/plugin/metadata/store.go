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

package metadata

import (
	"log/slog"

	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/database/plugin/metadata/sqlite"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(*gorm.DB, int64) error
	Transaction() *gorm.DB

	// Ledger state
	SaveChangeset(*models.Changeset, *gorm.DB) error
	LoadSnapshot(*gorm.DB) (*models.Snapshot, error)
	GetTransfers(lcommon.Key, *gorm.DB) ([]models.Transfer, error)
}

// New creates a new metadata store
func New(
	pluginName string,
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	switch pluginName {
	case "sqlite":
		return sqlite.New(dataDir, logger, promRegistry)
	default:
		return nil, ErrUnknownPlugin{name: pluginName}
	}
}

type ErrUnknownPlugin struct {
	name string
}

func (e ErrUnknownPlugin) Error() string {
	return "unknown metadata plugin: " + e.name
}
