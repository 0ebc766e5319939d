// import_service.go
//
// Content service and admin tooling of a church website
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of chapel-cms.
// chapel-cms is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// chapel-cms is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with chapel-cms.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/localnerve/chapel-cms/internal/database"
	"github.com/localnerve/chapel-cms/internal/models"
	"github.com/localnerve/chapel-cms/internal/resource"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SeedTable is one table of the import dataset with its progress messages
type SeedTable struct {
	Resource string         `yaml:"resource"`
	Heading  string         `yaml:"heading"`
	Exists   string         `yaml:"exists"`
	Imported string         `yaml:"imported"`
	Failed   string         `yaml:"failed"`
	Rows     []resource.Row `yaml:"rows"`
}

// Seed is the import dataset
type Seed struct {
	Tables []SeedTable `yaml:"tables"`
}

// LoadSeed parses the YAML import dataset
func LoadSeed(raw []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	return &seed, nil
}

// OperationResult is what an import or provisioning run reports
type OperationResult struct {
	Success bool
	Lines   []string
	Err     error
}

// ImportService seeds the content tables with the fixed dataset.
// Each table is inserted in one transaction; a table that collides on a
// natural key is reported as already imported and left untouched. A failing
// table fails the run but the remaining tables are still imported.
type ImportService struct {
	db      *gorm.DB
	catalog *Catalog
	seed    *Seed
	log     *zap.Logger
}

// NewImportService builds the service. Duplicate inserts are expected on
// re-runs, so its statements are not logged by GORM.
func NewImportService(db *gorm.DB, seed *Seed, metrics *Metrics, log *zap.Logger) *ImportService {
	quiet := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
	return &ImportService{
		db:      db,
		catalog: NewCatalog(quiet, nil, metrics),
		seed:    seed,
		log:     log,
	}
}

// Run imports every seed table and records the run
func (s *ImportService) Run(ctx context.Context, actor string) *OperationResult {
	result := &OperationResult{Success: true}

	for _, table := range s.seed.Tables {
		result.Lines = append(result.Lines, table.Heading)

		binding, ok := s.catalog.Lookup(table.Resource)
		if !ok {
			err := fmt.Errorf("unknown resource %q in seed", table.Resource)
			result.Lines = append(result.Lines, fmt.Sprintf("❌ Erreur %s: %s", table.Resource, err))
			result.fail(err)
			continue
		}

		_, err := binding.Create(ctx, table.Rows, nil)
		switch {
		case err == nil:
			result.Lines = append(result.Lines, strings.ReplaceAll(table.Imported, "{count}", strconv.Itoa(len(table.Rows))))
			s.log.Info("imported table", zap.String("resource", table.Resource), zap.Int("rows", len(table.Rows)))
		case database.IsKind(err, database.KindConstraint):
			result.Lines = append(result.Lines, table.Exists)
			s.log.Info("table already imported", zap.String("resource", table.Resource))
		default:
			result.Lines = append(result.Lines, fmt.Sprintf("%s: %s", table.Failed, message(err)))
			result.fail(err)
			s.log.Warn("table import failed", zap.String("resource", table.Resource), zap.Error(err))
		}
	}

	if result.Success {
		result.Lines = append(result.Lines, "✅ Import complété!")
	} else {
		result.Lines = append(result.Lines, fmt.Sprintf("❌ Erreur: %s", message(result.Err)))
		s.log.Error("import failed", zap.Error(result.Err))
	}

	recordRun(ctx, s.db, s.log, models.OperationImport, actor, result)
	return result
}

// fail marks the run failed, keeping the first error
func (r *OperationResult) fail(err error) {
	r.Success = false
	if r.Err == nil {
		r.Err = err
	}
}

// message is the text shown to the operator for an error
func message(err error) string {
	var se *database.Error
	if errors.As(err, &se) {
		return se.Message()
	}
	return err.Error()
}

func recordRun(ctx context.Context, db *gorm.DB, log *zap.Logger, kind, actor string, result *OperationResult) {
	run, err := models.NewOperationRun(kind, actor, result.Success, result.Lines)
	if err == nil {
		err = db.WithContext(ctx).Create(run).Error
	}
	if err != nil {
		log.Warn("failed to record operation run", zap.String("kind", kind), zap.Error(err))
	}
}

// ListRuns returns the most recent runs first
func ListRuns(ctx context.Context, db *gorm.DB, limit int) ([]models.OperationRun, error) {
	runs := []models.OperationRun{}
	err := db.WithContext(ctx).Order("created_at desc").Order("id desc").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, database.Classify("list", "operation-runs", err)
	}
	return runs, nil
}
