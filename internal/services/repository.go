// repository.go
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

	"github.com/localnerve/chapel-cms/internal/database"
	"github.com/localnerve/chapel-cms/internal/models"
	"github.com/localnerve/chapel-cms/internal/resource"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/hints"
)

// Repository is the tabular store boundary for one model.
// Every error it returns is a *database.Error.
type Repository[T any] struct {
	db     *gorm.DB
	schema resource.Schema
}

// NewRepository binds a model to its schema
func NewRepository[T any](db *gorm.DB, schema resource.Schema) *Repository[T] {
	return &Repository[T]{db: db, schema: schema}
}

func (r *Repository[T]) fail(op string, err error) error {
	return database.Classify(op, r.schema.Name, err)
}

// List returns every row ordered by the schema order keys, ties broken by insertion order
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	q := r.db.WithContext(ctx).Clauses(hints.Comment("select", "chapel:list:"+r.schema.Name))
	for _, key := range r.schema.Order {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: key.Column}, Desc: key.Desc})
	}
	q = q.Order("created_at").Order("seq")

	rows := []T{}
	if err := q.Find(&rows).Error; err != nil {
		return nil, r.fail("list", err)
	}
	return rows, nil
}

// Get returns the row keyed by id
func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	var row T
	err := r.db.WithContext(ctx).
		Clauses(hints.Comment("select", "chapel:get:"+r.schema.Name)).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, r.fail("get", err)
	}
	return &row, nil
}

// Insert creates one row
func (r *Repository[T]) Insert(ctx context.Context, row *T) error {
	return r.fail("insert", r.db.WithContext(ctx).Create(row).Error)
}

// InsertMany creates all rows in one transaction, or none of them
func (r *Repository[T]) InsertMany(ctx context.Context, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	return r.fail("insert", err)
}

// Update replaces every mutable column of the row keyed by id
func (r *Repository[T]) Update(ctx context.Context, id string, row *T) error {
	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Select("*").
		Omit(models.ImmutableColumns...).
		Updates(row)
	if res.Error != nil {
		return r.fail("update", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.fail("update", gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete removes the row keyed by id permanently
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return r.fail("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.fail("delete", gorm.ErrRecordNotFound)
	}
	return nil
}
