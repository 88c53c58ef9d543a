package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================
// GENERIC QUERY HELPERS
// ============================================
//
// The entity files (users, segments, checkposts, passages, violations,
// alerts) share the same handful of CRUD shapes. These generics hold the
// shared mechanics: context propagation, preloads, mapping
// gorm.ErrRecordNotFound and unique-constraint failures onto the domain
// errors the API layer switches on. They take a raw *gorm.DB so matcher
// code running inside a transaction can reuse them.

// findBy loads the single record of type T where field = value.
//
//	user, err := findBy[models.User](ctx, db, "username", "thapa_br", models.ErrUserNotFound)
func findBy[T any](ctx context.Context, db *gorm.DB, field string, value any, notFound error, preloads ...string) (*T, error) {
	var record T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Where(field+" = ?", value).First(&record).Error; err != nil {
		return nil, convertNotFoundError(err, notFound)
	}
	return &record, nil
}

// findAll loads every record of type T. No records is a success with an
// empty slice, not an error.
func findAll[T any](ctx context.Context, db *gorm.DB, preloads ...string) ([]*T, error) {
	var records []*T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// insertWithID creates entity, generating a UUID through the id pointer
// when the caller did not supply one. The id field must belong to the
// entity so GORM persists the generated value.
//
//	return insertWithID(ctx, s.db, user, &user.ID, models.ErrDuplicateUser)
func insertWithID[T any](ctx context.Context, db *gorm.DB, entity *T, id *string, dup error) (string, error) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueConstraintError(err) {
			return "", dup
		}
		return "", err
	}
	return *id, nil
}

// deleteBy removes the records of type T where field = value, returning
// notFound when nothing matched.
func deleteBy[T any](ctx context.Context, db *gorm.DB, field string, value any, notFound error) error {
	var model T
	result := db.WithContext(ctx).Where(field+" = ?", value).Delete(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound
	}
	return nil
}

// updateColumn sets a single column on the record of type T where
// keyField = keyValue. Password and last-login writes use this so a
// stale username surfaces as notFound instead of a silent no-op.
func updateColumn[T any](ctx context.Context, db *gorm.DB, keyField string, keyValue any, column string, value any, notFound error) error {
	var model T
	result := db.WithContext(ctx).
		Model(&model).
		Where(keyField+" = ?", keyValue).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound
	}
	return nil
}
