package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/likescenter/internal/errors"
	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
	"github.com/vytor/likescenter/internal/repository"
)

var profileColumns = []string{"id", "name", "photo_url", "created_at", "status"}

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

// UpsertBatch inserts new profiles as incoming and refreshes the remote-owned
// fields of existing ones. The status column is never part of the update.
func (r *profileRepository) UpsertBatch(ctx context.Context, items []models.ProfileData) ([]models.Status, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("upserting batch of %d profiles", len(items))

	if len(items) == 0 {
		return nil, nil
	}

	var touched []models.Status
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO profiles (id, name, photo_url, created_at, status)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    photo_url = excluded.photo_url,
    created_at = excluded.created_at
RETURNING status
`)
		if err != nil {
			log.Error("failed to prepare upsert: %v", err)
			return err
		}
		defer stmt.Close()

		for _, item := range items {
			var status models.Status
			if err := stmt.QueryRowContext(ctx, item.ID, item.Name, item.PhotoURL, item.CreatedAt.UTC(), models.StatusIncoming).Scan(&status); err != nil {
				log.Error("failed to upsert profile %s: %v", item.ID, err)
				return err
			}
			touched = append(touched, status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	touched = repository.DistinctStatuses(touched)
	log.Debug("batch upserted: %d profiles, statuses=%v", len(items), touched)
	return touched, nil
}

func (r *profileRepository) UpdateStatus(ctx context.Context, id string, status models.Status) (models.Status, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("updating profile status: id=%s, status=%s", id, status)

	var prior models.Status
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT status FROM profiles WHERE id = ?`, id).Scan(&prior)
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE profiles SET status = ? WHERE id = ?`, status, id)
		return err
	})
	if errors.IsNotFound(err) {
		log.Debug("profile not found: id=%s", id)
		return 0, err
	}
	if err != nil {
		log.Error("failed to update profile status: %v", err)
		return 0, err
	}
	return prior, nil
}

func (r *profileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: id=%s", id)

	var p models.Profile
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, photo_url, created_at, status
FROM profiles
WHERE id = ?
`, id).Scan(&p.ID, &p.Name, &p.PhotoURL, &p.CreatedAt, &p.Status)
	if stderrors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found: id=%s", id)
		return nil, errors.ErrNotFound
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("listing profiles: status=%s, limit=%d, offset=%d", filter.Status, filter.Limit, filter.Offset)

	query := sqlBuilder.Select(profileColumns...).
		From("profiles").
		Where(squirrel.Eq{"status": filter.Status}).
		OrderBy("created_at DESC", "id ASC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
		if filter.Offset > 0 {
			query = query.Offset(uint64(filter.Offset))
		}
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list profiles: %v", err)
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.PhotoURL, &p.CreatedAt, &p.Status); err != nil {
			log.Error("failed to scan profile row: %v", err)
			return nil, err
		}
		profiles = append(profiles, p)
	}

	log.Debug("found %d profiles", len(profiles))
	return profiles, rows.Err()
}

func (r *profileRepository) Count(ctx context.Context, status models.Status) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")

	stmt, args, err := sqlBuilder.Select("COUNT(*)").
		From("profiles").
		Where(squirrel.Eq{"status": status}).
		ToSql()
	if err != nil {
		log.Error("failed to build count query: %v", err)
		return 0, err
	}

	var n int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		log.Error("failed to count profiles: %v", err)
		return 0, err
	}
	return n, nil
}
