package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/ability-api/internal/apperror"
	"github.com/sakif/ability-api/internal/model"
	"github.com/sakif/ability-api/internal/repository"
)

// compile-time checks that *DB implements the account repositories
var (
	_ repository.RegistrationRepository = (*DB)(nil)
	_ repository.ProfileRepository      = (*DB)(nil)
)

// InsertRegistration stores a new account.
//
// ON CONFLICT DO NOTHING turns a duplicate uid into "zero rows affected"
// instead of a driver-specific constraint error, so the conflict is detected
// the same way on every SQLite build and the existing row is never touched.
func (db *DB) InsertRegistration(ctx context.Context, reg *model.Registration) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO registrations (firebase_uid, username, email, password)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(firebase_uid) DO NOTHING`,
		reg.FirebaseUID,
		reg.Username,
		reg.Email,
		reg.Password,
	)
	if err != nil {
		return apperror.Store("inserting registration", fmt.Errorf("sqlite: inserting registration %s: %w", reg.FirebaseUID, err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.Store("inserting registration", fmt.Errorf("sqlite: checking rows affected: %w", err))
	}
	if rowsAffected == 0 {
		return apperror.Conflict("registration", reg.FirebaseUID)
	}

	return nil
}

// UpsertProfile inserts the profile, or overwrites all five mutable fields of
// the row that already has this uid.
//
// ONE STATEMENT, NO RACE:
// A SELECT followed by INSERT-or-UPDATE lets two concurrent saves both see
// "no row" and both INSERT, failing the second on the primary key.
// INSERT ... ON CONFLICT DO UPDATE is atomic in SQLite, so the last writer wins
// and there is always exactly one row.
func (db *DB) UpsertProfile(ctx context.Context, p *model.UserProfile) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_profiles
			(firebase_uid, child_name, child_age, parent_name, parent_phone_number, address)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(firebase_uid) DO UPDATE SET
			child_name          = excluded.child_name,
			child_age           = excluded.child_age,
			parent_name         = excluded.parent_name,
			parent_phone_number = excluded.parent_phone_number,
			address             = excluded.address`,
		p.FirebaseUID,
		p.ChildName,
		p.ChildAge,
		p.ParentName,
		p.ParentPhoneNumber,
		p.Address,
	)
	if err != nil {
		return apperror.Store("saving user details", fmt.Errorf("sqlite: upserting profile %s: %w", p.FirebaseUID, err))
	}
	return nil
}

// FindProfileByUID returns the profile for uid, or apperror.ErrNotFound.
func (db *DB) FindProfileByUID(ctx context.Context, uid string) (*model.UserProfile, error) {
	var p model.UserProfile

	err := db.conn.QueryRowContext(ctx,
		`SELECT firebase_uid, child_name, child_age, parent_name, parent_phone_number, address
		 FROM user_profiles WHERE firebase_uid = ?`,
		uid,
	).Scan(
		&p.FirebaseUID,
		&p.ChildName,
		&p.ChildAge,
		&p.ParentName,
		&p.ParentPhoneNumber,
		&p.Address,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user profile", uid)
		}
		return nil, apperror.Store("reading user details", fmt.Errorf("sqlite: getting profile %s: %w", uid, err))
	}

	return &p, nil
}
