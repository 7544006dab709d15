package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digitalrehman/secure-todo-flow/internal/domain"
)

// Compile-time interface assertions.
var (
	_ UserRepository = (*PostgresUserRepo)(nil)
	_ TodoRepository = (*PostgresTodoRepo)(nil)
)

const uniqueViolation = "23505"

// PostgresUserRepo implements UserRepository on a pgx pool.
type PostgresUserRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepo(db *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, name, email, password_hash, google_id, avatar_url, phone_number,
email_verified, phone_verified,
email_verification_secret, email_verification_expires,
phone_verification_code, phone_verification_expires,
created_at, updated_at`

const insertUserSQL = `INSERT INTO users (id, name, email, password_hash, google_id, avatar_url, phone_number,
email_verified, email_verification_secret, email_verification_expires)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + userColumns

func (r *PostgresUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	expires := user.EmailVerificationExpires
	if expires.IsZero() {
		expires = time.Unix(0, 0).UTC()
	}
	row := r.db.QueryRow(ctx, insertUserSQL,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.GoogleID,
		user.AvatarURL,
		user.PhoneNumber,
		user.EmailVerified,
		user.EmailVerificationSecret,
		expires,
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.User{}, domain.ErrDuplicateAccount
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepo) GetByPhone(ctx context.Context, phoneNumber string) (domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = $1 AND phone_number <> ''`, phoneNumber)
}

func (r *PostgresUserRepo) GetByEmailSecret(ctx context.Context, secret string) (domain.User, error) {
	return r.getUser(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE email_verification_secret = $1
		   AND email_verification_secret <> ''
		   AND email_verification_expires > now()`,
		secret,
	)
}

func (r *PostgresUserRepo) SetEmailVerification(ctx context.Context, id, secret string, expires time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		 SET email_verification_secret = $2, email_verification_expires = $3, updated_at = now()
		 WHERE id = $1`,
		id, secret, expires,
	)
	if err != nil {
		return fmt.Errorf("set email verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepo) MarkEmailVerified(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		 SET email_verified = true,
		     email_verification_secret = '',
		     email_verification_expires = 'epoch',
		     updated_at = now()
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepo) SetPhoneVerification(ctx context.Context, id, phoneNumber, code string, expires time.Time) error {
	// Assigns the phone number only when the account has none yet.
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		 SET phone_number = CASE WHEN phone_number = '' AND $2 <> '' THEN $2 ELSE phone_number END,
		     phone_verification_code = $3,
		     phone_verification_expires = $4,
		     updated_at = now()
		 WHERE id = $1`,
		id, phoneNumber, code, expires,
	)
	if err != nil {
		return fmt.Errorf("set phone verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepo) MarkPhoneVerified(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE users
		 SET phone_verified = true,
		     phone_verification_code = '',
		     phone_verification_expires = 'epoch',
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("mark phone verified: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepo) LinkGoogleAccount(ctx context.Context, id, googleID, avatarURL string) (domain.User, error) {
	// Merge policy: linking a federated identity force-verifies the email,
	// even on a pre-existing credential account.
	row := r.db.QueryRow(ctx,
		`UPDATE users
		 SET google_id = $2,
		     avatar_url = CASE WHEN $3 <> '' THEN $3 ELSE avatar_url END,
		     email_verified = true,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, googleID, avatarURL,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("link google account: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepo) getUser(ctx context.Context, query string, arg any) (domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.GoogleID,
		&u.AvatarURL,
		&u.PhoneNumber,
		&u.EmailVerified,
		&u.PhoneVerified,
		&u.EmailVerificationSecret,
		&u.EmailVerificationExpires,
		&u.PhoneVerificationCode,
		&u.PhoneVerificationExpires,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}
