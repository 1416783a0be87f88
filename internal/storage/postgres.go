package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// PostgresRepository stores data in PostgreSQL through a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	if err := RunPostgresMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	slog.InfoContext(ctx, "PostgreSQL repository ready", "max_conns", cfg.MaxConns)
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func pgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func pgNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func optionalDate(d core.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func dateFromPtr(t *time.Time) core.Date {
	if t == nil {
		return core.Date{}
	}
	return core.DateOf(*t)
}

// Users

func (r *PostgresRepository) scanUser(row pgx.Row) (core.User, error) {
	var u core.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Username, &u.CreatedAt); err != nil {
		return core.User{}, pgNotFound(err)
	}
	return u, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, username) VALUES ($1, $2, $3) RETURNING `+userColumns,
		u.Email, u.PasswordHash, u.Username)
	created, err := r.scanUser(row)
	if err != nil {
		if pgUniqueViolation(err) {
			return core.User{}, ErrConflict
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := r.scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, err
}

func (r *PostgresRepository) UserByID(ctx context.Context, id int64) (core.User, error) {
	u, err := r.scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, err
}

func (r *PostgresRepository) UpdateUsername(ctx context.Context, id int64, username string) (core.User, error) {
	u, err := r.scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET username = $1 WHERE id = $2 RETURNING `+userColumns, username, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return core.User{}, fmt.Errorf("update username: %w", err)
	}
	return u, err
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.execOne(ctx, "update password", `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, id int64) error {
	// Child rows go through ON DELETE CASCADE.
	return r.execOne(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) execOne(ctx context.Context, what, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Expenses

const pgExpenseColumns = `id, user_id, title, amount_cents, currency, category, date, payment_method,
	note, tags::text, merchant, is_recurring, frequency, is_split, splits::text, last_occurrence, created_at`

func scanPgExpense(row pgx.Row) (core.Expense, error) {
	var (
		e                       core.Expense
		category, payment, freq string
		date                    time.Time
		last                    *time.Time
		tags, splits            string
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Text, &e.Amount.Cents, &e.Currency, &category, &date, &payment,
		&e.Note, &tags, &e.Merchant, &e.IsRecurring, &freq, &e.IsSplit, &splits, &last, &e.CreatedAt)
	if err != nil {
		return core.Expense{}, pgNotFound(err)
	}
	e.Category = core.Category(category)
	e.PaymentMethod = core.PaymentMethod(payment)
	e.Frequency = core.Frequency(freq)
	e.Date = core.DateOf(date)
	e.LastOccurrence = dateFromPtr(last)
	if e.Tags, err = decodeTags([]byte(tags)); err != nil {
		return core.Expense{}, err
	}
	if e.Splits, err = decodeSplits([]byte(splits)); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func collectPgExpenses(rows pgx.Rows) ([]core.Expense, error) {
	defer rows.Close()
	var out []core.Expense
	for rows.Next() {
		e, err := scanPgExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return core.Expense{}, err
	}
	splits, err := encodeSplits(e.Splits)
	if err != nil {
		return core.Expense{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO expenses (user_id, title, amount_cents, currency, category, date, payment_method,
			note, tags, merchant, is_recurring, frequency, is_split, splits, last_occurrence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11, $12, $13, $14::jsonb, $15)
		RETURNING `+pgExpenseColumns,
		e.UserID, e.Text, e.Amount.Cents, e.Currency, string(e.Category), e.Date.Time, string(e.PaymentMethod),
		e.Note, tags, e.Merchant, e.IsRecurring, string(e.Frequency), e.IsSplit, splits, optionalDate(e.LastOccurrence))
	created, err := scanPgExpense(row)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	e, err := scanPgExpense(r.pool.QueryRow(ctx,
		`SELECT `+pgExpenseColumns+` FROM expenses WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, err
}

func (r *PostgresRepository) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+pgExpenseColumns+` FROM expenses WHERE user_id = $1 ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out, err := collectPgExpenses(rows)
	if err != nil {
		return nil, fmt.Errorf("scan expenses: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return core.Expense{}, err
	}
	splits, err := encodeSplits(e.Splits)
	if err != nil {
		return core.Expense{}, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE expenses SET title = $1, amount_cents = $2, currency = $3, category = $4, date = $5,
			payment_method = $6, note = $7, tags = $8::jsonb, merchant = $9, is_recurring = $10,
			frequency = $11, is_split = $12, splits = $13::jsonb
		WHERE id = $14 AND user_id = $15
		RETURNING `+pgExpenseColumns,
		e.Text, e.Amount.Cents, e.Currency, string(e.Category), e.Date.Time, string(e.PaymentMethod),
		e.Note, tags, e.Merchant, e.IsRecurring, string(e.Frequency), e.IsSplit, splits, e.ID, e.UserID)
	updated, err := scanPgExpense(row)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return updated, err
}

func (r *PostgresRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	return r.execOne(ctx, "delete expense", `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PostgresRepository) DeleteExpenses(ctx context.Context, userID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `DELETE FROM expenses WHERE id = ANY($1) AND user_id = $2 RETURNING id`, ids, userID)
	if err != nil {
		return nil, fmt.Errorf("bulk delete expenses: %w", err)
	}
	removed, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("bulk delete expenses: %w", err)
	}
	return removed, nil
}

func (r *PostgresRepository) ListRecurring(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+pgExpenseColumns+` FROM expenses WHERE is_recurring ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	out, err := collectPgExpenses(rows)
	if err != nil {
		return nil, fmt.Errorf("scan recurring expenses: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) MarkOccurred(ctx context.Context, id int64, on core.Date) error {
	return r.execOne(ctx, "mark occurred", `UPDATE expenses SET last_occurrence = $1 WHERE id = $2`, on.Time, id)
}

// Budgets

func scanPgBudget(row pgx.Row) (core.Budget, error) {
	var b core.Budget
	var category, month string
	if err := row.Scan(&b.ID, &b.UserID, &category, &b.Amount.Cents, &month); err != nil {
		return core.Budget{}, pgNotFound(err)
	}
	b.Category = core.Category(category)
	key, err := core.ParseMonthKey(month)
	if err != nil {
		return core.Budget{}, err
	}
	b.Month = key
	return b, nil
}

func (r *PostgresRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, bool, error) {
	// xmax = 0 only for freshly inserted rows.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (user_id, category, amount_cents, month) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, category, month) DO UPDATE SET amount_cents = EXCLUDED.amount_cents
		RETURNING id, (xmax = 0)`,
		b.UserID, string(b.Category), b.Amount.Cents, b.Month.String())
	var created bool
	if err := row.Scan(&b.ID, &created); err != nil {
		return core.Budget{}, false, fmt.Errorf("upsert budget: %w", err)
	}
	return b, created, nil
}

func (r *PostgresRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, category, amount_cents, month FROM budgets WHERE user_id = $1 ORDER BY month, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()
	var out []core.Budget
	for rows.Next() {
		b, err := scanPgBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) DeleteBudget(ctx context.Context, userID, id int64) error {
	return r.execOne(ctx, "delete budget", `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
}

// Goals

func scanPgGoal(row pgx.Row) (core.Goal, error) {
	var g core.Goal
	var deadline *time.Time
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Cents, &g.SavedAmount.Cents, &deadline, &g.CreatedAt); err != nil {
		return core.Goal{}, pgNotFound(err)
	}
	g.Deadline = dateFromPtr(deadline)
	return g, nil
}

func (r *PostgresRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	created, err := scanPgGoal(r.pool.QueryRow(ctx,
		`INSERT INTO goals (user_id, name, target_cents, saved_cents, deadline) VALUES ($1, $2, $3, $4, $5)
		RETURNING `+goalColumns,
		g.UserID, g.Name, g.TargetAmount.Cents, g.SavedAmount.Cents, optionalDate(g.Deadline)))
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetGoal(ctx context.Context, userID, id int64) (core.Goal, error) {
	g, err := scanPgGoal(r.pool.QueryRow(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, err
}

func (r *PostgresRepository) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()
	var out []core.Goal
	for rows.Next() {
		g, err := scanPgGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	updated, err := scanPgGoal(r.pool.QueryRow(ctx,
		`UPDATE goals SET name = $1, target_cents = $2, saved_cents = $3, deadline = $4
		WHERE id = $5 AND user_id = $6 RETURNING `+goalColumns,
		g.Name, g.TargetAmount.Cents, g.SavedAmount.Cents, optionalDate(g.Deadline), g.ID, g.UserID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return updated, err
}

func (r *PostgresRepository) DeleteGoal(ctx context.Context, userID, id int64) error {
	return r.execOne(ctx, "delete goal", `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
}
