// Package sqlstore implements the store on a relational database. SQLite
// (pure Go driver) and PostgreSQL (pgx) share the same queries; only the
// placeholder style and the schema column types differ.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"budgetr/internal/core"
	"budgetr/internal/store"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ store.Store = (*Store)(nil)

// OpenSQLite opens (creating if needed) the database file and migrates it.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	s, err := open(ctx, SQLite, dsn)
	if err != nil {
		return nil, err
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	s.db.SetMaxOpenConns(1)
	return s, nil
}

// OpenPostgres connects through pgx and migrates the schema.
func OpenPostgres(ctx context.Context, url string) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("missing DATABASE_URL")
	}
	return open(ctx, Postgres, url)
}

func open(ctx context.Context, d Dialect, dsn string) (*Store, error) {
	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.InfoContext(ctx, "SQL store ready", "dialect", string(d))
	return &Store{db: db, dialect: d}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	return rebind(s.dialect, query)
}

func rebind(d Dialect, query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// insertNext builds an INSERT that assigns key the current maximum plus one,
// matching the id rule of the tabular stores. It returns the new key.
func insertNext(table, key string, cols ...string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ((SELECT COALESCE(MAX(%s), 0) + 1 FROM %s), %s) RETURNING %s",
		table, key, strings.Join(cols, ", "), key, table, marks, key)
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Seed inserts the category reference rows when the table is empty.
func (s *Store) Seed(ctx context.Context, categories []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&n); err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		if n > 0 {
			return nil
		}
		for _, name := range categories {
			if _, err := tx.ExecContext(ctx, s.rebind(insertNext("categories", "categoryid", "name")), name); err != nil {
				return fmt.Errorf("insert category %q: %w", name, err)
			}
		}
		slog.InfoContext(ctx, "Seeded categories", "count", len(categories))
		return nil
	})
}

const userColumns = "userid, name, email, password"

func scanUser(row interface{ Scan(...any) error }) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, s.rebind("SELECT 1 FROM users WHERE lower(email) = lower(?)"), u.Email).Scan(&exists)
		switch {
		case err == nil:
			return store.ErrEmailTaken
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check email: %w", err)
		}
		q := s.rebind(insertNext("users", "userid", "name", "email", "password"))
		if err := tx.QueryRowContext(ctx, q, u.Name, u.Email, u.PasswordHash).Scan(&u.ID); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, s.rebind("SELECT "+userColumns+" FROM users WHERE userid = ?"), id))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, s.rebind("SELECT "+userColumns+" FROM users WHERE lower(email) = lower(?)"), email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return core.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, err
}

// execOne runs a statement that must touch exactly one existing row.
func (s *Store) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, id int64, name, email string) error {
	return s.execOne(ctx, "UPDATE users SET name = ?, email = ? WHERE userid = ?", name, email, id)
}

func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return s.execOne(ctx, "UPDATE users SET password = ? WHERE userid = ?", passwordHash, id)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.execOne(ctx, "DELETE FROM users WHERE userid = ?", id)
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT categoryid, name FROM categories ORDER BY categoryid")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	q := s.rebind(insertNext("transactions", "transactionid", "userid", "date", "categoryname", "amount", "description"))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, q, t.UserID, t.Date, t.Category, t.Amount, t.Description).Scan(&t.ID)
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	slog.DebugContext(ctx, "Transaction saved", "id", t.ID, "user_id", t.UserID)
	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	q := s.rebind(`SELECT transactionid, userid, date, categoryname, amount, description
		FROM transactions WHERE userid = ? ORDER BY transactionid`)
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Date, &t.Category, &t.Amount, &t.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) ListMonthlyBudgets(ctx context.Context, userID int64) ([]core.MonthlyBudget, error) {
	q := s.rebind("SELECT budgetid, userid, totalbudget, budgetmonth FROM monthlybudgets WHERE userid = ? ORDER BY budgetid")
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list monthly budgets: %w", err)
	}
	defer rows.Close()
	var out []core.MonthlyBudget
	for rows.Next() {
		var b core.MonthlyBudget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Total, &b.Month); err != nil {
			return nil, fmt.Errorf("scan monthly budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// upsert updates the row matched by the key columns or inserts a new one,
// returning its id either way.
func (s *Store) upsert(ctx context.Context, update, insert string, updateArgs, insertArgs []any) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, s.rebind(update), updateArgs...).Scan(&id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update: %w", err)
		}
		if err := tx.QueryRowContext(ctx, s.rebind(insert), insertArgs...).Scan(&id); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *Store) UpsertMonthlyBudget(ctx context.Context, userID int64, month core.Date, total decimal.Decimal) (core.MonthlyBudget, error) {
	id, err := s.upsert(ctx,
		"UPDATE monthlybudgets SET totalbudget = ? WHERE userid = ? AND budgetmonth = ? RETURNING budgetid",
		insertNext("monthlybudgets", "budgetid", "userid", "totalbudget", "budgetmonth"),
		[]any{total, userID, month},
		[]any{userID, total, month},
	)
	if err != nil {
		return core.MonthlyBudget{}, fmt.Errorf("upsert monthly budget: %w", err)
	}
	return core.MonthlyBudget{ID: id, UserID: userID, Total: total, Month: month}, nil
}

func (s *Store) ListCategoricalBudgets(ctx context.Context, userID int64) ([]core.CategoricalBudget, error) {
	q := s.rebind("SELECT catbudgetid, userid, categoryname, categorybudget FROM categoricalbudgets WHERE userid = ? ORDER BY catbudgetid")
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list categorical budgets: %w", err)
	}
	defer rows.Close()
	var out []core.CategoricalBudget
	for rows.Next() {
		var b core.CategoricalBudget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount); err != nil {
			return nil, fmt.Errorf("scan categorical budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) UpsertCategoricalBudget(ctx context.Context, userID int64, category string, amount decimal.Decimal) (core.CategoricalBudget, error) {
	id, err := s.upsert(ctx,
		"UPDATE categoricalbudgets SET categorybudget = ? WHERE userid = ? AND categoryname = ? RETURNING catbudgetid",
		insertNext("categoricalbudgets", "catbudgetid", "userid", "categoryname", "categorybudget"),
		[]any{amount, userID, category},
		[]any{userID, category, amount},
	)
	if err != nil {
		return core.CategoricalBudget{}, fmt.Errorf("upsert categorical budget: %w", err)
	}
	return core.CategoricalBudget{ID: id, UserID: userID, Category: category, Amount: amount}, nil
}
