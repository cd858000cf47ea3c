package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// scriptedDriver answers every statement with no rows and zero affected
// rows, except statements containing one of the fail keys.
type scriptedDriver struct {
	fail map[string]error
}

func (d *scriptedDriver) failure(query string) error {
	for key, err := range d.fail {
		if strings.Contains(query, key) {
			return err
		}
	}
	return nil
}

func (d *scriptedDriver) Open(string) (driver.Conn, error) { return &scriptedConn{d: d}, nil }

func (d *scriptedDriver) Connect(context.Context) (driver.Conn, error) { return &scriptedConn{d: d}, nil }

func (d *scriptedDriver) Driver() driver.Driver { return d }

type scriptedConn struct {
	d *scriptedDriver
}

func (c *scriptedConn) Prepare(query string) (driver.Stmt, error) {
	return &scriptedStmt{d: c.d, query: query}, nil
}

func (c *scriptedConn) Close() error              { return nil }
func (c *scriptedConn) Begin() (driver.Tx, error) { return c, nil }
func (c *scriptedConn) Commit() error             { return nil }
func (c *scriptedConn) Rollback() error           { return nil }

func (c *scriptedConn) CheckNamedValue(*driver.NamedValue) error { return nil }

type scriptedStmt struct {
	d     *scriptedDriver
	query string
}

func (s *scriptedStmt) Close() error  { return nil }
func (s *scriptedStmt) NumInput() int { return -1 }

func (s *scriptedStmt) Exec([]driver.Value) (driver.Result, error) {
	if err := s.d.failure(s.query); err != nil {
		return nil, err
	}
	return driver.RowsAffected(0), nil
}

func (s *scriptedStmt) Query([]driver.Value) (driver.Rows, error) {
	if err := s.d.failure(s.query); err != nil {
		return nil, err
	}
	return noRows{}, nil
}

type noRows struct{}

func (noRows) Columns() []string         { return nil }
func (noRows) Close() error              { return nil }
func (noRows) Next([]driver.Value) error { return io.EOF }

func newScriptedGorm(t *testing.T, fail map[string]error) *Gorm {
	t.Helper()
	sqlDB := sql.OpenDB(&scriptedDriver{fail: fail})
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return NewGorm(db)
}

func TestEnsureUserReportsFullNameFailure(t *testing.T) {
	boom := errors.New("connection reset")
	g := newScriptedGorm(t, map[string]error{`SET "full_name"`: boom})

	_, _, err := g.EnsureUser(context.Background(), 1, "anna", "Анна", 100, time.Now())
	if !errors.Is(err, boom) {
		t.Fatalf("expected full name failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "failed to update full name") {
		t.Fatalf("expected wrapped message, got %q", err.Error())
	}
}

func TestPurchaseReportsCountFailure(t *testing.T) {
	boom := errors.New("connection reset")
	g := newScriptedGorm(t, map[string]error{"count(*)": boom})

	err := g.Purchase(context.Background(), &models.Purchase{UserID: 1, Price: 10})
	if !errors.Is(err, boom) {
		t.Fatalf("expected count failure, got %v", err)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected the failure not to be read as a missing user, got %v", err)
	}
}
