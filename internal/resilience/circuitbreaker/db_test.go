package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
)

func TestNewDBCircuitBreaker(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)

	if dcb == nil {
		t.Fatal("expected non-nil DBCircuitBreaker")
	}
	if dcb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state to be Closed, got %s", dcb.State())
	}
}

func TestDBCircuitBreaker_QueryContext_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(sliceArgConverter{}))
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "name", "on_hand_quantity"}).
		AddRow(42, "Steel Bracket", 12.0)
	mock.ExpectQuery("SELECT (.+) FROM products").WillReturnRows(rows)

	result, err := dcb.QueryContext(ctx, "SELECT id, name, on_hand_quantity FROM products WHERE id = ANY($1)", []int64{42})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = result.Close() }()

	if !result.Next() {
		t.Fatal("expected at least one row")
	}
	var id int64
	var name string
	var onHand float64
	if err := result.Scan(&id, &name, &onHand); err != nil {
		t.Fatalf("failed to scan row: %v", err)
	}
	if id != 42 || name != "Steel Bracket" {
		t.Errorf("got id=%d, name=%s", id, name)
	}

	if dcb.State() != gobreaker.StateClosed {
		t.Errorf("expected state to remain Closed after success, got %s", dcb.State())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDBCircuitBreaker_QueryContext_Failure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM products").
		WillReturnError(errors.New("database connection failed"))

	_, err = dcb.QueryContext(ctx, "SELECT id, name FROM products")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	// One failure is below the trip threshold.
	if dcb.State() == gobreaker.StateOpen {
		t.Error("circuit should not be open after single failure")
	}
}

func TestDBCircuitBreaker_ExecContext_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE products").
		WithArgs(7.5, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := dcb.ExecContext(ctx, "UPDATE products SET on_hand_quantity = $1 WHERE id = $2", 7.5, int64(42))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		t.Fatalf("failed to get rows affected: %v", err)
	}
	if rowsAffected != 1 {
		t.Errorf("expected 1 row affected, got %d", rowsAffected)
	}

	if dcb.State() != gobreaker.StateClosed {
		t.Errorf("expected state to remain Closed after success, got %s", dcb.State())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDBCircuitBreaker_CircuitOpens_AfterConsecutiveFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	cfg := Config{
		Name:             "test-db",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
	dcb := NewDBCircuitBreakerWithConfig(db, cfg)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		mock.ExpectQuery("SELECT (.+)").WillReturnError(errors.New("database connection failed"))
	}
	for i := 0; i < 5; i++ {
		_, err := dcb.QueryContext(ctx, "SELECT id FROM products")
		if err == nil {
			t.Errorf("attempt %d: expected error, got nil", i+1)
		}
	}

	if !dcb.IsOpen() {
		t.Errorf("expected circuit to be open after 5 consecutive failures, state: %s", dcb.State())
	}

	// Open circuit rejects without touching the pool.
	_, err = dcb.QueryContext(ctx, "SELECT id FROM products")
	if err == nil {
		t.Fatal("expected error when circuit is open")
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDBCircuitBreaker_CircuitHalfOpen_AfterTimeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	cfg := Config{
		Name:             "test-db",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          50 * time.Millisecond,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
	dcb := NewDBCircuitBreakerWithConfig(db, cfg)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		mock.ExpectQuery("SELECT (.+)").WillReturnError(errors.New("database connection failed"))
	}
	for i := 0; i < 5; i++ {
		_, _ = dcb.QueryContext(ctx, "SELECT id FROM products")
	}
	if !dcb.IsOpen() {
		t.Fatal("expected circuit to be open")
	}

	time.Sleep(100 * time.Millisecond)

	rows := sqlmock.NewRows([]string{"id"}).AddRow(42)
	mock.ExpectQuery("SELECT (.+)").WillReturnRows(rows)

	// After the timeout the breaker probes again in half-open state.
	result, err := dcb.QueryContext(ctx, "SELECT id FROM products")
	if err != nil {
		t.Fatalf("expected query to succeed in half-open state, got %v", err)
	}
	_ = result.Close()
}

func TestDBCircuitBreaker_QueryRowContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("storefront_webhook_url", "https://shop.example.com/hooks")
	mock.ExpectQuery("SELECT (.+) FROM settings").
		WithArgs("storefront_webhook_url").
		WillReturnRows(rows)

	row := dcb.QueryRowContext(ctx, "SELECT key, value FROM settings WHERE key = $1", "storefront_webhook_url")

	var key, value string
	if err := row.Scan(&key, &value); err != nil {
		t.Fatalf("failed to scan row: %v", err)
	}
	if key != "storefront_webhook_url" || value != "https://shop.example.com/hooks" {
		t.Errorf("got key=%s, value=%s", key, value)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDBConfig(t *testing.T) {
	cfg := DBConfig()

	if cfg.Name != "database" {
		t.Errorf("expected name 'database', got '%s'", cfg.Name)
	}
	if cfg.MaxRequests != 3 {
		t.Errorf("expected MaxRequests 3, got %d", cfg.MaxRequests)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected Timeout 30s, got %v", cfg.Timeout)
	}
	if cfg.MinRequests != 5 {
		t.Errorf("expected MinRequests 5, got %d", cfg.MinRequests)
	}
	if cfg.FailureThreshold != 1.0 {
		t.Errorf("expected FailureThreshold 1.0, got %f", cfg.FailureThreshold)
	}
}
