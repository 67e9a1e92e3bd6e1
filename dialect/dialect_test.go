package dialect_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/arbor/dialect"
)

// recordingDriver captures the operations issued through it.
type recordingDriver struct {
	queries []string
	execs   []string
}

func (d *recordingDriver) Exec(_ context.Context, query string, _, _ any) error {
	d.execs = append(d.execs, query)
	return nil
}

func (d *recordingDriver) Query(_ context.Context, query string, _, _ any) error {
	d.queries = append(d.queries, query)
	return nil
}

func (d *recordingDriver) Tx(context.Context) (dialect.Tx, error) {
	return dialect.NopTx(d), nil
}

func (d *recordingDriver) Close() error    { return nil }
func (d *recordingDriver) Dialect() string { return dialect.SQLite }

func debugLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestDebugDriverLogsOperations(t *testing.T) {
	t.Parallel()

	rec := &recordingDriver{}
	logger, buf := debugLogger()
	drv := dialect.Debug(rec, logger)

	require.NoError(t, drv.Exec(context.Background(), "INSERT INTO nodes DEFAULT VALUES", []any{}, nil))
	require.NoError(t, drv.Query(context.Background(), "SELECT 1", []any{}, nil))

	assert.Equal(t, []string{"INSERT INTO nodes DEFAULT VALUES"}, rec.execs)
	assert.Equal(t, []string{"SELECT 1"}, rec.queries)
	out := buf.String()
	assert.Contains(t, out, "driver.Exec")
	assert.Contains(t, out, "driver.Query")
	assert.Contains(t, out, "SELECT 1")
}

func TestDebugTx(t *testing.T) {
	t.Parallel()

	rec := &recordingDriver{}
	logger, buf := debugLogger()
	drv := dialect.Debug(rec, logger)

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "UPDATE nodes SET name = ?", []any{"x"}, nil))
	require.NoError(t, tx.Query(context.Background(), "SELECT 1", []any{}, nil))
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Rollback())

	out := buf.String()
	assert.Contains(t, out, "driver.Tx started")
	assert.Contains(t, out, "tx.Exec")
	assert.Contains(t, out, "tx.Query")
	assert.Contains(t, out, "tx.Commit")
	assert.Contains(t, out, "tx.Rollback")
}

func TestNopTx(t *testing.T) {
	t.Parallel()

	tx := dialect.NopTx(&recordingDriver{})
	assert.NoError(t, tx.Commit())
	assert.NoError(t, tx.Rollback())
}
