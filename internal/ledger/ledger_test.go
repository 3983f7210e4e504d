package ledger_test

import (
	"context"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/lexconv/conformance"
	"github.com/wippyai/lexconv/internal/ledger"
)

func report(pattern string, checksum uint32) conformance.Report {
	return conformance.Report{
		Codec:         "UTF8",
		Width:         32,
		Pattern:       pattern,
		ReferenceFile: "languages-32-le.dat",
		AtomCount:     713,
		Calls:         3,
		Checksum:      checksum,
	}
}

func TestOpen(t *testing.T) {
	run(t, func(t *testing.T, file string) {
		l, err := ledger.Open(func(c *ledger.Config) { c.File(file) })
		require.NoError(t, err)
		deferClose(t, l)
	})
}

func TestRecordAndLast(t *testing.T) {
	run(t, func(t *testing.T, file string) {
		ctx := context.Background()
		l, err := ledger.Open(func(c *ledger.Config) { c.File(file) })
		require.NoError(t, err)
		deferClose(t, l)

		before := time.Now().Add(-time.Second)
		require.NoError(t, l.Record(ctx, report("one-beat", 73), report("stepwise-drain", 73)))
		require.NoError(t, l.Record(ctx, report("one-beat", 74)))

		e, ok, err := l.Last(ctx, "UTF8/32/one-beat")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, report("one-beat", 74), e.Report)
		require.True(t, e.RecordedAt.After(before))

		_, ok, err = l.Last(ctx, "UTF8/32/random-1")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestRegressions(t *testing.T) {
	run(t, func(t *testing.T, file string) {
		ctx := context.Background()
		l, err := ledger.Open(func(c *ledger.Config) { c.File(file) })
		require.NoError(t, err)
		deferClose(t, l)

		require.NoError(t, l.Record(ctx, report("one-beat", 73), report("stepwise-drain", 73)))

		current := []conformance.Report{
			report("one-beat", 73),
			report("stepwise-drain", 99),
			report("random-1", 5),
		}
		regs, err := l.Regressions(ctx, current)
		require.NoError(t, err)
		require.Equal(t, []ledger.Regression{
			{Key: "UTF8/32/stepwise-drain", Previous: 73, Current: 99},
		}, regs)
	})
}

func TestPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	file := path.Join(t.TempDir(), "ledger.db")

	l, err := ledger.Open(func(c *ledger.Config) { c.File(file) })
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, report("one-beat", 73)))
	require.NoError(t, l.Close())

	l, err = ledger.Open(func(c *ledger.Config) { c.File(file) })
	require.NoError(t, err)
	deferClose(t, l)

	e, ok, err := l.Last(ctx, "UTF8/32/one-beat")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(73), e.Checksum)
}

func TestMemoryLedgersAreSeparate(t *testing.T) {
	ctx := context.Background()
	a, err := ledger.Open()
	require.NoError(t, err)
	deferClose(t, a)
	b, err := ledger.Open()
	require.NoError(t, err)
	deferClose(t, b)

	require.NoError(t, a.Record(ctx, report("one-beat", 1)))
	_, ok, err := b.Last(ctx, "UTF8/32/one-beat")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestClosed(t *testing.T) {
	run(t, func(t *testing.T, file string) {
		ctx := context.Background()
		l, err := ledger.Open(func(c *ledger.Config) { c.File(file) })
		require.NoError(t, err)
		require.NoError(t, l.Close())

		require.ErrorIs(t, l.Record(ctx, report("one-beat", 1)), ledger.ErrClosed)
		_, _, err = l.Last(ctx, "UTF8/32/one-beat")
		require.ErrorIs(t, err, ledger.ErrClosed)
	})
}

func TestConfigPanics(t *testing.T) {
	var c ledger.Config
	require.Panics(t, func() { c.File(" ") })
	require.Panics(t, func() { c.File("a?b") })
	require.Panics(t, func() { c.Conns(0) })
}

func run(t *testing.T, fn func(t *testing.T, file string)) {
	t.Helper()
	t.Run("In file", func(t *testing.T) {
		t.Helper()
		fn(t, path.Join(t.TempDir(), "file"))
	})
	t.Run("In memory", func(t *testing.T) {
		t.Helper()
		fn(t, ":memory:")
	})
}

func deferClose(t *testing.T, l *ledger.Ledger) {
	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Fatalf("close ledger: %v", err)
		}
	})
}
