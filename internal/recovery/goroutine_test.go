package recovery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestGuardPassesThrough(t *testing.T) {
	want := errors.New("boom")
	assert.NoError(t, Guard("ok", func() error { return nil })())
	assert.Equal(t, want, Guard("err", func() error { return want })())
}

func TestGuardRecoversPanic(t *testing.T) {
	err := Guard("reader", func() error {
		panic("index out of range")
	})()

	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "reader", panicErr.Task)
	assert.Equal(t, "index out of range", panicErr.Value)
	assert.NotEmpty(t, panicErr.Stack)
	assert.Equal(t, "panic in reader: index out of range", err.Error())
}

func TestGuardCancelsGroup(t *testing.T) {
	g, ctx := errgroup.WithContext(t.Context())
	g.Go(Guard("panics", func() error {
		panic(errors.New("bad state"))
	}))
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	var panicErr *PanicError
	assert.ErrorAs(t, g.Wait(), &panicErr)
}
