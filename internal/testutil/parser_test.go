package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubParser_ReturnsRegisteredTree(t *testing.T) {
	tree := Op(">", Col("n"), Int(0))
	p := NewStubParser().Add("CHECK (n > 0)", tree)

	got, err := p.ParseCheck(context.Background(), "CHECK (n > 0)")
	require.NoError(t, err)
	assert.Same(t, tree, got)
	assert.Equal(t, 1, p.Calls("CHECK (n > 0)"))
}

func TestStubParser_UnknownText(t *testing.T) {
	p := NewStubParser()

	_, err := p.ParseCheck(context.Background(), "CHECK (???)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
	assert.Equal(t, 1, p.Calls("CHECK (???)"))
}

func TestStubParser_RegisteredError(t *testing.T) {
	boom := errors.New("boom")
	p := NewStubParser().Fail("CHECK (x)", boom)

	_, err := p.ParseCheck(context.Background(), "CHECK (x)")
	assert.ErrorIs(t, err, boom)
}

func TestStubParser_CancelledContext(t *testing.T) {
	p := NewStubParser().Add("CHECK (n > 0)", Op(">", Col("n"), Int(0)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ParseCheck(ctx, "CHECK (n > 0)")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.Calls("CHECK (n > 0)"))
}
