package document

import (
	"errors"
	"testing"
	"time"

	"github.com/invoicegen/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeneration() *Generation {
	g := NewGeneration(KindInvoice)
	clock := g.StartedAt
	g.now = func() time.Time {
		clock = clock.Add(10 * time.Millisecond)
		return clock
	}
	return g
}

func TestGeneration_HappyPath(t *testing.T) {
	g := newTestGeneration()
	assert.Equal(t, StatusReceived, g.Status)

	require.NoError(t, g.MarkValidated())
	require.NoError(t, g.StartRendering())
	require.NoError(t, g.Complete())

	assert.Equal(t, StatusCompleted, g.Status)
	assert.True(t, g.IsTerminal())
	require.NotNil(t, g.EndedAt)
	assert.Equal(t, 30*time.Millisecond, g.Duration())
	require.Len(t, g.History, 3)
	assert.Equal(t, StatusReceived, g.History[0].From)
	assert.Equal(t, StatusCompleted, g.History[2].To)
}

func TestGeneration_Rejected(t *testing.T) {
	g := newTestGeneration()
	require.NoError(t, g.Reject("no valid items"))

	assert.Equal(t, StatusRejected, g.Status)
	assert.Equal(t, "no valid items", g.Failure)

	err := g.StartRendering()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, shared.CodeInvalidState, domainErr.Code)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestGeneration_Failed(t *testing.T) {
	g := newTestGeneration()
	require.NoError(t, g.MarkValidated())
	require.NoError(t, g.StartRendering())
	require.NoError(t, g.Fail("render timeout"))

	assert.Equal(t, StatusFailed, g.Status)
	assert.Equal(t, "render timeout", g.Failure)
	assert.Error(t, g.Fail("again"))
	assert.Error(t, g.Complete())
}

func TestGeneration_CannotSkipValidation(t *testing.T) {
	g := newTestGeneration()
	assert.Error(t, g.StartRendering())
	assert.Error(t, g.Complete())
	assert.Error(t, g.Fail("early"))
	assert.Equal(t, StatusReceived, g.Status)
	assert.Empty(t, g.History)
}

func TestGeneration_Warnings(t *testing.T) {
	g := newTestGeneration()
	g.AddWarning(nil)
	g.AddWarning(NewAttachmentError(AttachmentSignature, AttachmentNotImage, "not an image", nil))

	require.Len(t, g.Warnings, 1)
	assert.Equal(t, "signature: not an image", g.Warnings[0].Error())
}
