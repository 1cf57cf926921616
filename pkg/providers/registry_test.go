package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{ key string }

func (s stubProvider) Spec() Spec            { return Spec{Key: s.key, Name: s.key, Kind: KindAPI} }
func (s stubProvider) Mapping() bill.Mapping { return bill.FlatMapping }
func (s stubProvider) Submit(context.Context, string) (Payload, error) {
	return Payload(`{}`), nil
}

func TestRegistryKeepsOrder(t *testing.T) {
	r, err := NewRegistry(stubProvider{"b"}, stubProvider{"a"}, stubProvider{"c"})
	require.NoError(t, err)

	var keys []string
	for _, s := range r.Specs() {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{"b", "a", "c"}, keys)
	assert.Equal(t, 3, r.Len())

	p, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", p.Spec().Key)

	_, ok = r.Get("zzz")
	assert.False(t, ok)
}

type timedProvider struct {
	stubProvider
	timeout time.Duration
}

func (p timedProvider) Spec() Spec {
	s := p.stubProvider.Spec()
	s.Timeout = p.timeout
	return s
}

func TestRegistryBudget(t *testing.T) {
	r, err := NewRegistry(
		timedProvider{stubProvider{"a"}, 15 * time.Second},
		timedProvider{stubProvider{"b"}, 0},
	)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second+DefaultTimeout, r.Budget())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(stubProvider{"a"}, stubProvider{"a"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = NewRegistry(stubProvider{""})
	assert.Error(t, err)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestFromContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	assert.Equal(t, KindTimeout, FromContext(ctx, errors.New("boom")).Kind)

	bg := context.Background()
	assert.Equal(t, KindTimeout, FromContext(bg, timeoutErr{}).Kind)
	assert.Equal(t, KindTransport, FromContext(bg, errors.New("connection refused")).Kind)
	assert.Equal(t, KindLogic, FromContext(bg, fmt.Errorf("wrapped: %w", Logic("paid"))).Kind)
	assert.Equal(t, KindNormalization, FromContext(bg, &bill.NormalizationError{Reason: "x"}).Kind)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotCovered, KindOf(NotCovered("unknown")))
	assert.Equal(t, KindProtocol, KindOf(Protocol("HTTP %d", 500)))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "HTTP 500", Protocol("HTTP %d", 500).Error())
	assert.Equal(t, "timeout", Timeout(context.DeadlineExceeded).Error())
	assert.ErrorIs(t, Timeout(context.DeadlineExceeded), context.DeadlineExceeded)
}
