package ticket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	code string
	err  error
}

func (f *fakeStore) TicketCode(ctx context.Context, reservationID uint64) (string, error) {
	return f.code, f.err
}

func TestIssuer_Issue_CodeShape(t *testing.T) {
	i := NewIssuer("test-secret", &fakeStore{})

	code, png, err := i.Issue(42)

	assert.NoError(t, err)
	assert.Len(t, code, CodeLength)
	// upper-case hex only
	assert.Regexp(t, "^[0-9A-F]+$", code)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestIssuer_Issue_NotIdempotent(t *testing.T) {
	i := NewIssuer("test-secret", &fakeStore{})
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	i.now = func() time.Time {
		ts = ts.Add(time.Nanosecond)
		return ts
	}

	first, _, err1 := i.Issue(42)
	second, _, err2 := i.Issue(42)

	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.NotEqual(t, first, second)
}

func TestIssuer_Issue_SecretChangesCode(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := NewIssuer("secret-a", &fakeStore{})
	b := NewIssuer("secret-b", &fakeStore{})
	a.now = func() time.Time { return ts }
	b.now = func() time.Time { return ts }

	codeA, _, _ := a.Issue(42)
	codeB, _, _ := b.Issue(42)

	assert.NotEqual(t, codeA, codeB)
}

func TestIssuer_Verify(t *testing.T) {
	store := &fakeStore{code: "A1B2C3D4E5F6"}
	i := NewIssuer("test-secret", store)

	assert.True(t, i.Verify(context.Background(), 42, "A1B2C3D4E5F6"))
	assert.False(t, i.Verify(context.Background(), 42, "FFFFFFFFFFFF"))
	assert.False(t, i.Verify(context.Background(), 42, ""))
}

func TestIssuer_Verify_FailsClosed(t *testing.T) {
	i := NewIssuer("test-secret", &fakeStore{err: errors.New("db down")})
	assert.False(t, i.Verify(context.Background(), 42, "A1B2C3D4E5F6"))

	// missing stored code also reads as invalid
	i = NewIssuer("test-secret", &fakeStore{code: ""})
	assert.False(t, i.Verify(context.Background(), 42, "A1B2C3D4E5F6"))
}
