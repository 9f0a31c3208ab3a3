package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"employee-directory/internal/contacts"
	"employee-directory/internal/directory"
	"employee-directory/internal/domain"
	"employee-directory/internal/providers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeProvider struct {
	name string

	mu    sync.Mutex
	calls int
	list  []domain.Employee
	err   error
	// block, when set, holds ListEmployees until it is closed or ctx ends.
	block   chan struct{}
	started chan struct{}
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	f.mu.Lock()
	f.calls++
	block, started := f.block, f.started
	list, err := f.list, f.err
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, &providers.FetchError{Kind: providers.KindTransport, Provider: f.name, Err: ctx.Err()}
		}
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (f *fakeProvider) set(list []domain.Employee, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list, f.err = list, err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func emp(first, last string, pos domain.Position) domain.Employee {
	return domain.Employee{FirstName: first, LastName: last, Position: pos, Contact: domain.ContactDetails{Email: first + "@example.com"}}
}

func offices() (*fakeProvider, *fakeProvider) {
	tallinn := &fakeProvider{name: "tallinn", list: []domain.Employee{emp("Anna", "Berg", domain.PositionIOS)}}
	tartu := &fakeProvider{name: "tartu", list: []domain.Employee{emp("Anna", "Berg", domain.PositionIOS), emp("Carl", "Dahl", domain.PositionWeb)}}
	return tallinn, tartu
}

func TestRefreshPublishesSnapshot(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		tallinn, tartu := offices()
		r := New([]providers.EmployeeProvider{tallinn, tartu}, WithParallel(parallel), WithLogger(zaptest.NewLogger(t)))

		_, err := r.Snapshot()
		require.ErrorIs(t, err, ErrNoSnapshot)

		res, err := r.Refresh(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(1), res.Cycle)
		assert.Equal(t, map[string]int{"tallinn": 1, "tartu": 2}, res.Fetched)
		require.Len(t, res.Employees, 2)
		assert.Equal(t, "Anna", res.Employees[0].FirstName)
		assert.Equal(t, "Carl", res.Employees[1].FirstName)

		s, err := r.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, res.Employees, s.Employees)
		assert.False(t, r.Refreshing())
	}
}

func TestRefreshSequentialStopsAtFirstFailure(t *testing.T) {
	tallinn, tartu := offices()
	tallinn.set(nil, &providers.FetchError{Kind: providers.KindHTTPStatus, Provider: "tallinn", StatusCode: 500})

	r := New([]providers.EmployeeProvider{tallinn, tartu})
	res, err := r.Refresh(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, providers.ErrHTTPStatus)
	assert.Empty(t, res.Employees)
	assert.Zero(t, tartu.callCount(), "second office is only fetched after the first succeeds")
}

func TestRefreshFailureReturnsPartialAndKeepsSnapshot(t *testing.T) {
	tallinn, tartu := offices()
	r := New([]providers.EmployeeProvider{tallinn, tartu})

	_, err := r.Refresh(context.Background())
	require.NoError(t, err)
	before, err := r.Snapshot()
	require.NoError(t, err)

	tallinn.set([]domain.Employee{emp("Uus", "Inimene", domain.PositionPM)}, nil)
	tartu.set(nil, &providers.FetchError{Kind: providers.KindDecode, Provider: "tartu", Err: errors.New("bad json")})

	res, err := r.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, providers.ErrDecode)
	assert.NotErrorIs(t, err, ErrSuperseded)

	require.Len(t, res.Employees, 1, "partial result carries the first office")
	assert.Equal(t, "Uus", res.Employees[0].FirstName)

	after, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed cycle must not overwrite the snapshot")
}

func TestRefreshParallelPartial(t *testing.T) {
	tallinn, tartu := offices()
	tartu.set(nil, &providers.FetchError{Kind: providers.KindEmptyBody, Provider: "tartu"})

	r := New([]providers.EmployeeProvider{tallinn, tartu}, WithParallel(true))
	res, err := r.Refresh(context.Background())

	assert.ErrorIs(t, err, providers.ErrEmptyBody)
	// tallinn may or may not finish before errgroup cancels; either way nothing is published
	assert.LessOrEqual(t, len(res.Employees), 1)
	_, err = r.Snapshot()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestRefreshAppliesContacts(t *testing.T) {
	tallinn, tartu := offices()
	book := contacts.NewStore([]contacts.Entry{{FirstName: "carl", LastName: "dahl"}})

	r := New([]providers.EmployeeProvider{tallinn, tartu}, WithMatcher(book))
	res, err := r.Refresh(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Employees[0].HasMatchingContact)
	assert.True(t, res.Employees[1].HasMatchingContact)
}

type failingMatcher struct{}

func (failingMatcher) MatchKeys(context.Context, []domain.Employee) (map[string]struct{}, error) {
	return nil, errors.New("address book locked")
}

func TestRefreshContactFailureIsNotFatal(t *testing.T) {
	tallinn, tartu := offices()
	r := New([]providers.EmployeeProvider{tallinn, tartu}, WithMatcher(failingMatcher{}))

	res, err := r.Refresh(context.Background())
	require.NoError(t, err)
	for _, e := range res.Employees {
		assert.False(t, e.HasMatchingContact)
	}
}

func TestRefreshCancelAndRestart(t *testing.T) {
	tallinn, tartu := offices()
	tartu.block = make(chan struct{})
	tartu.started = make(chan struct{}, 1)

	r := New([]providers.EmployeeProvider{tallinn, tartu})

	type outcome struct {
		res Result
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := r.Refresh(context.Background())
		first <- outcome{res, err}
	}()

	select {
	case <-tartu.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first cycle never reached the second office")
	}
	assert.True(t, r.Refreshing())

	// second trigger: unblock the provider for the new cycle only after the first is cancelled
	tartu.mu.Lock()
	tartu.block = nil
	tartu.list = []domain.Employee{emp("Dora", "Ek", domain.PositionTester)}
	tartu.mu.Unlock()

	res, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Cycle)

	got := <-first
	require.Error(t, got.err)
	assert.ErrorIs(t, got.err, ErrSuperseded)
	assert.Equal(t, uint64(1), got.res.Cycle)

	s, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.Cycle)
	assert.Equal(t, []string{"anna berg", "dora ek"}, keys(s.Employees))
	assert.False(t, r.Refreshing())
}

func TestRefreshParentCancelIsPlainFailure(t *testing.T) {
	tallinn, tartu := offices()
	r := New([]providers.EmployeeProvider{tallinn, tartu})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tallinn.block = make(chan struct{})

	_, err := r.Refresh(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSuperseded)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestViewAndEmployee(t *testing.T) {
	tallinn, tartu := offices()
	r := New([]providers.EmployeeProvider{tallinn, tartu})

	_, err := r.View(directory.Options{})
	assert.ErrorIs(t, err, ErrNoSnapshot)
	_, _, err = r.Employee("anna berg")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, err = r.Refresh(context.Background())
	require.NoError(t, err)

	v, err := r.View(directory.Options{Query: "web"})
	require.NoError(t, err)
	assert.Equal(t, directory.Exhaustive, v.Mode)
	assert.Len(t, v.Groups, 7)
	assert.Equal(t, 1, directory.Count(v.Groups))

	e, ok, err := r.Employee("Carl Dahl")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.PositionWeb, e.Position)

	_, ok, err = r.Employee("nobody here")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoop(t *testing.T) {
	tallinn, tartu := offices()
	r := New([]providers.EmployeeProvider{tallinn, tartu})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		r.Loop(ctx, 10*time.Millisecond)
		close(stopped)
	}()

	require.Eventually(t, func() bool {
		s, err := r.Snapshot()
		return err == nil && s.Cycle >= 2
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Loop did not stop after cancel")
	}

	// zero interval returns at once
	r.Loop(context.Background(), 0)
}

func keys(employees []domain.Employee) []string {
	out := make([]string, 0, len(employees))
	for _, e := range employees {
		out = append(out, e.Key())
	}
	return out
}
