package employees

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

type memoryRepo struct {
	employees        map[int64]*Employee
	entries          map[int64][]TimeEntry
	withdrawals      map[int64][]Withdrawal
	nextID           int64
	nextEntryID      int64
	nextWithdrawalID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		employees:   make(map[int64]*Employee),
		entries:     make(map[int64][]TimeEntry),
		withdrawals: make(map[int64][]Withdrawal),
	}
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Employee, int, error) {
	var result []Employee
	for _, e := range r.employees {
		if e.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		result = append(result, *e)
	}
	return result, len(result), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Employee, error) {
	e, ok := r.employees[id]
	if !ok || e.DeletedAt != nil {
		return Employee{}, httpx.ErrNotFound
	}
	return *e, nil
}

func (r *memoryRepo) Insert(ctx context.Context, e Employee) (Employee, error) {
	r.nextID++
	e.ID = r.nextID
	r.employees[e.ID] = &e
	return e, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, req UpdateEmployeeRequest) (Employee, error) {
	e, ok := r.employees[id]
	if !ok || e.DeletedAt != nil {
		return Employee{}, httpx.ErrNotFound
	}
	if req.Email != nil {
		e.Email = *req.Email
	}
	if req.Phone != nil {
		e.Phone = *req.Phone
	}
	if req.Status != nil {
		e.Status = *req.Status
	}
	if req.Role != nil {
		e.Role = *req.Role
	}
	if req.DailyPay != nil {
		e.DailyPay = *req.DailyPay
	}
	return *e, nil
}

func (r *memoryRepo) EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	for _, e := range r.employees {
		if e.DeletedAt == nil && e.Email == email && e.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) PhoneInUse(ctx context.Context, phone string, excludeID int64) (bool, error) {
	for _, e := range r.employees {
		if e.DeletedAt == nil && e.Phone == phone && e.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) SoftDelete(ctx context.Context, id int64) error {
	e, ok := r.employees[id]
	if !ok || e.DeletedAt != nil {
		return httpx.ErrNotFound
	}
	now := time.Now()
	e.DeletedAt = &now
	return nil
}

func (r *memoryRepo) Restore(ctx context.Context, id int64) (Employee, error) {
	e, ok := r.employees[id]
	if !ok || e.DeletedAt == nil {
		return Employee{}, httpx.ErrNotFound
	}
	e.DeletedAt = nil
	return *e, nil
}

func (r *memoryRepo) ClearBin(ctx context.Context) (int64, error) {
	var n int64
	for id, e := range r.employees {
		if e.DeletedAt != nil {
			delete(r.employees, id)
			delete(r.entries, id)
			delete(r.withdrawals, id)
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) ListTimeEntries(ctx context.Context, employeeID int64) ([]TimeEntry, error) {
	return append([]TimeEntry(nil), r.entries[employeeID]...), nil
}

func (r *memoryRepo) TimeEntryExistsForDate(ctx context.Context, employeeID int64, date time.Time) (bool, error) {
	for _, entry := range r.entries[employeeID] {
		if entry.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) InsertTimeEntry(ctx context.Context, entry TimeEntry) (TimeEntry, error) {
	r.nextEntryID++
	entry.ID = r.nextEntryID
	r.entries[entry.EmployeeID] = append(r.entries[entry.EmployeeID], entry)
	return entry, nil
}

func (r *memoryRepo) UpdateTimeEntry(ctx context.Context, employeeID, entryID int64, entry TimeEntry) (TimeEntry, error) {
	for i, existing := range r.entries[employeeID] {
		if existing.ID == entryID {
			entry.ID = entryID
			entry.EmployeeID = employeeID
			r.entries[employeeID][i] = entry
			return entry, nil
		}
	}
	return TimeEntry{}, httpx.ErrNotFound
}

func (r *memoryRepo) DeleteTimeEntry(ctx context.Context, employeeID, entryID int64) error {
	for i, existing := range r.entries[employeeID] {
		if existing.ID == entryID {
			r.entries[employeeID] = append(r.entries[employeeID][:i], r.entries[employeeID][i+1:]...)
			return nil
		}
	}
	return httpx.ErrNotFound
}

func (r *memoryRepo) ListWithdrawals(ctx context.Context, employeeID int64) ([]Withdrawal, error) {
	return append([]Withdrawal(nil), r.withdrawals[employeeID]...), nil
}

func (r *memoryRepo) InsertWithdrawal(ctx context.Context, w Withdrawal) (Withdrawal, error) {
	r.nextWithdrawalID++
	w.ID = r.nextWithdrawalID
	if w.Date.IsZero() {
		w.Date = time.Now()
	}
	r.withdrawals[w.EmployeeID] = append(r.withdrawals[w.EmployeeID], w)
	return w, nil
}

func (r *memoryRepo) UpdateWithdrawal(ctx context.Context, employeeID, withdrawalID int64, w Withdrawal) (Withdrawal, error) {
	for i, existing := range r.withdrawals[employeeID] {
		if existing.ID == withdrawalID {
			w.ID = withdrawalID
			w.EmployeeID = employeeID
			if w.Date.IsZero() {
				w.Date = existing.Date
			}
			r.withdrawals[employeeID][i] = w
			return w, nil
		}
	}
	return Withdrawal{}, httpx.ErrNotFound
}

func (r *memoryRepo) DeleteWithdrawal(ctx context.Context, employeeID, withdrawalID int64) error {
	for i, existing := range r.withdrawals[employeeID] {
		if existing.ID == withdrawalID {
			r.withdrawals[employeeID] = append(r.withdrawals[employeeID][:i], r.withdrawals[employeeID][i+1:]...)
			return nil
		}
	}
	return httpx.ErrNotFound
}

func hire(t *testing.T, svc *Service, req CreateEmployeeRequest) Employee {
	t.Helper()
	e, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	return e
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := NewService(newMemoryRepo())

	e := hire(t, svc, CreateEmployeeRequest{FirstName: "Nadia", LastName: "Haddad"})
	require.Equal(t, "worker", e.Role)
	require.Equal(t, "active", e.Status)
}

func TestCreateRejectsDuplicateContact(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	hire(t, svc, CreateEmployeeRequest{FirstName: "Nadia", LastName: "Haddad", Email: "nadia@example.com", Phone: "70123456"})

	_, err := svc.Create(ctx, CreateEmployeeRequest{FirstName: "Rami", LastName: "Saab", Email: "nadia@example.com"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)

	_, err = svc.Create(ctx, CreateEmployeeRequest{FirstName: "Rami", LastName: "Saab", Phone: "70123456"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateAllowsOwnContactButNotOthers(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	first := hire(t, svc, CreateEmployeeRequest{FirstName: "Nadia", LastName: "Haddad", Email: "nadia@example.com"})
	second := hire(t, svc, CreateEmployeeRequest{FirstName: "Rami", LastName: "Saab", Email: "rami@example.com"})

	// Resubmitting an unchanged email is not a collision.
	own := first.Email
	_, err := svc.Update(ctx, first.ID, UpdateEmployeeRequest{Email: &own})
	require.NoError(t, err)

	taken := first.Email
	_, err = svc.Update(ctx, second.ID, UpdateEmployeeRequest{Email: &taken})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestRemoveSoftDeletesAndRestoreRevives(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	e := hire(t, svc, CreateEmployeeRequest{FirstName: "Nadia", LastName: "Haddad"})
	require.NoError(t, svc.Remove(ctx, e.ID))

	_, err := svc.Get(ctx, e.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	restored, err := svc.Restore(ctx, e.ID)
	require.NoError(t, err)
	require.Nil(t, restored.DeletedAt)
}

func TestAddTimeEntryValidatesClockFormat(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()
	e := hire(t, svc, CreateEmployeeRequest{FirstName: "Nadia", LastName: "Haddad"})
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.AddTimeEntry(ctx, e.ID, TimeEntryRequest{Date: day, ClockIn: "25:00"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.AddTimeEntry(ctx, e.ID, TimeEntryRequest{Date: day, ClockIn: "9:00", ClockOut: "17:70"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	entry, err := svc.AddTimeEntry(ctx, e.ID, TimeEntryRequest{Date: day, ClockIn: "9:00", ClockOut: "17:30"})
	require.NoError(t, err)
	require.Equal(t, "9:00", entry.ClockIn)
}

func TestAddTimeEntryOnePerDay(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()
	e := hire(t, svc, CreateEmployeeRequest{FirstName: "Nadia", LastName: "Haddad"})
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.AddTimeEntry(ctx, e.ID, TimeEntryRequest{Date: day, ClockIn: "9:00"})
	require.NoError(t, err)

	_, err = svc.AddTimeEntry(ctx, e.ID, TimeEntryRequest{Date: day, ClockIn: "10:00"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestTimeEntriesRejectUnknownEmployee(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.AddTimeEntry(ctx, 99, TimeEntryRequest{Date: time.Now(), ClockIn: "9:00"})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.ListTimeEntries(ctx, 99)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestWithdrawalLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	e := hire(t, svc, CreateEmployeeRequest{FirstName: "Nadia", LastName: "Haddad"})

	w, err := svc.AddWithdrawal(ctx, e.ID, WithdrawalRequest{Amount: 150, Notes: "advance"})
	require.NoError(t, err)
	require.False(t, w.Date.IsZero())

	updated, err := svc.UpdateWithdrawal(ctx, e.ID, w.ID, WithdrawalRequest{Amount: 200})
	require.NoError(t, err)
	require.InDelta(t, 200, updated.Amount, 0.001)

	require.NoError(t, svc.RemoveWithdrawal(ctx, e.ID, w.ID))
	rows, err := svc.ListWithdrawals(ctx, e.ID)
	require.NoError(t, err)
	require.Empty(t, rows)
}
