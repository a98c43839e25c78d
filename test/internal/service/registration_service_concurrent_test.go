package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"event-rsvp-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Simulates real scenario: many guests confirming at once must never overbook
func TestConcurrentRegister_NoOverbooking(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc := newTestRegistrationService()

	concurrentGuests := 20
	maxCapacity := 5

	event := createTestEvent(t, "Popular Event", maxCapacity, model.SeatPolicySequential)

	tokens := make([]uuid.UUID, concurrentGuests)
	for i := 0; i < concurrentGuests; i++ {
		tokens[i] = createTestGuest(t, fmt.Sprintf("guest%d@test.com", i)).Token
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	confirmedSeats := []int{}
	waitlisted := 0

	for i := 0; i < concurrentGuests; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			result, err := svc.Register(ctx, tokens[index], confirmedRequest(event))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				t.Errorf("unexpected register error: %v", err)
				return
			}
			switch result.Status {
			case model.RSVPStatusConfirmed:
				if result.SeatNumber == nil {
					t.Errorf("confirmed result without seat number")
					return
				}
				confirmedSeats = append(confirmedSeats, *result.SeatNumber)
			case model.RSVPStatusWaitlisted:
				waitlisted++
			}
		}(i)
	}

	wg.Wait()

	t.Logf("%d guests competing for %d seats - Confirmed: %d, Waitlisted: %d",
		concurrentGuests, maxCapacity, len(confirmedSeats), waitlisted)

	// 關鍵驗證：恰好滿座、座位唯一、其餘全部進候補
	assert.Len(t, confirmedSeats, maxCapacity, "Confirmed count should equal capacity")
	assert.Equal(t, concurrentGuests-maxCapacity, waitlisted)

	sort.Ints(confirmedSeats)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, confirmedSeats, "Seats must be unique and within capacity")

	confirmed, queued := getEventCounts(t, event.ID)
	assert.Equal(t, maxCapacity, confirmed)
	assert.Equal(t, concurrentGuests-maxCapacity, queued)
}

// Two spots freed at the same time must promote two distinct waiters
func TestConcurrentWithdraw_PromotesDistinctGuests(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc := newTestRegistrationService()

	event := createTestEvent(t, "Contended Event", 2, model.SeatPolicySequential)

	alice := createTestGuest(t, "alice@test.com")
	bob := createTestGuest(t, "bob@test.com")
	carol := createTestGuest(t, "carol@test.com")
	dave := createTestGuest(t, "dave@test.com")

	for _, g := range []*model.Guest{alice, bob, carol, dave} {
		_, err := svc.Register(ctx, g.Token, confirmedRequest(event))
		require.NoError(t, err)
	}
	// alice/bob 確認，carol/dave 候補
	confirmed, queued := getEventCounts(t, event.ID)
	require.Equal(t, 2, confirmed)
	require.Equal(t, 2, queued)

	var wg sync.WaitGroup
	var mu sync.Mutex
	promotedIDs := map[int]bool{}

	for _, g := range []*model.Guest{alice, bob} {
		wg.Add(1)
		go func(token uuid.UUID) {
			defer wg.Done()

			result, err := svc.Withdraw(ctx, token, event.EventID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				t.Errorf("unexpected withdraw error: %v", err)
				return
			}
			if result.Promoted != nil {
				promotedIDs[result.Promoted.RegistrationID] = true
			}
		}(g.Token)
	}

	wg.Wait()

	// SKIP LOCKED 保證兩個同時釋出的名額遞補到不同候補者
	assert.Len(t, promotedIDs, 2, "Each freed spot should promote a distinct waiter")

	carolRow := getRegistration(t, carol.ID, event.ID)
	daveRow := getRegistration(t, dave.ID, event.ID)
	assert.Equal(t, model.RSVPStatusConfirmed, carolRow.Status)
	assert.Equal(t, model.RSVPStatusConfirmed, daveRow.Status)
	require.NotNil(t, carolRow.SeatNumber)
	require.NotNil(t, daveRow.SeatNumber)
	assert.NotEqual(t, *carolRow.SeatNumber, *daveRow.SeatNumber, "Promoted guests must hold different seats")

	confirmed, queued = getEventCounts(t, event.ID)
	assert.Equal(t, 2, confirmed)
	assert.Equal(t, 0, queued)
}

// Same guest double-submitting concurrently ends with exactly one registration
func TestConcurrentDuplicateRegister_SingleRegistration(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc := newTestRegistrationService()

	event := createTestEvent(t, "Some Event", 10, model.SeatPolicySequential)
	alice := createTestGuest(t, "alice@test.com")

	attempts := 5
	var wg sync.WaitGroup
	var mu sync.Mutex
	successCount := 0
	conflictCount := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.Register(ctx, alice.Token, confirmedRequest(event))

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successCount++
			} else {
				conflictCount++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, successCount, "Exactly one submission should win")
	assert.Equal(t, attempts-1, conflictCount)

	// 輸掉的提交不可留下計數器痕跡
	confirmed, queued := getEventCounts(t, event.ID)
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, 0, queued)

	var rows int
	err := getTestDB().QueryRow(ctx, "SELECT COUNT(*) FROM registrations WHERE guest_id = $1", alice.ID).Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
}
