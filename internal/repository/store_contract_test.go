package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/leaderboard/internal/model"
)

// storeFactory はテストごとに空のストアを返す。
type storeFactory func(t *testing.T) (UserRepository, ClaimRepository)

func newTestUser(name string) *model.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.User{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// runStoreContract はUserRepository/ClaimRepository実装が満たすべき振る舞いを検証する。
// メモリストアとPostgreSQLの両方で同じテストを実行する。
func runStoreContract(t *testing.T, newStore storeFactory) {
	t.Run("CreateAndFind", func(t *testing.T) {
		users, _ := newStore(t)
		ctx := context.Background()

		u := newTestUser("Alice")
		require.NoError(t, users.Create(ctx, u))

		found, err := users.FindByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Alice", found.Name)
		assert.Equal(t, 0, found.TotalPoints)
	})

	t.Run("FindMissingReturnsNil", func(t *testing.T) {
		users, _ := newStore(t)

		found, err := users.FindByID(context.Background(), uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		users, _ := newStore(t)
		ctx := context.Background()

		require.NoError(t, users.Create(ctx, newTestUser("Alice")))
		err := users.Create(ctx, newTestUser("Alice"))
		require.Error(t, err)
		assert.True(t, model.IsAPIErrorCode(err, model.ErrCodeDuplicateName))

		n, err := users.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("IncrementReturnsUpdatedUser", func(t *testing.T) {
		users, _ := newStore(t)
		ctx := context.Background()

		u := newTestUser("Alice")
		require.NoError(t, users.Create(ctx, u))

		updated, err := users.IncrementPoints(ctx, u.ID, 7)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, 7, updated.TotalPoints)

		updated, err = users.IncrementPoints(ctx, u.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, 10, updated.TotalPoints)
	})

	t.Run("IncrementMissingReturnsNil", func(t *testing.T) {
		users, _ := newStore(t)

		updated, err := users.IncrementPoints(context.Background(), uuid.NewString(), 5)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("ConcurrentIncrementsAreNotLost", func(t *testing.T) {
		users, _ := newStore(t)
		ctx := context.Background()

		u := newTestUser("Alice")
		require.NoError(t, users.Create(ctx, u))

		const workers = 20
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := users.IncrementPoints(ctx, u.ID, 2); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		found, err := users.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, workers*2, found.TotalPoints)
	})

	t.Run("ListByRankDuringIncrementsIsConsistent", func(t *testing.T) {
		users, _ := newStore(t)
		ctx := context.Background()

		alice := newTestUser("Alice")
		bob := newTestUser("Bob")
		require.NoError(t, users.Create(ctx, alice))
		require.NoError(t, users.Create(ctx, bob))

		const rounds = 200
		var wg sync.WaitGroup
		incErr := make(chan error, 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if _, err := users.IncrementPoints(ctx, alice.ID, 1); err != nil {
					incErr <- err
					return
				}
			}
		}()

		last := 0
		for i := 0; i < rounds; i++ {
			ranked, err := users.ListByRank(ctx)
			require.NoError(t, err)
			require.Len(t, ranked, 2)
			assert.GreaterOrEqual(t, ranked[0].TotalPoints, ranked[1].TotalPoints)

			var alicePoints int
			for _, u := range ranked {
				if u.ID == alice.ID {
					alicePoints = u.TotalPoints
				}
			}
			// 加算は単調なので、後の読み出しが前の読み出しより小さくなることはない
			assert.GreaterOrEqual(t, alicePoints, last)
			last = alicePoints
		}
		wg.Wait()
		close(incErr)
		require.NoError(t, <-incErr)

		found, err := users.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, rounds, found.TotalPoints)
	})

	t.Run("ListByRankOrdersByPointsThenInsertion", func(t *testing.T) {
		users, _ := newStore(t)
		ctx := context.Background()

		alice := newTestUser("Alice")
		bob := newTestUser("Bob")
		carol := newTestUser("Carol")
		dave := newTestUser("Dave")
		for _, u := range []*model.User{alice, bob, carol, dave} {
			require.NoError(t, users.Create(ctx, u))
		}

		_, err := users.IncrementPoints(ctx, bob.ID, 10)
		require.NoError(t, err)
		_, err = users.IncrementPoints(ctx, carol.ID, 4)
		require.NoError(t, err)
		_, err = users.IncrementPoints(ctx, dave.ID, 4)
		require.NoError(t, err)

		ranked, err := users.ListByRank(ctx)
		require.NoError(t, err)

		names := make([]string, len(ranked))
		for i, u := range ranked {
			names[i] = u.Name
		}
		assert.Equal(t, []string{"Bob", "Carol", "Dave", "Alice"}, names)
	})

	t.Run("ClaimRejectsNonPositivePoints", func(t *testing.T) {
		users, claims := newStore(t)
		ctx := context.Background()

		u := newTestUser("Alice")
		require.NoError(t, users.Create(ctx, u))

		err := claims.Create(ctx, &model.ClaimHistory{
			ID:            uuid.NewString(),
			UserID:        u.ID,
			PointsClaimed: 0,
			ClaimedAt:     time.Now(),
		})
		require.Error(t, err)
		assert.True(t, model.IsAPIErrorCode(err, model.ErrCodeValidation))
	})

	t.Run("ListRecentNewestFirstWithNames", func(t *testing.T) {
		users, claims := newStore(t)
		ctx := context.Background()

		alice := newTestUser("Alice")
		bob := newTestUser("Bob")
		require.NoError(t, users.Create(ctx, alice))
		require.NoError(t, users.Create(ctx, bob))

		base := time.Now().UTC().Truncate(time.Microsecond)
		records := []*model.ClaimHistory{
			{ID: uuid.NewString(), UserID: alice.ID, PointsClaimed: 3, ClaimedAt: base},
			{ID: uuid.NewString(), UserID: bob.ID, PointsClaimed: 9, ClaimedAt: base.Add(time.Second)},
			// 同時刻は後に追記した方が先
			{ID: uuid.NewString(), UserID: alice.ID, PointsClaimed: 5, ClaimedAt: base.Add(time.Second)},
		}
		for _, c := range records {
			require.NoError(t, claims.Create(ctx, c))
		}

		entries, err := claims.ListRecent(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		assert.Equal(t, records[2].ID, entries[0].ID)
		assert.Equal(t, "Alice", entries[0].UserName)
		assert.Equal(t, records[1].ID, entries[1].ID)
		assert.Equal(t, "Bob", entries[1].UserName)
		assert.Equal(t, records[0].ID, entries[2].ID)
		assert.Equal(t, 3, entries[2].PointsClaimed)
	})

	t.Run("ListRecentEmpty", func(t *testing.T) {
		_, claims := newStore(t)

		entries, err := claims.ListRecent(context.Background())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
