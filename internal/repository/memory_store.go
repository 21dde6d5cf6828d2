package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/leaderboard/internal/model"
)

// MemoryStore はプロセス内メモリにユーザーとクレーム履歴を保持するストア。
// STORE_DRIVER=memory でのローカル起動とテストで使用する。
// すべての操作は1回のロック区間で完結するため、同一ユーザーへの同時加算も失われない。
type MemoryStore struct {
	mu     sync.RWMutex
	seq    int64
	users  map[string]*memoryUser
	names  map[string]string // name -> user ID
	claims []memoryClaim
}

type memoryUser struct {
	user model.User
	seq  int64
}

type memoryClaim struct {
	claim model.ClaimHistory
	seq   int64
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*memoryUser),
		names: make(map[string]string),
	}
}

// Users はUserRepositoryとしてのビューを返す。
func (s *MemoryStore) Users() *MemoryUserRepo {
	return &MemoryUserRepo{store: s}
}

// Claims はClaimRepositoryとしてのビューを返す。
func (s *MemoryStore) Claims() *MemoryClaimRepo {
	return &MemoryClaimRepo{store: s}
}

// PingContext は常に成功する。
func (s *MemoryStore) PingContext(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) nextSeq() int64 {
	s.seq++
	return s.seq
}

// MemoryUserRepo はMemoryStore上のUserRepository実装。
type MemoryUserRepo struct {
	store *MemoryStore
}

// ListByRank は全ユーザーをTotalPoints降順、同点は挿入順で返す。
// IncrementPointsと並行して呼ばれるため、値のスナップショットをロック区間内で取ってから並べ替える。
func (r *MemoryUserRepo) ListByRank(ctx context.Context) ([]*model.User, error) {
	r.store.mu.RLock()
	snapshot := make([]memoryUser, 0, len(r.store.users))
	for _, u := range r.store.users {
		snapshot = append(snapshot, *u)
	}
	r.store.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].user.TotalPoints != snapshot[j].user.TotalPoints {
			return snapshot[i].user.TotalPoints > snapshot[j].user.TotalPoints
		}
		return snapshot[i].seq < snapshot[j].seq
	})

	users := make([]*model.User, len(snapshot))
	for i := range snapshot {
		users[i] = &snapshot[i].user
	}
	return users, nil
}

// FindByID は指定IDのユーザーのコピーを返す。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	u := e.user
	return &u, nil
}

// Create はユーザーを登録する。同名ユーザーが存在する場合はDUPLICATE_NAMEを返す。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.names[user.Name]; exists {
		return model.NewDuplicateNameError(user.Name)
	}
	r.store.users[user.ID] = &memoryUser{user: *user, seq: r.store.nextSeq()}
	r.store.names[user.Name] = user.ID
	return nil
}

// IncrementPoints はロック区間内で加算し、更新後のユーザーのコピーを返す。
func (r *MemoryUserRepo) IncrementPoints(ctx context.Context, id string, amount int) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	e.user.TotalPoints += amount
	e.user.UpdatedAt = time.Now()
	u := e.user
	return &u, nil
}

// Count は登録済みユーザー数を返す。
func (r *MemoryUserRepo) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.users), nil
}

// MemoryClaimRepo はMemoryStore上のClaimRepository実装。
type MemoryClaimRepo struct {
	store *MemoryStore
}

// Create はクレーム履歴を追記する。
func (r *MemoryClaimRepo) Create(ctx context.Context, claim *model.ClaimHistory) error {
	if err := validateClaim(claim); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.claims = append(r.store.claims, memoryClaim{claim: *claim, seq: r.store.nextSeq()})
	return nil
}

// ListRecent は全履歴をClaimedAt降順で返す。同時刻の場合は後に追記された履歴を先にする。
// 参照先ユーザーが存在しない履歴は、PostgreSQLのJOINと同様に結果に含めない。
func (r *MemoryClaimRepo) ListRecent(ctx context.Context) ([]*model.ClaimHistoryEntry, error) {
	r.store.mu.RLock()
	claims := make([]memoryClaim, len(r.store.claims))
	copy(claims, r.store.claims)
	names := make(map[string]string, len(r.store.users))
	for id, u := range r.store.users {
		names[id] = u.user.Name
	}
	r.store.mu.RUnlock()

	sort.Slice(claims, func(i, j int) bool {
		if !claims[i].claim.ClaimedAt.Equal(claims[j].claim.ClaimedAt) {
			return claims[i].claim.ClaimedAt.After(claims[j].claim.ClaimedAt)
		}
		return claims[i].seq > claims[j].seq
	})

	entries := make([]*model.ClaimHistoryEntry, 0, len(claims))
	for _, c := range claims {
		name, ok := names[c.claim.UserID]
		if !ok {
			continue
		}
		entries = append(entries, &model.ClaimHistoryEntry{
			ID:            c.claim.ID,
			UserID:        c.claim.UserID,
			UserName:      name,
			PointsClaimed: c.claim.PointsClaimed,
			ClaimedAt:     c.claim.ClaimedAt,
		})
	}
	return entries, nil
}

// compile-time interface check
var (
	_ UserRepository  = (*MemoryUserRepo)(nil)
	_ ClaimRepository = (*MemoryClaimRepo)(nil)
	_ Pinger          = (*MemoryStore)(nil)
)
