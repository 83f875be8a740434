package service

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/stridehq/stride/internal/config"
	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/repository"
	"github.com/stridehq/stride/internal/service/payment"
)

// In-memory repository fakes for service tests. Each mirrors the SQL
// implementation's error contract.

type fakeGoalRepo struct {
	mu          sync.Mutex
	goals       map[string]*model.Goal
	deleteCalls int
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{goals: make(map[string]*model.Goal)}
}

func (r *fakeGoalRepo) Create(goal *model.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := *goal
	r.goals[goal.ID] = &g
	return nil
}

func (r *fakeGoalRepo) ByID(userID, goalID string) (*model.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, repository.ErrGoalNotFound
	}
	copied := *g
	return &copied, nil
}

func (r *fakeGoalRepo) Goals(userID, sortBy string) ([]*model.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Goal
	for _, g := range r.goals {
		if g.UserID == userID {
			copied := *g
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeGoalRepo) CountActive(userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, g := range r.goals {
		if g.UserID == userID && g.Status == model.GoalStatusActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeGoalRepo) Update(goal *model.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.goals[goal.ID]
	if !ok || existing.UserID != goal.UserID {
		return repository.ErrGoalNotFound
	}
	g := *goal
	r.goals[goal.ID] = &g
	return nil
}

func (r *fakeGoalRepo) Delete(userID, goalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	g, ok := r.goals[goalID]
	if !ok || g.UserID != userID {
		return repository.ErrGoalNotFound
	}
	delete(r.goals, goalID)
	return nil
}

func (r *fakeGoalRepo) Count() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.goals), nil
}

type fakeCheckInRepo struct {
	mu       sync.Mutex
	checkIns map[string]*model.CheckIn
}

func newFakeCheckInRepo() *fakeCheckInRepo {
	return &fakeCheckInRepo{checkIns: make(map[string]*model.CheckIn)}
}

func (r *fakeCheckInRepo) Create(checkIn *model.CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.checkIns {
		if c.UserID == checkIn.UserID && c.Date == checkIn.Date {
			return repository.ErrDuplicateCheckIn
		}
	}
	c := *checkIn
	r.checkIns[checkIn.ID] = &c
	return nil
}

func (r *fakeCheckInRepo) ByID(userID, checkInID string) (*model.CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.checkIns[checkInID]
	if !ok || c.UserID != userID {
		return nil, repository.ErrCheckInNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCheckInRepo) ByDate(userID, date string) (*model.CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.checkIns {
		if c.UserID == userID && c.Date == date {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repository.ErrCheckInNotFound
}

func (r *fakeCheckInRepo) CheckIns(userID string, limit int) ([]*model.CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CheckIn
	for _, c := range r.checkIns {
		if c.UserID == userID {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCheckInRepo) Delete(userID, checkInID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.checkIns[checkInID]
	if !ok || c.UserID != userID {
		return repository.ErrCheckInNotFound
	}
	delete(r.checkIns, checkInID)
	return nil
}

func (r *fakeCheckInRepo) Count() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.checkIns), nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile // by user ID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (r *fakeProfileRepo) Create(profile *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := *profile
	r.profiles[profile.UserID] = &p
	return nil
}

func (r *fakeProfileRepo) ByUserID(userID string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProfileRepo) Update(profile *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.UserID]; !ok {
		return repository.ErrProfileNotFound
	}
	p := *profile
	r.profiles[profile.UserID] = &p
	return nil
}

func (r *fakeProfileRepo) UpdateName(userID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.Name = name
	return nil
}

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*model.Subscription // by user ID
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]*model.Subscription)}
}

func (r *fakeSubscriptionRepo) Create(sub *model.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *sub
	r.subs[sub.UserID] = &s
	return nil
}

func (r *fakeSubscriptionRepo) ByUserID(userID string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[userID]
	if !ok {
		return nil, repository.ErrSubscriptionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSubscriptionRepo) ByProviderSubscriptionID(id string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ProviderSubscriptionID != nil && *s.ProviderSubscriptionID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repository.ErrSubscriptionNotFound
}

func (r *fakeSubscriptionRepo) ByProviderCustomerID(id string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ProviderCustomerID != nil && *s.ProviderCustomerID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repository.ErrSubscriptionNotFound
}

func (r *fakeSubscriptionRepo) Update(sub *model.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[sub.UserID]; !ok {
		return repository.ErrSubscriptionNotFound
	}
	s := *sub
	r.subs[sub.UserID] = &s
	return nil
}

func (r *fakeSubscriptionRepo) CountByPlan() (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, s := range r.subs {
		counts[s.PlanID]++
	}
	return counts, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.Role == "" {
		user.Role = model.RoleMember
	}
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) ByID(id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) ByEmail(email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Count() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.Token // by token value
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*model.Token)}
}

func (r *fakeTokenRepo) Create(token *model.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := *token
	r.tokens[token.Token] = &t
	return nil
}

func (r *fakeTokenRepo) ConsumeToken(value string) (*model.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[value]
	if !ok || t.UsedAt != nil || time.Now().After(t.ExpiresAt) {
		return nil, repository.ErrTokenNotFound
	}
	now := time.Now()
	t.UsedAt = &now
	copied := *t
	return &copied, nil
}

func (r *fakeTokenRepo) DeleteByUserAndType(userID, tokenType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for value, t := range r.tokens {
		if t.UserID == userID && t.Type == tokenType && t.UsedAt == nil {
			delete(r.tokens, value)
		}
	}
	return nil
}

// lastTokenFor returns the newest unused token of a type, mirroring
// what the emailed link would carry.
func (r *fakeTokenRepo) lastTokenFor(userID, tokenType string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for value, t := range r.tokens {
		if t.UserID == userID && t.Type == tokenType && t.UsedAt == nil {
			return value
		}
	}
	return ""
}

// stubProvider satisfies payment.Provider without talking to anyone.
type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) Checkout(_ context.Context, _ payment.CheckoutParams) (string, error) {
	return "https://checkout.example/session", nil
}

func (stubProvider) Portal(_ context.Context, _ string) (string, error) {
	return "https://portal.example/session", nil
}

func (stubProvider) Webhook(_ *http.Request, _ []byte) (*payment.Event, error) {
	return &payment.Event{Type: payment.EventIgnored}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppName: "Stride",
		AppEnv:  "development",
		AppURL:  "http://localhost:8090",
	}
}

// newTestSubscriptionService seeds a subscription service backed by
// fakes, with the given plan for the user.
func newTestSubscriptionService(repo *fakeSubscriptionRepo, userID, plan string) *SubscriptionService {
	if plan != "" {
		_ = repo.Create(&model.Subscription{
			ID:     "sub-" + userID,
			UserID: userID,
			PlanID: plan,
			Status: model.SubscriptionStatusActive,
		})
	}
	return NewSubscriptionService(testConfig(), repo, stubProvider{})
}
