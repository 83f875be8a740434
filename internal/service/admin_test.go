package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/repository"
)

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(_ context.Context, key string, body io.Reader, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.example/" + key, nil
}

type fakeFileRepo struct {
	mu    sync.Mutex
	files map[string]*model.File
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*model.File)}
}

func (r *fakeFileRepo) Create(file *model.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := *file
	r.files[file.ID] = &f
	return nil
}

func (r *fakeFileRepo) ByID(id string) (*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, repository.ErrFileNotFound
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFileRepo) FileByType(ownerType, ownerID, fileType string) (*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.OwnerType == ownerType && f.OwnerID == ownerID && f.Type == fileType {
			copied := *f
			return &copied, nil
		}
	}
	return nil, repository.ErrFileNotFound
}

func (r *fakeFileRepo) AllUserFiles(userID string) ([]*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.File
	for _, f := range r.files {
		if f.UserID == userID {
			copied := *f
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, id)
	return nil
}

type adminFixture struct {
	admin    *AdminService
	users    *fakeUserRepo
	subs     *fakeSubscriptionRepo
	goals    *fakeGoalRepo
	checkIns *fakeCheckInRepo
	activity *ActivityLog
	storage  *fakeStorage
	files    *fakeFileRepo
}

func newAdminFixture() *adminFixture {
	users := newFakeUserRepo()
	subs := newFakeSubscriptionRepo()
	goals := newFakeGoalRepo()
	checkIns := newFakeCheckInRepo()
	files := newFakeFileRepo()
	store := newFakeStorage()
	activity := NewActivityLog()

	fileSvc := NewFileService(testConfig(), files, store)
	admin := NewAdminService(users, goals, checkIns, subs, fileSvc, activity)

	return &adminFixture{
		admin:    admin,
		users:    users,
		subs:     subs,
		goals:    goals,
		checkIns: checkIns,
		activity: activity,
		storage:  store,
		files:    files,
	}
}

func (f *adminFixture) addUser(t *testing.T, id, plan string) {
	t.Helper()
	require.NoError(t, f.users.Create(&model.User{
		ID:    id,
		Email: id + "@example.com",
		Role:  model.RoleMember,
	}))
	if plan != "" {
		require.NoError(t, f.subs.Create(&model.Subscription{
			ID:     "sub-" + id,
			UserID: id,
			PlanID: plan,
			Status: model.SubscriptionStatusActive,
		}))
	}
}

func TestOverviewPlanBreakdownSumsToUserCount(t *testing.T) {
	f := newAdminFixture()

	f.addUser(t, "u1", model.SubscriptionPlanFree)
	f.addUser(t, "u2", model.SubscriptionPlanFree)
	f.addUser(t, "u3", model.SubscriptionPlanStandard)
	f.addUser(t, "u4", model.SubscriptionPlanPremium)
	// u5 has no subscription row yet; counted as free.
	f.addUser(t, "u5", "")

	overview, err := f.admin.Overview()
	require.NoError(t, err)

	assert.Equal(t, 5, overview.TotalUsers)

	sum := 0
	for _, n := range overview.PlanBreakdown {
		sum += n
	}
	assert.Equal(t, overview.TotalUsers, sum, "plan breakdown must sum to total users")
	assert.Equal(t, 3, overview.PlanBreakdown[model.SubscriptionPlanFree])
	assert.Equal(t, 1, overview.PlanBreakdown[model.SubscriptionPlanStandard])
	assert.Equal(t, 1, overview.PlanBreakdown[model.SubscriptionPlanPremium])
}

func TestOverviewCounts(t *testing.T) {
	f := newAdminFixture()
	f.addUser(t, "u1", model.SubscriptionPlanFree)

	require.NoError(t, f.goals.Create(&model.Goal{ID: "g1", UserID: "u1", Status: model.GoalStatusActive}))
	require.NoError(t, f.goals.Create(&model.Goal{ID: "g2", UserID: "u1", Status: model.GoalStatusCompleted}))
	require.NoError(t, f.checkIns.Create(&model.CheckIn{ID: "c1", UserID: "u1", Date: "2026-03-01", Rating: 5}))

	overview, err := f.admin.Overview()
	require.NoError(t, err)
	assert.Equal(t, 2, overview.TotalGoals)
	assert.Equal(t, 1, overview.TotalCheckIns)
}

func TestActivityLogCapAndOrder(t *testing.T) {
	log := NewActivityLog()

	for i := 0; i < 60; i++ {
		log.Record("info", "admin", fmt.Sprintf("event %d", i))
	}

	entries := log.Entries()
	require.Len(t, entries, activityLogCap)
	assert.Equal(t, "event 59", entries[0].Message, "newest entry first")
	assert.Equal(t, "event 10", entries[len(entries)-1].Message, "oldest retained entry")
}

func TestAdminDeleteUserCascades(t *testing.T) {
	f := newAdminFixture()
	f.addUser(t, "victim", model.SubscriptionPlanFree)

	require.NoError(t, f.files.Create(&model.File{
		ID:          "f1",
		UserID:      "victim",
		OwnerType:   "user",
		OwnerID:     "victim",
		Type:        model.FileTypeAvatar,
		StoragePath: "avatars/victim/f1.png",
	}))
	f.storage.objects["avatars/victim/f1.png"] = []byte("png")

	require.NoError(t, f.admin.DeleteUser(context.Background(), "root", "victim"))

	_, err := f.users.ByID("victim")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.Empty(t, f.storage.objects, "stored objects removed")

	entries := f.activity.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "root", entries[0].Actor)
	assert.Contains(t, entries[0].Message, "victim@example.com")
}

func TestAdminDeleteUnknownUser(t *testing.T) {
	f := newAdminFixture()
	err := f.admin.DeleteUser(context.Background(), "root", "ghost")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
