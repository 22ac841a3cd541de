package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-timetable-api/internal/dto"
	"github.com/noah-isme/dept-timetable-api/internal/models"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
)

type memoryCacheRepo struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.data, key)
		}
	}
	return nil
}

func (m *memoryCacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	var n int64
	if raw, ok := m.data[key]; ok {
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, err
		}
	}
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func TestCacheServiceNamespacesKeys(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out []string
	assert.False(t, cache.Get(ctx, "teacher:a", &out))

	cache.Set(ctx, "teacher:a", []string{"Math"}, 0)
	require.Contains(t, repo.data, "timetables:0:teacher:a")
	assert.Equal(t, time.Minute, repo.ttls["timetables:0:teacher:a"])

	assert.True(t, cache.Get(ctx, "teacher:a", &out))
	assert.Equal(t, []string{"Math"}, out)

	snapshot := metrics.Snapshot()
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.0001)

	repo.data["other:key"] = []byte(`1`)
	cache.InvalidateAll(ctx)
	assert.NotContains(t, repo.data, "timetables:0:teacher:a")
	assert.Equal(t, "1", string(repo.data["timetables:generation"]))
	assert.Contains(t, repo.data, "other:key")
	assert.False(t, cache.Get(ctx, "teacher:a", &out))
}

func TestCacheViewWriteAfterInvalidateIsUnreachable(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()

	// A read pins its generation before loading from the database; a write
	// commits and invalidates before the read stores what it loaded.
	view := cache.View(ctx)
	var out []string
	require.False(t, view.Get(ctx, "teacher:b", &out))
	cache.InvalidateAll(ctx)
	view.Set(ctx, "teacher:b", []string{"stale"}, 0)

	assert.False(t, cache.Get(ctx, "teacher:b", &out))

	cache.Set(ctx, "teacher:b", []string{"fresh"}, 0)
	require.True(t, cache.Get(ctx, "teacher:b", &out))
	assert.Equal(t, []string{"fresh"}, out)

	cache.InvalidateAll(ctx)
	assert.Equal(t, []string{"timetables:generation"}, keys(repo.data))
}

func TestCacheViewGenerationUnavailable(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("connection refused")
	cache := NewCacheService(repo, nil, time.Minute, nil, true)

	assert.Nil(t, cache.View(context.Background()))
	cache.Set(context.Background(), "list:x", 1, 0)
	assert.Empty(t, repo.data)
}

func keys(data map[string][]byte) []string {
	out := make([]string, 0, len(data))
	for key := range data {
		out = append(out, key)
	}
	return out
}

func TestCacheServiceBackendFailureIsMiss(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("connection refused")
	cache := NewCacheService(repo, nil, 0, nil, true)

	var out string
	assert.False(t, cache.Get(context.Background(), "list:x", &out))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, false)

	cache.Set(context.Background(), "k", 1, 0)
	assert.Empty(t, repo.data)

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	nilCache.InvalidateAll(context.Background())
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "list:computer:2:3:a:1:50", ListKey(models.TimetableFilter{
		Department: " Computer ", CollegeYear: 2, Semester: 3, Division: "A", Page: 1, PageSize: 50,
	}))
	assert.Equal(t, TeacherKey(" TeacherB "), TeacherKey("teacherb"))
}

func TestTimetableServiceCachesReadsUntilWrite(t *testing.T) {
	repo := newTimetableRepoStub(storedTimetable(), otherTimetable())
	cacheRepo := newMemoryCacheRepo()
	svc := newTimetableServiceFixture(repo, nil)
	svc.cache = NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	ctx := context.Background()

	items, _, err := svc.List(ctx, dto.TimetableQuery{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	schedule, err := svc.TeacherSchedule(ctx, "TeacherB")
	require.NoError(t, err)
	require.Len(t, schedule.Rows, 1)
	require.Len(t, cacheRepo.data, 2)

	// A change behind the service's back is hidden by the cache.
	delete(repo.items, "tt-2")
	items, _, err = svc.List(ctx, dto.TimetableQuery{})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	require.NoError(t, svc.Delete(ctx, "tt-1"))
	assert.Equal(t, []string{"timetables:generation"}, keys(cacheRepo.data))

	items, _, err = svc.List(ctx, dto.TimetableQuery{})
	require.NoError(t, err)
	assert.Empty(t, items)

	schedule, err = svc.TeacherSchedule(ctx, "TeacherB")
	require.NoError(t, err)
	assert.Empty(t, schedule.Rows)
}
