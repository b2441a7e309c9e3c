package services

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bagcount-gateway/config"
	"bagcount-gateway/device"
	"bagcount-gateway/models"
	"bagcount-gateway/notifier"
)

// fakePersister records persistence calls so tests can assert what was
// written without a database.
type fakePersister struct {
	mu            sync.Mutex
	savedBatches  []string
	deletedBatch  []string
	history       []models.HistoryEntry
	settingsSaves int
	createdIDs    []string
	updatedIDs    []string
	deletedIDs    []string
}

func (f *fakePersister) SaveBatch(batch *models.Batch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedBatches = append(f.savedBatches, batch.ID)
}

func (f *fakePersister) DeleteBatch(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedBatch = append(f.deletedBatch, id)
}

func (f *fakePersister) AppendHistory(entry *models.HistoryEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, *entry)
}

func (f *fakePersister) SaveSettings(settings *models.DeviceSettings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settingsSaves++
}

func (f *fakePersister) CreateProduct(product *models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdIDs = append(f.createdIDs, product.ID)
}

func (f *fakePersister) UpdateProduct(product *models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedIDs = append(f.updatedIDs, product.ID)
}

func (f *fakePersister) DeleteProduct(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedIDs = append(f.deletedIDs, id)
}

func (f *fakePersister) historyEntries() []models.HistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]models.HistoryEntry, len(f.history))
	copy(entries, f.history)
	return entries
}

// fakeCache records cached counting snapshots and reachability flips.
type fakeCache struct {
	mu         sync.Mutex
	statuses   []models.CountingStatus
	online     int
	offline    int
	lastOnline bool
}

func (f *fakeCache) SaveCountingStatus(status *models.CountingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, *status)
	return nil
}

func (f *fakeCache) SetDeviceOnline() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online++
	f.lastOnline = true
	return nil
}

func (f *fakeCache) SetDeviceOffline() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline++
	f.lastOnline = false
	return nil
}

func (f *fakeCache) IsDeviceOnline() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOnline
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPublisher(t *testing.T) *notifier.Publisher {
	t.Helper()
	p, err := notifier.NewPublisher(&config.Config{}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create publisher: %v", err)
	}
	return p
}

// deviceRecorder is a stub counting device. It accepts every request and
// records the command bodies it receives.
type deviceRecorder struct {
	mu       sync.Mutex
	requests []string
	server   *httptest.Server
}

func newDeviceRecorder() *deviceRecorder {
	r := &deviceRecorder{}
	r.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.requests = append(r.requests, req.Method+" "+req.URL.Path)
		r.mu.Unlock()

		switch req.URL.Path {
		case "/api/status":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"RUNNING","count":0,"startTime":0}`))
		case "/api/current_time":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"isTimeSynced":true,"currentTime":1700000000}`))
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	return r
}

func (r *deviceRecorder) close() { r.server.Close() }

func (r *deviceRecorder) seen(want string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.requests {
		if got == want {
			return true
		}
	}
	return false
}

// countingEnv wires a CountingService against fakes and a stub device.
type countingEnv struct {
	state    *AppState
	store    *fakePersister
	cache    *fakeCache
	recorder *deviceRecorder
	service  *CountingService
}

func newCountingEnv(t *testing.T) *countingEnv {
	t.Helper()

	recorder := newDeviceRecorder()
	t.Cleanup(recorder.close)

	scheduler := device.NewScheduler(testLogger())
	t.Cleanup(scheduler.Shutdown)

	state := &AppState{
		Settings: models.DefaultSettings(),
		Page:     1,
	}
	store := &fakePersister{}
	cache := &fakeCache{}

	client := device.NewClient(recorder.server.URL, 2*time.Second, testLogger())
	service := NewCountingService(
		state, store, cache, client, scheduler, testPublisher(t),
		time.Hour, time.Hour, time.Hour,
		testLogger(),
	)

	return &countingEnv{
		state:    state,
		store:    store,
		cache:    cache,
		recorder: recorder,
		service:  service,
	}
}

// seedBatch installs an active batch with one selected order per target. All
// orders reference the same product.
func (e *countingEnv) seedBatch(targets ...int) *models.Batch {
	batch := &models.Batch{
		ID:     "batch-1",
		Name:   "Morning Run",
		Active: true,
	}
	for i, target := range targets {
		batch.Orders = append(batch.Orders, models.Order{
			ID:          "order-" + string(rune('a'+i)),
			BatchID:     batch.ID,
			Seq:         i + 1,
			Customer:    "ACME",
			Code:        "ORD-" + string(rune('A'+i)),
			Vehicle:     "29C-12345",
			ProductID:   "prod-1",
			ProductName: "cement-50kg",
			Target:      target,
			Warn:        target / 10,
			Status:      models.OrderStatusWaiting,
			Selected:    true,
		})
	}
	e.state.Lock()
	e.state.Batches = append(e.state.Batches, batch)
	e.state.Unlock()
	return batch
}
