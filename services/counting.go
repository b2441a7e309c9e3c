package services

import (
	"context"
	"log/slog"
	"time"

	"bagcount-gateway/device"
	"bagcount-gateway/models"
	"bagcount-gateway/notifier"
	"bagcount-gateway/utils"

	"github.com/looplab/fsm"
)

// Counting run states.
const (
	StateIdle    = "Idle"
	StateRunning = "Running"
	StatePaused  = "Paused"
)

// Scheduler task names.
const (
	taskStatusPoll  = "status"
	taskRemotePoll  = "remote"
	taskRefreshPoll = "refresh"
)

// CountingService drives a counting run through the selected orders of the
// active batch, reflecting device-reported counts back into the model.
//
// The device owns the count while a run is in progress; this service owns the
// run state. Status polls carry the counting-state version captured at send
// time so a response that arrives after a stop or reset is discarded.
type CountingService struct {
	state     *AppState
	store     Persister
	cache     StatusCache
	device    *device.Client
	scheduler *device.Scheduler
	events    *notifier.Publisher
	logger    *slog.Logger
	fsm       *fsm.FSM

	statusInterval  time.Duration
	remoteInterval  time.Duration
	refreshInterval time.Duration

	// Guarded by the aggregate mutex.
	lastIR    *models.IRStatus
	wasOnline bool
}

// NewCountingService creates a CountingService.
func NewCountingService(
	state *AppState,
	store Persister,
	cache StatusCache,
	deviceClient *device.Client,
	scheduler *device.Scheduler,
	events *notifier.Publisher,
	statusInterval, remoteInterval, refreshInterval time.Duration,
	logger *slog.Logger,
) *CountingService {
	s := &CountingService{
		state:           state,
		store:           store,
		cache:           cache,
		device:          deviceClient,
		scheduler:       scheduler,
		events:          events,
		statusInterval:  statusInterval,
		remoteInterval:  remoteInterval,
		refreshInterval: refreshInterval,
		logger:          logger.With("component", "counting_service"),
	}
	s.initializeFSM()
	return s
}

func (s *CountingService) initializeFSM() {
	callbacks := fsm.Callbacks{
		"enter_state": func(ctx context.Context, e *fsm.Event) {
			s.logger.Info("Counting run state changed",
				"from", e.Src, "to", e.Dst, "event", e.Event)
		},
	}

	s.fsm = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: "start", Src: []string{StateIdle}, Dst: StateRunning},
			{Name: "pause", Src: []string{StateRunning}, Dst: StatePaused},
			{Name: "resume", Src: []string{StatePaused}, Dst: StateRunning},
			{Name: "stop", Src: []string{StateRunning, StatePaused}, Dst: StateIdle},
			{Name: "reset", Src: []string{StateIdle, StateRunning, StatePaused}, Dst: StateIdle},
			{Name: "complete", Src: []string{StateRunning}, Dst: StateIdle},
		},
		callbacks,
	)
}

// StartBackground launches the always-on polls: the 500ms IR remote poll that
// detects physical button presses, and the device reachability probe.
func (s *CountingService) StartBackground() {
	s.scheduler.Start(taskRemotePoll, s.remoteInterval, s.pollRemote)
	s.scheduler.Start(taskRefreshPoll, s.refreshInterval, s.refresh)
}

// Start begins a counting run over the selected orders of the active batch.
// From Paused it resumes the current order without zeroing counts.
func (s *CountingService) Start(ctx context.Context) error {
	s.state.Lock()

	batch := s.state.activeBatch()
	if batch == nil {
		s.state.Unlock()
		return utils.NewBadRequestError("no active batch")
	}
	selected := selectedOrders(batch)
	if len(selected) == 0 {
		s.state.Unlock()
		return utils.NewBadRequestError("no orders selected in the active batch")
	}

	resume := s.fsm.Current() == StatePaused
	var current *models.Order

	if resume {
		if err := s.fsm.Event(ctx, "resume"); err != nil {
			s.state.Unlock()
			return utils.NewBadRequestError("counting cannot be resumed", err)
		}
		for i := range batch.Orders {
			if batch.Orders[i].Status == models.OrderStatusPaused {
				batch.Orders[i].Status = models.OrderStatusCounting
			}
		}
		current = countingOrder(batch)
	} else {
		if err := s.fsm.Event(ctx, "start"); err != nil {
			s.state.Unlock()
			return utils.NewBadRequestError("counting is already running", err)
		}

		totalPlanned := 0
		for _, o := range selected {
			o.Status = models.OrderStatusWaiting
			o.Count = 0
			totalPlanned += o.Target
		}
		selected[0].Status = models.OrderStatusCounting
		current = selected[0]

		s.state.Counting = models.CountingState{
			Active:       true,
			CurrentIndex: 0,
			TotalPlanned: totalPlanned,
			TotalCounted: 0,
			Version:      s.state.Counting.Version + 1,
		}
	}

	s.store.SaveBatch(batch)
	snapshot := s.buildStatus(batch)
	currentCopy := *current
	s.state.Unlock()

	s.cacheStatus(snapshot)

	if !resume {
		s.pushOrderToDevice(ctx, &currentCopy)
	}
	s.sendCommand(ctx, models.CmdStart, nil)
	s.scheduler.Start(taskStatusPoll, s.statusInterval, s.pollStatus)

	s.events.Publish(notifier.EventRunStateChange, snapshot)
	s.events.Publish(notifier.EventOrderStarted, currentCopy)
	return nil
}

// Pause suspends the run: the counting order becomes paused and the status
// poll stops until the run is resumed.
func (s *CountingService) Pause(ctx context.Context) error {
	if err := s.fsm.Event(ctx, "pause"); err != nil {
		return utils.NewBadRequestError("counting is not running", err)
	}

	snapshot := s.markPaused()
	s.scheduler.Stop(taskStatusPoll)
	s.sendCommand(ctx, models.CmdPause, nil)
	s.events.Publish(notifier.EventRunStateChange, snapshot)
	return nil
}

// Stop ends a running or paused run: counting and paused orders revert to
// waiting. The device has no stop primitive, so pause is sent instead.
// Stopping an idle controller is a no-op.
func (s *CountingService) Stop(ctx context.Context) error {
	if s.fsm.Current() == StateIdle {
		return nil
	}
	if err := s.fsm.Event(ctx, "stop"); err != nil {
		return utils.NewBadRequestError("counting is not running", err)
	}

	s.state.Lock()
	if batch := s.state.activeBatch(); batch != nil {
		for i := range batch.Orders {
			switch batch.Orders[i].Status {
			case models.OrderStatusCounting, models.OrderStatusPaused:
				batch.Orders[i].Status = models.OrderStatusWaiting
			}
		}
		s.store.SaveBatch(batch)
	}
	s.state.Counting.Active = false
	s.state.Counting.Version++
	snapshot := s.buildStatus(s.state.activeBatch())
	s.state.Unlock()

	s.cacheStatus(snapshot)
	s.scheduler.Stop(taskStatusPoll)
	s.sendCommand(ctx, models.CmdPause, nil)
	s.events.Publish(notifier.EventRunStateChange, snapshot)
	return nil
}

// Reset zeroes every order of the active batch and the device counter,
// regardless of prior state. The confirm predicate cancels silently.
func (s *CountingService) Reset(ctx context.Context, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return nil
	}

	if err := s.fsm.Event(ctx, "reset"); err != nil {
		return utils.NewInternalServerError("counting state machine rejected reset", err)
	}

	s.state.Lock()
	if batch := s.state.activeBatch(); batch != nil {
		for i := range batch.Orders {
			batch.Orders[i].Count = 0
			batch.Orders[i].Status = models.OrderStatusWaiting
		}
		s.store.SaveBatch(batch)
	}
	s.state.Counting = models.CountingState{
		Version: s.state.Counting.Version + 1,
	}
	snapshot := s.buildStatus(s.state.activeBatch())
	s.state.Unlock()

	s.cacheStatus(snapshot)
	s.scheduler.Stop(taskStatusPoll)
	s.sendCommand(ctx, models.CmdReset, nil)
	s.events.Publish(notifier.EventRunStateChange, snapshot)
	return nil
}

// OnDeviceCount applies a device-reported count to the order currently
// counting. Counts from a stale state version are discarded; counts with no
// counting order are ignored. Reaching the target completes the order, writes
// a history entry and promotes the next selected order, or ends the run when
// none remain.
func (s *CountingService) OnDeviceCount(ctx context.Context, count int, version int64) {
	s.state.Lock()

	if version != s.state.Counting.Version {
		s.state.Unlock()
		s.logger.Debug("Discarding stale device count", "count", count, "version", version)
		return
	}

	batch := s.state.activeBatch()
	if batch == nil {
		s.state.Unlock()
		return
	}
	current := countingOrder(batch)
	if current == nil {
		s.state.Unlock()
		return
	}
	if count == current.Count {
		s.state.Unlock()
		return
	}

	s.state.Counting.TotalCounted += count - current.Count
	current.Count = count

	var entry *models.HistoryEntry
	var next *models.Order
	batchDone := false

	if current.Count >= current.Target {
		current.Status = models.OrderStatusCompleted
		entry = &models.HistoryEntry{
			Timestamp:   time.Now(),
			Customer:    current.Customer,
			ProductName: current.ProductName,
			Planned:     current.Target,
			Counted:     current.Count,
		}

		selected := selectedOrders(batch)
		pos := -1
		for i, o := range selected {
			if o.ID == current.ID {
				pos = i
				break
			}
		}
		if pos >= 0 && pos+1 < len(selected) {
			next = selected[pos+1]
			next.Status = models.OrderStatusCounting
			next.Count = 0
			s.state.Counting.CurrentIndex = pos + 1
		} else {
			s.state.Counting.Active = false
			batchDone = true
		}

		// The counting order changed, so any poll still tagged with the old
		// version carries the previous order's count and must be discarded.
		s.state.Counting.Version++
	}

	s.store.SaveBatch(batch)
	if entry != nil {
		s.store.AppendHistory(entry)
	}

	snapshot := s.buildStatus(batch)
	var nextCopy *models.Order
	if next != nil {
		c := *next
		nextCopy = &c
	}
	completed := entry != nil
	currentCopy := *current
	s.state.Unlock()

	s.cacheStatus(snapshot)
	s.events.Publish(notifier.EventCountUpdated, snapshot)

	if completed {
		s.events.Publish(notifier.EventOrderCompleted, currentCopy)
	}

	if nextCopy != nil {
		// Zero the device's internal counter for the new order.
		s.sendCommand(ctx, models.CmdReset, nil)
		s.pushOrderToDevice(ctx, nextCopy)
		s.sendCommand(ctx, models.CmdStart, nil)
		s.events.Publish(notifier.EventOrderStarted, *nextCopy)
	}

	if batchDone {
		if err := s.fsm.Event(ctx, "complete"); err != nil {
			s.logger.Warn("Unexpected state on batch completion", slog.Any("error", err))
		}
		s.scheduler.Stop(taskStatusPoll)
		s.sendCommand(ctx, models.CmdPause, nil)
		s.events.Publish(notifier.EventBatchCompleted, snapshot)
	}
}

// Status returns the current view of the counting run.
func (s *CountingService) Status() *models.CountingStatus {
	s.state.Lock()
	defer s.state.Unlock()
	return s.buildStatus(s.state.activeBatch())
}

// Current returns the FSM state name.
func (s *CountingService) Current() string {
	return s.fsm.Current()
}

// DeviceReachable reports the cached result of the last reachability check.
func (s *CountingService) DeviceReachable() bool {
	return s.cache.IsDeviceOnline()
}

// ===================================================================
// POLLING
// ===================================================================

// pollStatus runs on the status interval while the run is Running. Each tick
// is independent: a failed poll logs and skips the cycle without touching
// state.
func (s *CountingService) pollStatus(ctx context.Context) {
	s.state.Lock()
	version := s.state.Counting.Version
	active := s.state.Counting.Active
	s.state.Unlock()

	if !active {
		return
	}

	status, err := s.device.GetStatus(ctx)
	if err != nil {
		s.logger.Warn("Status poll failed, skipping cycle", slog.Any("error", err))
		return
	}

	s.OnDeviceCount(ctx, status.Count, version)
}

// pollRemote detects out-of-band physical remote button presses by comparing
// consecutive IR status snapshots and acting only when status or count
// changed.
func (s *CountingService) pollRemote(ctx context.Context) {
	ir, err := s.device.GetIRStatus(ctx)
	if err != nil {
		return
	}

	s.state.Lock()
	last := s.lastIR
	s.lastIR = ir
	version := s.state.Counting.Version
	s.state.Unlock()

	if last == nil || (last.Status == ir.Status && last.Count == ir.Count) {
		return
	}

	switch {
	case ir.Status == models.DeviceStatusRunning && s.fsm.Current() == StatePaused:
		// Physical start pressed on the remote.
		if err := s.fsm.Event(ctx, "resume"); err != nil {
			return
		}
		s.state.Lock()
		if batch := s.state.activeBatch(); batch != nil {
			for i := range batch.Orders {
				if batch.Orders[i].Status == models.OrderStatusPaused {
					batch.Orders[i].Status = models.OrderStatusCounting
				}
			}
			s.store.SaveBatch(batch)
		}
		snapshot := s.buildStatus(s.state.activeBatch())
		s.state.Unlock()
		s.cacheStatus(snapshot)
		s.scheduler.Start(taskStatusPoll, s.statusInterval, s.pollStatus)
		s.events.Publish(notifier.EventRunStateChange, snapshot)

	case ir.Status == models.DeviceStatusStopped && s.fsm.Current() == StateRunning:
		// Physical pause pressed on the remote.
		if err := s.fsm.Event(ctx, "pause"); err != nil {
			return
		}
		snapshot := s.markPaused()
		s.scheduler.Stop(taskStatusPoll)
		s.events.Publish(notifier.EventRunStateChange, snapshot)
	}

	if ir.Count != last.Count && s.fsm.Current() == StateRunning {
		s.OnDeviceCount(ctx, ir.Count, version)
	}
}

// refresh probes the device clock endpoint to track reachability.
func (s *CountingService) refresh(ctx context.Context) {
	deviceTime, err := s.device.GetCurrentTime(ctx)
	online := err == nil

	s.state.Lock()
	changed := online != s.wasOnline
	s.wasOnline = online
	s.state.Unlock()

	if online {
		if err := s.cache.SetDeviceOnline(); err != nil {
			s.logger.Warn("Failed to cache device status", slog.Any("error", err))
		}
		if !deviceTime.IsTimeSynced {
			s.logger.Warn("Device clock is not NTP-synced", "deviceTime", deviceTime.CurrentTime)
		}
	} else {
		if err := s.cache.SetDeviceOffline(); err != nil {
			s.logger.Warn("Failed to cache device status", slog.Any("error", err))
		}
	}

	if changed {
		if online {
			s.logger.Info("Counting device is reachable")
			s.events.Publish(notifier.EventDeviceOnline, nil)
		} else {
			s.logger.Warn("Counting device is unreachable")
			s.events.Publish(notifier.EventDeviceOffline, nil)
		}
	}
}

// ===================================================================
// INTERNAL HELPERS
// ===================================================================

func (s *CountingService) markPaused() *models.CountingStatus {
	s.state.Lock()
	if batch := s.state.activeBatch(); batch != nil {
		for i := range batch.Orders {
			if batch.Orders[i].Status == models.OrderStatusCounting {
				batch.Orders[i].Status = models.OrderStatusPaused
			}
		}
		s.store.SaveBatch(batch)
	}
	snapshot := s.buildStatus(s.state.activeBatch())
	s.state.Unlock()

	s.cacheStatus(snapshot)
	return snapshot
}

// buildStatus assembles the run view. Caller holds the aggregate lock.
func (s *CountingService) buildStatus(batch *models.Batch) *models.CountingStatus {
	status := &models.CountingStatus{
		State:        s.fsm.Current(),
		TotalPlanned: s.state.Counting.TotalPlanned,
		TotalCounted: s.state.Counting.TotalCounted,
		LastUpdate:   time.Now(),
	}
	if batch != nil {
		status.BatchID = batch.ID
		status.BatchName = batch.Name
		if current := countingOrder(batch); current != nil {
			c := *current
			status.CurrentOrder = &c
		}
	}
	return status
}

func (s *CountingService) cacheStatus(status *models.CountingStatus) {
	if err := s.cache.SaveCountingStatus(status); err != nil {
		s.logger.Warn("Failed to cache counting status", slog.Any("error", err))
	}
}

// sendCommand issues a device command fire-and-forget: failures are logged and
// surfaced as a notification, never retried.
func (s *CountingService) sendCommand(ctx context.Context, cmd string, value *int) {
	if err := s.device.SendCommand(ctx, cmd, value); err != nil {
		s.logger.Error("Device command failed", "cmd", cmd, slog.Any("error", err))
		s.events.Publish(notifier.EventCommandFailed, map[string]interface{}{
			"cmd":   cmd,
			"error": err.Error(),
		})
	}
}

// pushOrderToDevice configures and selects the order's bag type on the device.
func (s *CountingService) pushOrderToDevice(ctx context.Context, order *models.Order) {
	cfg := &models.DeviceConfig{
		Type:   order.ProductName,
		Target: order.Target,
		Warn:   order.Warn,
	}
	if err := s.device.PushConfig(ctx, cfg); err != nil {
		s.logger.Error("Failed to push order config to device",
			"order", order.Code, slog.Any("error", err))
	}
	if err := s.device.SendTypedCommand(ctx, models.CmdSelect, order.ProductName); err != nil {
		s.logger.Error("Failed to select order type on device",
			"order", order.Code, slog.Any("error", err))
	}
}
