package services

import (
	"fmt"
	"testing"

	"bagcount-gateway/models"
	"bagcount-gateway/utils"
)

func newBatchService(t *testing.T) (*BatchService, *AppState, *fakePersister) {
	t.Helper()

	state := &AppState{
		Settings: models.DefaultSettings(),
		Page:     1,
		Products: []models.Product{
			{ID: "prod-1", Name: "cement-50kg", Code: "CEM50", UnitWeight: 50},
		},
	}
	store := &fakePersister{}
	return NewBatchService(state, store, 10, testLogger()), state, store
}

func orderRequest(code string, target int) *models.OrderRequest {
	return &models.OrderRequest{
		Customer:  "ACME",
		Code:      code,
		Vehicle:   "29C-12345",
		ProductID: "prod-1",
		Target:    target,
	}
}

func TestWorkingSet(t *testing.T) {
	t.Run("Add Requires An Open Batch", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		if _, err := svc.AddOrderToWorkingSet(orderRequest("ORD-1", 50)); err == nil {
			t.Error("Expected error adding without an open batch, got nil")
		}
	})

	t.Run("Add Assigns Sequence And Default Warn", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		svc.CreateBatch()

		order, err := svc.AddOrderToWorkingSet(orderRequest("ORD-1", 50))
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if order.Seq != 1 {
			t.Errorf("Expected seq 1, got %d", order.Seq)
		}
		if order.Warn != 5 {
			t.Errorf("Expected default warn 5 for target 50, got %d", order.Warn)
		}
		if order.Status != models.OrderStatusWaiting {
			t.Errorf("Expected status waiting, got '%s'", order.Status)
		}

		second, err := svc.AddOrderToWorkingSet(orderRequest("ORD-2", 30))
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if second.Seq != 2 {
			t.Errorf("Expected seq 2, got %d", second.Seq)
		}
	})

	t.Run("Explicit Warn Is Kept", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		svc.CreateBatch()

		req := orderRequest("ORD-1", 50)
		req.Warn = 12
		order, err := svc.AddOrderToWorkingSet(req)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if order.Warn != 12 {
			t.Errorf("Expected warn 12, got %d", order.Warn)
		}
	})

	t.Run("Add Validates Required Fields", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		svc.CreateBatch()

		req := orderRequest("ORD-1", 50)
		req.Customer = ""
		if _, err := svc.AddOrderToWorkingSet(req); err == nil {
			t.Error("Expected error for missing customer, got nil")
		}

		req = orderRequest("ORD-1", 0)
		if _, err := svc.AddOrderToWorkingSet(req); err == nil {
			t.Error("Expected error for non-positive target, got nil")
		}

		req = orderRequest("ORD-1", 50)
		req.ProductID = "no-such-product"
		if _, err := svc.AddOrderToWorkingSet(req); err == nil {
			t.Error("Expected error for unknown product, got nil")
		}
	})

	t.Run("Duplicate Code Leaves Set Unchanged", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		svc.CreateBatch()

		if _, err := svc.AddOrderToWorkingSet(orderRequest("ORD-1", 50)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		_, err := svc.AddOrderToWorkingSet(orderRequest("ORD-1", 30))
		if err == nil {
			t.Fatal("Expected conflict for duplicate order code, got nil")
		}
		appErr, ok := err.(*utils.AppError)
		if !ok || appErr.Code != 409 {
			t.Errorf("Expected AppError with code 409, got %v", err)
		}

		if got := len(svc.WorkingSet()); got != 1 {
			t.Errorf("Expected working set unchanged at 1 order, got %d", got)
		}
	})

	t.Run("Remove Renumbers From One", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		svc.CreateBatch()

		for i := 1; i <= 3; i++ {
			if _, err := svc.AddOrderToWorkingSet(orderRequest(fmt.Sprintf("ORD-%d", i), 10)); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
		}

		if err := svc.RemoveOrderFromWorkingSet(0, nil); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}

		orders := svc.WorkingSet()
		if len(orders) != 2 {
			t.Fatalf("Expected 2 orders left, got %d", len(orders))
		}
		for i, o := range orders {
			if o.Seq != i+1 {
				t.Errorf("Expected seq %d at position %d, got %d", i+1, i, o.Seq)
			}
		}
		if orders[0].Code != "ORD-2" {
			t.Errorf("Expected ORD-2 first after removal, got '%s'", orders[0].Code)
		}
	})

	t.Run("Declined Confirm Cancels Remove", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		svc.CreateBatch()
		if _, err := svc.AddOrderToWorkingSet(orderRequest("ORD-1", 10)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		if err := svc.RemoveOrderFromWorkingSet(0, func() bool { return false }); err != nil {
			t.Fatalf("Declined remove returned error: %v", err)
		}
		if got := len(svc.WorkingSet()); got != 1 {
			t.Errorf("Expected working set untouched, got %d orders", got)
		}
	})

	t.Run("Remove Rejects Out Of Range Index", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		svc.CreateBatch()
		if err := svc.RemoveOrderFromWorkingSet(0, nil); err == nil {
			t.Error("Expected error removing from an empty working set, got nil")
		}
	})
}

func TestSaveBatch(t *testing.T) {
	t.Run("Requires Name And Orders", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		svc.CreateBatch()

		if _, err := svc.SaveBatch("", ""); err == nil {
			t.Error("Expected error saving without a name, got nil")
		}
		if _, err := svc.SaveBatch("Empty", ""); err == nil {
			t.Error("Expected error saving an empty batch, got nil")
		}
	})

	t.Run("New Batch Gets An Identifier", func(t *testing.T) {
		svc, state, store := newBatchService(t)
		svc.CreateBatch()
		if _, err := svc.AddOrderToWorkingSet(orderRequest("ORD-1", 10)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		batch, err := svc.SaveBatch("Morning Run", "first shift")
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if batch.ID == "" {
			t.Error("Expected a generated batch ID")
		}
		if len(batch.Orders) != 1 || batch.Orders[0].BatchID != batch.ID {
			t.Errorf("Expected order linked to batch %s, got %+v", batch.ID, batch.Orders)
		}
		if len(state.Batches) != 1 {
			t.Errorf("Expected 1 stored batch, got %d", len(state.Batches))
		}
		if len(store.savedBatches) != 1 {
			t.Errorf("Expected 1 persisted batch, got %d", len(store.savedBatches))
		}
		if got := len(svc.WorkingSet()); got != 0 {
			t.Errorf("Expected working set cleared after save, got %d orders", got)
		}
	})

	t.Run("Editing Updates In Place", func(t *testing.T) {
		svc, state, _ := newBatchService(t)
		svc.CreateBatch()
		if _, err := svc.AddOrderToWorkingSet(orderRequest("ORD-1", 10)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		saved, err := svc.SaveBatch("Morning Run", "")
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		svc.LoadBatchForEdit(saved.ID)
		if _, err := svc.AddOrderToWorkingSet(orderRequest("ORD-2", 20)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		updated, err := svc.SaveBatch("Morning Run v2", "")
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if updated.ID != saved.ID {
			t.Errorf("Expected edit to keep ID %s, got %s", saved.ID, updated.ID)
		}
		if len(state.Batches) != 1 {
			t.Errorf("Expected still 1 batch, got %d", len(state.Batches))
		}
		if len(updated.Orders) != 2 {
			t.Errorf("Expected 2 orders after edit, got %d", len(updated.Orders))
		}
		if updated.Name != "Morning Run v2" {
			t.Errorf("Expected renamed batch, got '%s'", updated.Name)
		}
	})
}

func TestActiveBatch(t *testing.T) {
	makeBatches := func(t *testing.T, svc *BatchService, names ...string) []string {
		t.Helper()
		var ids []string
		for i, name := range names {
			svc.CreateBatch()
			if _, err := svc.AddOrderToWorkingSet(orderRequest(fmt.Sprintf("ORD-%d", i), 10)); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
			batch, err := svc.SaveBatch(name, "")
			if err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			ids = append(ids, batch.ID)
		}
		return ids
	}

	t.Run("Exactly One Batch Is Active", func(t *testing.T) {
		svc, state, _ := newBatchService(t)
		ids := makeBatches(t, svc, "A", "B", "C")

		svc.SwitchActiveBatch(ids[1])
		svc.SwitchActiveBatch(ids[2])

		activeCount := 0
		for _, b := range state.Batches {
			if b.Active {
				activeCount++
				if b.ID != ids[2] {
					t.Errorf("Expected batch %s active, got %s", ids[2], b.ID)
				}
			}
		}
		if activeCount != 1 {
			t.Errorf("Expected exactly 1 active batch, got %d", activeCount)
		}
	})

	t.Run("Switch Resets Pagination", func(t *testing.T) {
		svc, state, _ := newBatchService(t)
		ids := makeBatches(t, svc, "A", "B")

		state.Lock()
		state.Page = 3
		state.Unlock()

		svc.SwitchActiveBatch(ids[0])

		state.Lock()
		page := state.Page
		state.Unlock()
		if page != 1 {
			t.Errorf("Expected page reset to 1, got %d", page)
		}
	})

	t.Run("Unknown ID Is A Silent NoOp", func(t *testing.T) {
		svc, state, _ := newBatchService(t)
		ids := makeBatches(t, svc, "A")
		svc.SwitchActiveBatch(ids[0])

		svc.SwitchActiveBatch("no-such-batch")

		if active := state.activeBatch(); active == nil || active.ID != ids[0] {
			t.Error("Expected active batch unchanged after unknown switch")
		}
	})

	t.Run("Delete Removes The Batch", func(t *testing.T) {
		svc, state, store := newBatchService(t)
		ids := makeBatches(t, svc, "A", "B")

		if err := svc.DeleteBatch(ids[0], nil); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if len(state.Batches) != 1 {
			t.Errorf("Expected 1 batch left, got %d", len(state.Batches))
		}
		if len(store.deletedBatch) != 1 || store.deletedBatch[0] != ids[0] {
			t.Errorf("Expected batch %s deleted from store, got %v", ids[0], store.deletedBatch)
		}

		if err := svc.DeleteBatch("no-such-batch", nil); err == nil {
			t.Error("Expected error deleting unknown batch, got nil")
		}
	})
}

func seedActiveOrders(t *testing.T, svc *BatchService, n int) {
	t.Helper()
	svc.CreateBatch()
	for i := 1; i <= n; i++ {
		if _, err := svc.AddOrderToWorkingSet(orderRequest(fmt.Sprintf("ORD-%d", i), 10)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	batch, err := svc.SaveBatch("Paged", "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	svc.SwitchActiveBatch(batch.ID)
}

func TestSelection(t *testing.T) {
	t.Run("Select One Order", func(t *testing.T) {
		svc, state, _ := newBatchService(t)
		seedActiveOrders(t, svc, 3)

		orderID := state.activeBatch().Orders[1].ID
		if err := svc.SelectOrder(orderID, true); err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if !state.activeBatch().Orders[1].Selected {
			t.Error("Expected order selected")
		}

		if err := svc.SelectOrder(orderID, false); err != nil {
			t.Fatalf("Deselect failed: %v", err)
		}
		if state.activeBatch().Orders[1].Selected {
			t.Error("Expected order deselected")
		}

		if err := svc.SelectOrder("no-such-order", true); err == nil {
			t.Error("Expected error selecting unknown order, got nil")
		}
	})

	t.Run("Select All Affects Current Page Only", func(t *testing.T) {
		svc, state, _ := newBatchService(t)
		seedActiveOrders(t, svc, 15)

		svc.Paginate(2, "")
		if err := svc.SelectAllOnPage(true); err != nil {
			t.Fatalf("SelectAll failed: %v", err)
		}

		orders := state.activeBatch().Orders
		for i, o := range orders {
			onPage2 := i >= 10
			if o.Selected != onPage2 {
				t.Errorf("Order %d: expected selected=%v, got %v", i, onPage2, o.Selected)
			}
		}
	})
}

func TestPagination(t *testing.T) {
	t.Run("Total Pages Rounds Up", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		seedActiveOrders(t, svc, 25)

		page := svc.GetPage()
		if page.TotalPages != 3 {
			t.Errorf("Expected 3 pages for 25 orders, got %d", page.TotalPages)
		}
		if page.TotalCount != 25 {
			t.Errorf("Expected total count 25, got %d", page.TotalCount)
		}
		if len(page.Orders) != 10 {
			t.Errorf("Expected 10 orders on page 1, got %d", len(page.Orders))
		}
	})

	t.Run("Empty List Still Has One Page", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		page := svc.GetPage()
		if page.TotalPages != 1 {
			t.Errorf("Expected 1 page with no active batch, got %d", page.TotalPages)
		}
		if len(page.Orders) != 0 {
			t.Errorf("Expected empty page, got %d orders", len(page.Orders))
		}
	})

	t.Run("Named Moves", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		seedActiveOrders(t, svc, 25)

		if page := svc.Paginate(0, PageLast); page.Page != 3 {
			t.Errorf("Expected last = page 3, got %d", page.Page)
		}
		if page := svc.Paginate(0, PagePrev); page.Page != 2 {
			t.Errorf("Expected prev = page 2, got %d", page.Page)
		}
		if page := svc.Paginate(0, PageNext); page.Page != 3 {
			t.Errorf("Expected next = page 3, got %d", page.Page)
		}
		if page := svc.Paginate(0, PageFirst); page.Page != 1 {
			t.Errorf("Expected first = page 1, got %d", page.Page)
		}
	})

	t.Run("Moves Clamp At The Edges", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		seedActiveOrders(t, svc, 25)

		if page := svc.Paginate(0, PagePrev); page.Page != 1 {
			t.Errorf("Expected prev from page 1 to stay at 1, got %d", page.Page)
		}
		svc.Paginate(0, PageLast)
		if page := svc.Paginate(0, PageNext); page.Page != 3 {
			t.Errorf("Expected next from last page to stay at 3, got %d", page.Page)
		}
		if page := svc.Paginate(99, ""); page.Page != 3 {
			t.Errorf("Expected absolute page 99 clamped to 3, got %d", page.Page)
		}
		if page := svc.Paginate(-5, ""); page.Page != 1 {
			t.Errorf("Expected absolute page -5 clamped to 1, got %d", page.Page)
		}
	})

	t.Run("Last Page Is Partial", func(t *testing.T) {
		svc, _, _ := newBatchService(t)
		seedActiveOrders(t, svc, 25)

		page := svc.Paginate(0, PageLast)
		if len(page.Orders) != 5 {
			t.Errorf("Expected 5 orders on the last page, got %d", len(page.Orders))
		}
		if page.Orders[0].Code != "ORD-21" {
			t.Errorf("Expected ORD-21 first on page 3, got '%s'", page.Orders[0].Code)
		}
	})
}
