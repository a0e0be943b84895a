package enum

// ── Group A: State machines (ordered; see model.ItemStatus / model.OrderStatus) ──

const (
	OrderStatusPending = "pending"
	OrderStatusCooking = "cooking"
	OrderStatusReady   = "ready"
	OrderStatusServed  = "served"
	OrderStatusPaid    = "paid"
)

const (
	ItemStatusPending = "pending"
	ItemStatusCooking = "cooking"
	ItemStatusReady   = "ready"
	ItemStatusServed  = "served"
)

// StatusAll is the wildcard accepted by view filters.
const StatusAll = "all"

// ── Group B: Labels (no enforcement) ──

const (
	RoleCustomer = "customer"
	RoleWaiter   = "waiter"
	RoleKitchen  = "kitchen"
	RoleManager  = "manager"
)

const (
	MenuModeALaCarte = "a-la-carte"
	MenuModeBuffet   = "buffet"
)

const (
	WindowDay   = "day"
	WindowWeek  = "week"
	WindowMonth = "month"
)

// ── Group C: Catalog and event names ──

// CategoryBuffetPackage marks a per-person buffet tier rather than a dish.
const CategoryBuffetPackage = "Buffet Package"

const (
	EventOrderCreated       = "order.created"
	EventOrderUpdated       = "order.updated"
	EventOrderStatusChanged = "order.status_changed"
	EventItemStatusChanged  = "order.item_status_changed"
	EventOrderSynced        = "order.synced"
)

// IsValidRole reports whether s names a known role label.
func IsValidRole(s string) bool {
	switch s {
	case RoleCustomer, RoleWaiter, RoleKitchen, RoleManager:
		return true
	}
	return false
}

// IsValidWindow reports whether s names a statistics window.
func IsValidWindow(s string) bool {
	switch s {
	case WindowDay, WindowWeek, WindowMonth:
		return true
	}
	return false
}
