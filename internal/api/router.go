package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	locationsHandler := &LocationsHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	inventoryHandler := &InventoryHandler{DB: db}
	stockHandler := &StockHandler{DB: db}
	ledgerHandler := &LedgerHandler{DB: db}
	reportsHandler := &ReportsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(RequireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("DELETE /api/users/{id}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Locations: read (all roles), write (admin).
	mux.Handle("GET /api/locations", authMW(http.HandlerFunc(locationsHandler.List)))
	mux.Handle("POST /api/locations", authMW(RequireAdmin(http.HandlerFunc(locationsHandler.Create))))
	mux.Handle("PUT /api/locations/{id}", authMW(RequireAdmin(http.HandlerFunc(locationsHandler.Update))))
	mux.Handle("DELETE /api/locations/{id}", authMW(RequireAdmin(http.HandlerFunc(locationsHandler.Delete))))

	// Items: read (all roles), write (admin).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(RequireAdmin(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(RequireAdmin(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("DELETE /api/items/{id}", authMW(RequireAdmin(http.HandlerFunc(itemsHandler.Delete))))

	// Inventory reads (all roles).
	mux.Handle("GET /api/inventory", authMW(http.HandlerFunc(inventoryHandler.List)))
	mux.Handle("GET /api/inventory/low", authMW(http.HandlerFunc(inventoryHandler.LowStock)))
	mux.Handle("GET /api/inventory/quantity", authMW(http.HandlerFunc(inventoryHandler.Quantity)))

	// Stock changes. Capability gates live in the services: increases
	// need add_stock, audits need the audit capability.
	mux.Handle("POST /api/stock/adjust", authMW(http.HandlerFunc(stockHandler.Adjust)))
	mux.Handle("POST /api/audits", authMW(http.HandlerFunc(stockHandler.Audit)))

	// Ledger reads, replay, prune.
	mux.Handle("GET /api/ledger", authMW(http.HandlerFunc(ledgerHandler.List)))
	mux.Handle("GET /api/items/{id}/ledger", authMW(http.HandlerFunc(ledgerHandler.ItemHistory)))
	mux.Handle("GET /api/items/{id}/replay", authMW(http.HandlerFunc(ledgerHandler.Replay)))
	mux.Handle("POST /api/ledger/prune", authMW(RequireAdmin(http.HandlerFunc(ledgerHandler.Prune))))

	// Reports.
	mux.Handle("GET /api/reports/shifts", authMW(http.HandlerFunc(reportsHandler.Shifts)))

	return mux
}
