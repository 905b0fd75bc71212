package system

import "time"

// MigrateRequest selects a maintenance action
type MigrateRequest struct {
	Action string `json:"action" validate:"required"`
}

// MigrateResponse reports a finished maintenance action
type MigrateResponse struct {
	OK                 bool    `json:"ok"`
	Message            string  `json:"message"`
	ProfissionalPadrao string  `json:"profissional_padrao"`
	PendenciasUpdated  int     `json:"pendencias_atualizadas"`
	IDs                []int64 `json:"ids"`
}

// HealthResponse reports store reachability
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// TestDBResponse reports the pendência table state
type TestDBResponse struct {
	OK          bool      `json:"ok"`
	CurrentTime time.Time `json:"current_time"`
	TableExists bool      `json:"table_exists"`
	RecordCount int64     `json:"record_count"`
}

// TablesResponse lists the tables of the clinic schema
type TablesResponse struct {
	OK     bool     `json:"ok"`
	Schema string   `json:"schema"`
	Tables []string `json:"tables"`
	Count  int      `json:"count"`
}
