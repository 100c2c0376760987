package controllers

import (
	"fmt"
	"net/http"
	"receiptd/internal/persistence/interfaces"
	"receiptd/internal/services"
	"time"
)

type HealthController struct {
	service   services.ReceiptServiceInterface
	snapshots interfaces.SnapshotStoreInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Issuers       int     `json:"issuers"`
	Receipts      int     `json:"receipts"`
	Unsaved       bool    `json:"unsaved"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Issuers:       len(hc.service.ListIssuers()),
		Receipts:      len(hc.service.ListHistory()),
		Unsaved:       hc.snapshots.Dirty(),
	}
	if resp.Unsaved {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.ReceiptServiceInterface, snapshots interfaces.SnapshotStoreInterface) *HealthController {
	return &HealthController{
		service:   service,
		snapshots: snapshots,
		startTime: time.Now(),
	}
}
