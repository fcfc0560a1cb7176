package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// AdminController -> snapshot, sinkronisasi sheet, reconcile, laporan, setting dan metrik
type AdminController struct {
	Store      store.Store
	Snapshots  *services.Snapshotter
	Mirror     *services.SheetMirror
	Reconciler *services.Reconciler
	Reports    *services.Reports
	Metrics    *services.MetricsRecorder
	Hub        *kds.Hub
}

func NewAdminController(
	s store.Store,
	snapshots *services.Snapshotter,
	mirror *services.SheetMirror,
	reconciler *services.Reconciler,
	reports *services.Reports,
	metrics *services.MetricsRecorder,
	hub *kds.Hub,
) *AdminController {
	return &AdminController{
		Store:      s,
		Snapshots:  snapshots,
		Mirror:     mirror,
		Reconciler: reconciler,
		Reports:    reports,
		Metrics:    metrics,
		Hub:        hub,
	}
}

// GetSnapshot -> meja, menu, order dan payment dengan nomor versi
func (ac *AdminController) GetSnapshot(c *gin.Context) {
	snap, err := ac.Snapshots.Take(c.Request.Context())
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Snapshot", snap)
}

// SyncNow -> kirim snapshot ke webhook Google Sheets sekarang juga
func (ac *AdminController) SyncNow(c *gin.Context) {
	ctx := c.Request.Context()
	snap, err := ac.Snapshots.Take(ctx)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	result, err := ac.Mirror.Push(ctx, snap)
	if err != nil {
		utils.ErrorLogger.Warnf("manual sync failed: %v", err)
		respondLifecycleError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Synced snapshot version "+strconv.FormatUint(snap.Version, 10), result)
}

// GetReconcileReport -> daftar drift, tanpa perubahan data
func (ac *AdminController) GetReconcileReport(c *gin.Context) {
	report, err := ac.Reconciler.Inspect(c.Request.Context())
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	msg := "No drift found"
	if !report.Clean() {
		msg = "Drift found"
	}
	utils.RespondJSON(c, http.StatusOK, msg, report)
}

// RepairDrift -> perbaiki drift yang aman diperbaiki otomatis
func (ac *AdminController) RepairDrift(c *gin.Context) {
	report, err := ac.Reconciler.Repair(c.Request.Context())
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.InfoLogger.Printf("Reconcile: %d repaired, %d steps resolved, %d remaining",
		len(report.Results), report.ResolvedSteps, len(report.Remaining))
	if ac.Hub != nil && len(report.Results) > 0 {
		ac.Hub.BroadcastStaffNotification("Reconcile repaired " + strconv.Itoa(len(report.Results)) + " issue(s)")
	}
	utils.RespondJSON(c, http.StatusOK, "Reconcile finished", report)
}

// GetDailySummary -> ringkasan order hari ini
func (ac *AdminController) GetDailySummary(c *gin.Context) {
	summary, err := ac.Reports.DailySummary(c.Request.Context())
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily summary", summary)
}

// DownloadDailyReport -> laporan teks report-YYYY-MM-DD.txt
func (ac *AdminController) DownloadDailyReport(c *gin.Context) {
	filename, body, err := ac.Reports.DailyReport(c.Request.Context())
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// GetMetrics -> metrik lifecycle, jumlah client websocket dan versi snapshot terakhir
func (ac *AdminController) GetMetrics(c *gin.Context) {
	clients := 0
	if ac.Hub != nil {
		clients = ac.Hub.ClientCount()
	}
	utils.RespondJSON(c, http.StatusOK, "Metrics", gin.H{
		"lifecycle":         ac.Metrics.Snapshot(),
		"websocket_clients": clients,
		"snapshot_version":  ac.Snapshots.Version(),
	})
}

type settingsPayload struct {
	RestaurantName *string `json:"restaurant_name"`
	SheetsWebhook  *string `json:"google_sheets_webhook"`
}

// GetSettings -> nama restoran dan URL webhook
func (ac *AdminController) GetSettings(c *gin.Context) {
	ctx := c.Request.Context()
	settings := gin.H{}
	for _, key := range []string{models.SettingRestaurantName, models.SettingSheetsWebhook} {
		value, err := ac.Store.GetSetting(ctx, key)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		settings[key] = value
	}
	utils.RespondJSON(c, http.StatusOK, "Settings", settings)
}

// UpdateSettings -> hanya key yang dikirim yang diubah
func (ac *AdminController) UpdateSettings(c *gin.Context) {
	var req settingsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.RestaurantName != nil && strings.TrimSpace(*req.RestaurantName) == "" {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("restaurant_name cannot be empty"))
		return
	}
	if req.SheetsWebhook != nil {
		if err := validateWebhook(*req.SheetsWebhook); err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, err)
			return
		}
	}

	ctx := c.Request.Context()
	if req.RestaurantName != nil {
		if err := ac.Store.PutSetting(ctx, models.SettingRestaurantName, strings.TrimSpace(*req.RestaurantName)); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}
	if req.SheetsWebhook != nil {
		if err := ac.Store.PutSetting(ctx, models.SettingSheetsWebhook, strings.TrimSpace(*req.SheetsWebhook)); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.InfoLogger.Printf("Settings updated")
	ac.GetSettings(c)
}

// validateWebhook -> kosong berarti sinkronisasi dimatikan
func validateWebhook(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("google_sheets_webhook must be an http(s) URL")
	}
	return nil
}
