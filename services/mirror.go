package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const opMirror = "mirror_sync"

var ErrMirrorNotConfigured = errors.New("spreadsheet webhook is not configured")

// MirrorResult is the webhook's reply.
type MirrorResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type mirrorPayload struct {
	Action   string            `json:"action"`
	Tables   []models.Table    `json:"tables"`
	Menu     []models.MenuItem `json:"menu"`
	Orders   []sheetOrder      `json:"orders"`
	Payments []models.Payment  `json:"payments"`
}

// sheetOrder -> kolom Orders di spreadsheet memakai "timestamp" untuk waktu order
type sheetOrder struct {
	models.Order
	Timestamp time.Time `json:"timestamp"`
}

// SheetMirror pushes full snapshots one way to a spreadsheet webhook. The
// sheet replaces each list wholesale; nothing is read back.
type SheetMirror struct {
	store       store.Store
	fallbackURL string
	httpClient  *http.Client
}

func NewSheetMirror(s store.Store, fallbackURL string, timeout time.Duration) *SheetMirror {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SheetMirror{
		store:       s,
		fallbackURL: fallbackURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// WebhookURL -> setting google_sheets_webhook, kalau kosong pakai config
func (m *SheetMirror) WebhookURL(ctx context.Context) string {
	url, err := m.store.GetSetting(ctx, models.SettingSheetsWebhook)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		utils.ErrorLogger.Warnf("mirror: cannot read webhook setting: %v", err)
	}
	if url = strings.TrimSpace(url); url != "" {
		return url
	}
	return m.fallbackURL
}

func (m *SheetMirror) Push(ctx context.Context, snap *Snapshot) (*MirrorResult, error) {
	url := m.WebhookURL(ctx)
	if url == "" {
		return nil, wrapError(opMirror, ErrValidation, ErrMirrorNotConfigured, "nothing to sync to")
	}

	payload := mirrorPayload{
		Action:   "sync",
		Tables:   nonNil(snap.Tables),
		Menu:     nonNil(snap.Menu),
		Orders:   make([]sheetOrder, 0, len(snap.Orders)),
		Payments: nonNil(snap.Payments),
	}
	for _, o := range snap.Orders {
		payload.Orders = append(payload.Orders, sheetOrder{Order: o, Timestamp: o.CreatedAt})
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, wrapError(opMirror, ErrUpstream, err, "cannot encode snapshot")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, wrapError(opMirror, ErrValidation, err, "invalid webhook url")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, wrapError(opMirror, ErrUpstream, err, "webhook call failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, wrapError(opMirror, ErrUpstream, err, "cannot read webhook response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, wrapError(opMirror, ErrUpstream, fmt.Errorf("status %d", resp.StatusCode), "webhook rejected the sync")
	}

	var result MirrorResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, wrapError(opMirror, ErrUpstream, err, "webhook replied with invalid json")
	}
	if !result.Success {
		return &result, wrapError(opMirror, ErrUpstream, errors.New(result.Message), "webhook reported failure")
	}

	utils.InfoLogger.Infof("mirror: synced %d tables, %d menu items, %d orders, %d payments",
		len(payload.Tables), len(payload.Menu), len(payload.Orders), len(payload.Payments))
	return &result, nil
}

// PushAsync -> fire-and-forget, kegagalan hanya dicatat
func (m *SheetMirror) PushAsync(snap *Snapshot) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.httpClient.Timeout)
		defer cancel()
		if _, err := m.Push(ctx, snap); err != nil && !errors.Is(err, ErrMirrorNotConfigured) {
			utils.ErrorLogger.Warnf("mirror: %v", err)
		}
	}()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
