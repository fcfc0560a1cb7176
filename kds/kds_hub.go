// Package kds menyiarkan event order, meja dan pembayaran ke layar dapur dan
// kasir lewat websocket. Pengiriman bersifat best-effort.
package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Event types
const (
	EventOrderUpdate     = "order_update"
	EventTableUpdate     = "table_update"
	EventStaffNotif      = "staff_notification"
	EventPaymentSuccess  = "payment_success"
	EventDashboardUpdate = "dashboard_update"
)

// Roles
const (
	RoleKitchen = "kitchen"
	RoleCashier = "cashier"
	RoleAdmin   = "admin"
)

// kitchenEvents -> event yang relevan untuk layar dapur
var kitchenEvents = map[string]bool{
	EventOrderUpdate: true,
	EventStaffNotif:  true,
}

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

const (
	// writeWait -> batas waktu satu kali tulis ke client
	writeWait = 10 * time.Second
	// sendBuffer -> jumlah pesan yang boleh antri per client sebelum client dilepas
	sendBuffer = 64
)

// client -> satu koneksi dengan antrian kirim sendiri, ditulis oleh writePump
type client struct {
	conn *websocket.Conn
	role string
	send chan []byte
}

// Hub menampung semua client KDS (kitchen, cashier, admin).
// Broadcast tidak pernah menunggu socket: pesan masuk antrian tiap client.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func ValidRole(role string) bool {
	return role == RoleKitchen || role == RoleCashier || role == RoleAdmin
}

// Register -> menambahkan connection dengan role dan menjalankan writer-nya
func (h *Hub) Register(conn *websocket.Conn, role string) {
	c := &client{conn: conn, role: role, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()

	go h.writePump(c)
}

// Unregister -> melepaskan connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if c, ok := h.clients[conn]; ok {
		h.drop(c)
	}
}

// drop -> dipanggil dengan mutex terkunci. Menutup conn juga membatalkan tulis yang sedang berjalan.
func (h *Hub) drop(c *client) {
	delete(h.clients, c.conn)
	close(c.send)
	c.conn.Close()
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		err := c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err == nil {
			err = c.conn.WriteMessage(websocket.TextMessage, data)
		}
		if err != nil {
			utils.ErrorLogger.Warnf("Error writing to %s client: %v", c.role, err)
			h.Unregister(c.conn)
			return
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// BroadcastOrderUpdate -> order baru atau status berubah
func (h *Hub) BroadcastOrderUpdate(order models.Order) {
	h.Broadcast(Message{Event: EventOrderUpdate, Data: order})
}

// BroadcastTableUpdate -> status meja
func (h *Hub) BroadcastTableUpdate(table models.Table) {
	h.Broadcast(Message{Event: EventTableUpdate, Data: table})
}

// BroadcastPaymentSuccess -> pembayaran tercatat dan order selesai
func (h *Hub) BroadcastPaymentSuccess(payment models.Payment, order models.Order) {
	h.Broadcast(Message{
		Event: EventPaymentSuccess,
		Data: map[string]interface{}{
			"payment": payment,
			"order":   order,
		},
	})
}

// BroadcastStaffNotification -> notifikasi teks untuk staff
func (h *Hub) BroadcastStaffNotification(message string) {
	h.Broadcast(Message{Event: EventStaffNotif, Data: message})
}

// BroadcastDashboardUpdate -> snapshot baru tersedia
func (h *Hub) BroadcastDashboardUpdate(data interface{}) {
	h.Broadcast(Message{Event: EventDashboardUpdate, Data: data})
}

// Broadcast -> antrikan ke semua client yang berhak menerima event ini.
// Client yang antriannya penuh dilepas.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, c := range h.clients {
		if c.role == RoleKitchen && !kitchenEvents[msg.Event] {
			continue
		}
		select {
		case c.send <- data:
		default:
			utils.ErrorLogger.Warnf("Dropping slow %s client, %s not delivered", c.role, msg.Event)
			h.drop(c)
		}
	}
}
