// Package domain defines the persistence models for orders, their audit
// trail, notifications, users and credentials. These types are mapped with
// GORM and form the core data layer of the order backend.
//
// JSON tags follow the wire contract consumed by the dashboard frontend,
// which keeps the historical Spanish field names.
package domain

import (
	"time"
)

// Role is the authorization role attached to a User.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleUser:
		return true
	}
	return false
}

// IsStaff reports whether r may operate the order dashboard.
func (r Role) IsStaff() bool { return r == RoleAdmin || r == RoleStaff }

// User is an authenticated operator or customer of the dashboard.
//
// Fields:
//   - Email: unique login identifier.
//   - HashedPassword: bcrypt hash, never serialized.
//   - Role: admin | staff | user.
//   - TelegramID: optional link between a dashboard account and a chat user.
type User struct {
	ID             uint      `json:"id"            gorm:"primaryKey"`
	Email          string    `json:"email"         gorm:"type:varchar(255);not null;uniqueIndex"`
	HashedPassword string    `json:"-"             gorm:"type:varchar(255);not null"`
	FullName       *string   `json:"full_name"     gorm:"type:varchar(255)"`
	Role           Role      `json:"role"          gorm:"type:varchar(16);not null;default:'user'"`
	IsActive       bool      `json:"is_active"     gorm:"not null"`
	TelegramID     *int64    `json:"telegram_id"   gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Order is a customer request captured from chat or created by staff.
// Customers see it as "#<ID>".
//
// Every visited state owns exactly one timestamp; the lifecycle engine sets
// each of them once and never clears them.
type Order struct {
	ID               uint     `json:"id"                gorm:"primaryKey"`
	UserID           *uint    `json:"usuario_id"        gorm:"index"`
	ExternalUserID   int64    `json:"telegram_user_id"  gorm:"not null;index"`
	ExternalUsername *string  `json:"telegram_username" gorm:"type:varchar(255)"`
	ExternalMsgID    int64    `json:"mensaje_id"        gorm:"not null;index"`
	Priority         Priority `json:"prioridad"         gorm:"type:varchar(16);not null;default:'medium';index"`
	State            State    `json:"estado"            gorm:"type:varchar(32);not null;default:'pending_confirmation';index"`
	RequestedDate    *string  `json:"fecha_solicitada"  gorm:"type:varchar(10)"`
	RequestedTime    *string  `json:"hora_solicitada"   gorm:"type:varchar(5)"`
	ItemSummary      string   `json:"resumen_items"     gorm:"type:text;not null"`
	Notes            *string  `json:"notas_adicionales" gorm:"type:text"`
	AssignedTo       *string  `json:"asignado_a"        gorm:"type:varchar(255);index"`

	CreatedAt       time.Time  `json:"fecha_creacion"     gorm:"index"`
	UpdatedAt       time.Time  `json:"fecha_actualizacion"`
	ConfirmedAt     *time.Time `json:"fecha_confirmacion"`
	InPreparationAt *time.Time `json:"fecha_preparacion"`
	ReadyAt         *time.Time `json:"fecha_listo"`
	CompletedAt     *time.Time `json:"fecha_completado"`
	CancelledAt     *time.Time `json:"fecha_cancelado"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// HistoryEntry is an append-only audit row written on every transition.
type HistoryEntry struct {
	ID            uint      `json:"id"              gorm:"primaryKey"`
	OrderID       uint      `json:"pedido_id"       gorm:"not null;index"`
	PreviousState *State    `json:"estado_anterior" gorm:"type:varchar(32)"`
	NewState      State     `json:"estado_nuevo"    gorm:"type:varchar(32);not null"`
	Actor         string    `json:"modificado_por"  gorm:"type:varchar(255);not null"`
	Note          *string   `json:"notas"           gorm:"type:text"`
	ChangedAt     time.Time `json:"fecha_cambio"    gorm:"not null;index"`

	Order Order `json:"-" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for HistoryEntry.
func (HistoryEntry) TableName() string { return "order_history" }

// NotificationCategory classifies a NotificationRecord.
type NotificationCategory string

const (
	NotifyStateChange NotificationCategory = "state_change"
	NotifyReminder    NotificationCategory = "reminder"
	NotifySummary     NotificationCategory = "summary"
)

// NotificationRecord is the outcome of exactly one delivery attempt.
// Rows are written once and never mutated.
type NotificationRecord struct {
	ID             uint                 `json:"id"               gorm:"primaryKey"`
	OrderID        *uint                `json:"pedido_id"        gorm:"index"`
	ExternalUserID int64                `json:"telegram_user_id" gorm:"not null"`
	Category       NotificationCategory `json:"tipo"             gorm:"type:varchar(32);not null"`
	Message        string               `json:"mensaje"          gorm:"type:text;not null"`
	Success        bool                 `json:"enviado"          gorm:"not null"`
	Error          *string              `json:"error"            gorm:"type:text"`
	SentAt         time.Time            `json:"fecha_envio"      gorm:"not null"`

	Order *Order `json:"-" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for NotificationRecord.
func (NotificationRecord) TableName() string { return "notifications" }

// RefreshToken stores the SHA-256 hash of an opaque refresh token.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	TokenHash string    `gorm:"type:char(64);not null;uniqueIndex"`
	UserID    uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Revoked   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for RefreshToken.
func (RefreshToken) TableName() string { return "refresh_tokens" }

// MessageKind distinguishes typed from spoken chat input.
type MessageKind string

const (
	MessageText  MessageKind = "text"
	MessageVoice MessageKind = "voice"
)

// MessageLog records every inbound chat message, whether or not it turned
// into an order.
type MessageLog struct {
	ID               uint        `json:"id"                gorm:"primaryKey"`
	ExternalUserID   int64       `json:"telegram_user_id"  gorm:"not null;index"`
	ExternalUsername *string     `json:"telegram_username" gorm:"type:varchar(255)"`
	ExternalMsgID    int64       `json:"mensaje_id"        gorm:"not null"`
	Kind             MessageKind `json:"tipo_mensaje"      gorm:"type:varchar(16);not null"`
	Content          string      `json:"contenido"         gorm:"type:text;not null"`
	Transcription    *string     `json:"transcripcion"     gorm:"type:text"`
	IsOrder          bool        `json:"es_pedido"         gorm:"not null;default:false"`
	ReceivedAt       time.Time   `json:"fecha_recepcion"   gorm:"not null;index"`
}

// TableName returns the database table name for MessageLog.
func (MessageLog) TableName() string { return "message_logs" }

// OrderComment is a staff note attached to an order.
type OrderComment struct {
	ID        uint      `json:"id"             gorm:"primaryKey"`
	OrderID   uint      `json:"pedido_id"      gorm:"not null;index"`
	UserID    uint      `json:"usuario_id"     gorm:"not null;index"`
	Body      string    `json:"comentario"     gorm:"type:text;not null"`
	CreatedAt time.Time `json:"fecha_creacion"`

	Order Order `json:"-" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User  User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for OrderComment.
func (OrderComment) TableName() string { return "order_comments" }

// OrderImage references an externally stored image for an order.
type OrderImage struct {
	ID        uint      `json:"id"             gorm:"primaryKey"`
	OrderID   uint      `json:"pedido_id"      gorm:"not null;index"`
	URL       string    `json:"url"            gorm:"type:text;not null"`
	Filename  string    `json:"filename"       gorm:"type:varchar(255);not null"`
	SizeBytes *int64    `json:"size_bytes"`
	MimeType  *string   `json:"mime_type"      gorm:"type:varchar(100)"`
	CreatedAt time.Time `json:"fecha_creacion"`

	Order Order `json:"-" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for OrderImage.
func (OrderImage) TableName() string { return "order_images" }

// SavedFilter is a named dashboard filter owned by a user. FiltersJSON holds
// the raw filter object; at most one filter per user is the default.
type SavedFilter struct {
	ID          uint      `json:"id"              gorm:"primaryKey"`
	UserID      uint      `json:"usuario_id"      gorm:"not null;index"`
	Name        string    `json:"nombre"          gorm:"type:varchar(100);not null"`
	FiltersJSON string    `json:"filtros"         gorm:"type:text;not null"`
	IsDefault   bool      `json:"es_predeterminado" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"fecha_creacion"`
	UpdatedAt   time.Time `json:"fecha_actualizacion"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SavedFilter.
func (SavedFilter) TableName() string { return "saved_filters" }
