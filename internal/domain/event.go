package domain

import "time"

// EventType вид события жизненного цикла рекламы.
type EventType string

const (
	EventImpression    EventType = "impression"
	EventClick         EventType = "click"
	EventViewable      EventType = "viewable"
	EventFallback      EventType = "fallback"
	EventClose         EventType = "close"
	EventConsentChange EventType = "consent_change"
)

// KnownEventTypes перечисляет допустимые виды событий.
var KnownEventTypes = []EventType{
	EventImpression,
	EventClick,
	EventViewable,
	EventFallback,
	EventClose,
	EventConsentChange,
}

// Valid проверяет вид события.
func (t EventType) Valid() bool {
	for _, known := range KnownEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// AdEvent сохраненное событие телеметрии. События append-only: запись
// никогда не мутируется после создания.
type AdEvent struct {
	ID           int64     `gorm:"primaryKey;column:id" json:"id"`
	Type         string    `gorm:"column:type;size:30;not null;index" json:"type"`
	Placement    string    `gorm:"column:placement;size:50;index" json:"placement,omitempty"`
	Size         *string   `gorm:"column:size;size:20" json:"size,omitempty"`
	Variant      *string   `gorm:"column:variant;size:50" json:"variant,omitempty"`
	ViewDuration *int64    `gorm:"column:view_duration_ms" json:"view_duration_ms,omitempty"`
	Metadata     *string   `gorm:"column:metadata;type:text" json:"metadata,omitempty"` // свободная форма, JSON
	SessionID    string    `gorm:"column:session_id;size:64;index" json:"session_id"`
	VisitorID    *string   `gorm:"column:visitor_id;size:64" json:"visitor_id,omitempty"`
	PageURL      *string   `gorm:"column:page_url;size:500" json:"page_url,omitempty"`
	Referer      *string   `gorm:"column:referer;size:500" json:"referer,omitempty"`
	Viewport     *string   `gorm:"column:viewport;size:20" json:"viewport,omitempty"`
	UserAgent    *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	DeviceType   *string   `gorm:"column:device_type;size:10" json:"device_type,omitempty"` // 'desktop', 'mobile', 'tablet', 'bot'
	Browser      *string   `gorm:"column:browser;size:50" json:"browser,omitempty"`
	OS           *string   `gorm:"column:os;size:50" json:"os,omitempty"`
	OccurredAt   time.Time `gorm:"column:occurred_at;index" json:"occurred_at"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName возвращает название таблицы для GORM
func (AdEvent) TableName() string {
	return "ad_events"
}

// GetDeviceType возвращает тип устройства для обратной совместимости
func (e *AdEvent) GetDeviceType() string {
	if e.DeviceType != nil {
		return *e.DeviceType
	}
	return "unknown"
}
