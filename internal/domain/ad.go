package domain

import (
	"errors"
	"strings"
	"time"
)

// Placement идентифицирует слот страницы, в котором может появиться реклама.
// Набор закрыт: неизвестный placement никогда не матчится компонентами.
type Placement string

const (
	PlacementHomeTop        Placement = "home_top"
	PlacementHomeMiddle     Placement = "home_middle"
	PlacementHomeAfterCard3 Placement = "home_after_card_3"
	PlacementArticleTop     Placement = "article_top"
	PlacementArticleMiddle  Placement = "article_middle"
	PlacementArticleBottom  Placement = "article_bottom"
	PlacementCategoryTop    Placement = "category_top"
	PlacementCategorySide   Placement = "category_sidebar"
	PlacementFooter         Placement = "footer"
	PlacementMobileSticky   Placement = "mobile_sticky"
)

// AllPlacements перечисляет закрытый набор слотов.
var AllPlacements = []Placement{
	PlacementHomeTop,
	PlacementHomeMiddle,
	PlacementHomeAfterCard3,
	PlacementArticleTop,
	PlacementArticleMiddle,
	PlacementArticleBottom,
	PlacementCategoryTop,
	PlacementCategorySide,
	PlacementFooter,
	PlacementMobileSticky,
}

// Valid проверяет, входит ли placement в закрытый набор.
func (p Placement) Valid() bool {
	for _, known := range AllPlacements {
		if p == known {
			return true
		}
	}
	return false
}

// AdStatus статус креатива в инвентаре.
type AdStatus string

const (
	AdStatusActive   AdStatus = "active"
	AdStatusInactive AdStatus = "inactive"
)

// Ad рекламный креатив.
type Ad struct {
	ID           string    `json:"id"`
	RemoteID     string    `json:"remoteId,omitempty"` // идентификатор в сетевом хранилище, если есть
	Title        string    `json:"title"`
	SmartlinkURL string    `json:"smartlinkUrl"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Placement    Placement `json:"placement"`
	Status       AdStatus  `json:"status"`
	Priority     int       `json:"priority"`
	Impressions  int64     `json:"impressions"`
	Clicks       int64     `json:"clicks"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsActive сообщает, участвует ли креатив в показах.
func (a *Ad) IsActive() bool {
	return a.Status == AdStatusActive
}

// PlacementRecord справочная запись слота для отчетности.
type PlacementRecord struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"column:name;size:50;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName возвращает название таблицы для GORM
func (PlacementRecord) TableName() string {
	return "placements"
}

var (
	ErrAdMissingTitle     = errors.New("ad record has no title")
	ErrAdMissingSmartlink = errors.New("ad record has no smartlink url")
	ErrAdUnknownPlacement = errors.New("ad record has unknown placement")
)

// WireAd описывает запись креатива в том виде, в каком её отдаёт внешнее
// хранилище. Поле id может прийти как "id" или как "_id"; числовые поля
// опциональны.
type WireAd struct {
	ID           string  `json:"id,omitempty"`
	MongoID      string  `json:"_id,omitempty"`
	Title        string  `json:"title"`
	SmartlinkURL string  `json:"smartlinkUrl"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	Placement    string  `json:"placement"`
	Status       string  `json:"status,omitempty"`
	Priority     *int    `json:"priority,omitempty"`
	Impressions  *int64  `json:"impressions,omitempty"`
	Clicks       *int64  `json:"clicks,omitempty"`
	CreatedAt    *string `json:"createdAt,omitempty"`
	UpdatedAt    *string `json:"updatedAt,omitempty"`
}

// NormalizeWireAd валидирует запись с провода и приводит ее к внутренней
// форме: заполняет дефолты, отклоняет некорректные записи. Бизнес-логика
// никогда не видит сырую форму.
func NormalizeWireAd(w WireAd, now time.Time) (*Ad, error) {
	if strings.TrimSpace(w.Title) == "" {
		return nil, ErrAdMissingTitle
	}
	if strings.TrimSpace(w.SmartlinkURL) == "" {
		return nil, ErrAdMissingSmartlink
	}

	placement := Placement(w.Placement)
	if !placement.Valid() {
		return nil, ErrAdUnknownPlacement
	}

	id := w.ID
	remoteID := w.MongoID
	if id == "" {
		id = w.MongoID
	}

	status := AdStatusActive
	if w.Status == string(AdStatusInactive) {
		status = AdStatusInactive
	}

	ad := &Ad{
		ID:           id,
		RemoteID:     remoteID,
		Title:        w.Title,
		SmartlinkURL: w.SmartlinkURL,
		ImageURL:     w.ImageURL,
		Placement:    placement,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if w.Priority != nil {
		ad.Priority = *w.Priority
	}
	if w.Impressions != nil {
		ad.Impressions = *w.Impressions
	}
	if w.Clicks != nil {
		ad.Clicks = *w.Clicks
	}
	if w.CreatedAt != nil {
		if t, err := time.Parse(time.RFC3339, *w.CreatedAt); err == nil {
			ad.CreatedAt = t
		}
	}
	if w.UpdatedAt != nil {
		if t, err := time.Parse(time.RFC3339, *w.UpdatedAt); err == nil {
			ad.UpdatedAt = t
		}
	}

	return ad, nil
}

// ToWire переводит креатив обратно в форму провода для PUT/POST запросов.
func (a *Ad) ToWire() WireAd {
	created := a.CreatedAt.Format(time.RFC3339)
	updated := a.UpdatedAt.Format(time.RFC3339)
	priority := a.Priority
	impressions := a.Impressions
	clicks := a.Clicks

	return WireAd{
		ID:           a.ID,
		MongoID:      a.RemoteID,
		Title:        a.Title,
		SmartlinkURL: a.SmartlinkURL,
		ImageURL:     a.ImageURL,
		Placement:    string(a.Placement),
		Status:       string(a.Status),
		Priority:     &priority,
		Impressions:  &impressions,
		Clicks:       &clicks,
		CreatedAt:    &created,
		UpdatedAt:    &updated,
	}
}
