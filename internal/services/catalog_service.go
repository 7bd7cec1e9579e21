package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/models"
	"github.com/charlesng35/soiree/internal/permissions"
	apperrors "github.com/charlesng35/soiree/pkg/errors"
	"github.com/charlesng35/soiree/pkg/logger"
)

const (
	dateLayout           = "2006-01-02"
	defaultTimelineOrder = 99
)

// EventInput is the admin form for events.
type EventInput struct {
	Title           string   `json:"title" form:"title"`
	Date            string   `json:"date" form:"date"`
	Time            string   `json:"time" form:"time"`
	LocationName    string   `json:"location_name" form:"locationName"`
	LocationAddress string   `json:"location_address" form:"locationAddress"`
	Description     string   `json:"description" form:"description"`
	Order           *int     `json:"order" form:"order"`
	VisibleToRoles  []string `json:"visible_to_roles" form:"visibleToRoles"`
}

// SubEventInput is the admin form for sub-events. Date is optional.
type SubEventInput struct {
	EventID        string   `json:"event_id" form:"eventId"`
	Title          string   `json:"title" form:"title"`
	Date           string   `json:"date" form:"date"`
	Time           string   `json:"time" form:"time"`
	Description    string   `json:"description" form:"description"`
	Order          *int     `json:"order" form:"order"`
	VisibleToRoles []string `json:"visible_to_roles" form:"visibleToRoles"`
}

// TimelineInput is the admin form for timeline entries.
type TimelineInput struct {
	Time        string   `json:"time" form:"time"`
	Title       string   `json:"title" form:"title"`
	Description string   `json:"description" form:"description"`
	Order       *int     `json:"order" form:"order"`
	VisibleTo   []string `json:"visible_to" form:"visibleTo"`
}

// CatalogService stores events, sub-events and timeline entries and serves
// role-filtered views of them.
type CatalogService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(db *gorm.DB) (*CatalogService, error) {
	if db == nil {
		return nil, errors.New("catalog service: db is required")
	}
	return &CatalogService{db: db, log: logger.WithModule("catalog")}, nil
}

func parseDate(value string) (datatypes.Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return datatypes.Date{}, apperrors.NewBadRequest("Invalid date")
	}
	return datatypes.Date(t), nil
}

func orderOr(order *int, fallback int) int {
	if order == nil {
		return fallback
	}
	return *order
}

func visibilityMask(roles []string) string {
	return permissions.NewRoleSet(roles...).String()
}

func eventsQuery(db *gorm.DB) *gorm.DB {
	return db.Preload("SubEvents", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sort_order ASC")
	}).Order("sort_order ASC")
}

// ListEvents returns every event with its sub-events, ordered by Order.
func (s *CatalogService) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := eventsQuery(s.db.WithContext(ensureContext(ctx))).Find(&events).Error; err != nil {
		return nil, failedUnlessApp("load events", err, s.log)
	}
	return events, nil
}

// VisibleEvents returns the events and sub-events visible to role.
func (s *CatalogService) VisibleEvents(ctx context.Context, role string) ([]models.Event, error) {
	events, err := s.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	return FilterEvents(events, role), nil
}

// FilterEvents drops events, and sub-events of kept events, not visible to role.
func FilterEvents(events []models.Event, role string) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, event := range events {
		if !permissions.Visible(event.VisibleToRoles, role) {
			continue
		}
		subs := make([]models.SubEvent, 0, len(event.SubEvents))
		for _, sub := range event.SubEvents {
			if permissions.Visible(sub.VisibleToRoles, role) {
				subs = append(subs, sub)
			}
		}
		event.SubEvents = subs
		out = append(out, event)
	}
	return out
}

// CreateEvent stores a new event.
func (s *CatalogService) CreateEvent(ctx context.Context, admin *models.Guest, input EventInput) (*models.Event, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.Date) == "" {
		return nil, apperrors.NewBadRequest("Title and date are required")
	}
	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	event := models.Event{
		Title:           title,
		Date:            date,
		Time:            strings.TrimSpace(input.Time),
		LocationName:    strings.TrimSpace(input.LocationName),
		LocationAddress: strings.TrimSpace(input.LocationAddress),
		Description:     strings.TrimSpace(input.Description),
		Order:           orderOr(input.Order, 0),
		VisibleToRoles:  visibilityMask(input.VisibleToRoles),
	}
	if err := s.db.WithContext(ensureContext(ctx)).Create(&event).Error; err != nil {
		return nil, failedUnlessApp("create event", err, s.log)
	}
	return &event, nil
}

// UpdateEvent overwrites an event.
func (s *CatalogService) UpdateEvent(ctx context.Context, admin *models.Guest, id string, input EventInput) (*models.Event, error) {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	title := strings.TrimSpace(input.Title)
	if id == "" || title == "" || strings.TrimSpace(input.Date) == "" {
		return nil, apperrors.NewBadRequest("ID, title and date are required")
	}
	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := s.db.WithContext(ctx).Take(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Event not found")
		}
		return nil, failedUnlessApp("update event", err, s.log)
	}

	updates := map[string]any{
		"title":            title,
		"date":             date,
		"time":             strings.TrimSpace(input.Time),
		"location_name":    strings.TrimSpace(input.LocationName),
		"location_address": strings.TrimSpace(input.LocationAddress),
		"description":      strings.TrimSpace(input.Description),
		"sort_order":       orderOr(input.Order, 0),
		"visible_to_roles": visibilityMask(input.VisibleToRoles),
	}
	if err := s.db.WithContext(ctx).Model(&event).Updates(updates).Error; err != nil {
		return nil, failedUnlessApp("update event", err, s.log)
	}
	return &event, nil
}

// DeleteEvent removes an event together with its sub-events.
func (s *CatalogService) DeleteEvent(ctx context.Context, admin *models.Guest, id string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	err := s.db.WithContext(ensureContext(ctx)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.SubEvent{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Event{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound.WithMessage("Event not found")
		}
		return nil
	})
	if err != nil {
		return failedUnlessApp("delete event", err, s.log)
	}
	return nil
}

func buildSubEvent(input SubEventInput) (models.SubEvent, error) {
	sub := models.SubEvent{
		EventID:        strings.TrimSpace(input.EventID),
		Title:          strings.TrimSpace(input.Title),
		Time:           strings.TrimSpace(input.Time),
		Description:    strings.TrimSpace(input.Description),
		Order:          orderOr(input.Order, 0),
		VisibleToRoles: visibilityMask(input.VisibleToRoles),
	}
	if strings.TrimSpace(input.Date) != "" {
		d, err := parseDate(input.Date)
		if err != nil {
			return sub, err
		}
		sub.Date = &d
	}
	return sub, nil
}

// CreateSubEvent adds a sub-event to an existing event.
func (s *CatalogService) CreateSubEvent(ctx context.Context, admin *models.Guest, input SubEventInput) (*models.SubEvent, error) {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" || strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewBadRequest("Event ID and title are required")
	}
	sub, err := buildSubEvent(input)
	if err != nil {
		return nil, err
	}

	var parent models.Event
	if err := s.db.WithContext(ctx).Select("id").Take(&parent, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Event not found")
		}
		return nil, failedUnlessApp("create sub-event", err, s.log)
	}

	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, failedUnlessApp("create sub-event", err, s.log)
	}
	return &sub, nil
}

// UpdateSubEvent overwrites a sub-event. Its parent event is not changed.
func (s *CatalogService) UpdateSubEvent(ctx context.Context, admin *models.Guest, id string, input SubEventInput) (*models.SubEvent, error) {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewBadRequest("ID and title are required")
	}
	fields, err := buildSubEvent(input)
	if err != nil {
		return nil, err
	}

	var sub models.SubEvent
	if err := s.db.WithContext(ctx).Take(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Sub-event not found")
		}
		return nil, failedUnlessApp("update sub-event", err, s.log)
	}
	updates := map[string]any{
		"title":            fields.Title,
		"date":             fields.Date,
		"time":             fields.Time,
		"description":      fields.Description,
		"sort_order":       fields.Order,
		"visible_to_roles": fields.VisibleToRoles,
	}
	if err := s.db.WithContext(ctx).Model(&sub).Updates(updates).Error; err != nil {
		return nil, failedUnlessApp("update sub-event", err, s.log)
	}
	return &sub, nil
}

// DeleteSubEvent removes a sub-event.
func (s *CatalogService) DeleteSubEvent(ctx context.Context, admin *models.Guest, id string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	res := s.db.WithContext(ensureContext(ctx)).Delete(&models.SubEvent{}, "id = ?", strings.TrimSpace(id))
	if res.Error != nil {
		return failedUnlessApp("delete sub-event", res.Error, s.log)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound.WithMessage("Sub-event not found")
	}
	return nil
}

// ListTimeline returns every timeline entry ordered by Order.
func (s *CatalogService) ListTimeline(ctx context.Context) ([]models.TimelineItem, error) {
	var items []models.TimelineItem
	if err := s.db.WithContext(ensureContext(ctx)).Order("sort_order ASC").Find(&items).Error; err != nil {
		return nil, failedUnlessApp("load timeline", err, s.log)
	}
	return items, nil
}

// VisibleTimeline returns the timeline entries visible to role.
func (s *CatalogService) VisibleTimeline(ctx context.Context, role string) ([]models.TimelineItem, error) {
	items, err := s.ListTimeline(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.TimelineItem, 0, len(items))
	for _, item := range items {
		if permissions.Visible(item.VisibleTo, role) {
			out = append(out, item)
		}
	}
	return out, nil
}

// CreateTimelineItem stores a timeline entry; Order defaults to 99.
func (s *CatalogService) CreateTimelineItem(ctx context.Context, admin *models.Guest, input TimelineInput) (*models.TimelineItem, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("Title is required")
	}
	item := models.TimelineItem{
		Time:        strings.TrimSpace(input.Time),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Order:       orderOr(input.Order, defaultTimelineOrder),
		VisibleTo:   visibilityMask(input.VisibleTo),
	}
	if err := s.db.WithContext(ensureContext(ctx)).Create(&item).Error; err != nil {
		return nil, failedUnlessApp("create timeline item", err, s.log)
	}
	return &item, nil
}

// UpdateTimelineItem overwrites a timeline entry.
func (s *CatalogService) UpdateTimelineItem(ctx context.Context, admin *models.Guest, id string, input TimelineInput) (*models.TimelineItem, error) {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if strings.TrimSpace(id) == "" || title == "" {
		return nil, apperrors.NewBadRequest("ID and title are required")
	}

	var item models.TimelineItem
	if err := s.db.WithContext(ctx).Take(&item, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Timeline item not found")
		}
		return nil, failedUnlessApp("update timeline item", err, s.log)
	}
	updates := map[string]any{
		"time":        strings.TrimSpace(input.Time),
		"title":       title,
		"description": strings.TrimSpace(input.Description),
		"sort_order":  orderOr(input.Order, defaultTimelineOrder),
		"visible_to":  visibilityMask(input.VisibleTo),
	}
	if err := s.db.WithContext(ctx).Model(&item).Updates(updates).Error; err != nil {
		return nil, failedUnlessApp("update timeline item", err, s.log)
	}
	return &item, nil
}

// DeleteTimelineItem removes a timeline entry.
func (s *CatalogService) DeleteTimelineItem(ctx context.Context, admin *models.Guest, id string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	res := s.db.WithContext(ensureContext(ctx)).Delete(&models.TimelineItem{}, "id = ?", strings.TrimSpace(id))
	if res.Error != nil {
		return failedUnlessApp("delete timeline item", res.Error, s.log)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound.WithMessage("Timeline item not found")
	}
	return nil
}
