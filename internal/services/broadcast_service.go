package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/models"
	"github.com/charlesng35/soiree/internal/notifications"
	apperrors "github.com/charlesng35/soiree/pkg/errors"
	"github.com/charlesng35/soiree/pkg/logger"
)

// Bulk SMS audience selectors.
const (
	TargetAll          = "ALL"
	TargetGroup        = "GROUP"
	TargetSelected     = "SELECTED"
	TargetGuestsOfRole = "GUESTS_OF_ROLE"
)

const minBulkMessageLength = 2

// AudienceFilter holds a role for GROUP and GUESTS_OF_ROLE, and guest ids for
// SELECTED. In JSON it is either a single string or an array of strings.
type AudienceFilter []string

// UnmarshalJSON accepts "VIP", ["VIP"] and null.
func (f *AudienceFilter) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*f = nil
		if strings.TrimSpace(one) != "" {
			*f = AudienceFilter{one}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("filter must be a string or a list of strings: %w", err)
	}
	*f = many
	return nil
}

// BulkSMSRequest selects an audience and carries the message template.
type BulkSMSRequest struct {
	Message string         `json:"message" form:"message"`
	Target  string         `json:"target" form:"target"`
	Filter  AudienceFilter `json:"filter" form:"filter"`
}

// BulkSMSResult counts delivered and undelivered messages.
type BulkSMSResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// BroadcastOption customises BroadcastService behaviour.
type BroadcastOption func(*BroadcastService)

// WithBroadcastConcurrency bounds simultaneous gateway calls. Zero or less
// leaves fan-out unbounded.
func WithBroadcastConcurrency(n int) BroadcastOption {
	return func(s *BroadcastService) {
		s.concurrency = n
	}
}

// BroadcastService sends templated SMS messages to a selected audience.
type BroadcastService struct {
	db          *gorm.DB
	dispatcher  *notifications.Dispatcher
	concurrency int
	log         *zap.Logger
}

// NewBroadcastService constructs a BroadcastService.
func NewBroadcastService(db *gorm.DB, dispatcher *notifications.Dispatcher, opts ...BroadcastOption) (*BroadcastService, error) {
	if db == nil {
		return nil, errors.New("broadcast service: db is required")
	}
	if dispatcher == nil {
		dispatcher = notifications.NewDispatcher(nil, nil)
	}
	svc := &BroadcastService{
		db:         db,
		dispatcher: dispatcher,
		log:        logger.WithModule("broadcast"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SendBulkSMS personalises req.Message for every guest in the audience and
// sends all messages concurrently, waiting for each to settle. Audience
// members without a phone are not attempted and count as failed; individual
// failures never abort the batch.
func (s *BroadcastService) SendBulkSMS(ctx context.Context, admin *models.Guest, req BulkSMSRequest) (*BulkSMSResult, error) {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	message := strings.TrimSpace(req.Message)
	if len([]rune(message)) < minBulkMessageLength {
		return nil, apperrors.NewBadRequest("Message too short")
	}

	audience, err := s.audience(ctx, req.Target, req.Filter)
	if err != nil {
		return nil, err
	}
	if len(audience) == 0 {
		return nil, apperrors.NewBadRequest("No recipients found")
	}

	var sent atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i := range audience {
		guest := &audience[i]
		if strings.TrimSpace(guest.Phone) == "" {
			continue
		}
		g.Go(func() error {
			text := notifications.Personalize(message, s.dispatcher.Recipient(guest, guest.InvitedBy))
			if err := s.dispatcher.SendSMS(gctx, guest.Phone, text); err != nil {
				s.log.Warn("bulk sms delivery failed", zap.String("guest_id", guest.ID), zap.Error(err))
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result := &BulkSMSResult{Sent: int(sent.Load())}
	result.Failed = len(audience) - result.Sent
	s.log.Info("bulk sms finished",
		zap.String("target", req.Target),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *BroadcastService) audience(ctx context.Context, target string, filter []string) ([]models.Guest, error) {
	query := s.db.WithContext(ctx).Model(&models.Guest{}).Preload("InvitedBy").Order("created_at ASC")
	first := ""
	if ids := normaliseIDs(filter); len(ids) > 0 {
		first = ids[0]
	}

	switch strings.ToUpper(strings.TrimSpace(target)) {
	case TargetAll:
		query = query.Where("phone IS NOT NULL AND phone <> ''")
	case TargetGroup:
		query = query.Where("role = ?", first)
	case TargetSelected:
		ids := normaliseIDs(filter)
		if len(ids) == 0 {
			return nil, nil
		}
		query = query.Where("id IN ?", ids)
	case TargetGuestsOfRole:
		query = query.Where("invited_by_id IN (?)",
			s.db.WithContext(ctx).Model(&models.Guest{}).Select("id").Where("role = ?", first))
	default:
		return nil, apperrors.NewBadRequest("Invalid target")
	}

	var guests []models.Guest
	if err := query.Find(&guests).Error; err != nil {
		s.log.Error("resolve bulk sms audience failed", zap.Error(err))
		return nil, apperrors.Failed("send messages", err)
	}
	return guests, nil
}
