package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/greenloop/greenloop-backend/internal/entity"
	"github.com/greenloop/greenloop-backend/internal/modules/config"
	configRepo "github.com/greenloop/greenloop-backend/internal/modules/config/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
)

// ConfigService reads and updates the JSON configuration documents. Reads
// always succeed: a missing or unparseable document falls back to its
// compiled-in default. Sub-key writes use optimistic concurrency, so a
// racing admin edit surfaces as a Conflict instead of silently losing data.
type ConfigService interface {
	GetAll(ctx context.Context) (map[string]interface{}, error)
	GetStreakMilestones(ctx context.Context) (map[string]config.Milestone, error)
	GetActionRewards(ctx context.Context) (config.ActionRewards, error)
	GetGiftPrices(ctx context.Context) (config.GiftPrices, error)

	// UpdateGiftPrice sets or clears (price == nil) one item's override.
	UpdateGiftPrice(ctx context.Context, itemID string, price *int) error
	// UpdateStreakMilestone sets or clears (milestone == nil) one threshold.
	UpdateStreakMilestone(ctx context.Context, threshold string, milestone *config.Milestone) error
	// UpdateActionReward sets one tag's reward; tag "default" updates the
	// fallback. A nil reward removes the tag (the default cannot be removed).
	UpdateActionReward(ctx context.Context, tag string, reward *config.Reward) error
}

type configService struct {
	repo configRepo.ConfigRepository
}

func NewConfigService(repo configRepo.ConfigRepository) ConfigService {
	return &configService{repo: repo}
}

func (s *configService) GetAll(ctx context.Context) (map[string]interface{}, error) {
	milestones, err := s.GetStreakMilestones(ctx)
	if err != nil {
		return nil, err
	}
	rewards, err := s.GetActionRewards(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := s.GetGiftPrices(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		config.KeyStreakMilestones: milestones,
		config.KeyActionRewards:    rewards,
		config.KeyGiftPrices:       prices,
	}, nil
}

func (s *configService) GetStreakMilestones(ctx context.Context) (map[string]config.Milestone, error) {
	var doc map[string]config.Milestone
	ok, err := s.load(ctx, config.KeyStreakMilestones, &doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return config.DefaultStreakMilestones(), nil
	}
	return doc, nil
}

func (s *configService) GetActionRewards(ctx context.Context) (config.ActionRewards, error) {
	var doc config.ActionRewards
	ok, err := s.load(ctx, config.KeyActionRewards, &doc)
	if err != nil {
		return config.ActionRewards{}, err
	}
	if !ok || doc.Tags == nil {
		return config.DefaultActionRewards(), nil
	}
	return doc, nil
}

func (s *configService) GetGiftPrices(ctx context.Context) (config.GiftPrices, error) {
	var doc config.GiftPrices
	ok, err := s.load(ctx, config.KeyGiftPrices, &doc)
	if err != nil {
		return nil, err
	}
	if !ok || doc == nil {
		return config.DefaultGiftPrices(), nil
	}
	return doc, nil
}

func (s *configService) UpdateGiftPrice(ctx context.Context, itemID string, price *int) error {
	if itemID == "" {
		return apperror.Wrap(apperror.ErrInvalidInput, "item id is required")
	}
	if price != nil && *price <= 0 {
		return apperror.Wrap(apperror.ErrInvalidInput, "price must be positive")
	}

	doc, version, err := s.loadForUpdate(ctx, config.KeyGiftPrices, func() interface{} {
		return config.DefaultGiftPrices()
	})
	if err != nil {
		return err
	}

	prices := config.DefaultGiftPrices()
	if err := json.Unmarshal(doc, &prices); err != nil {
		prices = config.DefaultGiftPrices()
	}

	if price == nil {
		delete(prices, itemID)
	} else {
		prices[itemID] = *price
	}

	return s.write(ctx, config.KeyGiftPrices, prices, version)
}

func (s *configService) UpdateStreakMilestone(ctx context.Context, threshold string, milestone *config.Milestone) error {
	if threshold == "" {
		return apperror.Wrap(apperror.ErrInvalidInput, "threshold is required")
	}

	doc, version, err := s.loadForUpdate(ctx, config.KeyStreakMilestones, func() interface{} {
		return config.DefaultStreakMilestones()
	})
	if err != nil {
		return err
	}

	milestones := config.DefaultStreakMilestones()
	if err := json.Unmarshal(doc, &milestones); err != nil {
		milestones = config.DefaultStreakMilestones()
	}

	if milestone == nil {
		delete(milestones, threshold)
	} else {
		milestones[threshold] = *milestone
	}

	return s.write(ctx, config.KeyStreakMilestones, milestones, version)
}

func (s *configService) UpdateActionReward(ctx context.Context, tag string, reward *config.Reward) error {
	if tag == "" {
		return apperror.Wrap(apperror.ErrInvalidInput, "tag is required")
	}
	if reward != nil && (reward.Streak < 0 || reward.EcoTokens <= 0) {
		return apperror.Wrap(apperror.ErrInvalidInput, "reward values must be positive")
	}

	doc, version, err := s.loadForUpdate(ctx, config.KeyActionRewards, func() interface{} {
		return config.DefaultActionRewards()
	})
	if err != nil {
		return err
	}

	rewards := config.DefaultActionRewards()
	if err := json.Unmarshal(doc, &rewards); err != nil || rewards.Tags == nil {
		rewards = config.DefaultActionRewards()
	}

	if tag == "default" {
		if reward == nil {
			return apperror.Wrap(apperror.ErrInvalidInput, "the default reward cannot be removed")
		}
		rewards.Default = *reward
	} else if reward == nil {
		delete(rewards.Tags, tag)
	} else {
		rewards.Tags[tag] = *reward
	}

	return s.write(ctx, config.KeyActionRewards, rewards, version)
}

// load unmarshals the stored document for key into out. It reports false
// when the document is missing or corrupt, in which case callers fall back
// to the default.
func (s *configService) load(ctx context.Context, key string, out interface{}) (bool, error) {
	row, err := s.repo.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if row == nil {
		return false, nil
	}
	if err := json.Unmarshal([]byte(row.Value), out); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("stored config document is unparseable, using defaults")
		return false, nil
	}
	return true, nil
}

// loadForUpdate returns the raw stored document and its version, seeding the
// row with its default when it does not exist yet.
func (s *configService) loadForUpdate(ctx context.Context, key string, defaultDoc func() interface{}) (json.RawMessage, int, error) {
	row, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, 0, err
	}

	if row == nil {
		raw, err := json.Marshal(defaultDoc())
		if err != nil {
			return nil, 0, err
		}
		seed := &entity.AppConfig{Key: key, Value: string(raw), Version: 0}
		if err := s.repo.Insert(ctx, seed); err != nil {
			// Lost the seeding race; re-read the winner's row.
			row, rerr := s.repo.Get(ctx, key)
			if rerr != nil || row == nil {
				return nil, 0, err
			}
			return json.RawMessage(row.Value), row.Version, nil
		}
		return raw, 0, nil
	}

	return json.RawMessage(row.Value), row.Version, nil
}

func (s *configService) write(ctx context.Context, key string, doc interface{}, expectedVersion int) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize config document %s: %w", key, err)
	}

	updated, err := s.repo.UpdateIfVersion(ctx, key, string(raw), expectedVersion)
	if err != nil {
		return err
	}
	if !updated {
		return apperror.Wrap(apperror.ErrConflict, "configuration was modified concurrently, retry")
	}
	return nil
}
