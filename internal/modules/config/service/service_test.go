package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/greenloop/greenloop-backend/internal/entity"
	"github.com/greenloop/greenloop-backend/internal/modules/config"
	configRepo "github.com/greenloop/greenloop-backend/internal/modules/config/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:configsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.AppConfig{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newService(t *testing.T) (ConfigService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewConfigService(configRepo.NewConfigRepository(db)), db
}

func TestGetAll_DefaultsWhenEmpty(t *testing.T) {
	svc, _ := newService(t)

	milestones, err := svc.GetStreakMilestones(context.Background())
	if err != nil {
		t.Fatalf("GetStreakMilestones: %v", err)
	}
	if len(milestones) != 2 {
		t.Fatalf("milestones = %d; want 2 defaults", len(milestones))
	}
	if m := milestones["50"]; m.Name != "Green Sprout" || m.Color != "#4CAF50" {
		t.Fatalf("milestone 50 = %+v", m)
	}
	if m := milestones["100"]; m.Name != "Eco Champion" || m.Color != "#FFD700" {
		t.Fatalf("milestone 100 = %+v", m)
	}

	rewards, err := svc.GetActionRewards(context.Background())
	if err != nil {
		t.Fatalf("GetActionRewards: %v", err)
	}
	if rewards.Default.EcoTokens != 10 || rewards.Default.Streak != 1 {
		t.Fatalf("default reward = %+v", rewards.Default)
	}
	if len(rewards.Tags) != 6 {
		t.Fatalf("reward tags = %d; want 6", len(rewards.Tags))
	}
	if r := rewards.Tags["planting"]; r.EcoTokens != 25 {
		t.Fatalf("planting reward = %+v; want 25 tokens", r)
	}

	prices, err := svc.GetGiftPrices(context.Background())
	if err != nil {
		t.Fatalf("GetGiftPrices: %v", err)
	}
	if len(prices) != 0 {
		t.Fatalf("gift prices = %v; want empty map", prices)
	}
}

func TestUpdateGiftPrice_SetAndClear(t *testing.T) {
	svc, _ := newService(t)
	itemID := uuid.NewString()

	price := 120
	if err := svc.UpdateGiftPrice(context.Background(), itemID, &price); err != nil {
		t.Fatalf("UpdateGiftPrice: %v", err)
	}

	prices, err := svc.GetGiftPrices(context.Background())
	if err != nil {
		t.Fatalf("GetGiftPrices: %v", err)
	}
	if prices[itemID] != 120 {
		t.Fatalf("price = %d; want 120", prices[itemID])
	}

	if err := svc.UpdateGiftPrice(context.Background(), itemID, nil); err != nil {
		t.Fatalf("clear price: %v", err)
	}
	prices, _ = svc.GetGiftPrices(context.Background())
	if _, ok := prices[itemID]; ok {
		t.Fatal("price override should be removed")
	}
}

func TestUpdateStreakMilestone_PreservesOtherKeys(t *testing.T) {
	svc, _ := newService(t)

	if err := svc.UpdateStreakMilestone(context.Background(), "200", &config.Milestone{
		Color: "#0000FF", Emoji: "🌊", Name: "Ocean Guardian",
	}); err != nil {
		t.Fatalf("UpdateStreakMilestone: %v", err)
	}

	milestones, err := svc.GetStreakMilestones(context.Background())
	if err != nil {
		t.Fatalf("GetStreakMilestones: %v", err)
	}
	if len(milestones) != 3 {
		t.Fatalf("milestones = %d; want 3", len(milestones))
	}
	// Defaults survive a sub-key write.
	if milestones["50"].Name != "Green Sprout" {
		t.Fatalf("milestone 50 = %+v; default lost", milestones["50"])
	}
	if milestones["200"].Name != "Ocean Guardian" {
		t.Fatalf("milestone 200 = %+v", milestones["200"])
	}
}

func TestUpdateActionReward_DefaultAndTag(t *testing.T) {
	svc, _ := newService(t)

	if err := svc.UpdateActionReward(context.Background(), "default", &config.Reward{Streak: 1, EcoTokens: 12}); err != nil {
		t.Fatalf("update default: %v", err)
	}
	if err := svc.UpdateActionReward(context.Background(), "composting", &config.Reward{Streak: 1, EcoTokens: 18}); err != nil {
		t.Fatalf("add tag: %v", err)
	}

	rewards, err := svc.GetActionRewards(context.Background())
	if err != nil {
		t.Fatalf("GetActionRewards: %v", err)
	}
	if rewards.Default.EcoTokens != 12 {
		t.Fatalf("default tokens = %d; want 12", rewards.Default.EcoTokens)
	}
	if rewards.Tags["composting"].EcoTokens != 18 {
		t.Fatalf("composting = %+v", rewards.Tags["composting"])
	}
	if rewards.Tags["recycling"].EcoTokens != 15 {
		t.Fatalf("recycling = %+v; default tag lost", rewards.Tags["recycling"])
	}

	if err := svc.UpdateActionReward(context.Background(), "default", nil); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("removing default = %v; want ErrInvalidInput", err)
	}
}

func TestUpdate_VersionBumpAndConflict(t *testing.T) {
	svc, db := newService(t)

	price := 50
	itemID := uuid.NewString()
	if err := svc.UpdateGiftPrice(context.Background(), itemID, &price); err != nil {
		t.Fatalf("UpdateGiftPrice: %v", err)
	}

	var row entity.AppConfig
	if err := db.First(&row, "key = ?", config.KeyGiftPrices).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.Version != 1 {
		t.Fatalf("version = %d; want 1 after seed+write", row.Version)
	}

	// A write carrying a stale version must not apply.
	repo := configRepo.NewConfigRepository(db)
	updated, err := repo.UpdateIfVersion(context.Background(), config.KeyGiftPrices, "{}", 0)
	if err != nil {
		t.Fatalf("conditional write: %v", err)
	}
	if updated {
		t.Fatal("stale write applied; want rejection")
	}

	// The stored document is unchanged by the rejected write.
	prices, err := svc.GetGiftPrices(context.Background())
	if err != nil {
		t.Fatalf("GetGiftPrices: %v", err)
	}
	if prices[itemID] != 50 {
		t.Fatalf("price = %d; want 50", prices[itemID])
	}
}
