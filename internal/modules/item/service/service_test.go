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
	"github.com/greenloop/greenloop-backend/internal/modules/item/dto"
	itemRepo "github.com/greenloop/greenloop-backend/internal/modules/item/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:itemsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.Role{}, &entity.User{}, &entity.Item{}, &entity.ItemsHistory{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newService(t *testing.T) (ItemService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewItemService(db, itemRepo.NewItemRepository(db), nil), db
}

func seedUser(t *testing.T, db *gorm.DB, points int) *entity.User {
	t.Helper()
	user := &entity.User{
		Username:      "user_" + uuid.NewString()[:8],
		PasswordHash:  "x",
		FullName:      "Test User",
		RoleID:        entity.RoleUser,
		CurrentPoints: points,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedItem(t *testing.T, db *gorm.DB, price int) *entity.Item {
	t.Helper()
	item := &entity.Item{
		Name:           "Bamboo Cup",
		RequiredPoints: price,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func userBalance(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var user entity.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return user.CurrentPoints
}

func TestRedeemItem_Success(t *testing.T) {
	svc, db := newService(t)
	user := seedUser(t, db, 100)
	item := seedItem(t, db, 60)

	resp, err := svc.RedeemItem(context.Background(), user.ID, item.ID)
	if err != nil {
		t.Fatalf("RedeemItem: %v", err)
	}

	if resp.PointsSpent != 60 {
		t.Fatalf("points spent = %d; want 60", resp.PointsSpent)
	}
	if resp.BalanceAfter != 40 {
		t.Fatalf("balance after = %d; want 40", resp.BalanceAfter)
	}
	if resp.IsShipped {
		t.Fatal("new redemption must not be shipped")
	}
	if got := userBalance(t, db, user.ID); got != 40 {
		t.Fatalf("stored balance = %d; want 40", got)
	}

	var count int64
	db.Model(&entity.ItemsHistory{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("redemption rows = %d; want 1", count)
	}
}

func TestRedeemItem_InsufficientBalance(t *testing.T) {
	svc, db := newService(t)
	user := seedUser(t, db, 30)
	item := seedItem(t, db, 60)

	_, err := svc.RedeemItem(context.Background(), user.ID, item.ID)
	if !errors.Is(err, apperror.ErrInsufficientBalance) {
		t.Fatalf("error = %v; want ErrInsufficientBalance", err)
	}

	// Failed redemption leaves the balance and history untouched.
	if got := userBalance(t, db, user.ID); got != 30 {
		t.Fatalf("balance = %d; want 30", got)
	}
	var count int64
	db.Model(&entity.ItemsHistory{}).Count(&count)
	if count != 0 {
		t.Fatalf("redemption rows = %d; want 0", count)
	}
}

func TestRedeemItem_ExactBalance(t *testing.T) {
	svc, db := newService(t)
	user := seedUser(t, db, 60)
	item := seedItem(t, db, 60)

	resp, err := svc.RedeemItem(context.Background(), user.ID, item.ID)
	if err != nil {
		t.Fatalf("RedeemItem: %v", err)
	}
	if resp.BalanceAfter != 0 {
		t.Fatalf("balance after = %d; want 0", resp.BalanceAfter)
	}
}

func TestRedeemItem_SequentialRedemptionsStopAtZero(t *testing.T) {
	svc, db := newService(t)
	user := seedUser(t, db, 100)
	item := seedItem(t, db, 60)

	if _, err := svc.RedeemItem(context.Background(), user.ID, item.ID); err != nil {
		t.Fatalf("first redemption: %v", err)
	}
	_, err := svc.RedeemItem(context.Background(), user.ID, item.ID)
	if !errors.Is(err, apperror.ErrInsufficientBalance) {
		t.Fatalf("second redemption error = %v; want ErrInsufficientBalance", err)
	}
	if got := userBalance(t, db, user.ID); got != 40 {
		t.Fatalf("balance = %d; want 40, never negative", got)
	}
}

func TestRedeemItem_UnknownItem(t *testing.T) {
	svc, db := newService(t)
	user := seedUser(t, db, 100)

	_, err := svc.RedeemItem(context.Background(), user.ID, uuid.New())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v; want ErrNotFound", err)
	}
}

func TestDeleteItem_RedeemedItemConflict(t *testing.T) {
	svc, db := newService(t)
	user := seedUser(t, db, 100)
	item := seedItem(t, db, 10)

	if _, err := svc.RedeemItem(context.Background(), user.ID, item.ID); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	err := svc.DeleteItem(context.Background(), item.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("error = %v; want ErrConflict", err)
	}
}

func TestDeleteItem_UnredeemedItem(t *testing.T) {
	svc, db := newService(t)
	item := seedItem(t, db, 10)

	if err := svc.DeleteItem(context.Background(), item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	var count int64
	db.Model(&entity.Item{}).Count(&count)
	if count != 0 {
		t.Fatalf("items = %d; want 0", count)
	}
}

func TestCreateItem_DefaultTag(t *testing.T) {
	svc, _ := newService(t)

	item, err := svc.CreateItem(context.Background(), dto.CreateItemRequest{
		Name:           "Tote Bag",
		RequiredPoints: 80,
	}, nil, "")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Tag != entity.DefaultItemTag {
		t.Fatalf("tag = %q; want %q", item.Tag, entity.DefaultItemTag)
	}
}

func TestMarkShipped(t *testing.T) {
	svc, db := newService(t)
	user := seedUser(t, db, 100)
	item := seedItem(t, db, 10)

	resp, err := svc.RedeemItem(context.Background(), user.ID, item.ID)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}

	if err := svc.MarkShipped(context.Background(), resp.ID); err != nil {
		t.Fatalf("MarkShipped: %v", err)
	}

	list, err := svc.ListRedemptions(context.Background(), &user.ID, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListRedemptions: %v", err)
	}
	if len(list.Redemptions) != 1 || !list.Redemptions[0].IsShipped {
		t.Fatalf("redemption list = %+v; want one shipped row", list.Redemptions)
	}

	if err := svc.MarkShipped(context.Background(), uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("MarkShipped(unknown) = %v; want ErrNotFound", err)
	}
}
