package agents

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
)

func setupAgentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:agents_repo?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS delivery_agents (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL,
  is_online INTEGER NOT NULL DEFAULT 0,
  is_available INTEGER NOT NULL DEFAULT 0,
  current_order_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	require.NoError(t, db.Exec(`DELETE FROM delivery_agents`).Error)
	return db
}

func seedAgent(t *testing.T, db *gorm.DB, online, available bool) *models.DeliveryAgent {
	t.Helper()
	agent := &models.DeliveryAgent{
		ID:          uuid.New(),
		Name:        "Ravi",
		Phone:       "+919900112233",
		IsOnline:    online,
		IsAvailable: available,
	}
	require.NoError(t, db.Create(agent).Error)
	return agent
}

func reloadAgent(t *testing.T, db *gorm.DB, agentID uuid.UUID) *models.DeliveryAgent {
	t.Helper()
	var agent models.DeliveryAgent
	require.NoError(t, db.Where("id = ?", agentID).First(&agent).Error)
	return &agent
}

func TestBindOrderWithdrawsAvailability(t *testing.T) {
	db := setupAgentsTestDB(t)
	repo := NewRepository(db)
	agent := seedAgent(t, db, true, true)
	orderID := uuid.New()

	rows, err := repo.BindOrder(context.Background(), agent.ID, orderID)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	got := reloadAgent(t, db, agent.ID)
	require.NotNil(t, got.CurrentOrderID)
	assert.Equal(t, orderID, *got.CurrentOrderID)
	assert.False(t, got.IsAvailable, "a bound agent must leave the offer pool")
}

func TestBindOrderRejectsBusySlot(t *testing.T) {
	db := setupAgentsTestDB(t)
	repo := NewRepository(db)
	agent := seedAgent(t, db, true, true)

	rows, err := repo.BindOrder(context.Background(), agent.ID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	rows, err = repo.BindOrder(context.Background(), agent.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows, "an occupied slot must not be claimed twice")
}

func TestReleaseOrderRestoresAvailabilityWhileOnline(t *testing.T) {
	db := setupAgentsTestDB(t)
	repo := NewRepository(db)
	agent := seedAgent(t, db, true, true)

	_, err := repo.BindOrder(context.Background(), agent.ID, uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.ReleaseOrder(context.Background(), agent.ID))

	got := reloadAgent(t, db, agent.ID)
	assert.Nil(t, got.CurrentOrderID)
	assert.True(t, got.IsAvailable, "releasing an online agent returns them to the offer pool")
}

func TestReleaseOrderKeepsOfflineAgentUnavailable(t *testing.T) {
	db := setupAgentsTestDB(t)
	repo := NewRepository(db)
	agent := seedAgent(t, db, true, true)

	_, err := repo.BindOrder(context.Background(), agent.ID, uuid.New())
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.DeliveryAgent{}).Where("id = ?", agent.ID).Update("is_online", false).Error)
	require.NoError(t, repo.ReleaseOrder(context.Background(), agent.ID))

	got := reloadAgent(t, db, agent.ID)
	assert.Nil(t, got.CurrentOrderID)
	assert.False(t, got.IsAvailable, "an agent who went offline mid-delivery must not re-enter the pool")
}
