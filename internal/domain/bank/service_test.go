// internal/domain/bank/service_test.go
package bank

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/agency-backend/internal/config"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&BankAccount{}))
	return db
}

func TestCreateStartsInactive(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	account, err := svc.Create(&CreateRequest{
		BankName:      "Ziraat Bankası",
		AccountHolder: "Agency Ltd",
		IBAN:          "TR330006100519786457841326",
	})
	require.NoError(t, err)
	assert.False(t, account.IsActive)
	assert.Equal(t, "TRY", account.Currency)

	_, err = svc.ActiveAccount()
	assert.ErrorIs(t, err, ErrNoActiveAccount)
}

func TestSetActiveSwitchesAccounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	first, err := svc.Create(&CreateRequest{
		BankName: "Ziraat Bankası", AccountHolder: "Agency Ltd",
		IBAN: "TR330006100519786457841326",
	})
	require.NoError(t, err)
	second, err := svc.Create(&CreateRequest{
		BankName: "İş Bankası", AccountHolder: "Agency Ltd",
		IBAN: "TR320010009999901234567890",
	})
	require.NoError(t, err)

	_, err = svc.SetActive(first.ID)
	require.NoError(t, err)

	active, err := svc.ActiveAccount()
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)

	_, err = svc.SetActive(second.ID)
	require.NoError(t, err)

	active, err = svc.ActiveAccount()
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	// Only one row may be active at a time
	var count int64
	require.NoError(t, db.Model(&BankAccount{}).Where("is_active = ?", true).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSetActiveUnknownAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	_, err := svc.SetActive(99)
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	account, err := svc.Create(&CreateRequest{
		BankName: "Garanti", AccountHolder: "Agency Ltd",
		IBAN: "TR630006200519786457841327",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(account.ID))
	assert.Error(t, svc.Delete(account.ID))

	accounts, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}
