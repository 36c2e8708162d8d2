package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/motorlane/pipeline-api/internal/domain"
)

// SetupTestDB creates an isolated in-memory database with the full schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory database")

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&domain.User{},
		&domain.PipelineStatus{},
		&domain.MarketColor{},
		&domain.PipelineItem{},
		&domain.PipelineItemPhoneNumber{},
		&domain.PipelineItemNote{},
		&domain.TransferActivity{},
	)
	require.NoError(t, err, "Failed to migrate test schema")

	return db
}

// SeedStatuses inserts the standard status rows and returns them by code
func SeedStatuses(t *testing.T, db *gorm.DB) map[domain.StatusCode]*domain.PipelineStatus {
	t.Helper()

	rows := []domain.PipelineStatus{
		{Code: domain.StatusCodeNewLead, Label: "New Lead"},
		{Code: domain.StatusCodeContacted, Label: "Contacted"},
		{Code: domain.StatusCodeAppointment, Label: "Appointment Set"},
		{Code: domain.StatusCodeNegotiating, Label: "Negotiating"},
		{Code: domain.StatusCodeSold, Label: "Sold", IsClosed: true},
		{Code: domain.StatusCodeDelivered, Label: "Delivered", IsClosed: true},
		{Code: domain.StatusCodeLost, Label: "Lost", IsClosed: true},
	}

	statuses := make(map[domain.StatusCode]*domain.PipelineStatus, len(rows))
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
		statuses[rows[i].Code] = &rows[i]
	}
	return statuses
}

// SeedMarketColors inserts a couple of market color rows
func SeedMarketColors(t *testing.T, db *gorm.DB) []domain.MarketColor {
	t.Helper()

	colors := []domain.MarketColor{
		{Code: "green", Label: "Green"},
		{Code: "red", Label: "Red"},
	}
	for i := range colors {
		require.NoError(t, db.Create(&colors[i]).Error)
	}
	return colors
}

// CreateTestUser inserts a user with the given role
func CreateTestUser(t *testing.T, db *gorm.DB, email string, role domain.UserRole) *domain.User {
	t.Helper()

	user := &domain.User{
		Email:       email,
		DisplayName: "Test " + string(role),
		Role:        role,
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
