package wishlist

import (
	"testing"

	"github.com/angelmondragon/mia-backend/pkg/db/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Wish{}, &models.PriceHistory{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}
