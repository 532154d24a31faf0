package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/argus-sec/argus/internal/models"
)

func setupDecisionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.Decision{})
	assert.NoError(t, err)

	return db
}

func TestDecisionService_LogAndList(t *testing.T) {
	db := setupDecisionTestDB(t)
	svc := NewDecisionService(db)

	dec := &models.Decision{Source: "waf", Action: "reject", Identity: "1.2.3.4", RuleID: "xss-script", Details: "script tag in body"}
	err := svc.Log(dec)
	assert.NoError(t, err)
	assert.NotEmpty(t, dec.UUID)

	list, err := svc.List(10)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(list), 1)
	assert.Equal(t, "waf", list[0].Source)
}

func TestDecisionService_LogNilIsNoop(t *testing.T) {
	db := setupDecisionTestDB(t)
	svc := NewDecisionService(db)

	assert.NoError(t, svc.Log(nil))
}

func TestDecisionService_ListByIdentity(t *testing.T) {
	db := setupDecisionTestDB(t)
	svc := NewDecisionService(db)

	assert.NoError(t, svc.Log(&models.Decision{Source: "ratelimit", Action: "reject", Identity: "a"}))
	assert.NoError(t, svc.Log(&models.Decision{Source: "waf", Action: "reject", Identity: "b"}))

	list, err := svc.ListByIdentity("a", 10)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "ratelimit", list[0].Source)
}
