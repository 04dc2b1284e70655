package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pms/internal/core/entity"
	"pms/internal/core/id"
)

type mockEntity struct {
	entity.Base
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

func TestExtractDBColumns_EmbeddedBase(t *testing.T) {
	cols := ExtractDBColumns[mockEntity]()

	expectedCols := []string{
		"id", "version", "created_at", "updated_at", "deleted_at", "code", "name",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap_EmbeddedBase(t *testing.T) {
	now := time.Now().UTC()
	e := mockEntity{
		Base: entity.Base{
			ID:      id.New(),
			Version: 5,
			Timestamps: entity.Timestamps{
				CreatedAt: now,
				UpdatedAt: now,
			},
			SoftDelete: entity.SoftDelete{
				DeletedAt: &now,
			},
		},
		Code: "TEST",
		Name: "Test Name",
	}

	m := StructToMap(e)

	assert.Equal(t, e.ID, m["id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, &now, m["deleted_at"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "Test Name", m["name"])
}

func TestStructToMap_PointerInput(t *testing.T) {
	e := &mockEntity{Base: entity.NewBase(), Code: "P1"}

	m := StructToMap(e)

	assert.Equal(t, e.ID, m["id"])
	assert.Equal(t, "P1", m["code"])
	assert.Nil(t, m["deleted_at"])
}
