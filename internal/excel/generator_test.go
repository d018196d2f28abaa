package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/asram/pickup-service/internal/model"
)

func TestGenerator_Generate(t *testing.T) {
	clientID := uuid.New()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	history := model.ClientHistory{
		Client:           model.Client{ID: clientID, Name: "Maria Lopez", District: "Centro"},
		TotalLitres:      20,
		AverageLitres30d: 20,
		FirstPickupAt:    date,
		LastPickupAt:     date,
		Pickups: []model.Pickup{
			{ID: uuid.New(), ClientID: &clientID, Date: &date, Litres: 20, Address: "Calle Mayor 1", Status: model.PickupStatusCompleted},
		},
	}

	content, err := NewGenerator().Generate(history)
	require.NoError(t, err)
	require.NotEmpty(t, content)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	name, err := file.GetCellValue("Resumen", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Maria Lopez", name)

	litres, err := file.GetCellValue("Resumen", "B5")
	require.NoError(t, err)
	assert.Equal(t, "20.00", litres)

	status, err := file.GetCellValue("Recogidas", "E2")
	require.NoError(t, err)
	assert.Equal(t, "Completada", status)
}
