package pdf

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asram/pickup-service/internal/model"
)

func TestGenerator_Generate(t *testing.T) {
	clientID := uuid.New()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	history := model.ClientHistory{
		Client:           model.Client{ID: clientID, Name: "Maria Lopez"},
		TotalLitres:      20,
		AverageLitres30d: 20,
		FirstPickupAt:    date,
		LastPickupAt:     date,
		Pickups: []model.Pickup{
			{ID: uuid.New(), ClientID: &clientID, Date: &date, Litres: 20, Address: "Calle Mayor 1"},
		},
	}

	content, err := NewGenerator().Generate(history)
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestGenerator_Generate_EmptyHistory(t *testing.T) {
	history := model.ClientHistory{
		Client: model.Client{ID: uuid.New(), Name: "Sin Recogidas"},
	}

	content, err := NewGenerator().Generate(history)
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}
