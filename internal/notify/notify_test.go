package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminder_JSONShape(t *testing.T) {
	reminder := Reminder{
		ResourceID:      "abc123",
		ResourceName:    "Consola QU-32",
		ResourceKind:    "EQUIPMENT",
		MaintenanceType: "PREVENTIVO",
		Date:            time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DaysRemaining:   7,
	}

	payload, err := json.Marshal(reminder)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "Consola QU-32", decoded["resource_name"])
	assert.Equal(t, "PREVENTIVO", decoded["maintenance_type"])
	assert.Equal(t, float64(7), decoded["days_remaining"])
}

func TestLogDispatcher(t *testing.T) {
	err := LogDispatcher{}.DispatchReminder(context.Background(), Reminder{ResourceName: "Truss 3m"})
	assert.NoError(t, err)
}
