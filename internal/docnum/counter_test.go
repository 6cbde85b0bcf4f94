package docnum

import (
	"testing"

	"gradation-backend/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNextIsMonotonic(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	for want := int64(1); want <= 5; want++ {
		got, err := Next(db, CounterWorkOrderSlip)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	// independent counters do not share a sequence
	got, err := Next(db, "other_counter")
	require.NoError(t, err)
	require.Equal(t, int64(1), got)
}

func TestFormatSlipNo(t *testing.T) {
	require.Equal(t, "WO000007", FormatSlipNo("WO", 7))
	require.Equal(t, "WO123456", FormatSlipNo("WO", 123456))
}
