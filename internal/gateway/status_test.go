package gateway

import (
	"errors"
	"testing"

	"fundflow/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTable_Map(t *testing.T) {
	table := NewStatusTable("demo", map[domain.Status][]string{
		domain.StatusPending: {"queued"},
		domain.StatusSuccess: {"DONE"},
	})

	st, err := table.Map("QUEUED")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, st)

	st, err = table.Map(" done ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)

	_, err = table.Map("WHATEVER")
	var unhandled *UnhandledStatusError
	require.True(t, errors.As(err, &unhandled))
	assert.Equal(t, "demo", unhandled.Provider)
	assert.Equal(t, "WHATEVER", unhandled.Raw)
	assert.True(t, IsAmbiguous(err))
}

func TestProviderStatusTables(t *testing.T) {
	tables := map[string]StatusTable{
		ProviderSwiftPay:  swiftPayStatuses,
		ProviderPayZen:    payZenStatuses,
		ProviderCashGrid:  cashGridStatuses,
		ProviderPayStream: payStreamStatuses,
		ProviderUPILink:   upiLinkStatuses,
		ProviderMoneyRail: moneyRailStatuses,
		ProviderZipPay:    zipPayStatuses,
		ProviderTrustPe:   trustPeStatuses,
		ProviderNimbusPay: nimbusPayStatuses,
	}
	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			assert.GreaterOrEqual(t, table.Len(), 4)
			_, err := table.Map("")
			assert.Error(t, err, "empty status must never map")
		})
	}

	st, err := zipPayStatuses.Map("2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)

	st, err = nimbusPayStatuses.Map("RETURNED")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefund, st)
}
